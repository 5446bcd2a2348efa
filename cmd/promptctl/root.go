package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/promptops/internal/api"
	"github.com/JaimeStill/promptops/internal/config"
	"github.com/JaimeStill/promptops/internal/infrastructure"
	"github.com/JaimeStill/promptops/internal/prompts"
)

const envUser = "PROMPTOPS_USER"

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

type options struct {
	configFile string
	identity   string
	output     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "promptctl",
		Short: "Manage versioned prompt documents",
		Long: `promptctl works directly against the PromptOps database using the same
configuration as the server (config.toml, config.<env>.toml, .env and
PROMPTOPS_* variables).

Every command acts on behalf of the identity given with --as.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case formatYAML, formatJSON:
				return nil
			}
			return fmt.Errorf("unknown output format: %s", opts.output)
		},
	}

	root.PersistentFlags().StringVar(
		&opts.configFile, "config", config.BaseConfigFile, "config file",
	)
	root.PersistentFlags().StringVar(
		&opts.identity, "as", os.Getenv(envUser), "identity to act as (default $"+envUser+")",
	)
	root.PersistentFlags().StringVarP(
		&opts.output, "output", "o", formatYAML, "output format: yaml or json",
	)
	root.PersistentFlags().BoolVarP(
		&opts.verbose, "verbose", "v", false, "log registry activity to stderr",
	)

	root.AddCommand(
		newPromptsCmd(opts),
		newVersionsCmd(opts),
		newVersionCmd(),
	)

	return root
}

// session is an open registry plus the infrastructure backing it.
type session struct {
	prompts prompts.System
	owner   string
	infra   *infrastructure.Infrastructure
}

func (o *options) open() (*session, error) {
	if o.identity == "" {
		return nil, fmt.Errorf("identity required: pass --as or set %s", envUser)
	}

	cfg, err := config.LoadFile(o.configFile)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if o.verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	infra, err := infrastructure.NewWithLogger(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := infra.Start(); err != nil {
		return nil, err
	}
	if err := infra.Lifecycle.WaitForStartup(); err != nil {
		infra.Lifecycle.Shutdown(5 * time.Second)
		return nil, err
	}

	domain := api.NewDomain(api.NewRuntime(cfg, infra))

	return &session{
		prompts: domain.Prompts,
		owner:   o.identity,
		infra:   infra,
	}, nil
}

func (s *session) close() {
	s.infra.Lifecycle.Shutdown(5 * time.Second)
}

// run opens a session, invokes fn, and writes its result.
func (o *options) run(cmd *cobra.Command, fn func(ctx context.Context, s *session) (any, error)) error {
	s, err := o.open()
	if err != nil {
		return err
	}
	defer s.close()

	result, err := fn(cmd.Context(), s)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), o.output, result)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "promptctl %s\n", version)
		},
	}
}
