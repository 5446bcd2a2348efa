package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/promptops/internal/prompts"
)

func newVersionsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "versions",
		Aliases: []string{"v"},
		Short:   "Version ledger commands",
	}

	cmd.AddCommand(
		newVersionsListCmd(opts),
		newVersionsAddCmd(opts),
		newVersionsLatestCmd(opts),
		newVersionsShowCmd(opts),
		newVersionsRestoreCmd(opts),
	)
	return cmd
}

func newVersionsListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list <prompt-id>",
		Short: "List every version of a prompt, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, s *session) (any, error) {
				return s.prompts.History(ctx, s.owner, id)
			})
		},
	}
}

func newVersionsAddCmd(opts *options) *cobra.Command {
	var content, file string

	cmd := &cobra.Command{
		Use:   "add <prompt-id>",
		Short: "Append a new version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			body, err := readContent(cmd, content, file)
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, s *session) (any, error) {
				return s.prompts.CreateVersion(ctx, s.owner, id, prompts.VersionCommand{Content: body})
			})
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "version content")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read content from a file (- for stdin)")
	cmd.MarkFlagsMutuallyExclusive("content", "file")
	cmd.MarkFlagsOneRequired("content", "file")
	return cmd
}

func newVersionsLatestCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "latest <prompt-id>",
		Short: "Show the latest version of a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, s *session) (any, error) {
				return s.prompts.LatestVersion(ctx, s.owner, id)
			})
		},
	}
}

func newVersionsShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <prompt-id> <version-id>",
		Short: "Show one version of a prompt",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			versionID, err := parseID(args[1])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, s *session) (any, error) {
				return s.prompts.FindVersion(ctx, s.owner, id, versionID)
			})
		},
	}
}

func newVersionsRestoreCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <prompt-id> <version-id>",
		Short: "Append a new version copying an earlier one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			versionID, err := parseID(args[1])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, s *session) (any, error) {
				return s.prompts.RestoreVersion(ctx, s.owner, id, versionID)
			})
		},
	}
}
