package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/promptops/internal/prompts"
	"github.com/JaimeStill/promptops/pkg/pagination"
	"github.com/JaimeStill/promptops/pkg/query"
)

func newPromptsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "prompts",
		Aliases: []string{"prompt", "p"},
		Short:   "Prompt document commands",
	}

	cmd.AddCommand(
		newPromptsListCmd(opts),
		newPromptsCreateCmd(opts),
		newPromptsShowCmd(opts),
		newPromptsArchiveCmd(opts),
	)
	return cmd
}

func newPromptsListCmd(opts *options) *cobra.Command {
	var (
		page     int
		pageSize int
		search   string
		sort     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your prompts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := pagination.PageRequest{
				Page:     page,
				PageSize: pageSize,
				Sort:     query.ParseSortFields(sort),
			}
			if search != "" {
				req.Search = &search
			}

			return opts.run(cmd, func(ctx context.Context, s *session) (any, error) {
				return s.prompts.ListPrompts(ctx, s.owner, req)
			})
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "page size (default from config)")
	cmd.Flags().StringVar(&search, "search", "", "filter by name or description")
	cmd.Flags().StringVar(&sort, "sort", "", "sort fields, e.g. Name,-CreatedAt")
	return cmd
}

func newPromptsCreateCmd(opts *options) *cobra.Command {
	var (
		name        string
		description string
		content     string
		file        string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a prompt with its first version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readContent(cmd, content, file)
			if err != nil {
				return err
			}

			create := prompts.CreateCommand{Name: name, Content: body}
			if cmd.Flags().Changed("description") {
				create.Description = &description
			}

			return opts.run(cmd, func(ctx context.Context, s *session) (any, error) {
				return s.prompts.CreatePrompt(ctx, s.owner, create)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "prompt name")
	cmd.Flags().StringVar(&description, "description", "", "optional description")
	cmd.Flags().StringVar(&content, "content", "", "content of the first version")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read content from a file (- for stdin)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagsMutuallyExclusive("content", "file")
	return cmd
}

func newPromptsShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <prompt-id>",
		Short: "Show a prompt with its latest version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, s *session) (any, error) {
				return s.prompts.Detail(ctx, s.owner, id)
			})
		},
	}
}

func newPromptsArchiveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <prompt-id>",
		Short: "Snapshot a prompt's history to blob storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, s *session) (any, error) {
				return s.prompts.Archive(ctx, s.owner, id)
			})
		},
	}
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return id, nil
}

// readContent returns the --content value, or the contents of --file
// when given. A file of "-" reads stdin.
func readContent(cmd *cobra.Command, content, file string) (string, error) {
	switch file {
	case "":
		return content, nil
	case "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return string(data), nil
}
