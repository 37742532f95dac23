package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"accomplish/internal/config"
	"accomplish/internal/editor"
)

func newLogCommand(ctx *commandContext) *cobra.Command {
	var messages []string
	var tagsFlag string
	var projectFlag string

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record a worklog entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.requireAuth(cmd.Context())
			if err != nil {
				return err
			}

			content := strings.TrimSpace(strings.Join(messages, "\n\n"))
			if content == "" {
				composed, err := editor.Compose(editor.Template)
				if err != nil {
					return fmt.Errorf("open editor: %w", err)
				}
				content = strings.TrimSpace(composed)
			}
			if content == "" {
				return errors.New("entry is empty; nothing to record")
			}

			identifier, _ := resolveProjectIdentifier(ctx, projectFlag)
			projectID := ""
			if identifier != "" {
				projects, err := client.FetchProjects(cmd.Context())
				if err != nil {
					return fmt.Errorf("list projects: %w", err)
				}
				if project, ok := findProject(projects, identifier); ok {
					projectID = project.ID
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Warning: no project found with identifier %q; recording without one.\n", identifier)
				}
			}

			entry, err := client.CreateEntry(cmd.Context(), content, splitCSV(tagsFlag), projectID)
			if err != nil {
				return fmt.Errorf("record entry: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded entry %s.\n", entry.ID)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&messages, "message", "m", nil, "Entry text; repeat for multiple paragraphs")
	cmd.Flags().StringVarP(&tagsFlag, "tags", "t", "", "Comma separated tags")
	cmd.Flags().StringVarP(&projectFlag, "project", "p", "", "Project identifier")
	return cmd
}

// resolveProjectIdentifier picks the project for the current invocation:
// explicit flag, then the directory link, then the profile default. The
// second return names the source for display.
func resolveProjectIdentifier(ctx *commandContext, flagValue string) (string, string) {
	if trimmed := normalizeIdentifier(flagValue); trimmed != "" {
		return trimmed, "flag"
	}
	if dir, err := os.Getwd(); err == nil {
		if identifier, ok := config.LookupProjectForDir(dir); ok {
			return normalizeIdentifier(identifier), "directory"
		}
	}
	if cfg, err := ctx.ensureConfig(); err == nil && cfg.DefaultProject != "" {
		return normalizeIdentifier(cfg.DefaultProject), "profile"
	}
	return "", ""
}
