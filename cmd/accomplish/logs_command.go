package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"accomplish/internal/api"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var projectFlag string
	var tagsFlag string
	var fromFlag string
	var toFlag string
	var limitFlag int
	var allFlag bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List worklog entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.requireAuth(cmd.Context())
			if err != nil {
				return err
			}

			filter := api.EntryFilter{
				Tags:  splitCSV(tagsFlag),
				From:  strings.TrimSpace(fromFlag),
				To:    strings.TrimSpace(toFlag),
				Limit: limitFlag,
			}

			identifier, _ := resolveProjectIdentifier(ctx, projectFlag)
			if identifier != "" {
				projects, err := client.FetchProjects(cmd.Context())
				if err != nil {
					return fmt.Errorf("list projects: %w", err)
				}
				if project, ok := findProject(projects, identifier); ok {
					filter.ProjectID = project.ID
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Warning: no project found with identifier %q; listing all projects.\n", identifier)
				}
			}

			out := cmd.OutOrStdout()
			interactive := isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
			reader := bufio.NewReader(cmd.InOrStdin())

			total := 0
			for {
				page, err := client.FetchEntries(cmd.Context(), filter)
				if err != nil {
					return fmt.Errorf("list entries: %w", err)
				}
				if len(page.Entries) == 0 && total == 0 {
					fmt.Fprintln(out, "No worklog entries found.")
					return nil
				}
				fmt.Fprintln(out, renderEntriesTable(page.Entries))
				total += len(page.Entries)

				if page.Meta.EndCursor == "" {
					return nil
				}
				filter.Cursor = page.Meta.EndCursor

				if allFlag {
					continue
				}
				if !interactive {
					return nil
				}
				fmt.Fprint(out, "Press enter for more, q to quit: ")
				line, err := reader.ReadString('\n')
				if err != nil || strings.HasPrefix(strings.TrimSpace(line), "q") {
					fmt.Fprintln(out)
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVarP(&projectFlag, "project", "p", "", "Project identifier")
	cmd.Flags().StringVarP(&tagsFlag, "tags", "t", "", "Comma separated tags")
	cmd.Flags().StringVar(&fromFlag, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toFlag, "to", "", "End date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limitFlag, "limit", 20, "Entries per page")
	cmd.Flags().BoolVar(&allFlag, "all", false, "Fetch every page without prompting")
	return cmd
}

func renderEntriesTable(entries []api.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		when := entry.InsertedAt
		if idx := strings.IndexByte(when, 'T'); idx > 0 {
			when = when[:idx]
		}
		rows = append(rows, []string{
			when,
			truncate(entry.Content, 60),
			strings.Join(entry.Tags, ", "),
		})
	}
	return renderTable(
		[]column{{title: "Date"}, {title: "Entry"}, {title: "Tags"}},
		rows,
	)
}
