package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"accomplish/internal/api"
	"accomplish/internal/gitinfo"
)

func newCaptureCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int
	var messageFlag string
	var tagsFlag string
	var projectFlag string

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture recent git commits as worklog data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.requireAuth(cmd.Context())
			if err != nil {
				return err
			}

			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			if !gitinfo.IsRepository(dir) {
				return errors.New("not inside a git repository")
			}
			remote, ok := gitinfo.RemoteURL(dir)
			if !ok {
				return errors.New("repository has no origin remote; capture needs one to match the backend registration")
			}

			repos, err := client.FetchRepositories(cmd.Context())
			if err != nil {
				return fmt.Errorf("list repositories: %w", err)
			}
			var repo *api.Repository
			for i := range repos {
				if gitinfo.SameRemote(repos[i].RemoteURL, remote) {
					repo = &repos[i]
					break
				}
			}
			if repo == nil {
				return errors.New("repository is not registered; run 'accomplish init' first")
			}

			commits, err := gitinfo.RecentCommits(dir, limitFlag)
			if err != nil {
				return fmt.Errorf("read git log: %w", err)
			}
			if len(commits) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No commits found.")
				return nil
			}

			shas := make([]string, 0, len(commits))
			for _, commit := range commits {
				shas = append(shas, commit.SHA)
			}
			uncaptured, err := client.FetchUncapturedCommits(cmd.Context(), repo.ID, shas)
			if err != nil {
				return fmt.Errorf("check captured commits: %w", err)
			}
			if len(uncaptured) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No new commits to capture.")
				return nil
			}

			wanted := make(map[string]bool, len(uncaptured))
			for _, sha := range uncaptured {
				wanted[sha] = true
			}
			payload := make([]api.Commit, 0, len(uncaptured))
			for _, commit := range commits {
				if !wanted[commit.SHA] {
					continue
				}
				payload = append(payload, api.Commit{
					SHA:         commit.SHA,
					Message:     commit.Message,
					CommittedAt: commit.CommittedAt.Format("2006-01-02T15:04:05Z07:00"),
				})
			}

			commitIDs, err := client.CreateCommits(cmd.Context(), repo.ID, payload)
			if err != nil {
				return fmt.Errorf("capture commits: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Captured %d commits.\n", len(payload))

			message := strings.TrimSpace(messageFlag)
			if message == "" {
				return nil
			}

			projectID := ""
			if identifier, _ := resolveProjectIdentifier(ctx, projectFlag); identifier != "" {
				projects, err := client.FetchProjects(cmd.Context())
				if err != nil {
					return fmt.Errorf("list projects: %w", err)
				}
				if project, ok := findProject(projects, identifier); ok {
					projectID = project.ID
				}
			}

			entry, err := client.CreateEntry(cmd.Context(), message, splitCSV(tagsFlag), projectID)
			if err != nil {
				return fmt.Errorf("record entry: %w", err)
			}
			if len(commitIDs) > 0 {
				if err := client.AssociateCommits(cmd.Context(), entry.ID, commitIDs); err != nil {
					return fmt.Errorf("link commits to entry: %w", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded entry %s linked to %d commits.\n", entry.ID, len(commitIDs))
			return nil
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 20, "Number of recent commits to inspect")
	cmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Also record a worklog entry covering the captured commits")
	cmd.Flags().StringVarP(&tagsFlag, "tags", "t", "", "Comma separated tags for the entry")
	cmd.Flags().StringVarP(&projectFlag, "project", "p", "", "Project identifier for the entry")
	return cmd
}
