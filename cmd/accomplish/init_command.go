package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"accomplish/internal/api"
	"accomplish/internal/config"
	"accomplish/internal/gitinfo"
)

func newInitCommand(ctx *commandContext) *cobra.Command {
	var projectFlag string
	var globalFlag bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Link the current directory to a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.requireAuth(cmd.Context())
			if err != nil {
				return err
			}

			identifier := normalizeIdentifier(projectFlag)
			if identifier == "" {
				return errors.New("a project is required; pass --project with its identifier")
			}

			projects, err := client.FetchProjects(cmd.Context())
			if err != nil {
				return fmt.Errorf("list projects: %w", err)
			}
			project, ok := findProject(projects, identifier)
			if !ok {
				return fmt.Errorf("no project with identifier %q; run 'accomplish project list'", identifier)
			}

			dir, err := os.Getwd()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			remote := ""
			if gitinfo.IsRepository(dir) {
				if url, ok := gitinfo.RemoteURL(dir); ok {
					remote = url
					if err := ensureRepository(cmd, client, project, dir, url); err != nil {
						return err
					}
				} else {
					fmt.Fprintln(out, "Git repository has no origin remote; commit capture will be unavailable here.")
				}
			}

			if globalFlag {
				path, err := config.DefaultDirectoriesPath()
				if err != nil {
					return err
				}
				dirs, err := config.LoadDirectories(path)
				if err != nil {
					return fmt.Errorf("load directory registry: %w", err)
				}
				entry := config.DirectoryEntry{
					ProjectIdentifier: project.Identifier,
					DirectoryType:     "git",
					GitRemote:         remote,
				}
				if remote == "" {
					entry.DirectoryType = "plain"
				}
				if err := dirs.Set(dir, entry); err != nil {
					return fmt.Errorf("update directory registry: %w", err)
				}
				fmt.Fprintf(out, "Linked %s to project %s (global registry).\n", dir, project.Identifier)
				return nil
			}

			if err := config.WriteLocalConfig(dir, project.Identifier); err != nil {
				return fmt.Errorf("write %s: %w", config.LocalConfigName, err)
			}
			fmt.Fprintf(out, "Linked %s to project %s.\n", dir, project.Identifier)
			fmt.Fprintf(out, "Consider adding %s to .gitignore if the link is personal.\n", config.LocalConfigName)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectFlag, "project", "p", "", "Project identifier to link")
	cmd.Flags().BoolVar(&globalFlag, "global", false, "Record the link in the global registry instead of a local file")
	return cmd
}

// ensureRepository registers the directory's origin remote with the backend
// when it is not already known.
func ensureRepository(cmd *cobra.Command, client *api.Client, project api.Project, dir, remote string) error {
	repos, err := client.FetchRepositories(cmd.Context())
	if err != nil {
		return fmt.Errorf("list repositories: %w", err)
	}
	for _, repo := range repos {
		if gitinfo.SameRemote(repo.RemoteURL, remote) {
			fmt.Fprintf(cmd.OutOrStdout(), "Repository %s already registered.\n", repo.Name)
			return nil
		}
	}
	name := gitinfo.DeriveRepoName(dir, remote)
	repo, err := client.CreateRepository(cmd.Context(), project.ID, name, remote, "main")
	if err != nil {
		return fmt.Errorf("register repository: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registered repository %s.\n", repo.Name)
	return nil
}
