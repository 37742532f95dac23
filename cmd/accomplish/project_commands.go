package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newProjectCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(newProjectListCommand(ctx))
	cmd.AddCommand(newProjectCurrentCommand(ctx))
	cmd.AddCommand(newProjectNewCommand(ctx))
	return cmd
}

func newProjectListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.requireAuth(cmd.Context())
			if err != nil {
				return err
			}
			projects, err := client.FetchProjects(cmd.Context())
			if err != nil {
				return fmt.Errorf("list projects: %w", err)
			}
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects yet; create one with 'accomplish project new'.")
				return nil
			}
			rows := make([][]string, 0, len(projects))
			for _, project := range projects {
				rows = append(rows, []string{
					project.Identifier,
					project.Name,
					truncate(project.Description, 50),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]column{{title: "Identifier"}, {title: "Name"}, {title: "Description"}},
				rows,
			))
			return nil
		},
	}
}

func newProjectCurrentCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the project the current directory resolves to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			identifier, source := resolveProjectIdentifier(ctx, "")
			if identifier == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No project linked; run 'accomplish init' or set default_project in the config.")
				return nil
			}
			switch source {
			case "directory":
				fmt.Fprintf(cmd.OutOrStdout(), "%s (from directory link)\n", identifier)
			case "profile":
				fmt.Fprintf(cmd.OutOrStdout(), "%s (from profile default)\n", identifier)
			default:
				fmt.Fprintln(cmd.OutOrStdout(), identifier)
			}
			return nil
		},
	}
}

func newProjectNewCommand(ctx *commandContext) *cobra.Command {
	var nameFlag string
	var descriptionFlag string

	cmd := &cobra.Command{
		Use:   "new <identifier>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identifier := normalizeIdentifier(args[0])
			if err := validateIdentifier(identifier); err != nil {
				return err
			}

			client, err := ctx.requireAuth(cmd.Context())
			if err != nil {
				return err
			}

			projects, err := client.FetchProjects(cmd.Context())
			if err != nil {
				return fmt.Errorf("list projects: %w", err)
			}
			if _, exists := findProject(projects, identifier); exists {
				return fmt.Errorf("project %s already exists", identifier)
			}

			name := strings.TrimSpace(nameFlag)
			if name == "" {
				name = titleCaser.String(strings.ToLower(identifier))
			}

			project, err := client.CreateProject(cmd.Context(), name, strings.TrimSpace(descriptionFlag), identifier)
			if err != nil {
				return fmt.Errorf("create project: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s).\n", project.Identifier, project.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Project display name")
	cmd.Flags().StringVarP(&descriptionFlag, "description", "d", "", "Project description")
	return cmd
}
