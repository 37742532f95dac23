package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"accomplish/internal/api"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "accomplish %s\n", api.Version)
			return nil
		},
	}
}
