package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"accomplish/internal/api"
	"accomplish/internal/auth"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in with a device code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, authService, err := ctx.services()
			if err != nil {
				return err
			}

			if authService.HasToken() {
				if err := authService.EnsureAuthenticated(cmd.Context()); err == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "Already logged in.")
					return nil
				} else if !errors.Is(err, auth.ErrNotAuthenticated) {
					return fmt.Errorf("validate stored token: %w", err)
				}
			}

			device, err := client.InitiateDeviceCode(cmd.Context(), cfg.ClientID)
			if err != nil {
				return fmt.Errorf("request device code: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "To log in, open the following URL in a browser:")
			fmt.Fprintln(out)
			if device.VerificationURIComplete != "" {
				fmt.Fprintf(out, "  %s\n", device.VerificationURIComplete)
			} else {
				fmt.Fprintf(out, "  %s\n", device.VerificationURI)
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "and enter the code: %s\n", device.UserCode)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Waiting for approval...")

			token, err := waitForApproval(cmd, client, cfg.ClientID, device)
			if err != nil {
				return err
			}
			if err := authService.SaveToken(token.AccessToken); err != nil {
				return fmt.Errorf("store token: %w", err)
			}
			fmt.Fprintln(out, "Logged in.")
			return nil
		},
	}
}

// waitForApproval polls the token exchange at the server-suggested interval
// until the user approves the device or the code expires.
func waitForApproval(cmd *cobra.Command, client *api.Client, clientID string, device *api.DeviceCode) (*api.Token, error) {
	interval := time.Duration(device.Interval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	expiry := time.Duration(device.ExpiresIn) * time.Second
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	deadline := time.Now().Add(expiry)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-cmd.Context().Done():
			return nil, cmd.Context().Err()
		case <-ticker.C:
			if time.Now().After(deadline) {
				return nil, errors.New("device code expired before approval; run 'accomplish login' again")
			}
			token, err := client.ExchangeDeviceCode(cmd.Context(), clientID, device.DeviceCode)
			if err != nil {
				// The server answers 400 while approval is pending.
				if errors.Is(err, api.ErrValidation) {
					continue
				}
				return nil, fmt.Errorf("exchange device code: %w", err)
			}
			return token, nil
		}
	}
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, authService, err := ctx.services()
			if err != nil {
				return err
			}
			if !authService.HasToken() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}
			authService.ClearToken()
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show profile and authentication status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			_, authService, err := ctx.services()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Profile:  %s\n", cfg.Profile)
			fmt.Fprintf(out, "API base: %s\n", cfg.APIBase)
			fmt.Fprintf(out, "Config:   %s\n", cfg.Path)

			info, err := authService.TokenInfo(cmd.Context())
			switch {
			case errors.Is(err, auth.ErrNotAuthenticated):
				fmt.Fprintln(out, "Auth:     not logged in")
			case err != nil:
				fmt.Fprintf(out, "Auth:     token check failed (%v)\n", err)
			case !info.Active:
				fmt.Fprintln(out, "Auth:     token inactive; run 'accomplish login'")
			case info.Username != "":
				fmt.Fprintf(out, "Auth:     logged in as %s\n", info.Username)
			default:
				fmt.Fprintln(out, "Auth:     logged in")
			}
			return nil
		},
	}
}
