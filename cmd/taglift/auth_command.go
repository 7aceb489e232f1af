package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"taglift/internal/credential"
	"taglift/internal/logging"
)

func newAuthCommand(configFlag *string) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the question bank credential",
	}

	authCmd.AddCommand(newAuthLoginCommand(configFlag))
	authCmd.AddCommand(newAuthStatusCommand(configFlag))

	return authCmd
}

func newAuthLoginCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the question bank and store the credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := authManager(configFlag)
			if err != nil {
				return err
			}

			if _, err := manager.ForceRefresh(cmd.Context()); err != nil {
				return err
			}

			state := manager.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "Credential stored (expires %s)\n", expiryLabel(state.ExpiresAt))
			return nil
		},
	}
}

func newAuthStatusCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a usable credential is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := authManager(configFlag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			state := manager.Snapshot()
			switch {
			case state.Token == "":
				fmt.Fprintln(out, "No credential stored; run `taglift auth login`")
			case manager.IsValid():
				fmt.Fprintf(out, "Credential valid (expires %s)\n", expiryLabel(state.ExpiresAt))
			default:
				fmt.Fprintf(out, "Credential expired at %s; run `taglift auth login`\n", expiryLabel(state.ExpiresAt))
			}
			return nil
		},
	}
}

func authManager(configFlag *string) (*credential.Manager, error) {
	cfg, _, err := loadConfig(configFlag)
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	return newCredentialManager(cfg, logging.NewNop())
}

func expiryLabel(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Local().Format(time.RFC3339)
}
