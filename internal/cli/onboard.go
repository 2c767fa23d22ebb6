package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenMined/SyftUI-sub000/pkg/config"
	"github.com/OpenMined/SyftUI-sub000/pkg/storage"
)

// OnboardFlags holds onboard init flags
type OnboardFlags struct {
	Email     string
	ServerURL string
	DataDir   string
}

var onboardFlags OnboardFlags

// NewOnboardCommand creates the onboard command
func NewOnboardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Check or set up the datasite of the companion service",
		Long: `Talk to the companion service configured under "remote": report whether
the datasite is set up, or set it up for an email address.`,
	}

	cmd.AddCommand(newOnboardStatusCommand())
	cmd.AddCommand(newOnboardInitCommand())

	return cmd
}

// remoteFromConfig builds the REST client without loading the workspace
func remoteFromConfig() (*config.Config, *storage.Remote, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	remote, err := storage.NewRemote(storage.RemoteConfig{
		URL:     cfg.Remote.URL,
		Token:   cfg.Remote.Token,
		Timeout: cfg.Remote.Timeout,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, remote, nil
}

func newOnboardStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the onboarding state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, remote, err := remoteFromConfig()
			if err != nil {
				return err
			}
			defer remote.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Service:   %s\n", cfg.Remote.URL)
			if info := remote.TokenInfo(); info != nil {
				fmt.Fprintf(out, "Token:     %s", info.Email)
				if !info.ExpiresAt.IsZero() {
					fmt.Fprintf(out, " (expires %s)", info.ExpiresAt.Local().Format(time.RFC3339))
				}
				if info.Expired(time.Now()) {
					fmt.Fprint(out, " EXPIRED")
				}
				fmt.Fprintln(out)
			}

			status, err := remote.Status(commandContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to reach the service: %w", err)
			}
			if status.Version != "" {
				fmt.Fprintf(out, "Version:   %s\n", status.Version)
			}
			fmt.Fprintf(out, "Onboarded: %t\n", status.Onboarded)
			if status.Email != "" {
				fmt.Fprintf(out, "Email:     %s\n", status.Email)
			}
			if status.DataDir != "" {
				fmt.Fprintf(out, "Data dir:  %s\n", status.DataDir)
			}
			return nil
		},
	}
}

func newOnboardInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set up the datasite",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, remote, err := remoteFromConfig()
			if err != nil {
				return err
			}
			defer remote.Close()

			req := storage.InitRequest{
				Email:     onboardFlags.Email,
				ServerURL: onboardFlags.ServerURL,
				DataDir:   onboardFlags.DataDir,
			}
			if err := remote.InitDatasite(commandContext(cmd), req); err != nil {
				return fmt.Errorf("onboarding failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Datasite ready for %s\n", req.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&onboardFlags.Email, "email", "", "datasite owner email (required)")
	cmd.Flags().StringVar(&onboardFlags.ServerURL, "server-url", "", "sync server url")
	cmd.Flags().StringVar(&onboardFlags.DataDir, "data-dir", "", "datasite directory on the service host")
	cmd.MarkFlagRequired("email")

	return cmd
}
