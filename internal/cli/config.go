package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenMined/SyftUI-sub000/pkg/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or modify syftui configuration.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backend: %s\n", cfg.Backend.Type)
			if cfg.Backend.Root != "" {
				fmt.Fprintf(out, "Root: %s\n", cfg.Backend.Root)
			}
			if cfg.Backend.Snapshot != "" {
				fmt.Fprintf(out, "Snapshot: %s\n", cfg.Backend.Snapshot)
			}
			fmt.Fprintf(out, "Remote URL: %s\n", cfg.Remote.URL)
			fmt.Fprintf(out, "Token: %t\n", cfg.Remote.Token != "")
			fmt.Fprintf(out, "Sync Delays: %s pending, %s syncing\n", cfg.Sync.PendingDelay, cfg.Sync.SyncingDelay)
			fmt.Fprintf(out, "History Limit: %d\n", cfg.History.Limit)
			fmt.Fprintf(out, "Upload Grace: %s\n", cfg.Upload.Grace)
			fmt.Fprintf(out, "View: %s, sorted by %s %s\n", cfg.View.Mode, cfg.View.Sort, cfg.View.Order)
			fmt.Fprintf(out, "Output Format: %s\n", cfg.Output.Format)
			fmt.Fprintf(out, "Log Format: %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "Log Level: %s\n", cfg.Logging.Level)
			if cfg.Metrics.Enabled {
				fmt.Fprintf(out, "Metrics: %s\n", cfg.Metrics.Addr)
			}

			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Long: `Write the default configuration. The memory backend snapshot and the
preferences database are placed in the data directory so that the
workspace survives between commands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := globalFlags.ConfigFile
			if path == "" {
				var err error
				if path, err = config.DefaultConfigPath(); err != nil {
					return err
				}
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := config.Default()
			if err := cfg.Persistent(); err != nil {
				return err
			}
			if err := config.SaveToFile(cfg, path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}
