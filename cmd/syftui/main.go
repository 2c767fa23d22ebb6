package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenMined/SyftUI-sub000/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cli.Version, cli.Commit, cli.BuildDate = version, commit, date

	rootCmd := &cobra.Command{
		Use:   "syftui",
		Short: "Browse and manage a synced workspace",
		Long: `syftui manages a hierarchical workspace of files and folders kept in
sync with a companion service. Items can be listed, created, renamed, moved,
copied, uploaded and deleted, with undo and redo in the interactive shell.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	cli.AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(cli.NewListCommand())
	rootCmd.AddCommand(cli.NewTreeCommand())
	rootCmd.AddCommand(cli.NewStatCommand())
	rootCmd.AddCommand(cli.NewMkdirCommand())
	rootCmd.AddCommand(cli.NewTouchCommand())
	rootCmd.AddCommand(cli.NewRemoveCommand())
	rootCmd.AddCommand(cli.NewMoveCommand())
	rootCmd.AddCommand(cli.NewCopyCommand())
	rootCmd.AddCommand(cli.NewRenameCommand())
	rootCmd.AddCommand(cli.NewUploadCommand())
	rootCmd.AddCommand(cli.NewFsckCommand())
	rootCmd.AddCommand(cli.NewShellCommand())
	rootCmd.AddCommand(cli.NewOnboardCommand())
	rootCmd.AddCommand(cli.NewConfigCommand())
	rootCmd.AddCommand(cli.NewVersionCommand())

	return rootCmd.Execute()
}
