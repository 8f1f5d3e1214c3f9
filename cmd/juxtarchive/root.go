// Package main provides the entry point for the juxtarchive CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for juxtarchive.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "juxtarchive",
		Short: "Incremental archiver for Miiverse-style community platforms",
		Long: `juxtarchive archives a Miiverse-style community platform into a local
SQLite database and serves the archive over a JSON API.

The crawler walks every community in an endless loop, picking up only
what changed since its last pass. The server answers point lookups,
searches, and reverse image searches against the archived data, and
hints the crawler to re-fetch records that visitors are looking at.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewProbeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
