package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/juxtarchive/juxtarchive/internal/config"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the flags shared by all subcommands,
// then layers the optional config file on top.
//
// If the user explicitly specified a config file path, a missing file is
// an error. Without an explicit path, a missing file means defaults.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	if cmd.Flags().Lookup("url") != nil {
		cfg.BaseURL, err = cmd.Flags().GetString("url")
		if err != nil {
			return nil, err
		}
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	explicitConfigPath := configPath != ""
	foundPath := config.FindConfigFile(configPath)

	if foundPath != "" {
		cf, err := config.LoadConfigFile(foundPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", foundPath, err)
		}
		cf.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	return cfg, nil
}

// addCommonFlags registers the flags every subcommand carries.
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("db-dir", "d", "",
		"Directory holding the archive database (default: XDG data directory)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .juxtarchive in current or home directory)")
}
