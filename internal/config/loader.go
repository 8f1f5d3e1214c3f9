package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".juxtarchive"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .juxtarchive configuration file.
// All fields are optional; values left empty fall back to flag values
// and then to the built-in defaults.
type File struct {
	// URL is the platform base URL to archive.
	URL string `yaml:"url,omitempty"`

	// DBDir is the directory holding the SQLite database file.
	DBDir string `yaml:"dbDir,omitempty"`

	// Listen is the query server's HTTP listen address.
	Listen string `yaml:"listen,omitempty"`

	// Refresh is the UDP address of the crawler's live-update listener.
	Refresh string `yaml:"refresh,omitempty"`

	// UIResultLimit overrides the HTML-facing search result cap.
	UIResultLimit int `yaml:"uiResultLimit,omitempty"`

	// APIResultLimit overrides the JSON API search result cap.
	APIResultLimit int `yaml:"apiResultLimit,omitempty"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// Apply copies the file's non-empty settings onto the config.
// Flag values already present in cfg are overwritten: the config file is
// the more deliberate of the two sources.
func (cf *File) Apply(cfg *Config) {
	if cf.URL != "" {
		cfg.BaseURL = cf.URL
	}
	if cf.DBDir != "" {
		cfg.DBDir = cf.DBDir
	}
	if cf.Listen != "" {
		cfg.ListenAddr = cf.Listen
	}
	if cf.Refresh != "" {
		cfg.RefreshAddr = cf.Refresh
	}
	if cf.UIResultLimit > 0 {
		cfg.UIResultLimit = cf.UIResultLimit
	}
	if cf.APIResultLimit > 0 {
		cfg.APIResultLimit = cf.APIResultLimit
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .juxtarchive in the current directory
// 3. Look for .juxtarchive in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
