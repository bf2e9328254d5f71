package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFilename is the config file looked up when --config is not set.
const DefaultConfigFilename = ".vaulthook.yaml"

// Config holds the YAML configuration for the daemon.
type Config struct {
	URL                 string `yaml:"url"`                    // Destination webhook URL
	Enabled             bool   `yaml:"enabled"`                // Master switch
	AutoSend            bool   `yaml:"auto_send"`              // Send webhooks for vault events automatically
	Notices             bool   `yaml:"notices"`                // Show desktop notices
	TriggerOnFileOpen   bool   `yaml:"trigger_on_file_open"`   // Relay file-open focus events
	TriggerOnPaneChange bool   `yaml:"trigger_on_pane_change"` // Relay pane-change focus events

	Root      string        `yaml:"root"`       // Vault root directory to watch
	VaultName string        `yaml:"vault_name"` // Vault name reported in payloads
	LogLevel  string        `yaml:"log_level"`  // Logging level: debug, info, warn, error
	Exclude   []string      `yaml:"exclude"`    // Glob patterns to exclude
	Daemonize bool          `yaml:"daemonize"`  // If true, run as daemon; if false, run in foreground
	Delay     time.Duration `yaml:"delay"`      // Window for pairing rename events
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Enabled:  true,
		AutoSend: true,
		Notices:  true,
		Root:     ".",
		LogLevel: "info",
	}
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Save writes the configuration back to the YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Normalize trims the URL and fills derivable fields. The vault name
// defaults to the base name of the root directory.
func (c *Config) Normalize() {
	c.URL = strings.TrimSpace(c.URL)
	if c.Root == "" {
		c.Root = "."
	}
	if c.VaultName == "" {
		abs, err := filepath.Abs(c.Root)
		if err != nil {
			abs = c.Root
		}
		c.VaultName = filepath.Base(abs)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
