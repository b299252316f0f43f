// ABOUTME: Configuration management for server connection and data paths
// ABOUTME: JSON config at the XDG config path with sensible defaults and ~ expansion

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AlgusDark/minisync/internal/fsutil"
)

// Config stores minisync configuration.
type Config struct {
	// ServerAddress is the base URL of the Miniflux server.
	ServerAddress string `json:"server_address"`

	// APIToken authenticates against the server.
	APIToken string `json:"api_token"`

	// DataDir is the root directory for local state (status database and
	// queue files). Supports ~ expansion. Defaults to ~/.local/share/minisync.
	DataDir string `json:"data_dir,omitempty"`

	// RequestTimeoutSeconds bounds every remote call.
	RequestTimeoutSeconds int `json:"request_timeout_seconds,omitempty"`

	// BatchLimit caps entry ids per batched status update; 0 is unlimited.
	BatchLimit int `json:"batch_limit,omitempty"`
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	return ExpandPath(c.DataDir)
}

// RequestTimeout returns the remote call timeout.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return DefaultRequestTimeout
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// DBPath returns the status database location.
func (c *Config) DBPath() string {
	return filepath.Join(c.GetDataDir(), "minisync.db")
}

// EntryQueuePath returns the entry-status queue file location.
func (c *Config) EntryQueuePath() string {
	return filepath.Join(c.GetDataDir(), "entry-status-queue.json")
}

// FeedQueuePath returns the feed queue file location.
func (c *Config) FeedQueuePath() string {
	return filepath.Join(c.GetDataDir(), "feed-queue.json")
}

// CategoryQueuePath returns the category queue file location.
func (c *Config) CategoryQueuePath() string {
	return filepath.Join(c.GetDataDir(), "category-queue.json")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "minisync", "config.json")
}

// Load reads config from disk. A missing file yields defaults rather than
// an error, so read-only commands work before setup.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom reads config from an explicit path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo writes config to an explicit path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return fsutil.AtomicWrite(path, data, 0600)
}

func defaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "minisync")
}
