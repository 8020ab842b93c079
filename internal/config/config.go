package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// FilePermissions is the default permission mode for regular files
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories
	DirPermissions = 0755

	configFileName = "config.yaml"
)

var (
	// ConfigDir is the global configuration directory (~/.forge)
	ConfigDir string

	// ConfigFile is the YAML settings file
	ConfigFile string

	// StorePath is the SQLite database file backing the selection store
	StorePath string

	// LogFile is the debug log sink (the TUI owns the terminal)
	LogFile string
)

// Settings holds the persisted client configuration. Server and Token point
// the gateway at the backend; the request defaults mirror the dashboard's
// general/security preference tabs.
type Settings struct {
	Server string `yaml:"server"`
	Token  string `yaml:"token,omitempty"`

	Preferences Preferences `yaml:"preferences,omitempty"`
}

// Preferences are the non-workspace, non-account settings.
type Preferences struct {
	Theme           string `yaml:"theme,omitempty"` // light, dark, system
	RequestTimeout  int    `yaml:"requestTimeoutSeconds,omitempty"`
	FollowRedirects bool   `yaml:"followRedirects"`
	SSLVerify       bool   `yaml:"sslVerify"`
	ProxyHost       string `yaml:"proxyHost,omitempty"`
	ProxyPort       string `yaml:"proxyPort,omitempty"`
	ProxyAuth       bool   `yaml:"proxyAuth,omitempty"`
}

// DefaultSettings returns the settings used before first save.
func DefaultSettings() Settings {
	return Settings{
		Server: "http://localhost:8080/api",
		Preferences: Preferences{
			Theme:           "system",
			FollowRedirects: true,
			SSLVerify:       true,
		},
	}
}

// Initialize sets up the configuration directory and files.
// It creates ~/.forge/ if it doesn't exist.
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	ConfigDir = filepath.Join(homeDir, ".forge")
	ConfigFile = filepath.Join(ConfigDir, configFileName)
	StorePath = filepath.Join(ConfigDir, "forge.db")
	LogFile = filepath.Join(ConfigDir, "forge.log")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	// Seed a default config file so users have something to edit
	if _, err := os.Stat(GetConfigFilePath()); os.IsNotExist(err) {
		if err := Save(DefaultSettings()); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	}

	return nil
}

// GetConfigFilePath returns the config file path (local or global).
// A config.yaml in the working directory takes precedence, which keeps
// per-project backends possible.
func GetConfigFilePath() string {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName
	}
	return ConfigFile
}

// Load reads the settings file. A missing file yields the defaults.
func Load() (Settings, error) {
	data, err := os.ReadFile(GetConfigFilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return Settings{}, fmt.Errorf("failed to read config file: %w", err)
	}

	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	return s, nil
}

// Save writes the settings file.
func Save(s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(GetConfigFilePath(), data, FilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
