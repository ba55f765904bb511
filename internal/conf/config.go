// Package conf handles the application configuration, loaded through viper
// from a YAML file, environment variables and command line flags.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ServiceSettings configures the connection to the detection service.
type ServiceSettings struct {
	BaseURL        string `yaml:"baseurl"`        // detection service base URL
	PollIntervalMs int    `yaml:"pollintervalms"` // defect poll cadence in milliseconds
	TimeoutSec     int    `yaml:"timeoutsec"`     // per-request timeout in seconds
	PageSize       int    `yaml:"pagesize"`       // limit parameter for defect listing
}

// SessionSettings carries the operator identity used to build the session
// context at process start. The token is an opaque bearer credential issued
// by the service at login.
type SessionSettings struct {
	Username string `yaml:"username"`
	Role     string `yaml:"role"` // admin or stationmaster
	Token    string `yaml:"token"`
}

// ExportSettings configures report export handling.
type ExportSettings struct {
	Directory string `yaml:"directory"` // where exported reports are saved
}

// TelemetrySettings configures the Prometheus metrics endpoint.
type TelemetrySettings struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"` // address for the metrics HTTP server
}

// Settings contains all configuration options for the RailWatch client.
type Settings struct {
	Debug bool `yaml:"debug"` // true to enable debug logging

	Service   ServiceSettings   `yaml:"service"`
	Session   SessionSettings   `yaml:"session"`
	Export    ExportSettings    `yaml:"export"`
	Telemetry TelemetrySettings `yaml:"telemetry"`
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration into a Settings struct and validates it.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with defaults and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	viper.SetEnvPrefix("RAILWATCH")
	viper.AutomaticEnv()

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("fatal error reading config file: %w", err)
		}
		// First run without a config file, create one from defaults
		return createDefaultConfig(configPaths[0])
	}

	return nil
}

// createDefaultConfig writes a config file populated with current defaults
// and re-reads it so viper tracks the file.
func createDefaultConfig(dir string) error {
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	defaults := &Settings{}
	if err := viper.Unmarshal(defaults); err != nil {
		return fmt.Errorf("error unmarshaling defaults: %w", err)
	}
	if err := SaveYAMLConfig(configPath, defaults); err != nil {
		return err
	}

	viper.SetConfigFile(configPath)
	return viper.ReadInConfig()
}

// GetSettings returns the current settings instance.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveYAMLConfig writes the settings struct to the given path as YAML.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("error writing config file %s: %w", configPath, err)
	}
	return nil
}

// GetDefaultConfigPaths returns the list of directories searched for the
// config file, most specific first.
func GetDefaultConfigPaths() ([]string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("error resolving user config directory: %w", err)
	}
	return []string{
		filepath.Join(configDir, "railwatch"),
		".",
	}, nil
}
