// Copyright (c) 2025, the EduTask contributors.
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const envPrefix = "EDUTASK__"

// Config represents the application configuration
type Config struct {
	Host           string       `toml:"host" mapstructure:"host"`
	Port           int          `toml:"port" mapstructure:"port"`
	BaseURL        string       `toml:"baseUrl" mapstructure:"baseUrl"`
	LogLevel       string       `toml:"logLevel" mapstructure:"logLevel"`
	LogPath        string       `toml:"logPath" mapstructure:"logPath"`
	DataDir        string       `toml:"dataDir" mapstructure:"dataDir"`
	MetricsEnabled bool         `toml:"metricsEnabled" mapstructure:"metricsEnabled"`
	Gemini         GeminiConfig `toml:"gemini" mapstructure:"gemini"`
	HTTPTimeouts   HTTPTimeouts `toml:"httpTimeouts" mapstructure:"httpTimeouts"`
}

// GeminiConfig holds the content generator credentials and model selection.
type GeminiConfig struct {
	APIKey string `toml:"apiKey" mapstructure:"apiKey"`
	Model  string `toml:"model" mapstructure:"model"`
}

// HTTPTimeouts represents HTTP server timeout configuration, in seconds.
type HTTPTimeouts struct {
	ReadTimeout  int `toml:"readTimeout" mapstructure:"readTimeout"`
	WriteTimeout int `toml:"writeTimeout" mapstructure:"writeTimeout"`
	IdleTimeout  int `toml:"idleTimeout" mapstructure:"idleTimeout"`
}

type AppConfig struct {
	Config *Config

	viper      *viper.Viper
	configPath string
}

// New loads configuration from the given directory or file path, creating a
// default config file when none exists. An empty path uses the OS default
// location.
func New(configPath string) (*AppConfig, error) {
	c := &AppConfig{
		viper:  viper.New(),
		Config: &Config{},
	}

	c.defaults()
	c.bindEnv()

	if err := c.load(configPath); err != nil {
		return nil, err
	}

	c.watch()

	return c, nil
}

// GetDefaultConfigDir returns the OS-specific default configuration directory.
func GetDefaultConfigDir() string {
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "edutask")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "edutask")
}

func (c *AppConfig) defaults() {
	c.viper.SetDefault("host", "localhost")
	c.viper.SetDefault("port", 7757)
	c.viper.SetDefault("baseUrl", "")
	c.viper.SetDefault("logLevel", "INFO")
	c.viper.SetDefault("logPath", "")
	c.viper.SetDefault("dataDir", "")
	c.viper.SetDefault("metricsEnabled", false)
	c.viper.SetDefault("gemini.apiKey", "")
	c.viper.SetDefault("gemini.model", "gemini-2.5-flash")
	c.viper.SetDefault("httpTimeouts.readTimeout", 60)
	c.viper.SetDefault("httpTimeouts.writeTimeout", 120)
	c.viper.SetDefault("httpTimeouts.idleTimeout", 180)
}

func (c *AppConfig) bindEnv() {
	c.viper.BindEnv("host", envPrefix+"HOST")
	c.viper.BindEnv("port", envPrefix+"PORT")
	c.viper.BindEnv("baseUrl", envPrefix+"BASE_URL")
	c.viper.BindEnv("logLevel", envPrefix+"LOG_LEVEL")
	c.viper.BindEnv("logPath", envPrefix+"LOG_PATH")
	c.viper.BindEnv("dataDir", envPrefix+"DATA_DIR")
	c.viper.BindEnv("metricsEnabled", envPrefix+"METRICS_ENABLED")
	c.viper.BindEnv("gemini.apiKey", envPrefix+"GEMINI_API_KEY")
	c.viper.BindEnv("gemini.model", envPrefix+"GEMINI_MODEL")
}

// resolveConfigPath accepts either a directory, a direct path to a .toml
// file, or an empty string for the OS default location.
func resolveConfigPath(configPath string) string {
	if configPath == "" {
		return filepath.Join(GetDefaultConfigDir(), "config.toml")
	}
	if strings.HasSuffix(strings.ToLower(configPath), ".toml") {
		return configPath
	}
	if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
		return configPath
	}
	return filepath.Join(configPath, "config.toml")
}

func (c *AppConfig) load(configPath string) error {
	c.configPath = resolveConfigPath(configPath)

	if _, err := os.Stat(c.configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(c.configPath); err != nil {
			return err
		}
		log.Info().Str("path", c.configPath).Msg("Created default configuration file")
	}

	c.viper.SetConfigFile(c.configPath)
	c.viper.SetConfigType("toml")

	if err := c.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := c.viper.Unmarshal(c.Config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

// watch reloads the in-memory config when the file changes, so the log level
// and generator settings can change without a restart.
func (c *AppConfig) watch() {
	c.viper.OnConfigChange(func(e fsnotify.Event) {
		log.Debug().Str("file", e.Name).Msg("Config file changed, reloading")

		if err := c.viper.Unmarshal(c.Config); err != nil {
			log.Error().Err(err).Msg("Failed to reload config")
			return
		}

		c.ApplyLogConfig()
	})
	c.viper.WatchConfig()
}

// SetDataDir overrides the data directory, typically from a CLI flag.
func (c *AppConfig) SetDataDir(dir string) {
	c.Config.DataDir = dir
}

// GetDataDir returns the directory for the database and uploaded receipts.
// Defaults to the config file's directory.
func (c *AppConfig) GetDataDir() string {
	if c.Config.DataDir != "" {
		return c.Config.DataDir
	}
	return filepath.Dir(c.configPath)
}

// GetDatabasePath returns the sqlite database location.
func (c *AppConfig) GetDatabasePath() string {
	return filepath.Join(c.GetDataDir(), "edutask.db")
}

// ApplyLogConfig configures the global zerolog logger from the current
// config values.
func (c *AppConfig) ApplyLogConfig() {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Config.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if c.Config.LogPath != "" {
		f, err := os.OpenFile(c.Config.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Error().Err(err).Str("path", c.Config.LogPath).Msg("Failed to open log file, logging to stderr")
			return
		}
		log.Logger = log.Output(f)
		return
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

const defaultConfigTemplate = `# EduTask configuration

# Hostname / IP for the HTTP server
host = "localhost"

# Port for the HTTP server
port = 7757

# Base URL for serving the application under a subdirectory (optional)
#baseUrl = "/edutask/"

# Log level: TRACE, DEBUG, INFO, WARN, ERROR
logLevel = "INFO"

# Log file path (optional, logs to stderr when empty)
#logPath = "edutask.log"

# Data directory for the database and uploaded receipts
# (defaults to the config file's directory)
#dataDir = "/var/lib/edutask"

# Expose Prometheus metrics at /metrics
metricsEnabled = false

[gemini]
# Google Gemini API key used for worksheet generation
apiKey = ""
model = "gemini-2.5-flash"

[httpTimeouts]
readTimeout = 60
writeTimeout = 120
idleTimeout = 180
`

// WriteDefaultConfig writes the commented default configuration file.
func WriteDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
