package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. SUBSCTL_SERVER_URL
const EnvPrefix = "SUBSCTL"

// Config represents the application configuration
type Config struct {
	// API server URL
	ServerURL string `mapstructure:"server_url" json:"server_url"`

	// Web admin panel URL, used to build edit links
	PanelURL string `mapstructure:"panel_url" json:"panel_url"`

	// User information (populated after login)
	UserID string `mapstructure:"user_id" json:"user_id,omitempty"`
	Email  string `mapstructure:"email" json:"email,omitempty"`

	// Listing and formatting
	PerPage        int    `mapstructure:"per_page" json:"per_page"`
	CurrencySymbol string `mapstructure:"currency_symbol" json:"currency_symbol"`
	DateFormat     string `mapstructure:"date_format" json:"date_format"`
	Timezone       string `mapstructure:"timezone" json:"timezone"`

	// Logging
	LogLevel  string `mapstructure:"log_level" json:"log_level"`
	LogFormat string `mapstructure:"log_format" json:"log_format"`

	// HTTP client
	Timeout   time.Duration   `mapstructure:"timeout" json:"timeout"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" json:"rate_limit"`

	path string
}

// RateLimitConfig bounds how fast the client calls the API
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps" json:"rps"`
	Burst int     `mapstructure:"burst" json:"burst"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("panel_url", "http://localhost:3000")
	v.SetDefault("user_id", "")
	v.SetDefault("email", "")
	v.SetDefault("per_page", 15)
	v.SetDefault("currency_symbol", "$")
	v.SetDefault("date_format", "2006-01-02 15:04")
	v.SetDefault("timezone", "Local")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("rate_limit.rps", 5.0)
	v.SetDefault("rate_limit.burst", 10)
}

// Load loads the configuration from the given file path.
// A missing file yields the defaults; SUBSCTL_* environment variables override both.
func Load(path string) (*Config, error) {
	return load(path, true)
}

// LoadFile loads the configuration file and defaults without environment
// overrides. Configs that will be saved back must come from here.
func LoadFile(path string) (*Config, error) {
	return load(path, false)
}

func load(path string, withEnv bool) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("json")
	if withEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	cfg.PanelURL = strings.TrimRight(cfg.PanelURL, "/")
	cfg.path = path

	return &cfg, nil
}

// Save saves the configuration to the given file path
func (c *Config) Save(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Path returns the file the configuration was loaded from
func (c *Config) Path() string {
	return c.path
}

// Location returns the timezone used to display dates
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// GetGlobalConfigDir returns ~/.subsctl, or $SUBSCTL_HOME when set
func GetGlobalConfigDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "_HOME"); dir != "" {
		return dir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".subsctl"), nil
}

// GetGlobalConfigPath returns the path of the global config file
func GetGlobalConfigPath() (string, error) {
	dir, err := GetGlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadGlobalConfig loads the global configuration file
func LoadGlobalConfig() (*Config, error) {
	path, err := GetGlobalConfigPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// UpdateGlobalConfig applies update to the global configuration file as stored
// on disk and saves it. Environment overrides are never written back.
func UpdateGlobalConfig(update func(cfg *Config) error) error {
	path, err := GetGlobalConfigPath()
	if err != nil {
		return err
	}
	return UpdateFile(path, update)
}

// UpdateFile applies update to the configuration file at path and saves it
func UpdateFile(path string, update func(cfg *Config) error) error {
	cfg, err := LoadFile(path)
	if err != nil {
		return err
	}
	if err := update(cfg); err != nil {
		return err
	}
	return cfg.Save(path)
}
