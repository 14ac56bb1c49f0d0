package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. OPS_LOGGING_LEVEL.
const EnvPrefix = "OPS"

// Config represents the pluginops configuration
type Config struct {
	Logging   LoggingConfig   `toml:"logging" mapstructure:"logging" json:"logging"`
	Store     StoreConfig     `toml:"store" mapstructure:"store" json:"store"`
	Changelog ChangelogConfig `toml:"changelog" mapstructure:"changelog" json:"changelog"`
	Backup    BackupConfig    `toml:"backup" mapstructure:"backup" json:"backup"`
}

// LoggingConfig contains log file settings
type LoggingConfig struct {
	Level   string `toml:"level" mapstructure:"level" json:"level"`
	MaxSize string `toml:"max_size" mapstructure:"max_size" json:"max_size"` // e.g. "5MB"
}

// StoreConfig contains store handle settings
type StoreConfig struct {
	HandleTTL     string `toml:"handle_ttl" mapstructure:"handle_ttl" json:"handle_ttl"` // e.g. "5s"
	BusyTimeoutMs int    `toml:"busy_timeout_ms" mapstructure:"busy_timeout_ms" json:"busy_timeout_ms"`
}

// ChangelogConfig contains changelog export settings
type ChangelogConfig struct {
	DefaultFile string `toml:"default_file" mapstructure:"default_file" json:"default_file"`
}

// BackupConfig contains snapshot settings
type BackupConfig struct {
	Dir  string `toml:"dir" mapstructure:"dir" json:"dir"` // relative to the data directory unless absolute
	Keep int    `toml:"keep" mapstructure:"keep" json:"keep"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			MaxSize: "5MB",
		},
		Store: StoreConfig{
			HandleTTL:     "5s",
			BusyTimeoutMs: 5000,
		},
		Changelog: ChangelogConfig{
			DefaultFile: "CHANGELOG.md",
		},
		Backup: BackupConfig{
			Dir:  "backups",
			Keep: 5,
		},
	}
}

// LoadConfig loads configuration from path (TOML). A missing file yields the
// defaults; OPS_* environment variables override both.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		// SetConfigFile bypasses the search path, so a missing file surfaces as a
		// plain os error rather than viper.ConfigFileNotFoundError.
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.max_size", d.Logging.MaxSize)
	v.SetDefault("store.handle_ttl", d.Store.HandleTTL)
	v.SetDefault("store.busy_timeout_ms", d.Store.BusyTimeoutMs)
	v.SetDefault("changelog.default_file", d.Changelog.DefaultFile)
	v.SetDefault("backup.dir", d.Backup.Dir)
	v.SetDefault("backup.keep", d.Backup.Keep)
}

// Save writes the configuration to path as TOML
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	enc.Indent = ""
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// HandleTTL returns the parsed store handle lifetime.
func (c *Config) HandleTTL() time.Duration {
	d, err := time.ParseDuration(c.Store.HandleTTL)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ConfigError{Field: "logging.level", Message: "must be one of debug, info, warn, error"}
	}

	if d, err := time.ParseDuration(c.Store.HandleTTL); err != nil || d <= 0 {
		return &ConfigError{Field: "store.handle_ttl", Message: "must be a positive duration such as 5s"}
	}

	if c.Store.BusyTimeoutMs < 0 {
		return &ConfigError{Field: "store.busy_timeout_ms", Message: "must not be negative"}
	}

	if strings.TrimSpace(c.Changelog.DefaultFile) == "" {
		return &ConfigError{Field: "changelog.default_file", Message: "must not be empty"}
	}

	if c.Backup.Keep < 1 {
		return &ConfigError{Field: "backup.keep", Message: "must be at least 1"}
	}

	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
