package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Logging.MaxSize != "5MB" {
		t.Errorf("Logging.MaxSize = %q, want 5MB", cfg.Logging.MaxSize)
	}
	if cfg.HandleTTL() != 5*time.Second {
		t.Errorf("HandleTTL() = %v, want 5s", cfg.HandleTTL())
	}
	if cfg.Changelog.DefaultFile != "CHANGELOG.md" {
		t.Errorf("Changelog.DefaultFile = %q, want CHANGELOG.md", cfg.Changelog.DefaultFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Store.BusyTimeoutMs != 5000 {
		t.Errorf("BusyTimeoutMs = %d, want 5000", cfg.Store.BusyTimeoutMs)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[logging]
level = "debug"

[store]
handle_ttl = "2s"

[changelog]
default_file = "docs/CHANGES.md"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.HandleTTL() != 2*time.Second {
		t.Errorf("HandleTTL() = %v, want 2s", cfg.HandleTTL())
	}
	if cfg.Changelog.DefaultFile != "docs/CHANGES.md" {
		t.Errorf("DefaultFile = %q", cfg.Changelog.DefaultFile)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Backup.Keep != 5 {
		t.Errorf("Backup.Keep = %d, want 5", cfg.Backup.Keep)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("OPS_LOGGING_LEVEL", "warn")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[store]\nhandle_ttl = \"soon\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(path)
	cfgErr, ok := err.(*ConfigError)
	if !ok {
		t.Fatalf("err = %v, want *ConfigError", err)
	}
	if cfgErr.Field != "store.handle_ttl" {
		t.Errorf("Field = %q, want store.handle_ttl", cfgErr.Field)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := DefaultConfig()
	cfg.Backup.Keep = 9

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Backup.Keep != 9 {
		t.Errorf("Backup.Keep = %d, want 9", loaded.Backup.Keep)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"negative busy timeout", func(c *Config) { c.Store.BusyTimeoutMs = -1 }, "store.busy_timeout_ms"},
		{"empty changelog file", func(c *Config) { c.Changelog.DefaultFile = " " }, "changelog.default_file"},
		{"keep zero", func(c *Config) { c.Backup.Keep = 0 }, "backup.keep"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			cfgErr, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}
