// Package config loads lockbox settings from a TOML file and LOCKBOX_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Security SecurityConfig `mapstructure:"security"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug|info|warn|error
	Format string `mapstructure:"format"` // text|json
	File   string `mapstructure:"file"`   // used by the terminal UI
}

// SecurityConfig holds the sensor readings.
type SecurityConfig struct {
	FingerprintHardware bool `mapstructure:"fingerprint_hardware"`
	FingerprintEnrolled bool `mapstructure:"fingerprint_enrolled"`
	KeyguardSecure      bool `mapstructure:"keyguard_secure"`
}

// SyncConfig holds periodic sync settings.
type SyncConfig struct {
	Schedule string        `mapstructure:"schedule"` // cron spec; empty disables
	Timeout  time.Duration `mapstructure:"timeout"`
}

// MetricsConfig holds the prometheus endpoint settings.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"` // empty disables
}

// Keys read live by the sensors.
const (
	KeyFingerprintHardware = "security.fingerprint_hardware"
	KeyFingerprintEnrolled = "security.fingerprint_enrolled"
	KeyKeyguardSecure      = "security.keyguard_secure"
)

// DefaultDir returns ~/.config/lockbox.
func DefaultDir() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "lockbox")
}

// New builds a viper instance with defaults and sources configured.
// path overrides $LOCKBOX_CONFIG; both empty means
// ~/.config/lockbox/config.toml if present.
func New(path string) *viper.Viper {
	v := viper.New()

	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "lockbox", "lockbox.db"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", filepath.Join(os.TempDir(), "lockbox.log"))
	v.SetDefault(KeyFingerprintHardware, false)
	v.SetDefault(KeyFingerprintEnrolled, false)
	v.SetDefault(KeyKeyguardSecure, false)
	v.SetDefault("sync.schedule", "@every 5m")
	v.SetDefault("sync.timeout", "10s")
	v.SetDefault("metrics.addr", "")

	v.SetConfigType("toml")

	if path = resolvePath(path); path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(DefaultDir())
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("LOCKBOX")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return v
}

// Load reads configuration. A missing default config file is not an error;
// a missing or malformed explicit one is.
func Load(path string) (Config, *viper.Viper, error) {
	if explicit := resolvePath(path); explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return Config{}, nil, fmt.Errorf("read config: %w", err)
		}
	}

	v := New(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, nil, fmt.Errorf("read config: %w", err)
		}
	}

	c, err := Decode(v)
	if err != nil {
		return Config{}, nil, err
	}
	return c, v, nil
}

// Decode unmarshals the current values of v.
func Decode(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

func resolvePath(path string) string {
	if path != "" {
		return path
	}
	return os.Getenv("LOCKBOX_CONFIG")
}
