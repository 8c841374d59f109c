// Package sensor reads device security state from configuration.
//
// Readings are a snapshot of viper taken at construction and on Reload.
// Watch reloads the snapshot whenever the config file changes, so queries
// never touch viper while its watcher rewrites it.
package sensor

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/diegolucasb/lockbox/internal/config"
)

// Readings is a snapshot of the three sensor values.
type Readings struct {
	FingerprintHardware bool `json:"fingerprint_hardware"`
	FingerprintEnrolled bool `json:"fingerprint_enrolled"`
	KeyguardSecure      bool `json:"keyguard_secure"`
}

// Config is a fingerprint and keyguard sensor backed by viper.
type Config struct {
	v        *viper.Viper
	readings atomic.Pointer[Readings]

	mu       sync.Mutex // serializes reads of v
	watchers []func()
}

// NewConfig creates sensors over v. A nil v reads every sensor as false.
func NewConfig(v *viper.Viper) *Config {
	c := &Config{v: v}
	c.load()
	return c
}

// IsHardwareDetected reports security.fingerprint_hardware.
func (c *Config) IsHardwareDetected() bool {
	return c.Read().FingerprintHardware
}

// HasEnrolledFingerprints reports security.fingerprint_enrolled.
func (c *Config) HasEnrolledFingerprints() bool {
	return c.Read().FingerprintEnrolled
}

// IsDeviceSecure reports security.keyguard_secure.
func (c *Config) IsDeviceSecure() bool {
	return c.Read().KeyguardSecure
}

// Read returns the current readings.
func (c *Config) Read() Readings {
	return *c.readings.Load()
}

// Reload re-reads viper and notifies watchers.
func (c *Config) Reload() {
	c.load()

	c.mu.Lock()
	watchers := append([]func(){}, c.watchers...)
	c.mu.Unlock()

	for _, fn := range watchers {
		fn()
	}
}

// Watch calls onChange after each reload. The config file is watched from
// the first call on; without a config file only explicit Reload calls
// notify.
func (c *Config) Watch(onChange func()) {
	c.mu.Lock()
	c.watchers = append(c.watchers, onChange)
	first := len(c.watchers) == 1
	c.mu.Unlock()

	if !first || c.v == nil || c.v.ConfigFileUsed() == "" {
		return
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		slog.Debug("config changed", "file", e.Name, "op", e.Op.String())
		c.Reload()
	})
	c.v.WatchConfig()
}

func (c *Config) load() {
	r := &Readings{}
	if c.v != nil {
		c.mu.Lock()
		r.FingerprintHardware = c.v.GetBool(config.KeyFingerprintHardware)
		r.FingerprintEnrolled = c.v.GetBool(config.KeyFingerprintEnrolled)
		r.KeyguardSecure = c.v.GetBool(config.KeyKeyguardSecure)
		c.mu.Unlock()
	}
	c.readings.Store(r)
}
