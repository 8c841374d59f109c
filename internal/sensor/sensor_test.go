package sensor

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diegolucasb/lockbox/internal/config"
	"github.com/diegolucasb/lockbox/internal/store"
)

func TestConfig_ReloadPicksUpValues(t *testing.T) {
	v := viper.New()
	s := NewConfig(v)

	assert.Equal(t, Readings{}, s.Read())

	v.Set(config.KeyKeyguardSecure, true)
	assert.False(t, s.IsDeviceSecure(), "readings are a snapshot")
	s.Reload()
	assert.True(t, s.IsDeviceSecure())

	v.Set(config.KeyFingerprintHardware, true)
	v.Set(config.KeyFingerprintEnrolled, true)
	s.Reload()
	assert.Equal(t, Readings{true, true, true}, s.Read())
}

func TestConfig_NilViperReadsFalse(t *testing.T) {
	s := NewConfig(nil)
	assert.False(t, s.IsHardwareDetected())
	assert.False(t, s.HasEnrolledFingerprints())
	assert.False(t, s.IsDeviceSecure())

	s.Reload()
	assert.Equal(t, Readings{}, s.Read())
}

func TestConfig_ReloadNotifiesWatchers(t *testing.T) {
	v := viper.New()
	s := NewConfig(v)

	var calls int
	s.Watch(func() { calls++ })
	s.Watch(func() { calls++ })

	v.Set(config.KeyKeyguardSecure, true)
	s.Reload()
	assert.Equal(t, 2, calls)
}

func TestConfig_DrivesFingerprintStore(t *testing.T) {
	v := viper.New()
	s := NewConfig(v)
	fs := store.NewFingerprintStore(s, s)

	assert.False(t, fs.IsDeviceSecure())

	v.Set(config.KeyFingerprintHardware, true)
	s.Reload()
	assert.False(t, fs.IsDeviceSecure(), "hardware without enrollment is not secure")

	v.Set(config.KeyFingerprintEnrolled, true)
	s.Reload()
	assert.True(t, fs.IsDeviceSecure())
}

func TestConfig_FileEditsWhileQuerying(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	write := func(secure bool) {
		body := "[security]\nkeyguard_secure = false\n"
		if secure {
			body = "[security]\nkeyguard_secure = true\n"
		}
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	write(false)

	_, v, err := config.Load(path)
	require.NoError(t, err)

	s := NewConfig(v)
	fs := store.NewFingerprintStore(s, s)
	var notified atomic.Int32
	s.Watch(func() {
		notified.Add(1)
		fs.Reevaluate()
	})

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					_ = s.Read()
					_ = fs.IsDeviceSecure()
				}
			}
		}()
	}

	write(true)
	require.Eventually(t, func() bool {
		secure, _ := fs.Secure().Value()
		return secure
	}, 5*time.Second, 10*time.Millisecond)
	close(stop)
	wg.Wait()

	assert.True(t, s.IsDeviceSecure())
	assert.Positive(t, notified.Load())
}
