package store

import (
	"sync"

	"github.com/diegolucasb/lockbox/internal/flux"
)

// FingerprintSensor reports biometric capability.
type FingerprintSensor interface {
	IsHardwareDetected() bool
	HasEnrolledFingerprints() bool
}

// KeyguardSensor reports whether a screen lock is configured.
type KeyguardSensor interface {
	IsDeviceSecure() bool
}

// DeviceSecure combines the sensor readings.
func DeviceSecure(hardwareDetected, enrolled, keyguardSecure bool) bool {
	return (hardwareDetected && enrolled) || keyguardSecure
}

// FingerprintStore answers whether the device is secured.
//
// The answer is recomputed from the sensors on every query. A nil sensor
// reads as false.
type FingerprintStore struct {
	mu          sync.RWMutex
	fingerprint FingerprintSensor
	keyguard    KeyguardSensor
	secure      *flux.Relay[bool]
}

// NewFingerprintStore creates a store over the given sensors.
func NewFingerprintStore(fp FingerprintSensor, kg KeyguardSensor) *FingerprintStore {
	s := &FingerprintStore{fingerprint: fp, keyguard: kg}
	s.secure = flux.NewRelayWith("security.secure", s.IsDeviceSecure())
	return s
}

// Apply replaces the sensors and publishes the new status.
func (s *FingerprintStore) Apply(fp FingerprintSensor, kg KeyguardSensor) {
	s.mu.Lock()
	s.fingerprint = fp
	s.keyguard = kg
	s.mu.Unlock()
	s.Reevaluate()
}

// Reevaluate publishes the current status. Call it when sensor readings may
// have changed underneath the store.
func (s *FingerprintStore) Reevaluate() {
	s.secure.Emit(s.IsDeviceSecure())
}

// IsDeviceSecure queries the sensors.
func (s *FingerprintStore) IsDeviceSecure() bool {
	s.mu.RLock()
	fp, kg := s.fingerprint, s.keyguard
	s.mu.RUnlock()

	var hw, enrolled, keyguard bool
	if fp != nil {
		hw = fp.IsHardwareDetected()
		enrolled = fp.HasEnrolledFingerprints()
	}
	if kg != nil {
		keyguard = kg.IsDeviceSecure()
	}
	return DeviceSecure(hw, enrolled, keyguard)
}

// Secure streams the last published status.
func (s *FingerprintStore) Secure() *flux.Relay[bool] {
	return s.secure
}
