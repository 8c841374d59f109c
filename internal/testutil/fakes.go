package testutil

import (
	"context"
	"sync"

	"github.com/diegolucasb/lockbox/internal/flux"
	"github.com/diegolucasb/lockbox/internal/model"
)

// StaticFingerprint is a fingerprint sensor with fixed readings.
type StaticFingerprint struct {
	Hardware bool
	Enrolled bool
}

// IsHardwareDetected returns f.Hardware.
func (f StaticFingerprint) IsHardwareDetected() bool { return f.Hardware }

// HasEnrolledFingerprints returns f.Enrolled.
func (f StaticFingerprint) HasEnrolledFingerprints() bool { return f.Enrolled }

// StaticKeyguard is a keyguard sensor with a fixed reading.
type StaticKeyguard bool

// IsDeviceSecure returns the reading.
func (k StaticKeyguard) IsDeviceSecure() bool { return bool(k) }

// MemorySource is an in-memory record source.
//
// Set stages records; Refresh publishes the staged list. RefreshErr, when
// set, makes Refresh fail without publishing.
type MemorySource struct {
	mu         sync.Mutex
	staged     []model.ServerPassword
	refreshes  int
	RefreshErr error

	records *flux.Relay[[]model.ServerPassword]
}

// NewMemorySource creates a source staging records.
func NewMemorySource(records ...model.ServerPassword) *MemorySource {
	return &MemorySource{
		staged:  records,
		records: flux.NewRelay[[]model.ServerPassword]("memory.records"),
	}
}

// Records streams published lists.
func (m *MemorySource) Records() flux.Observable[[]model.ServerPassword] {
	return m.records
}

// Set stages records for the next Refresh.
func (m *MemorySource) Set(records ...model.ServerPassword) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staged = records
}

// Publish stages records and publishes them immediately.
func (m *MemorySource) Publish(records ...model.ServerPassword) {
	m.Set(records...)
	m.records.Emit(copyRecords(records))
}

// Refresh publishes the staged list.
func (m *MemorySource) Refresh(ctx context.Context) error {
	m.mu.Lock()
	m.refreshes++
	err := m.RefreshErr
	staged := copyRecords(m.staged)
	m.mu.Unlock()

	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.records.Emit(staged)
	return nil
}

// Refreshes returns how many times Refresh was called.
func (m *MemorySource) Refreshes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshes
}

// Subscribers returns the number of live list subscribers.
func (m *MemorySource) Subscribers() int {
	return m.records.Subscribers()
}

func copyRecords(in []model.ServerPassword) []model.ServerPassword {
	out := make([]model.ServerPassword, len(in))
	copy(out, in)
	return out
}

// Record builds a ServerPassword for tests. An empty username is stored as nil.
func Record(id, hostname, username, password string) model.ServerPassword {
	p := model.ServerPassword{ID: id, Hostname: hostname, Password: password}
	if username != "" {
		p.Username = &username
	}
	return p
}
