// Package app is the composition root: it builds the process-wide
// dispatcher and stores once and wires storage, sensors, metrics and the
// sync schedule around them.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/diegolucasb/lockbox/internal/action"
	"github.com/diegolucasb/lockbox/internal/config"
	"github.com/diegolucasb/lockbox/internal/flux"
	"github.com/diegolucasb/lockbox/internal/metrics"
	"github.com/diegolucasb/lockbox/internal/sensor"
	"github.com/diegolucasb/lockbox/internal/storage"
	"github.com/diegolucasb/lockbox/internal/store"
)

// SessionGenerator produces journal session ids.
type SessionGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable session ids.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Options configures New. Zero values select production defaults.
type Options struct {
	Config   config.Config
	Viper    *viper.Viper
	Logger   *slog.Logger
	Sessions SessionGenerator
	Clock    flux.Sequencer
	Metrics  *metrics.Collector
}

// App holds the singletons of one process.
type App struct {
	Session    string
	Storage    *storage.Store
	Records    *storage.Records
	Journal    *storage.Journal
	Dispatcher *flux.Dispatcher
	Data       *store.DataStore
	Sensors    *sensor.Config
	Security   *store.FingerprintStore
	Routes     *store.RouteStore
	Metrics    *metrics.Collector

	logger *slog.Logger
	cron   *cron.Cron
}

// New opens storage and builds the dispatcher and stores.
func New(opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = UUIDv7Generator{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = flux.NewClock()
	}
	collector := opts.Metrics
	if collector == nil {
		collector = metrics.NewCollector("")
	}

	cfg := opts.Config
	if dir := filepath.Dir(cfg.Database.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	st, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	a := &App{
		Session: sessions.Generate(),
		Storage: st,
		Records: storage.NewRecords(st),
		Metrics: collector,
		logger:  logger,
	}
	a.logger = logger.With("session", a.Session)

	a.Journal = storage.NewJournal(st, a.Session, storage.WithJournalLogger(a.logger))
	a.Dispatcher = flux.NewDispatcher(
		flux.WithHook(a.Journal),
		flux.WithHook(collector),
		flux.WithLogger(a.logger),
		flux.WithClock(clock),
	)

	var dataOpts []store.DataStoreOption
	dataOpts = append(dataOpts, store.WithDataLogger(a.logger))
	if cfg.Sync.Timeout > 0 {
		dataOpts = append(dataOpts, store.WithRefreshTimeout(cfg.Sync.Timeout))
	}
	a.Data = store.NewDataStore(a.Dispatcher, a.Records, dataOpts...)
	a.Data.State().Subscribe(func(s store.State) { collector.RecordDataState(int(s)) })

	a.Sensors = sensor.NewConfig(opts.Viper)
	a.Security = store.NewFingerprintStore(a.Sensors, a.Sensors)
	a.Sensors.Watch(a.Security.Reevaluate)
	a.Security.Secure().Subscribe(collector.RecordDeviceSecure)

	a.Routes = store.NewRouteStore(a.Dispatcher)

	if cfg.Sync.Schedule != "" {
		a.cron = cron.New()
		if _, err := a.cron.AddFunc(cfg.Sync.Schedule, a.ScheduledSync); err != nil {
			a.Close()
			return nil, fmt.Errorf("invalid sync schedule %q: %w", cfg.Sync.Schedule, err)
		}
	}

	a.logger.Info("app ready", "db", cfg.Database.Path, "sync_schedule", cfg.Sync.Schedule)
	return a, nil
}

// Start begins the sync schedule.
func (a *App) Start() {
	if a.cron != nil {
		a.cron.Start()
	}
}

// ScheduledSync dispatches Sync unless the data store is locked.
func (a *App) ScheduledSync() {
	if a.Data.Current() == store.StateLocked {
		a.Metrics.RecordScheduledSync(true)
		a.logger.Debug("scheduled sync skipped while locked")
		return
	}
	a.Metrics.RecordScheduledSync(false)
	a.Dispatcher.Dispatch(action.Sync{})
}

// Close stops the schedule, detaches the stores and closes storage.
func (a *App) Close() error {
	if a.cron != nil {
		ctx := a.cron.Stop()
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
			a.logger.Warn("scheduled sync still running at shutdown")
		}
	}
	if a.Routes != nil {
		a.Routes.Close()
	}
	if a.Data != nil {
		a.Data.Close()
	}
	if a.Dispatcher != nil {
		a.Dispatcher.Close()
	}
	return a.Storage.Close()
}
