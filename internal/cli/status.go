package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/diegolucasb/lockbox/internal/sensor"
	"github.com/diegolucasb/lockbox/internal/storage"
	"github.com/diegolucasb/lockbox/internal/store"
)

// StatusResult describes the local installation.
type StatusResult struct {
	ConfigFile    string          `json:"config_file,omitempty"`
	Database      string          `json:"database"`
	SchemaVersion uint            `json:"schema_version"`
	SchemaDirty   bool            `json:"schema_dirty"`
	Records       int             `json:"records"`
	Sessions      int             `json:"sessions"`
	Sensors       sensor.Readings `json:"sensors"`
	DeviceSecure  bool            `json:"device_secure"`
	SyncSchedule  string          `json:"sync_schedule,omitempty"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration, storage and device security",
		Long: `Show the resolved configuration, the database schema version, record
and session counts, and whether the device counts as secured.

A device is secured when fingerprint hardware is present with at least one
enrolled fingerprint, or when the keyguard is secure.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd)
		},
	}
	return cmd
}

func runStatus(opts *RootOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	out := opts.formatter(cmd)

	cfg, v, err := opts.loadConfig()
	if err != nil {
		return err
	}
	st, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	version, dirty, err := st.SchemaVersion()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read schema version", err)
	}
	records, err := storage.NewRecords(st).List(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list records", err)
	}
	sessions, err := storage.Sessions(ctx, st)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	sensors := sensor.NewConfig(v)
	security := store.NewFingerprintStore(sensors, sensors)

	result := StatusResult{
		ConfigFile:    v.ConfigFileUsed(),
		Database:      cfg.Database.Path,
		SchemaVersion: version,
		SchemaDirty:   dirty,
		Records:       len(records),
		Sessions:      len(sessions),
		Sensors:       sensors.Read(),
		DeviceSecure:  security.IsDeviceSecure(),
		SyncSchedule:  cfg.Sync.Schedule,
	}

	if out.IsJSON() {
		return out.Success(result)
	}

	configFile := result.ConfigFile
	if configFile == "" {
		configFile = "(defaults)"
	}
	secured := "not secured"
	if result.DeviceSecure {
		secured = "secured"
	}
	schedule := result.SyncSchedule
	if schedule == "" {
		schedule = "off"
	}

	out.Printf("config:   %s", configFile)
	out.Printf("database: %s (schema v%d)", result.Database, result.SchemaVersion)
	out.Printf("records:  %d", result.Records)
	out.Printf("sessions: %d", result.Sessions)
	out.Printf("device:   %s (fingerprint hardware=%t enrolled=%t, keyguard=%t)", secured,
		result.Sensors.FingerprintHardware, result.Sensors.FingerprintEnrolled, result.Sensors.KeyguardSecure)
	out.Printf("sync:     %s", schedule)
	if result.SchemaDirty {
		out.Printf("warning: schema migration is dirty")
	}
	return nil
}
