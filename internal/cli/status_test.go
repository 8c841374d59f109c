package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diegolucasb/lockbox/internal/action"
	"github.com/diegolucasb/lockbox/internal/sensor"
)

func TestStatus_Text(t *testing.T) {
	env := newTestEnv(t, "[security]\nkeyguard_secure = true\n\n[sync]\nschedule = \"@every 1m\"\n")
	seedRecords(t, env, "g1")

	out, err := env.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "config:   "+env.config)
	assert.Contains(t, out, "database: "+env.db+" (schema v1)")
	assert.Contains(t, out, "records:  1")
	assert.Contains(t, out, "device:   secured")
	assert.Contains(t, out, "keyguard=true")
	assert.Contains(t, out, "sync:     @every 1m")
}

func TestStatus_JSON(t *testing.T) {
	env := newTestEnv(t, "[security]\nfingerprint_hardware = true\n\n[sync]\nschedule = \"\"\n")
	seedJournal(t, env, "s1", action.Unlock{})
	seedJournal(t, env, "s2", action.Unlock{})

	out, err := env.run(t, "--format", "json", "status")
	require.NoError(t, err)

	var resp struct {
		Data StatusResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, env.db, resp.Data.Database)
	assert.Equal(t, uint(1), resp.Data.SchemaVersion)
	assert.False(t, resp.Data.SchemaDirty)
	assert.Equal(t, 0, resp.Data.Records)
	assert.Equal(t, 2, resp.Data.Sessions)
	assert.Equal(t, sensor.Readings{FingerprintHardware: true}, resp.Data.Sensors)
	assert.False(t, resp.Data.DeviceSecure, "hardware without enrolled prints is not secure")
	assert.Empty(t, resp.Data.SyncSchedule)
}
