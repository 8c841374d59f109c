package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	runCmd, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)

	addr := runCmd.Flags().Lookup("metrics-addr")
	require.NotNil(t, addr)
	assert.Equal(t, "", addr.DefValue)
}

func TestRun_RejectsArgs(t *testing.T) {
	env := newTestEnv(t, "")
	_, err := env.run(t, "run", "extra")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestRun_InvalidLogLevel(t *testing.T) {
	t.Setenv("LOCKBOX_LOG_LEVEL", "loud")
	env := newTestEnv(t, "")

	_, err := env.run(t, "run")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid log settings")
}

func TestOpenLogFile(t *testing.T) {
	w, closeFn, err := openLogFile("")
	require.NoError(t, err)
	closeFn()
	assert.NotNil(t, w)

	path := filepath.Join(t.TempDir(), "logs", "lockbox.log")
	w, closeFn, err = openLogFile(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("line\n"))
	require.NoError(t, err)
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(data))
}
