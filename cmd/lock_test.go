package cmd

import (
	"os"
	"runtime"
	"testing"

	"github.com/niteshrghv/indm/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireLock(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("config dir override relies on XDG_CONFIG_HOME")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	locked, err := AcquireLock()
	require.NoError(t, err)
	assert.True(t, locked, "first acquisition should succeed")

	err = ReleaseLock()
	assert.NoError(t, err)

	_, err = os.Stat(config.LockPath())
	assert.NoError(t, err, "lock file should exist")
}
