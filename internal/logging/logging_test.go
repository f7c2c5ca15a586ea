package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "qdeck.log")
	log, closer, err := New(Options{Level: "info", File: path})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("run finished", zap.Int("qubits", 3))
	require.NoError(t, log.Sync())
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "run finished")
	assert.Contains(t, out, `"qubits": 3`)
	assert.False(t, strings.Contains(out, "hidden"))
}

func TestBadLevel(t *testing.T) {
	_, _, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestStderrSink(t *testing.T) {
	log, closer, err := New(Options{Level: "debug"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))
	assert.NoError(t, closer.Close())
}
