package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	log, err := New(Config{Level: "debug", Encoding: "json", OutputPaths: []string{path}})
	require.NoError(t, err)
	log.Debug("stage done")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"stage done"`)
	assert.Contains(t, string(data), `"level":"debug"`)
}

func TestNewLevelFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	log, err := New(Config{Level: "warn", Encoding: "json", OutputPaths: []string{path}})
	require.NoError(t, err)
	log.Info("hidden")
	log.Warn("shown")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	log, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.NotNil(t, log)
}
