package logger

import (
	"os"
	"path/filepath"
	"testing"

	"tradelog/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tradelog.log")

	log, err := New(config.LogConfig{Level: "info", Format: "json", OutputFile: path})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("PRICE:  35612.34  TIME:  2021-06-06 05:37:01.586")
	_ = log.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "35612.34")
	assert.NotContains(t, string(b), "hidden")
}
