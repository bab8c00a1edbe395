package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerDefaults(t *testing.T) {
	log, err := NewLogger()
	require.NoError(t, err)
	require.NotNil(t, log)

	log.Info("startup", String("component", "test"))
	log.Sync()
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	_, err := NewLogger(WithLevel("loud"))
	assert.Error(t, err)
}

func TestTestLoggerCapturesEntries(t *testing.T) {
	log := NewTestLogger()
	log.Info("first", Int("n", 1))
	log.Warn("second")

	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "INFO", entries[0].Level)
	assert.Equal(t, "first", entries[0].Message)
	assert.Equal(t, "WARN", entries[1].Level)

	log.Clear()
	assert.Empty(t, log.Entries())
}
