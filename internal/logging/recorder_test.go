package logging

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(r *Recorder) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.DebugLevel)
	logger.AddHook(r)
	return logger
}

func TestRecorderCapturesEntries(t *testing.T) {
	rec := NewRecorder(10)
	logger := newTestLogger(rec)

	logger.WithField("component", "mailbox").WithField("folder", "INBOX").Info("Synced folders")

	entries := rec.Entries(0, "")
	require.Len(t, entries, 1)
	assert.Equal(t, "info", entries[0].Level)
	assert.Equal(t, "mailbox", entries[0].Component)
	assert.Equal(t, "Synced folders", entries[0].Message)
	assert.Equal(t, "INBOX", entries[0].Fields["folder"])
	assert.False(t, entries[0].Time.IsZero())
}

func TestRecorderEvictsOldest(t *testing.T) {
	rec := NewRecorder(3)
	logger := newTestLogger(rec)

	for i := 0; i < 5; i++ {
		logger.WithField("i", i).Info("entry")
	}

	entries := rec.Entries(0, "")
	require.Len(t, entries, 3)
	assert.Equal(t, 2, entries[0].Fields["i"])
	assert.Equal(t, 4, entries[2].Fields["i"])
	assert.Equal(t, 3, rec.Len())
}

func TestRecorderLevelFilter(t *testing.T) {
	rec := NewRecorder(10)
	logger := newTestLogger(rec)

	logger.Debug("noise")
	logger.Info("routine")
	logger.Warn("trouble")
	logger.Error("failure")

	entries := rec.Entries(0, "warning")
	require.Len(t, entries, 2)
	assert.Equal(t, "warning", entries[0].Level)
	assert.Equal(t, "error", entries[1].Level)

	// Unknown level falls back to everything.
	assert.Len(t, rec.Entries(0, "bogus"), 4)
}

func TestRecorderLimitKeepsNewest(t *testing.T) {
	rec := NewRecorder(10)
	logger := newTestLogger(rec)

	for i := 0; i < 5; i++ {
		logger.WithField("i", i).Info("entry")
	}

	entries := rec.Entries(2, "")
	require.Len(t, entries, 2)
	assert.Equal(t, 3, entries[0].Fields["i"])
	assert.Equal(t, 4, entries[1].Fields["i"])
}

func TestRecorderClear(t *testing.T) {
	rec := NewRecorder(10)
	logger := newTestLogger(rec)

	logger.Info("entry")
	require.Equal(t, 1, rec.Len())

	rec.Clear()
	assert.Zero(t, rec.Len())
	assert.Empty(t, rec.Entries(0, ""))
}
