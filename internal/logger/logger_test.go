package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiHandler_FansOut(t *testing.T) {
	var first, second bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&first, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&second, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	log := slog.New(h).With("session.id", "s1")

	log.Debug("selecting move")
	log.Warn("slow move")

	assert.Contains(t, first.String(), "selecting move")
	assert.Contains(t, first.String(), "slow move")
	assert.NotContains(t, second.String(), "selecting move")
	assert.Contains(t, second.String(), "slow move")
	assert.Contains(t, second.String(), "session.id=s1")
}

func TestMultiHandler_Enabled(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}))

	assert.False(t, h.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, h.Enabled(t.Context(), slog.LevelError))
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo)

	log.Debug("hidden")
	log.Info("shown", "position", 4)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "position=4")
}
