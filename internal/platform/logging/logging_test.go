package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", true)

	ctx := WithLogger(context.Background(), logger)
	FromContext(ctx).Info("dropped")
	FromContext(ctx).Warn("kept", slog.String("tenant", "t1"))

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"tenant":"t1"`)
	assert.Equal(t, slog.Default(), FromContext(context.Background()))
}

func TestNewTextOutsideProduction(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", false).Info("sale recorded", slog.String("tenant", "t1"))

	assert.Contains(t, buf.String(), "tenant=t1")
	assert.NotContains(t, buf.String(), "{")
}
