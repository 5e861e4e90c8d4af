package app

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerSelectsHandlerByFormat(t *testing.T) {
	jsonLogger := NewLogger(&Config{LogFormat: "json"})
	_, ok := jsonLogger.Handler().(*slog.JSONHandler)
	require.True(t, ok)

	prettyLogger := NewLogger(&Config{LogFormat: "pretty"})
	_, ok = prettyLogger.Handler().(*slog.TextHandler)
	require.True(t, ok)

	// unknown formats fall back to text
	fallback := NewLogger(&Config{LogFormat: "xml"})
	_, ok = fallback.Handler().(*slog.TextHandler)
	require.True(t, ok)
}

func TestNewLoggerHonorsLevel(t *testing.T) {
	ctx := context.Background()

	warnLogger := NewLogger(&Config{LogFormat: "pretty", LogLevel: "warn"})
	assert.False(t, warnLogger.Enabled(ctx, slog.LevelInfo))
	assert.True(t, warnLogger.Enabled(ctx, slog.LevelWarn))

	// unset or unknown levels default to info
	defaultLogger := NewLogger(&Config{LogFormat: "pretty"})
	assert.False(t, defaultLogger.Enabled(ctx, slog.LevelDebug))
	assert.True(t, defaultLogger.Enabled(ctx, slog.LevelInfo))
}
