package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_Levels(t *testing.T) {
	t.Cleanup(func() { Logger = nil })

	InitLogger("debug", "json")
	require.NotNil(t, Logger)
	assert.True(t, Logger.Enabled(context.Background(), slog.LevelDebug))

	InitLogger("error", "text")
	assert.False(t, Logger.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, Logger.Enabled(context.Background(), slog.LevelError))

	// Unknown level falls back to info
	InitLogger("bogus", "text")
	assert.False(t, Logger.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, Logger.Enabled(context.Background(), slog.LevelInfo))
}

func TestContextHelpers(t *testing.T) {
	t.Cleanup(func() { Logger = nil })
	InitLogger("info", "text")

	assert.NotNil(t, WithConn("abc-123"))
	assert.NotNil(t, WithWorker(3))
	assert.NotNil(t, WithError(assert.AnError))
}

func TestContextHelpersBeforeInit(t *testing.T) {
	Logger = nil

	// Helpers must stay usable before InitLogger runs, e.g. in tests that
	// exercise the pipeline without the main wiring.
	assert.NotNil(t, WithConn("abc-123"))
	assert.NotNil(t, WithWorker(3))
	assert.NotNil(t, WithError(assert.AnError))
}
