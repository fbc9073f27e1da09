package logger

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestZerolog() (zerolog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return zerolog.New(&buf).With().Timestamp().Logger(), &buf
}

func TestNewZerologLogger(t *testing.T) {
	zerologLogger, buf := setupTestZerolog()

	config := Config{
		LogLevel:      Info,
		SlowThreshold: 100 * time.Millisecond,
	}

	zerologAdapter := NewZerologLogger(zerologLogger, config)

	require.NotNil(t, zerologAdapter)
	assert.Equal(t, Info, zerologAdapter.(*ZerologLogger).LogLevel)
	assert.Equal(t, 100*time.Millisecond, zerologAdapter.(*ZerologLogger).SlowThreshold)
	require.NotNil(t, buf)
}

func TestZerologLogger_LogMode(t *testing.T) {
	zerologLogger, _ := setupTestZerolog()

	logger := NewZerologLogger(zerologLogger, Config{
		LogLevel: Error,
	})

	infoLogger := logger.LogMode(Info)
	assert.Equal(t, Info, infoLogger.(*ZerologLogger).LogLevel)

	// the original is not affected
	assert.Equal(t, Error, logger.(*ZerologLogger).LogLevel)
}

func TestZerologLogger_LogLevels(t *testing.T) {
	ctx := context.Background()
	zerologLogger, buf := setupTestZerolog()

	logger := NewZerologLogger(zerologLogger, Config{LogLevel: Warn})

	logger.Info(ctx, "below threshold")
	assert.Empty(t, buf.String())

	logger.Warn(ctx, "at threshold")
	assert.Contains(t, buf.String(), "at threshold")

	buf.Reset()
	logger.Error(ctx, "above threshold")
	assert.Contains(t, buf.String(), "above threshold")
}

func TestZerologLogger_Trace(t *testing.T) {
	ctx := context.Background()
	zerologLogger, buf := setupTestZerolog()

	logger := NewZerologLogger(zerologLogger, Config{LogLevel: Info})

	logger.Trace(ctx, time.Now(), func() (string, int64) {
		return "SELECT COUNT(*) FROM account WHERE id = 5", 1
	}, nil)

	out := buf.String()
	assert.Contains(t, out, "SQL executed")
	assert.Contains(t, out, "SELECT COUNT")
	assert.Contains(t, out, `"rows":1`)
}

func TestZerologLogger_TraceIgnoresRecordNotFound(t *testing.T) {
	ctx := context.Background()
	zerologLogger, buf := setupTestZerolog()

	logger := NewZerologLogger(zerologLogger, Config{
		LogLevel:                  Error,
		IgnoreRecordNotFoundError: true,
	})

	logger.Trace(ctx, time.Now(), func() (string, int64) {
		return "SELECT * FROM account WHERE id = 99", 0
	}, ErrRecordNotFound)

	assert.Empty(t, buf.String())
}

func TestZerologLevel(t *testing.T) {
	assert.Equal(t, zerolog.NoLevel, ZerologLevel(Silent))
	assert.Equal(t, zerolog.ErrorLevel, ZerologLevel(Error))
	assert.Equal(t, zerolog.WarnLevel, ZerologLevel(Warn))
	assert.Equal(t, zerolog.InfoLevel, ZerologLevel(Info))
}
