package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, Level("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, Level("warn"))
	assert.Equal(t, zerolog.ErrorLevel, Level(LOG_LEVEL_ERROR))
	assert.Equal(t, zerolog.InfoLevel, Level("verbose"))
}

func TestNewLoggerLevelFromEnv(t *testing.T) {
	t.Setenv(LOG_LEVEL_ENV, LOG_LEVEL_ERROR)
	logger := NewLogger("test")
	assert.Equal(t, zerolog.ErrorLevel, logger.GetLevel())
}
