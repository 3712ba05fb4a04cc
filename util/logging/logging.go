package logging

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

const (
	LOG_LEVEL_DEBUG = "DEBUG"
	LOG_LEVEL_INFO  = "INFO"
	LOG_LEVEL_WARN  = "WARN"
	LOG_LEVEL_ERROR = "ERROR"

	LOG_LEVEL_ENV = "DEPTRAIN_LOGLEVEL"
)

func SetupLogging() {
	zerolog.LevelFieldName = "level_name"
	zerolog.TimestampFieldName = "timestamp"
}

// Level parses a level name, defaulting to info.
func Level(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case LOG_LEVEL_DEBUG:
		return zerolog.DebugLevel
	case LOG_LEVEL_WARN:
		return zerolog.WarnLevel
	case LOG_LEVEL_ERROR:
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}

// NewLogger returns a stderr logger tagged with component. The level comes
// from DEPTRAIN_LOGLEVEL; a terminal gets the console writer.
func NewLogger(component string) zerolog.Logger {
	level, ok := os.LookupEnv(LOG_LEVEL_ENV)
	if !ok {
		level = LOG_LEVEL_INFO
	}

	var logger zerolog.Logger
	if isatty.IsTerminal(os.Stderr.Fd()) {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.
		With().
		Str("component", component).
		Timestamp().
		Logger().
		Level(Level(level))
}
