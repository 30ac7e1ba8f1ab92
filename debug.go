package tether

import (
	"os"

	"github.com/rs/zerolog"
)

// logger is shared by every controller in the package. tether runs on one
// event loop, so it is replaced only through SetLogger/SetDebugMode.
var logger = newDefaultLogger()

// baseLevel is the level debug mode restores when it is turned off.
var baseLevel = zerolog.WarnLevel

func newDefaultLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Str("component", "tether").Logger().
		Level(zerolog.WarnLevel)
}

// SetLogger replaces the package logger. Its level is kept when debug mode
// is later turned off.
func SetLogger(l zerolog.Logger) {
	logger = l
	baseLevel = l.GetLevel()
}

// Logger returns the package logger.
func Logger() zerolog.Logger {
	return logger
}

// setDebugLogging lowers the package log level to debug, or restores the
// level of the installed logger.
func setDebugLogging(enabled bool) {
	if enabled {
		if baseLevel > zerolog.DebugLevel {
			logger = logger.Level(zerolog.DebugLevel)
		}
		return
	}
	logger = logger.Level(baseLevel)
}
