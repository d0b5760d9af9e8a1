// Package logger provides the process-wide leveled logger used across Coral.
//
// The model layer logs through this package so that partial-failure
// conditions (notification publish errors, index inconsistencies) are
// visible without turning into model-level errors.
package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02 15:04:05"}).
	With().Timestamp().Logger().Level(zerolog.InfoLevel)

// SetLevel adjusts the minimum level that is emitted.
// Valid values are DEBUG, INFO, WARN and ERROR (case-insensitive).
// Unknown values leave the current level unchanged.
func SetLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		log = log.Level(zerolog.DebugLevel)
	case "INFO":
		log = log.Level(zerolog.InfoLevel)
	case "WARN":
		log = log.Level(zerolog.WarnLevel)
	case "ERROR":
		log = log.Level(zerolog.ErrorLevel)
	}
}

// SetFormat switches between human-readable console output ("text") and
// structured JSON output ("json").
func SetFormat(format string) {
	level := log.GetLevel()
	switch strings.ToLower(format) {
	case "json":
		log = zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	case "text":
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02 15:04:05"}).
			With().Timestamp().Logger().Level(level)
	}
}

func Debug(format string, v ...any) {
	log.Debug().Msg(fmt.Sprintf(format, v...))
}

func Info(format string, v ...any) {
	log.Info().Msg(fmt.Sprintf(format, v...))
}

func Warn(format string, v ...any) {
	log.Warn().Msg(fmt.Sprintf(format, v...))
}

func Error(format string, v ...any) {
	log.Error().Msg(fmt.Sprintf(format, v...))
}
