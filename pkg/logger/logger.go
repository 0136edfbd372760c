// Package logger is a process-wide zerolog logger with key/value helpers.
package logger

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/luxfi/safekit/pkg/utils"
)

var log atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(os.Stderr).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	log.Store(&l)
}

// Init configures the global logger. Production writes JSON to stderr, any
// other environment uses the console writer.
func Init(environment string, debug bool) {
	var w io.Writer = os.Stderr
	if environment != "production" {
		w = utils.ZerologConsoleWriter()
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339
	SetOutput(w, level)
}

// SetOutput replaces the sink and level.
func SetOutput(w io.Writer, level zerolog.Level) {
	l := zerolog.New(w).Level(level).With().Timestamp().Logger()
	log.Store(&l)
}

// Get returns the underlying logger for callers that want the fluent API.
func Get() *zerolog.Logger {
	return log.Load()
}

func Debug(msg string, keyvals ...interface{}) {
	Get().Debug().Fields(keyvals).Msg(msg)
}

func Info(msg string, keyvals ...interface{}) {
	Get().Info().Fields(keyvals).Msg(msg)
}

func Warn(msg string, keyvals ...interface{}) {
	Get().Warn().Fields(keyvals).Msg(msg)
}

func Error(msg string, err error, keyvals ...interface{}) {
	Get().Error().Err(err).Fields(keyvals).Msg(msg)
}

// Fatal logs and exits with status 1.
func Fatal(msg string, err error, keyvals ...interface{}) {
	Get().Fatal().Err(err).Fields(keyvals).Msg(msg)
}
