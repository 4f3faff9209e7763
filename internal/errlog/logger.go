// Package errlog is the proxy's ambient logging and error-envelope
// layer: a package-level zerolog.Logger plus an Error type that
// carries an ExitCode, for the handful of call sites in cmd/wlproxyd
// that need to turn a failure into a process exit status.
package errlog

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Logger returns the package-level logger, for components that accept
// a zerolog.Logger directly (proxystate.New).
func Logger() zerolog.Logger {
	return log
}

// SetLevel parses one of "debug", "info", "warn", "error" and sets it
// as the global minimum level. Unrecognized values fall back to info.
func SetLevel(level string) {
	var l zerolog.Level
	switch level {
	case "debug":
		l = zerolog.DebugLevel
	case "info":
		l = zerolog.InfoLevel
	case "warn", "warning":
		l = zerolog.WarnLevel
	case "error":
		l = zerolog.ErrorLevel
	default:
		l = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(l)
}

func Debug() *zerolog.Event { return log.Debug() }
func Info() *zerolog.Event  { return log.Info() }
func Warn() *zerolog.Event  { return log.Warn() }
func Error() *zerolog.Event { return log.Error() }
func Fatal() *zerolog.Event { return log.Fatal() }
