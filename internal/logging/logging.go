// Package logging configures the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnvLogLevel selects the minimum level (trace..disabled)
const EnvLogLevel = "ADRI_LOG_LEVEL"

// Setup initializes zerolog with a console writer and the level taken
// from ADRI_LOG_LEVEL. Unknown levels fall back to info.
func Setup() {
	SetupWriter(os.Stderr)
}

// SetupWriter is Setup with an explicit sink, used by tests
func SetupWriter(w io.Writer) {
	level := parseLevel(os.Getenv(EnvLogLevel))
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
