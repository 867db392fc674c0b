package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Initialize sets up the global logger with pretty console output at info level.
func Initialize() {
	setOutput(os.Stdout, "console")
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// Configure applies the configured level and format. Format "json" writes one
// JSON object per line for log shippers; anything else keeps the console writer.
func Configure(level, format string) {
	setOutput(os.Stdout, format)
	SetLevel(level)
}

func setOutput(w io.Writer, format string) {
	if format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Caller().Logger()
}

// SetLevel applies a configured level name ("debug", "warn", ...).
// Unknown names leave the current level in place.
func SetLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		log.Warn().Str("level", level).Msg("Unknown log level, keeping current")
		return
	}
	zerolog.SetGlobalLevel(parsed)
}

// Get returns the global logger
func Get() *zerolog.Logger {
	return &log.Logger
}
