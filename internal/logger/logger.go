package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// New logs JSON to stdout, or human readable lines when LOG_FORMAT=console.
// The effective level is applied globally once config is loaded.
func New() zerolog.Logger {
	var w io.Writer = os.Stdout
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "console") {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}
	return NewWithWriter(w, zerolog.DebugLevel)
}

func NewWithWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(w).
		With().
		Timestamp().
		Caller().
		Str("service", "dota-leaderboard").
		Logger()

	return logger.Level(level)
}

var Module = fx.Provide(New)
