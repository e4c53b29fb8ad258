package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger from level and format settings.
// Unknown values fall back to info/json rather than failing startup. In
// stdio transport mode the caller must route logs to stderr, since stdout
// carries the protocol stream.
func Init(level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	out := os.Stderr

	var logger zerolog.Logger
	switch strings.ToLower(format) {
	case "console":
		consoleWriter := zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
		logger = zerolog.New(consoleWriter).With().Timestamp().Logger()
	default:
		logger = zerolog.New(out).With().Timestamp().Logger()
	}

	zerolog.SetGlobalLevel(lvl)
	log.Logger = logger.Level(lvl)
}
