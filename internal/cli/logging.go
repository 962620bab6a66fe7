package cli

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SetupLogging creates the root logger at the given level. Unknown levels
// fall back to info.
func SetupLogging(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
