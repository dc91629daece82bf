package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger создаёт настроенный zerolog. pretty включает человекочитаемый вывод.
func NewLogger(appEnv string, pretty bool) zerolog.Logger {
	return newLogger(os.Stdout, appEnv, pretty)
}

func newLogger(out io.Writer, appEnv string, pretty bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == "dev" {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339
	if pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).With().Timestamp().Logger().Level(level)
}
