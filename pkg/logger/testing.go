package logger

import (
	"io"

	"github.com/rs/zerolog"
)

// NewTestLogger returns a logger that discards all output, for tests that
// need a real (non-mock) Logger.
func NewTestLogger() Logger {
	return &zerologLogger{logger: zerolog.New(io.Discard)}
}
