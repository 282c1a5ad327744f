// Package logging configures the process-wide zerolog logger.
//
// Log lines go to stderr so that reports and progress output own stdout.
// When stderr is a terminal, lines are console-formatted; otherwise they are
// JSON, one object per line, ready for ingestion.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// ParseLevel maps a level name to a zerolog level. Names follow the
// --log-level flag: DEBUG, INFO, WARNING, ERROR, case-insensitive.
// Unrecognized names fall back to info; config validation rejects them
// before this is reached.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "", "INFO":
		return zerolog.InfoLevel
	case "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New builds the base logger writing to w. Every line carries a timestamp
// and, when runID is non-empty, a run_id field tying the line to one
// invocation of the tool.
func New(w io.Writer, level string, runID string) zerolog.Logger {
	out := w
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(out).With().Timestamp()
	if runID != "" {
		ctx = ctx.Str("run_id", runID)
	}
	return ctx.Logger().Level(ParseLevel(level))
}

// NewRunID returns a ULID identifying one invocation of the tool. ULIDs sort
// by creation time, so runs line up chronologically in aggregated logs.
func NewRunID() string {
	return ulid.Make().String()
}
