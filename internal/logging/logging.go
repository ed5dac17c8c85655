// Package logging builds the zerolog root logger every other package
// derives its sub-logger from, matching the teacher's console-banner
// texture (cmd/api/main.go's startup prints) but structured per spec.md's
// ambient-stack requirement rather than plain fmt.Printf calls.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger. verbose lowers the level to debug;
// otherwise the logger runs at info level, matching spec.md's default
// of surfacing stage transitions and warnings without per-node search
// chatter.
func New(verbose bool, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}
	console := zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

// ForRun derives a run-scoped sub-logger carrying the faculty and
// generation id every component's log lines should include, so a
// single run's output can be grepped out of a multi-faculty log
// stream (spec.md §4.6's generation_id).
func ForRun(base zerolog.Logger, faculty, generationID string) zerolog.Logger {
	return base.With().Str("faculty", faculty).Str("generation_id", generationID).Logger()
}
