// Package cli implements the pipecheck command-line interface.
//
// This package provides commands for serving the validation API, validating
// pipeline files locally or remotely, generating stress-test pipelines,
// rendering them as diagrams, and managing the report cache. The CLI is
// built using cobra and logs via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - serve: Run the validation HTTP API
//   - validate: Check that pipeline files are DAGs
//   - generate: Write synthetic pipelines for load testing
//   - render: Draw a pipeline as SVG, PNG or DOT
//   - inspect: Browse a pipeline's nodes and cycle interactively
//   - cache: Manage the report cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to the long-running server.
//
// # Exit codes
//
// validate exits with status 2 when a pipeline is not a DAG, 1 on other
// errors and 130 when interrupted.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pipecheck/pkg/pipeline"
)

// newLogger creates a logger writing to w at level, with timestamps
// formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with
// elapsed duration. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond.
// Example output: "Validated 3 pipelines (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// logOutcome records one validation at debug level.
func logOutcome(l *log.Logger, source string, o *pipeline.Outcome) {
	kv := []any{
		"source", source,
		"nodes", o.Report.NodeCount,
		"edges", o.Report.EdgeCount,
		"dag", o.Report.IsAcyclic,
		"cached", o.Cached,
		"took", o.Duration.Round(time.Microsecond),
	}
	if len(o.Report.Cycle) > 0 {
		kv = append(kv, "cycle", o.Report.CycleString())
	}
	l.Debug("validated", kv...)
}
