// Package cli implements the intentgraph command-line interface.
//
// The commands work on intent tree files directly (validate, build, layout,
// render, move, drag) or on the configured store through an editing session
// (serve, store). The CLI is built with cobra and logs through
// charmbracelet/log.
//
// # Commands
//
//   - validate: Check that a tree builds into a valid forest
//   - build: Convert a tree into the node-link graph format
//   - layout: Compute node positions for an orientation and viewport
//   - render: Export the graph as Graphviz DOT or SVG
//   - move: Apply a reorganization between two nodes
//   - drag: Simulate a drag and report the pending drop
//   - extract: Send records to the extraction service
//   - serve: Run the HTTP API over the configured store
//   - store: Read and write raw store entries
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// passed through context.Context and into the session.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w at level. Timestamps are
// formatted as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Built 12 nodes (3ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
