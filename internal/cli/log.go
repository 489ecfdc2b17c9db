// Package cli implements the stackflow command-line interface.
//
// The commands lay out, validate and render chart documents, edit them
// interactively in the terminal, manage stored charts and serve the HTTP
// API. The CLI is built with cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - layout: compute block positions for a chart document
//   - render: draw a chart as SVG, PNG or PDF, or as a Graphviz diagram
//   - validate: check a chart document without changing it
//   - edit: drag blocks around in a terminal editor
//   - charts: list, fetch, store and delete charts in the configured store
//   - serve: run the HTTP and WebSocket API
//
// # Configuration
//
// Settings come from a TOML file (--config, or the default path under
// $XDG_CONFIG_HOME). A missing file means built-in defaults. Flags given
// on the command line take precedence over the file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// and the loaded configuration travel through context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger writing to w at level, with centisecond
// timestamps ("14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long a command step took, e.g. "Laid out 12 blocks (4ms)".
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the command logger, or log.Default() outside
// a command run.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
