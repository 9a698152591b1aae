// Package cli implements the mindmap command-line interface.
//
// This package provides commands for rendering mind-map documents, generating
// trees and answers through the Gemini API, an interactive chat, and the HTTP
// server. The CLI is built using cobra and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - render: Lay out a JSON or YAML tree and write SVG, PNG, PDF, JSON or DOT
//   - generate: Ask the model for a mind map on a topic, then render it
//   - ask: One-shot question in a chat mode, printed as markdown
//   - image: Generate an image from a prompt
//   - chat: Interactive terminal chat with all modes
//   - serve: Run the HTTP API
//   - cache: Manage the response and artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Rendered 12 nodes (34ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
