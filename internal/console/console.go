// Package console writes operator-facing notices to a terminal: heartbeats,
// "already logged" notices, lifecycle messages and diagnostic traces.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ANSI color codes
const (
	ColorReset   = "\033[0m"
	ColorRed     = "\033[91m"
	ColorBlue    = "\033[94m"
	ColorMagenta = "\033[95m"
)

// TimeLayout is the wall-clock format used on the console and in the journals.
const TimeLayout = "2006-01-02 15:04:05"

// Console prints single lines to an output stream. Each line is emitted with
// one Write call so concurrent writers never interleave within a line.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
	now   func() time.Time
}

// New returns a console writing to out.
func New(out io.Writer, color bool) *Console {
	return &Console{out: out, color: color, now: time.Now}
}

// WithClock replaces the time source, used for deterministic output.
func (c *Console) WithClock(now func() time.Time) *Console {
	c.now = now
	return c
}

// Now returns the current time formatted with TimeLayout.
func (c *Console) Now() string {
	return c.now().Format(TimeLayout)
}

// Heartbeat prints the polling liveness notice.
func (c *Console) Heartbeat() {
	c.Println(ColorMagenta, "Polling at: "+c.Now())
}

// AlreadyLogged prints the notice for a group that is already in the store.
func (c *Console) AlreadyLogged(title, chatID string) {
	c.Println(ColorBlue, fmt.Sprintf("Already logged: %s (%s)", title, chatID))
}

// Error prints an error notice, followed by an optional multi-line trace.
func (c *Console) Error(msg string, trace string) {
	text := msg
	if trace = strings.TrimRight(trace, "\n"); trace != "" {
		text += "\n" + trace
	}
	c.Println(ColorRed, text)
}

// Started prints the startup notice.
func (c *Console) Started() {
	c.Info("Bot started. Press Ctrl+C to stop.")
}

// ShuttingDown prints a blank separator line and the shutdown notice.
func (c *Console) ShuttingDown() {
	c.Info("")
	c.Info("Bot is shutting down gracefully. Bye!")
}

// Info prints an uncoloured line.
func (c *Console) Info(msg string) {
	c.Println("", msg)
}

// Println writes msg wrapped in color (when enabled) followed by a newline.
func (c *Console) Println(color, msg string) {
	var b strings.Builder
	if c.color && color != "" {
		b.WriteString(color)
		b.WriteString(msg)
		b.WriteString(ColorReset)
	} else {
		b.WriteString(msg)
	}
	b.WriteByte('\n')

	c.mu.Lock()
	defer c.mu.Unlock()
	// Console failures are not actionable.
	_, _ = io.WriteString(c.out, b.String())
}
