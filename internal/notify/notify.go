// Package notify surfaces one-line success and error messages to the user.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/me/classroom/internal/logging"
)

// Sink receives fire-and-forget notifications.
type Sink interface {
	Success(msg string)
	Error(msg string)
}

// Console writes notifications as prefixed lines.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Success(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "✓ %s\n", msg)
}

func (c *Console) Error(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "✗ %s\n", msg)
}

// Logger forwards notifications to a slog.Logger.
type Logger struct {
	logger *slog.Logger
}

// NewLogger returns a Sink logging at INFO for success and WARN for errors.
func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Logger{logger: logger.With("component", "notify")}
}

func (l *Logger) Success(msg string) { l.logger.Info("notification", "kind", "success", "message", msg) }
func (l *Logger) Error(msg string)   { l.logger.Warn("notification", "kind", "error", "message", msg) }

// Multi fans a notification out to every sink.
type Multi []Sink

func (m Multi) Success(msg string) {
	for _, s := range m {
		s.Success(msg)
	}
}

func (m Multi) Error(msg string) {
	for _, s := range m {
		s.Error(msg)
	}
}

// Discard drops every notification.
var Discard Sink = discard{}

type discard struct{}

func (discard) Success(string) {}
func (discard) Error(string)   {}
