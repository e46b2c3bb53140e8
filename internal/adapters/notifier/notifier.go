// internal/adapters/notifier/notifier.go
package notifier

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ammerola/shopcart/internal/core/ports"
)

// LogNotifier reports cart failures as warn-level log records
type LogNotifier struct {
	logger *slog.Logger
}

var _ ports.Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a notifier writing to logger
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{
		logger: logger.With(slog.String("component", "notifier")),
	}
}

// Error logs message
func (n *LogNotifier) Error(message string) {
	n.logger.Warn("user notification", slog.String("message", message))
}

// WriterNotifier prints one line per message, like a toast on a terminal
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

var _ ports.Notifier = (*WriterNotifier)(nil)

// NewWriterNotifier creates a notifier printing to w
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// Error writes message followed by a newline. Write errors are dropped.
func (n *WriterNotifier) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintln(n.w, message)
}

// Multi fans a message out to several notifiers in order
type Multi []ports.Notifier

var _ ports.Notifier = Multi(nil)

// NewMulti combines notifiers, skipping nil entries
func NewMulti(notifiers ...ports.Notifier) Multi {
	m := make(Multi, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			m = append(m, n)
		}
	}
	return m
}

// Error forwards message to every notifier
func (m Multi) Error(message string) {
	for _, n := range m {
		n.Error(message)
	}
}

// Discard drops every message
type Discard struct{}

var _ ports.Notifier = Discard{}

// Error does nothing
func (Discard) Error(string) {}
