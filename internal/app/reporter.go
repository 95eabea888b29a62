package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// ConsoleReporter prints status messages to a writer. It implements
// recognition.Reporter and also serves as the tracker's status sink.
type ConsoleReporter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleReporter reports to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{out: os.Stdout}
}

// ClearTemporaryInk is a no-op on the console; the drawing surface lives in
// the UI layer.
func (r *ConsoleReporter) ClearTemporaryInk() {
	slog.Debug("clear temporary ink")
}

// DisplayStatusMessage prints a user-facing status line.
func (r *ConsoleReporter) DisplayStatusMessage(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, msg)
}
