// Package serial implements the PIN pad's UART log sink.
//
// Lines are terminated with CRLF, as the firmware's terminal expects. Write
// errors are counted and otherwise ignored: logging is best effort and
// must never stall PIN entry.
package serial

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// DefaultBaud is the line rate of the reference board (9600 8N1).
const DefaultBaud = 9600

// Sink writes log lines and echoed characters to w. It implements
// pinauth.LogSink.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Sink struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	errors int
	last   error
}

// NewSink returns a sink over w.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Open opens a serial device for writing and configures it for baud 8N1 raw
// output where the platform supports it.
func Open(device string, baud int) (*Sink, error) {
	f, err := os.OpenFile(device, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return nil, fmt.Errorf("opening serial device %s: %w", device, err)
	}
	if err := configure(f, baud); err != nil {
		f.Close() //nolint:errcheck // Already failing
		return nil, fmt.Errorf("configuring serial device %s: %w", device, err)
	}
	return &Sink{w: f, closer: f}, nil
}

// LogLine writes text followed by CRLF.
func (s *Sink) LogLine(text string) {
	s.write([]byte(text + "\r\n"))
}

// Echo writes a single character with no terminator.
func (s *Sink) Echo(c byte) {
	s.write([]byte{c})
}

func (s *Sink) write(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(b); err != nil {
		s.errors++
		s.last = err
	}
}

// Errors returns the number of failed writes and the most recent error.
func (s *Sink) Errors() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors, s.last
}

// Close closes the device opened by Open. It is a no-op for sinks created
// with NewSink.
func (s *Sink) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("closing serial device: %w", err)
	}
	return nil
}
