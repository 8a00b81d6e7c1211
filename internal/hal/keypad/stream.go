package keypad

import (
	"bufio"
	"io"
	"sync/atomic"

	"github.com/nerrad567/graylogic-pinpad/internal/pinauth"
)

// keyBuffer is the capacity of the queue between the reader goroutine and
// Poll. A full queue blocks the reader, never the controller.
const keyBuffer = 64

// Stream turns bytes from an io.Reader into key presses. Bytes outside the
// keypad alphabet (newlines, spaces) are dropped.
type Stream struct {
	keys   chan pinauth.Key
	closed atomic.Bool
	err    atomic.Value
}

// NewStream starts reading r in a background goroutine. The goroutine
// exits when r returns an error or EOF.
func NewStream(r io.Reader) *Stream {
	s := &Stream{keys: make(chan pinauth.Key, keyBuffer)}
	go s.pump(bufio.NewReader(r))
	return s
}

func (s *Stream) pump(r io.ByteReader) {
	defer func() {
		s.closed.Store(true)
		close(s.keys)
	}()
	for {
		c, err := r.ReadByte()
		if err != nil {
			if err != io.EOF {
				s.err.Store(err)
			}
			return
		}
		if k, ok := pinauth.ParseKey(c); ok {
			s.keys <- k
		}
	}
}

// Poll returns the next buffered key without blocking.
func (s *Stream) Poll() (pinauth.Key, bool) {
	select {
	case k, ok := <-s.keys:
		return k, ok
	default:
		return 0, false
	}
}

// Closed reports whether the reader has ended. Keys read before the end may
// still be buffered.
func (s *Stream) Closed() bool {
	return s.closed.Load()
}

// Drained reports whether the reader has ended and every key was polled.
func (s *Stream) Drained() bool {
	return s.closed.Load() && len(s.keys) == 0
}

// Err returns the read error that ended the stream, or nil for EOF.
func (s *Stream) Err() error {
	if err, ok := s.err.Load().(error); ok {
		return err
	}
	return nil
}
