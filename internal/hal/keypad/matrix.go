package keypad

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/nerrad567/graylogic-pinpad/internal/pinauth"
)

// Matrix dimensions.
const (
	NumRows = 4
	NumCols = 3
)

// Scan timing.
const (
	DefaultSettle      = 5 * time.Microsecond
	DefaultDebounce    = 10 * time.Millisecond
	DefaultReleasePoll = time.Millisecond
)

// Keymap is the legend of the 12-key pad, indexed [row][col].
var Keymap = [NumRows][NumCols]pinauth.Key{
	{'1', '2', '3'},
	{'4', '5', '6'},
	{'7', '8', '9'},
	{pinauth.KeyBackspace, '0', pinauth.KeySubmit},
}

// ErrMissingPin is returned when a row or column line is not wired.
var ErrMissingPin = errors.New("keypad: missing pin")

// OutputPin drives a column line.
type OutputPin interface {
	Out(l gpio.Level) error
}

// InputPin samples a row line.
type InputPin interface {
	Read() gpio.Level
}

// Sleeper waits for a duration.
type Sleeper interface {
	Sleep(d time.Duration)
}

// Timing controls the scan delays.
type Timing struct {
	Settle      time.Duration
	Debounce    time.Duration
	ReleasePoll time.Duration
}

// Matrix is a column-driven 4x3 keypad scanner. Rows must read low when no
// key connects them to the driven column (external or internal pull-down).
//
// Thread Safety:
//   - Not safe for concurrent use.
type Matrix struct {
	cols   [NumCols]OutputPin
	rows   [NumRows]InputPin
	sleep  Sleeper
	timing Timing
	err    error
}

// NewMatrix wires a scanner. Zero Timing fields take the defaults.
func NewMatrix(cols [NumCols]OutputPin, rows [NumRows]InputPin, sleeper Sleeper, timing Timing) (*Matrix, error) {
	for i, p := range cols {
		if p == nil {
			return nil, fmt.Errorf("%w: column %d", ErrMissingPin, i)
		}
	}
	for i, p := range rows {
		if p == nil {
			return nil, fmt.Errorf("%w: row %d", ErrMissingPin, i)
		}
	}
	if timing.Settle == 0 {
		timing.Settle = DefaultSettle
	}
	if timing.Debounce == 0 {
		timing.Debounce = DefaultDebounce
	}
	if timing.ReleasePoll == 0 {
		timing.ReleasePoll = DefaultReleasePoll
	}
	return &Matrix{cols: cols, rows: rows, sleep: sleeper, timing: timing}, nil
}

// Poll scans the matrix once. A key is reported only after it survives the
// debounce interval, and only once released, so one press yields one key.
// A contact that bounces open during the debounce is ignored.
func (m *Matrix) Poll() (pinauth.Key, bool) {
	defer func() { _ = m.selectColumn(-1) }()

	for c := 0; c < NumCols; c++ {
		if err := m.selectColumn(c); err != nil {
			m.err = err
			return 0, false
		}
		m.sleep.Sleep(m.timing.Settle)

		var sampled [NumRows]gpio.Level
		for r, p := range m.rows {
			sampled[r] = p.Read()
		}

		for r, high := range sampled {
			if !high {
				continue
			}
			m.sleep.Sleep(m.timing.Debounce)
			if !m.rows[r].Read() {
				continue
			}
			for m.rows[r].Read() {
				m.sleep.Sleep(m.timing.ReleasePoll)
			}
			return Keymap[r][c], true
		}
	}
	return 0, false
}

// Err returns the last GPIO error seen by Poll, if any.
func (m *Matrix) Err() error {
	return m.err
}

// selectColumn drives column c high and the others low; -1 drives all low.
func (m *Matrix) selectColumn(c int) error {
	for i, p := range m.cols {
		if err := p.Out(gpio.Level(i == c)); err != nil {
			return fmt.Errorf("keypad column %d: %w", i, err)
		}
	}
	return nil
}
