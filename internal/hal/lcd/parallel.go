package lcd

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Bus timing from the HD44780 write cycle.
const (
	setupDelay  = time.Microsecond      // data valid before EN rises
	enablePulse = time.Microsecond      // EN high time
	execDelay   = 50 * time.Microsecond // typical instruction execution
)

// ErrMissingPin is returned when a required bus line is not wired.
var ErrMissingPin = errors.New("lcd: missing pin")

// OutputPin is a GPIO line driven by the bus. gpio.PinIO satisfies it.
type OutputPin interface {
	Out(l gpio.Level) error
}

// ParallelBus is the 8-bit HD44780 interface over individual GPIO lines.
type ParallelBus struct {
	rs, rw, en OutputPin
	data       [8]OutputPin
	sleep      Sleeper
}

// NewParallelBus wires the bus. rw may be nil when the panel's R/W line is
// tied to ground; every other line is required. data[0] is D0.
func NewParallelBus(rs, rw, en OutputPin, data [8]OutputPin, sleeper Sleeper) (*ParallelBus, error) {
	if rs == nil {
		return nil, fmt.Errorf("%w: RS", ErrMissingPin)
	}
	if en == nil {
		return nil, fmt.Errorf("%w: EN", ErrMissingPin)
	}
	for i, p := range data {
		if p == nil {
			return nil, fmt.Errorf("%w: D%d", ErrMissingPin, i)
		}
	}

	b := &ParallelBus{rs: rs, rw: rw, en: en, data: data, sleep: sleeper}

	// Idle state: command register, write, EN low.
	for _, p := range []OutputPin{rs, rw, en} {
		if p == nil {
			continue
		}
		if err := p.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("lcd idle state: %w", err)
		}
	}
	return b, nil
}

// WriteCommand sends an instruction (RS low).
func (b *ParallelBus) WriteCommand(cmd byte) error {
	return b.write(gpio.Low, cmd)
}

// WriteData sends a character (RS high).
func (b *ParallelBus) WriteData(v byte) error {
	return b.write(gpio.High, v)
}

func (b *ParallelBus) write(rs gpio.Level, v byte) error {
	if err := b.rs.Out(rs); err != nil {
		return fmt.Errorf("lcd RS: %w", err)
	}
	if b.rw != nil {
		if err := b.rw.Out(gpio.Low); err != nil {
			return fmt.Errorf("lcd RW: %w", err)
		}
	}
	for i, p := range b.data {
		if err := p.Out(gpio.Level(v&(1<<i) != 0)); err != nil {
			return fmt.Errorf("lcd D%d: %w", i, err)
		}
	}
	b.sleep.Sleep(setupDelay)
	return b.strobe()
}

// strobe latches the bus on the falling edge of EN.
func (b *ParallelBus) strobe() error {
	if err := b.en.Out(gpio.High); err != nil {
		return fmt.Errorf("lcd EN: %w", err)
	}
	b.sleep.Sleep(enablePulse)
	if err := b.en.Out(gpio.Low); err != nil {
		return fmt.Errorf("lcd EN: %w", err)
	}
	b.sleep.Sleep(execDelay)
	return nil
}
