// Package led drives the status LED bank. All LEDs switch together, as on
// the reference board where the whole port is written at once.
package led

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
)

// ErrNoPins is returned when a Port is created without any LED.
var ErrNoPins = errors.New("led: no pins")

// OutputPin drives one LED.
type OutputPin interface {
	Out(l gpio.Level) error
}

// Port is a bank of LEDs switched as one. It implements pinauth.Indicator.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Port struct {
	mu   sync.Mutex
	pins []OutputPin
	on   bool
	err  error
}

// NewPort returns a port over pins with every LED switched off.
func NewPort(pins ...OutputPin) (*Port, error) {
	if len(pins) == 0 {
		return nil, ErrNoPins
	}
	p := &Port{pins: pins}
	p.Set(false)
	if err := p.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

// Set switches every LED on or off. A pin error is kept for Err and does
// not stop the remaining pins from being driven.
func (p *Port) Set(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.on = on
	for i, pin := range p.pins {
		if err := pin.Out(gpio.Level(on)); err != nil {
			p.err = fmt.Errorf("led %d: %w", i, err)
		}
	}
}

// State reports the last requested level.
func (p *Port) State() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.on
}

// Err returns the most recent pin error.
func (p *Port) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Virtual is an LED bank without hardware. It counts switch-ons so the
// simulator can show blink activity.
type Virtual struct {
	mu       sync.Mutex
	on       bool
	switchOn int
	onChange func(on bool)
}

// OnChange registers fn to be called on every level change.
func (v *Virtual) OnChange(fn func(on bool)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onChange = fn
}

// Set switches the virtual LEDs.
func (v *Virtual) Set(on bool) {
	v.mu.Lock()
	changed := v.on != on
	v.on = on
	if changed && on {
		v.switchOn++
	}
	fn := v.onChange
	v.mu.Unlock()

	if changed && fn != nil {
		fn(on)
	}
}

// State reports the current level.
func (v *Virtual) State() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.on
}

// SwitchOns returns how many times the LEDs went from off to on.
func (v *Virtual) SwitchOns() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.switchOn
}
