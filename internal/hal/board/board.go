// Package board wires the PIN pad peripherals to named GPIO lines.
//
// Pin names are resolved through periph.io's gpioreg registry, so any name
// the host driver understands ("GPIO17", "P1_11", a sysfs number) or an
// alias registered by the caller can be used in configuration.
package board

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/nerrad567/graylogic-pinpad/internal/hal/keypad"
	"github.com/nerrad567/graylogic-pinpad/internal/hal/lcd"
	"github.com/nerrad567/graylogic-pinpad/internal/hal/led"
)

// ErrUnknownPin is returned for a pin name the registry cannot resolve.
var ErrUnknownPin = errors.New("board: unknown pin")

// Pins names the GPIO line of every peripheral signal.
type Pins struct {
	KeypadColumns [keypad.NumCols]string
	KeypadRows    [keypad.NumRows]string

	LCDRS string
	LCDRW string // optional; leave empty when R/W is tied to ground
	LCDEN string
	LCD   [8]string // D0..D7

	LEDs []string
}

// Sleeper waits for a duration.
type Sleeper interface {
	Sleep(d time.Duration)
}

// Board is the set of wired peripherals.
type Board struct {
	Keypad *keypad.Matrix
	LCD    *lcd.Driver
	LEDs   *led.Port
}

// Open loads the periph.io host drivers and wires pins.
func Open(pins Pins, sleeper Sleeper) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initialising GPIO host drivers: %w", err)
	}
	return Wire(pins, sleeper)
}

// Wire resolves every pin through gpioreg and builds the peripherals. The
// LCD is not initialised; call LCD.Init before use.
func Wire(pins Pins, sleeper Sleeper) (*Board, error) {
	var cols [keypad.NumCols]keypad.OutputPin
	for i, name := range pins.KeypadColumns {
		p, err := output(name)
		if err != nil {
			return nil, fmt.Errorf("keypad column %d: %w", i, err)
		}
		cols[i] = p
	}

	var rows [keypad.NumRows]keypad.InputPin
	for i, name := range pins.KeypadRows {
		p, err := lookup(name)
		if err != nil {
			return nil, fmt.Errorf("keypad row %d: %w", i, err)
		}
		if err := p.In(gpio.PullDown, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("keypad row %d: %w", i, err)
		}
		rows[i] = p
	}

	matrix, err := keypad.NewMatrix(cols, rows, sleeper, keypad.Timing{})
	if err != nil {
		return nil, err
	}

	rs, err := output(pins.LCDRS)
	if err != nil {
		return nil, fmt.Errorf("lcd RS: %w", err)
	}
	en, err := output(pins.LCDEN)
	if err != nil {
		return nil, fmt.Errorf("lcd EN: %w", err)
	}
	var rw lcd.OutputPin
	if pins.LCDRW != "" {
		if rw, err = output(pins.LCDRW); err != nil {
			return nil, fmt.Errorf("lcd RW: %w", err)
		}
	}
	var data [8]lcd.OutputPin
	for i, name := range pins.LCD {
		p, err := output(name)
		if err != nil {
			return nil, fmt.Errorf("lcd D%d: %w", i, err)
		}
		data[i] = p
	}
	bus, err := lcd.NewParallelBus(rs, rw, en, data, sleeper)
	if err != nil {
		return nil, err
	}

	leds := make([]led.OutputPin, 0, len(pins.LEDs))
	for i, name := range pins.LEDs {
		p, err := output(name)
		if err != nil {
			return nil, fmt.Errorf("led %d: %w", i, err)
		}
		leds = append(leds, p)
	}
	port, err := led.NewPort(leds...)
	if err != nil {
		return nil, err
	}

	return &Board{Keypad: matrix, LCD: lcd.NewDriver(bus, sleeper), LEDs: port}, nil
}

func lookup(name string) (gpio.PinIO, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnknownPin)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPin, name)
	}
	return p, nil
}

// output resolves name and drives it low.
func output(name string) (gpio.PinIO, error) {
	p, err := lookup(name)
	if err != nil {
		return nil, err
	}
	if err := p.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}
