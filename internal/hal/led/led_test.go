package led

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

type brokenPin struct{}

func (brokenPin) Out(gpio.Level) error { return errors.New("pin fault") }

func TestPort(t *testing.T) {
	pins := []*gpiotest.Pin{{N: "PA0", L: gpio.High}, {N: "PA1", L: gpio.High}, {N: "PA2"}}
	out := make([]OutputPin, len(pins))
	for i, p := range pins {
		out[i] = p
	}

	port, err := NewPort(out...)
	if err != nil {
		t.Fatalf("NewPort() error = %v", err)
	}
	for _, p := range pins {
		if p.Read() != gpio.Low {
			t.Errorf("%s not switched off by NewPort", p.N)
		}
	}

	port.Set(true)
	if !port.State() {
		t.Error("State() = false after Set(true)")
	}
	for _, p := range pins {
		if p.Read() != gpio.High {
			t.Errorf("%s = Low after Set(true)", p.N)
		}
	}

	port.Set(false)
	for _, p := range pins {
		if p.Read() != gpio.Low {
			t.Errorf("%s = High after Set(false)", p.N)
		}
	}
}

func TestNewPort_Errors(t *testing.T) {
	if _, err := NewPort(); !errors.Is(err, ErrNoPins) {
		t.Errorf("NewPort() error = %v, want ErrNoPins", err)
	}
	if _, err := NewPort(&gpiotest.Pin{}, brokenPin{}); err == nil {
		t.Error("NewPort() with a faulty pin should fail")
	}
}

func TestPort_ErrorDoesNotStopOtherPins(t *testing.T) {
	good := &gpiotest.Pin{N: "PA1"}
	port := &Port{pins: []OutputPin{brokenPin{}, good}}

	port.Set(true)

	if good.Read() != gpio.High {
		t.Error("healthy pin not driven after a sibling failed")
	}
	if port.Err() == nil {
		t.Error("Err() = nil after a pin fault")
	}
}

func TestVirtual(t *testing.T) {
	var v Virtual
	var changes []bool
	v.OnChange(func(on bool) { changes = append(changes, on) })

	v.Set(true)
	v.Set(true)
	v.Set(false)
	v.Set(true)

	if v.SwitchOns() != 2 {
		t.Errorf("SwitchOns() = %d, want 2", v.SwitchOns())
	}
	if len(changes) != 3 || !v.State() {
		t.Errorf("changes = %v, State() = %v", changes, v.State())
	}
}
