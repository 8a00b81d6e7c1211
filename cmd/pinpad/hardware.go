package main

import (
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/jonboulle/clockwork"

	"github.com/nerrad567/graylogic-pinpad/internal/hal/board"
	"github.com/nerrad567/graylogic-pinpad/internal/hal/keypad"
	"github.com/nerrad567/graylogic-pinpad/internal/hal/lcd"
	"github.com/nerrad567/graylogic-pinpad/internal/hal/led"
	"github.com/nerrad567/graylogic-pinpad/internal/hal/serial"
	"github.com/nerrad567/graylogic-pinpad/internal/infrastructure/config"
	"github.com/nerrad567/graylogic-pinpad/internal/infrastructure/logging"
	"github.com/nerrad567/graylogic-pinpad/internal/panel"
	"github.com/nerrad567/graylogic-pinpad/internal/pinauth"
)

const consolePrompt = "keys> "

// hardware is the set of peripherals handed to the controller.
type hardware struct {
	keypad    pinauth.KeypadSource
	display   pinauth.Display
	indicator pinauth.Indicator
	sink      *serial.Sink

	// drained reports that a finite key source has no more input. nil for
	// the physical keypad.
	drained func() bool

	// errs returns the sticky GPIO error of a peripheral, if any.
	errs    []func() error
	closers []func() error
}

// Close releases the peripherals and logs any GPIO or serial errors seen
// while running.
func (h *hardware) Close(log *logging.Logger) {
	for _, errFn := range h.errs {
		if err := errFn(); err != nil {
			log.Warn("peripheral reported errors", "error", err)
		}
	}
	if h.sink != nil {
		if n, err := h.sink.Errors(); n > 0 {
			log.Warn("serial writes failed", "count", n, "last_error", err)
		}
	}
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i](); err != nil {
			log.Warn("error closing peripheral", "error", err)
		}
	}
}

// openHardware builds the peripherals for the configured mode.
func openHardware(cfg *config.Config, clock clockwork.Clock, stdin io.Reader, stdout io.Writer, log *logging.Logger) (*hardware, error) {
	if cfg.Hardware.Mode == "gpio" {
		return openBoard(cfg.Hardware, clock, stdout, log)
	}
	return openSimulator(cfg.Hardware, clock, stdin, stdout, log)
}

// openSimulator drives a virtual LCD and LED bank printed to stdout. Keys
// come from an interactive prompt when stdin is a terminal and are read
// verbatim from stdin otherwise.
func openSimulator(hc config.HardwareConfig, clock clockwork.Clock, stdin io.Reader, stdout io.Writer, log *logging.Logger) (*hardware, error) {
	hw := &hardware{}
	out := stdout

	if f, ok := stdin.(*os.File); ok && readline.IsTerminal(int(f.Fd())) {
		console, err := keypad.NewConsole(consolePrompt)
		if err != nil {
			return nil, err
		}
		hw.closers = append(hw.closers, console.Close)
		hw.keypad, hw.drained = console, console.Drained
		hw.errs = append(hw.errs, console.Err)
		out = console.Stdout()
	} else {
		stream := keypad.NewStream(stdin)
		hw.keypad, hw.drained = stream, stream.Drained
		hw.errs = append(hw.errs, stream.Err)
	}

	screen := lcd.NewVirtualScreen()
	drv := lcd.NewDriver(screen, clock)
	if err := drv.Init(); err != nil {
		hw.Close(log)
		return nil, fmt.Errorf("initialising virtual LCD: %w", err)
	}
	hw.display = &frameDisplay{Display: panel.NewScreen(drv, log), screen: screen, out: out}

	leds := &led.Virtual{}
	leds.OnChange(func(on bool) {
		state := "off"
		if on {
			state = "on"
		}
		fmt.Fprintf(out, "LED %s\n", state)
	})
	hw.indicator = leds

	sink, err := openSink(hc.Serial, out)
	if err != nil {
		hw.Close(log)
		return nil, err
	}
	hw.sink = sink
	hw.closers = append(hw.closers, sink.Close)

	return hw, nil
}

// openBoard wires the GPIO peripherals named in hc.
func openBoard(hc config.HardwareConfig, clock clockwork.Clock, stdout io.Writer, log *logging.Logger) (*hardware, error) {
	b, err := board.Open(boardPins(hc), clock)
	if err != nil {
		return nil, fmt.Errorf("opening board: %w", err)
	}
	if err := b.LCD.Init(); err != nil {
		return nil, fmt.Errorf("initialising LCD: %w", err)
	}

	sink, err := openSink(hc.Serial, stdout)
	if err != nil {
		return nil, err
	}

	return &hardware{
		keypad:    b.Keypad,
		display:   panel.NewScreen(b.LCD, log),
		indicator: b.LEDs,
		sink:      sink,
		errs:      []func() error{b.Keypad.Err, b.LEDs.Err},
		closers:   []func() error{sink.Close},
	}, nil
}

// boardPins converts the validated pin lists into board.Pins.
func boardPins(hc config.HardwareConfig) board.Pins {
	pins := board.Pins{
		LCDRS: hc.LCD.RS,
		LCDRW: hc.LCD.RW,
		LCDEN: hc.LCD.EN,
		LEDs:  hc.LEDs,
	}
	copy(pins.KeypadColumns[:], hc.Keypad.Columns)
	copy(pins.KeypadRows[:], hc.Keypad.Rows)
	copy(pins.LCD[:], hc.LCD.Data)
	return pins
}

// openSink opens the configured serial device, or writes the log to
// fallback when none is set.
func openSink(sc config.SerialConfig, fallback io.Writer) (*serial.Sink, error) {
	if sc.Device == "" {
		return serial.NewSink(fallback), nil
	}
	sink, err := serial.Open(sc.Device, sc.Baud)
	if err != nil {
		return nil, fmt.Errorf("opening serial log: %w", err)
	}
	return sink, nil
}

// frameDisplay prints the virtual screen after every update that changed
// it.
type frameDisplay struct {
	pinauth.Display
	screen *lcd.VirtualScreen
	out    io.Writer
	last   string
}

func (f *frameDisplay) ShowReady() {
	f.Display.ShowReady()
	f.flush()
}

func (f *frameDisplay) ShowMask(count int) {
	f.Display.ShowMask(count)
	f.flush()
}

func (f *frameDisplay) ShowResult(text string) {
	f.Display.ShowResult(text)
	f.flush()
}

func (f *frameDisplay) ShowCountdown(seconds int) {
	f.Display.ShowCountdown(seconds)
	f.flush()
}

func (f *frameDisplay) flush() {
	frame := f.screen.String()
	if frame == f.last {
		return
	}
	f.last = frame
	fmt.Fprintln(f.out, frame)
}
