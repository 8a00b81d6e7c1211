package lcd

import (
	"errors"
	"fmt"
	"time"
)

// Panel geometry.
const (
	Rows = 2
	Cols = 16
)

// HD44780 instruction set subset used by the driver.
const (
	CmdClear        byte = 0x01
	CmdEntryMode    byte = 0x06 // increment, no shift
	CmdDisplayOff   byte = 0x08
	CmdDisplayOn    byte = 0x0C // cursor and blink off
	CmdFunction8Bit byte = 0x30
	CmdFunctionSet  byte = 0x38 // 8-bit, 2 lines, 5x8 font
	CmdSetDDRAM     byte = 0x80

	// Row1Offset is the DDRAM address of the first cell of the second row.
	Row1Offset byte = 0x40
)

// ErrPosition is returned for a cursor position outside the panel.
var ErrPosition = errors.New("lcd: position out of range")

// Bus carries commands and data to the controller.
type Bus interface {
	WriteCommand(cmd byte) error
	WriteData(b byte) error
}

// Sleeper waits for a duration. clockwork.Clock satisfies it.
type Sleeper interface {
	Sleep(d time.Duration)
}

// Driver is an HD44780 driver.
//
// Thread Safety:
//   - Not safe for concurrent use. The PIN controller owns the display.
type Driver struct {
	bus   Bus
	sleep Sleeper
}

// NewDriver returns a Driver writing to bus.
func NewDriver(bus Bus, sleeper Sleeper) *Driver {
	return &Driver{bus: bus, sleep: sleeper}
}

// initStep is one command of the power-on sequence and the wait after it.
type initStep struct {
	cmd  byte
	wait time.Duration
}

// initSequence is the 8-bit initialisation by instruction from the HD44780
// datasheet, ending with the display on and cleared.
var initSequence = []initStep{
	{CmdFunction8Bit, 5 * time.Millisecond},
	{CmdFunction8Bit, 150 * time.Microsecond},
	{CmdFunction8Bit, 150 * time.Microsecond},
	{CmdFunctionSet, 50 * time.Microsecond},
	{CmdDisplayOff, 50 * time.Microsecond},
	{CmdClear, 2 * time.Millisecond},
	{CmdEntryMode, 50 * time.Microsecond},
	{CmdDisplayOn, 50 * time.Microsecond},
}

// powerOnDelay is waited before the first command.
const powerOnDelay = 40 * time.Millisecond

// Init runs the power-on sequence.
func (d *Driver) Init() error {
	d.sleep.Sleep(powerOnDelay)
	for _, step := range initSequence {
		if err := d.bus.WriteCommand(step.cmd); err != nil {
			return fmt.Errorf("lcd init command %#02x: %w", step.cmd, err)
		}
		d.sleep.Sleep(step.wait)
	}
	return nil
}

// Clear blanks the panel and homes the cursor.
func (d *Driver) Clear() error {
	if err := d.bus.WriteCommand(CmdClear); err != nil {
		return fmt.Errorf("lcd clear: %w", err)
	}
	d.sleep.Sleep(2 * time.Millisecond)
	return nil
}

// SetCursor moves the DDRAM address to row, col.
func (d *Driver) SetCursor(row, col int) error {
	if row < 0 || row >= Rows || col < 0 || col >= Cols {
		return fmt.Errorf("%w: row %d col %d", ErrPosition, row, col)
	}
	addr := byte(col)
	if row == 1 {
		addr += Row1Offset
	}
	if err := d.bus.WriteCommand(CmdSetDDRAM | addr); err != nil {
		return fmt.Errorf("lcd set cursor: %w", err)
	}
	return nil
}

// WriteString writes s at the current cursor. Bytes outside printable ASCII
// are written as '?'.
func (d *Driver) WriteString(s string) error {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c > 0x7E {
			c = '?'
		}
		if err := d.bus.WriteData(c); err != nil {
			return fmt.Errorf("lcd write: %w", err)
		}
	}
	return nil
}

// WriteAt positions the cursor and writes s. Text running past the last
// column is truncated.
func (d *Driver) WriteAt(row, col int, s string) error {
	if err := d.SetCursor(row, col); err != nil {
		return err
	}
	if room := Cols - col; len(s) > room {
		s = s[:room]
	}
	return d.WriteString(s)
}
