package lcd

import (
	"strings"
	"sync"
)

// ddramSize covers both rows: 0x00-0x27 and 0x40-0x67.
const ddramSize = 0x68

// VirtualScreen is a Bus that decodes the HD44780 byte stream into an
// in-memory display. Only the visible 16 columns of each row are reported.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type VirtualScreen struct {
	mu        sync.Mutex
	ddram     [ddramSize]byte
	addr      byte
	displayOn bool
	twoLine   bool
	commands  int
	onChange  func()
}

// NewVirtualScreen returns a blank, switched-off screen.
func NewVirtualScreen() *VirtualScreen {
	v := &VirtualScreen{}
	v.clear()
	return v
}

// OnChange registers fn to be called after every data write or clear.
func (v *VirtualScreen) OnChange(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onChange = fn
}

// WriteCommand decodes an instruction.
func (v *VirtualScreen) WriteCommand(cmd byte) error {
	v.mu.Lock()
	v.commands++
	changed := false
	switch {
	case cmd&CmdSetDDRAM != 0:
		v.addr = cmd &^ CmdSetDDRAM
	case cmd&0x20 != 0: // function set
		v.twoLine = cmd&0x08 != 0
	case cmd&0x08 != 0: // display control
		v.displayOn = cmd&0x04 != 0
		changed = true
	case cmd == CmdClear:
		v.clear()
		changed = true
	}
	fn := v.onChange
	v.mu.Unlock()

	if changed && fn != nil {
		fn()
	}
	return nil
}

// WriteData stores a character at the current address and advances it.
func (v *VirtualScreen) WriteData(b byte) error {
	v.mu.Lock()
	if int(v.addr) < ddramSize {
		v.ddram[v.addr] = b
	}
	v.addr = nextAddr(v.addr)
	fn := v.onChange
	v.mu.Unlock()

	if fn != nil {
		fn()
	}
	return nil
}

// nextAddr advances a two-line DDRAM address, wrapping from the end of the
// first row to the second and from the end of the second to the first.
func nextAddr(a byte) byte {
	switch a {
	case 0x27:
		return Row1Offset
	case 0x67:
		return 0x00
	default:
		return a + 1
	}
}

func (v *VirtualScreen) clear() {
	for i := range v.ddram {
		v.ddram[i] = ' '
	}
	v.addr = 0
}

// Line returns the visible text of row.
func (v *VirtualScreen) Line(row int) string {
	v.mu.Lock()
	defer v.mu.Unlock()

	base := 0
	if row == 1 {
		base = int(Row1Offset)
	}
	return string(v.ddram[base : base+Cols])
}

// DisplayOn reports whether the display has been switched on.
func (v *VirtualScreen) DisplayOn() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.displayOn
}

// TwoLine reports whether the function set selected two-line mode.
func (v *VirtualScreen) TwoLine() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.twoLine
}

// Commands returns the number of instructions received.
func (v *VirtualScreen) Commands() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.commands
}

// String renders the panel inside a frame:
//
//	+----------------+
//	|PIN: ****       |
//	|OK              |
//	+----------------+
func (v *VirtualScreen) String() string {
	border := "+" + strings.Repeat("-", Cols) + "+"
	var b strings.Builder
	b.WriteString(border + "\n")
	for row := 0; row < Rows; row++ {
		b.WriteString("|" + v.Line(row) + "|\n")
	}
	b.WriteString(border)
	return b.String()
}
