// Package panel renders the PIN entry screen on a 16x2 character display.
//
// Layout:
//
//	row 0: "PIN: " followed by one '*' per entered digit (cols 5-8)
//	row 1: result line ("OK", "FAIL") or lockout countdown ("LOCKED 7s")
//
// Every write covers its whole field, so stale characters from a longer
// previous value never remain on screen.
package panel

import (
	"fmt"
	"strings"

	"github.com/nerrad567/graylogic-pinpad/internal/pinauth"
)

// Screen geometry.
const (
	Cols = 16

	promptRow = 0
	maskCol   = 5
	resultRow = 1

	prompt = "PIN: "
)

// Writer places text on the display. *lcd.Driver satisfies it.
type Writer interface {
	WriteAt(row, col int, s string) error
}

// Logger receives display write failures.
type Logger interface {
	Warn(msg string, args ...any)
}

// Screen implements pinauth.Display over a character display.
type Screen struct {
	w      Writer
	logger Logger
}

// NewScreen returns a Screen writing to w. logger may be nil.
func NewScreen(w Writer, logger Logger) *Screen {
	return &Screen{w: w, logger: logger}
}

// ShowReady draws the empty prompt and clears the result line.
func (s *Screen) ShowReady() {
	s.write(promptRow, 0, pad(prompt, Cols))
	s.write(resultRow, 0, pad("", Cols))
}

// ShowMask draws count asterisks in the mask field, clamped to the PIN
// length.
func (s *Screen) ShowMask(count int) {
	count = max(0, min(count, pinauth.PINLength))
	s.write(promptRow, maskCol, pad(strings.Repeat("*", count), pinauth.PINLength))
}

// ShowResult replaces the result line with text.
func (s *Screen) ShowResult(text string) {
	s.write(resultRow, 0, pad(text, Cols))
}

// ShowCountdown draws the lockout countdown on the result line.
func (s *Screen) ShowCountdown(seconds int) {
	s.write(resultRow, 0, pad(fmt.Sprintf("LOCKED %ds", seconds), Cols))
}

func (s *Screen) write(row, col int, text string) {
	if err := s.w.WriteAt(row, col, text); err != nil && s.logger != nil {
		s.logger.Warn("display write failed", "row", row, "col", col, "error", err)
	}
}

// pad left-aligns s in a field of width, truncating when longer.
func pad(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}
