//go:build !linux

package serial

import "os"

// configure is a no-op where termios is not wired; the device keeps its
// current line settings.
func configure(_ *os.File, _ int) error {
	return nil
}
