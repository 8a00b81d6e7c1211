// Package lcd drives a 16x2 HD44780-compatible character LCD in 8-bit mode.
//
// Driver issues the controller commands (initialisation, clear, cursor
// positioning, character data). Commands reach the panel through a Bus:
//   - ParallelBus toggles RS/RW/EN and eight data lines via periph.io GPIO
//   - VirtualScreen decodes the same byte stream into an in-memory DDRAM,
//     for the simulator and tests
//
// Usage:
//
//	screen := lcd.NewVirtualScreen()
//	drv := lcd.NewDriver(screen, clockwork.NewRealClock())
//	if err := drv.Init(); err != nil {
//	    return err
//	}
//	_ = drv.WriteAt(0, 0, "PIN: ")
package lcd
