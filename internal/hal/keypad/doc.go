// Package keypad provides pinauth.KeypadSource implementations.
//
//   - Matrix scans a 4x3 membrane keypad over periph.io GPIO: one column is
//     driven high at a time and the four row lines are sampled, with a
//     debounce confirmation and a wait for release.
//   - Stream maps bytes from an io.Reader to keys (piped input, tests).
//   - Console reads lines from an interactive readline prompt.
//
// All three are polled from the controller goroutine and never block on
// input: Stream and Console buffer keys from a reader goroutine.
package keypad
