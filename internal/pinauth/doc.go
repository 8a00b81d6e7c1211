// Package pinauth implements the PIN entry and authentication state machine
// for the Gray Logic keypad panel.
//
// The Controller owns the PIN buffer and the failure counter. It polls a
// KeypadSource once per loop iteration, mutates the buffer on digit,
// backspace and submit events, verifies the candidate through a Verifier
// and pushes the outcome to a Display, an Indicator (LEDs) and a LogSink.
// After MaxFailures consecutive failures it hands control to a LockoutTimer
// which counts down before the panel becomes ready again.
//
// # Execution Model
//
// Everything runs on a single goroutine. Debounce, LED blinks, lockout ticks
// and idle polling are synchronous waits through the injected Sleeper, so
// tests drive the whole machine without real elapsed time. Once a wait has
// started it runs to completion; there is no cancellation.
//
// # Keys
//
//	'0'..'9'  append a digit (ignored when 4 digits are already held)
//	'*'       backspace (ignored when the buffer is empty)
//	'#'       submit at any length
//
// Entering the fourth digit submits automatically.
//
// # Verification
//
// HashStore compares a 32-bit FNV-1a digest of the candidate with the word
// persisted in non-volatile storage. Candidates that are not exactly four
// characters long are rejected before hashing. PlainVerifier is the weak
// demo variant that compares against a fixed PIN.
//
// # Security
//
// The PIN buffer is zero-filled immediately after every verification
// attempt. The hashed log policy never writes the plaintext candidate; the
// plaintext policy exists only to reproduce the weak demo firmware.
//
// FNV-1a is not a cryptographic hash. It is kept because the stored
// reference word format depends on it.
//
// Usage:
//
//	store, err := pinauth.NewHashStore(nvWord, "0258")
//	ctrl, err := pinauth.NewController(pinauth.Options{
//	    Keypad:    matrix,
//	    Display:   screen,
//	    Indicator: leds,
//	    Sink:      serialSink,
//	    Verifier:  store,
//	    Sleeper:   clockwork.NewRealClock(),
//	})
//	err = ctrl.Run(ctx)
package pinauth
