package pinauth

import (
	"context"
	"time"
)

// PINLength is the number of digits in a complete PIN.
const PINLength = 4

// Key is a decoded keypad character.
type Key byte

const (
	// KeyBackspace removes the most recent digit.
	KeyBackspace Key = '*'

	// KeySubmit submits the buffer at its current length.
	KeySubmit Key = '#'
)

// IsDigit reports whether k is one of '0'..'9'.
func (k Key) IsDigit() bool {
	return k >= '0' && k <= '9'
}

// String returns the key as a one-character string.
func (k Key) String() string {
	return string(rune(k))
}

// ParseKey maps a raw character onto the keypad alphabet.
// Characters outside {0-9, *, #} are rejected.
func ParseKey(c byte) (Key, bool) {
	k := Key(c)
	if k.IsDigit() || k == KeyBackspace || k == KeySubmit {
		return k, true
	}
	return 0, false
}

// KeypadSource produces decoded key presses.
//
// Poll may block while a key is held down; callers treat it as synchronous.
// It returns false when no key was pressed during the scan.
type KeypadSource interface {
	Poll() (Key, bool)
}

// Display renders PIN entry feedback. Every call overwrites a fixed region
// of the screen unconditionally.
type Display interface {
	// ShowReady draws the idle screen: empty mask and empty result line.
	ShowReady()

	// ShowMask draws count filled mask cells followed by blanks up to PINLength.
	ShowMask(count int)

	// ShowResult writes text on the result line, padded to clear prior content.
	ShowResult(text string)

	// ShowCountdown renders the remaining lockout seconds on the result line.
	ShowCountdown(seconds int)
}

// Indicator drives the feedback LEDs as a single group.
type Indicator interface {
	Set(on bool)
}

// LogSink is a best-effort diagnostic byte stream. Implementations must not
// block indefinitely and never report failures.
type LogSink interface {
	LogLine(text string)
	Echo(c byte)
}

// Sleeper performs synchronous waits. clockwork.Clock satisfies it.
type Sleeper interface {
	Sleep(d time.Duration)
}

// Verifier decides whether a candidate PIN is correct.
//
// A non-nil error means the decision could not be made (for example the
// reference word could not be read); the controller counts it as a failure.
type Verifier interface {
	Verify(ctx context.Context, candidate []byte) (bool, error)
}

// Recorder receives verification outcomes and lockout transitions for
// auditing and telemetry. Errors are logged by the controller and otherwise
// ignored.
type Recorder interface {
	RecordAttempt(ctx context.Context, attempt Attempt) error
	RecordLockout(ctx context.Context, event LockoutEvent) error
}

// Logger is the operator log used by the controller.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
