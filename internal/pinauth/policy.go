package pinauth

import (
	"fmt"
	"strings"
)

// LogPolicy selects what the serial log reveals about PIN entry.
type LogPolicy int

const (
	// LogHashed never writes plaintext; attempts are reported by length and
	// digest.
	LogHashed LogPolicy = iota

	// LogPlaintext echoes each digit and prints the candidate with the
	// result, as the weak demo firmware does.
	LogPlaintext
)

// ParseLogPolicy converts a configuration value ("hashed", "plaintext").
func ParseLogPolicy(s string) (LogPolicy, error) {
	switch strings.ToLower(s) {
	case "", "hashed":
		return LogHashed, nil
	case "plaintext":
		return LogPlaintext, nil
	default:
		return LogHashed, fmt.Errorf("%w: log policy %q", ErrUnknownPolicy, s)
	}
}

// String returns the configuration name of the policy.
func (p LogPolicy) String() string {
	if p == LogPlaintext {
		return "plaintext"
	}
	return "hashed"
}

// Banner returns the lines printed when the controller starts.
func (p LogPolicy) Banner() []string {
	if p == LogPlaintext {
		return []string{
			"=== UART Demo: Weak Auth UX ===",
			"[VULN] Hardcoded PIN (leaked)",
			"[VULN] Plaintext echo",
		}
	}
	return []string{
		"=== UART Demo: Secure Auth UX ===",
		"[SEC] PIN verified by stored hash",
	}
}

func (p LogPolicy) echoesDigits() bool {
	return p == LogPlaintext
}

// AttemptLine formats the log line for a verification.
//
//	hashed:    [AUTH] OK LEN=4 PIN_HASH=0xE175482A
//	plaintext: [RESULT] OK, PIN=0258
func (p LogPolicy) AttemptLine(a Attempt) string {
	if p == LogPlaintext {
		return fmt.Sprintf("[RESULT] %s, PIN=%s", a.Outcome(), a.plaintext)
	}
	return fmt.Sprintf("[AUTH] %s LEN=%d PIN_HASH=%s", a.Outcome(), a.Length, FormatDigest(a.Digest))
}

// LockoutLine formats the log line for a lockout transition.
func (p LogPolicy) LockoutLine(e LockoutEvent) string {
	if e.Phase == LockoutStarted {
		return fmt.Sprintf("[AUTH] LOCKED %ds", e.Seconds)
	}
	return "[AUTH] READY"
}
