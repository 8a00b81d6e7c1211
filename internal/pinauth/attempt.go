package pinauth

import "time"

// Trigger identifies what started a verification.
type Trigger string

const (
	// TriggerAuto is the implicit submit when the fourth digit is entered.
	TriggerAuto Trigger = "auto"

	// TriggerSubmit is an explicit '#' press.
	TriggerSubmit Trigger = "submit"
)

// Outcome strings shown on the result line and used in records.
const (
	ResultOK   = "OK"
	ResultFail = "FAIL"
)

// Attempt describes one verification.
type Attempt struct {
	DeviceID string
	Success  bool
	Length   int
	Digest   uint32
	Trigger  Trigger

	// Failures is the consecutive failure count after this attempt.
	Failures int

	At time.Time

	// plaintext is only filled under the plaintext log policy and is never
	// visible to recorders.
	plaintext string
}

// Outcome returns ResultOK or ResultFail.
func (a Attempt) Outcome() string {
	if a.Success {
		return ResultOK
	}
	return ResultFail
}

// LockoutPhase marks the start or end of a lockout.
type LockoutPhase string

const (
	LockoutStarted LockoutPhase = "started"
	LockoutEnded   LockoutPhase = "ended"
)

// LockoutEvent is emitted when a lockout begins and when it completes.
type LockoutEvent struct {
	DeviceID string
	Phase    LockoutPhase
	Seconds  int
	At       time.Time
}
