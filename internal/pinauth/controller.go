package pinauth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Timing holds every delay the controller performs.
type Timing struct {
	// BlinkCount is the number of on/off cycles after a failed attempt.
	BlinkCount int

	// BlinkInterval is the on time and the off time of one blink.
	BlinkInterval time.Duration

	// IdleInterval is slept after a scan that produced no key.
	IdleInterval time.Duration

	// LockoutTicks is the number of countdown periods in a lockout.
	LockoutTicks int

	// LockoutTick is the length of one countdown period.
	LockoutTick time.Duration

	// LockoutPulse is the indicator on-time at the start of each period.
	LockoutPulse time.Duration
}

// DefaultTiming returns the timing of the reference firmware.
func DefaultTiming() Timing {
	return Timing{
		BlinkCount:    6,
		BlinkInterval: 150 * time.Millisecond,
		IdleInterval:  3 * time.Millisecond,
		LockoutTicks:  10,
		LockoutTick:   time.Second,
		LockoutPulse:  150 * time.Millisecond,
	}
}

// DefaultMaxFailures is the number of consecutive failures that triggers a
// lockout.
const DefaultMaxFailures = 3

// Options configures a Controller.
type Options struct {
	Keypad    KeypadSource
	Display   Display
	Indicator Indicator
	Sink      LogSink
	Verifier  Verifier
	Sleeper   Sleeper

	// Policy selects the serial log format. Zero value is LogHashed.
	Policy LogPolicy

	// Timing defaults to DefaultTiming when zero.
	Timing Timing

	// MaxFailures of 0 selects DefaultMaxFailures; a negative value disables
	// lockout entirely.
	MaxFailures int

	DeviceID  string
	Now       func() time.Time
	Logger    Logger
	Recorders []Recorder
}

// Controller is the PIN entry state machine.
//
// Thread Safety:
//   - Not safe for concurrent use. A Controller is owned by the single
//     goroutine that calls Run or Step.
type Controller struct {
	keypad    KeypadSource
	display   Display
	indicator Indicator
	sink      LogSink
	verifier  Verifier
	sleeper   Sleeper

	policy      LogPolicy
	timing      Timing
	maxFailures int
	deviceID    string
	now         func() time.Time
	logger      Logger
	recorders   []Recorder
	lockout     *LockoutTimer

	buf      [PINLength]byte
	length   int
	failures int
}

// NewController validates opts and returns a Controller in the ready state.
func NewController(opts Options) (*Controller, error) {
	switch {
	case opts.Keypad == nil:
		return nil, fmt.Errorf("%w: keypad", ErrMissingCollaborator)
	case opts.Display == nil:
		return nil, fmt.Errorf("%w: display", ErrMissingCollaborator)
	case opts.Indicator == nil:
		return nil, fmt.Errorf("%w: indicator", ErrMissingCollaborator)
	case opts.Sink == nil:
		return nil, fmt.Errorf("%w: log sink", ErrMissingCollaborator)
	case opts.Verifier == nil:
		return nil, fmt.Errorf("%w: verifier", ErrMissingCollaborator)
	case opts.Sleeper == nil:
		return nil, fmt.Errorf("%w: sleeper", ErrMissingCollaborator)
	}

	timing := opts.Timing
	if timing == (Timing{}) {
		timing = DefaultTiming()
	}

	maxFailures := opts.MaxFailures
	if maxFailures == 0 {
		maxFailures = DefaultMaxFailures
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var logger Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.Logger != nil {
		logger = opts.Logger
	}

	return &Controller{
		keypad:      opts.Keypad,
		display:     opts.Display,
		indicator:   opts.Indicator,
		sink:        opts.Sink,
		verifier:    opts.Verifier,
		sleeper:     opts.Sleeper,
		policy:      opts.Policy,
		timing:      timing,
		maxFailures: maxFailures,
		deviceID:    opts.DeviceID,
		now:         now,
		logger:      logger,
		recorders:   opts.Recorders,
		lockout: NewLockoutTimer(opts.Display, opts.Indicator, opts.Sleeper,
			timing.LockoutTicks, timing.LockoutTick, timing.LockoutPulse),
	}, nil
}

// Start prints the policy banner and draws the ready screen.
func (c *Controller) Start() {
	for _, line := range c.policy.Banner() {
		c.sink.LogLine(line)
	}
	c.display.ShowReady()
}

// Run starts the controller and polls the keypad until ctx is cancelled.
// Cancellation is observed between iterations only.
func (c *Controller) Run(ctx context.Context) error {
	c.Start()
	c.logger.Info("PIN pad ready",
		"policy", c.policy.String(),
		"max_failures", c.maxFailures,
		"lockout_seconds", c.lockout.Duration(),
	)

	for {
		select {
		case <-ctx.Done():
			c.wipe()
			return nil
		default:
		}
		c.Step(ctx)
	}
}

// Step performs one loop iteration: poll the keypad once and act on the key,
// or sleep the idle interval when nothing was pressed.
// Returns true if a key was handled.
func (c *Controller) Step(ctx context.Context) bool {
	k, ok := c.keypad.Poll()
	if !ok {
		c.sleeper.Sleep(c.timing.IdleInterval)
		return false
	}
	c.HandleKey(ctx, k)
	return true
}

// HandleKey applies a single key event.
func (c *Controller) HandleKey(ctx context.Context, k Key) {
	switch {
	case k.IsDigit():
		c.appendDigit(ctx, byte(k))
	case k == KeyBackspace:
		c.backspace()
	case k == KeySubmit:
		c.verify(ctx, TriggerSubmit)
	}
}

// Length returns the number of digits currently buffered.
func (c *Controller) Length() int {
	return c.length
}

// Failures returns the consecutive failure count.
func (c *Controller) Failures() int {
	return c.failures
}

// Buffer returns a copy of the raw PIN buffer including unused slots.
func (c *Controller) Buffer() [PINLength]byte {
	return c.buf
}

// LockoutState returns the state of the lockout timer.
func (c *Controller) LockoutState() LockoutState {
	return c.lockout.State()
}

func (c *Controller) appendDigit(ctx context.Context, d byte) {
	if c.length >= PINLength {
		return
	}

	// A new entry clears whatever the previous attempt left on screen.
	if c.length == 0 {
		c.display.ShowResult("")
		c.display.ShowMask(0)
	}

	c.buf[c.length] = d
	c.length++
	if c.policy.echoesDigits() {
		c.sink.Echo(d)
	}
	c.display.ShowMask(c.length)

	if c.length == PINLength {
		c.verify(ctx, TriggerAuto)
	}
}

func (c *Controller) backspace() {
	if c.length == 0 {
		return
	}
	c.length--
	c.buf[c.length] = 0
	c.display.ShowMask(c.length)
}

// verify is the single verification entry point for both auto and explicit
// submission.
func (c *Controller) verify(ctx context.Context, trigger Trigger) {
	n := c.length
	candidate := c.buf[:n]

	ok, err := c.verifier.Verify(ctx, candidate)
	if err != nil {
		c.logger.Error("PIN verification error", "error", err)
		ok = false
	}

	attempt := Attempt{
		DeviceID: c.deviceID,
		Success:  ok,
		Length:   n,
		Digest:   Hash(candidate),
		Trigger:  trigger,
		At:       c.now(),
	}
	if c.policy == LogPlaintext {
		attempt.plaintext = string(candidate)
	}

	c.wipe()

	if ok {
		c.indicator.Set(true)
		c.display.ShowResult(ResultOK)
		c.failures = 0
	} else {
		c.blink()
		c.display.ShowResult(ResultFail)
		c.failures++
	}
	attempt.Failures = c.failures

	// The mask keeps showing the submitted length although the buffer is empty.
	c.display.ShowMask(n)

	c.sink.LogLine(c.policy.AttemptLine(attempt))
	c.logger.Info("PIN attempt",
		"outcome", attempt.Outcome(),
		"trigger", string(trigger),
		"length", n,
		"failures", c.failures,
	)
	c.recordAttempt(ctx, attempt)

	if !ok && c.maxFailures > 0 && c.failures >= c.maxFailures {
		c.enterLockout(ctx)
	}
}

func (c *Controller) enterLockout(ctx context.Context) {
	seconds := c.lockout.Duration()
	started := LockoutEvent{DeviceID: c.deviceID, Phase: LockoutStarted, Seconds: seconds, At: c.now()}

	c.logger.Warn("PIN pad locked out", "failures", c.failures, "seconds", seconds)
	c.sink.LogLine(c.policy.LockoutLine(started))
	c.recordLockout(ctx, started)

	c.lockout.Run(nil)

	c.failures = 0
	c.display.ShowReady()

	ended := LockoutEvent{DeviceID: c.deviceID, Phase: LockoutEnded, Seconds: seconds, At: c.now()}
	c.sink.LogLine(c.policy.LockoutLine(ended))
	c.logger.Info("PIN pad lockout ended")
	c.recordLockout(ctx, ended)
}

func (c *Controller) blink() {
	for i := 0; i < c.timing.BlinkCount; i++ {
		c.indicator.Set(true)
		c.sleeper.Sleep(c.timing.BlinkInterval)
		c.indicator.Set(false)
		c.sleeper.Sleep(c.timing.BlinkInterval)
	}
	c.indicator.Set(false)
}

// wipe zero-fills the PIN buffer and resets the length.
func (c *Controller) wipe() {
	clear(c.buf[:])
	c.length = 0
}

func (c *Controller) recordAttempt(ctx context.Context, a Attempt) {
	for _, r := range c.recorders {
		if err := r.RecordAttempt(ctx, a); err != nil {
			c.logger.Warn("recording PIN attempt failed", "error", err)
		}
	}
}

func (c *Controller) recordLockout(ctx context.Context, e LockoutEvent) {
	for _, r := range c.recorders {
		if err := r.RecordLockout(ctx, e); err != nil {
			c.logger.Warn("recording lockout failed", "error", err)
		}
	}
}
