package pinauth

import "time"

// LockoutState is the externally visible state of a LockoutTimer.
type LockoutState struct {
	Active    bool
	Remaining int
}

// LockoutTimer counts down a fixed number of ticks, redrawing the countdown
// and pulsing the indicator once per tick.
type LockoutTimer struct {
	display   Display
	indicator Indicator
	sleeper   Sleeper

	ticks int
	tick  time.Duration
	pulse time.Duration

	remaining int
}

// NewLockoutTimer creates a timer of ticks periods, each tick long, with an
// indicator pulse of pulse at the start of every period.
func NewLockoutTimer(display Display, indicator Indicator, sleeper Sleeper, ticks int, tick, pulse time.Duration) *LockoutTimer {
	if pulse > tick {
		pulse = tick
	}
	return &LockoutTimer{
		display:   display,
		indicator: indicator,
		sleeper:   sleeper,
		ticks:     ticks,
		tick:      tick,
		pulse:     pulse,
	}
}

// Duration returns the number of ticks a lockout lasts.
func (t *LockoutTimer) Duration() int {
	return t.ticks
}

// State reports whether a countdown is in progress.
func (t *LockoutTimer) State() LockoutState {
	return LockoutState{Active: t.remaining > 0, Remaining: t.remaining}
}

// Run blocks for the whole countdown. onTick, if non-nil, is called after
// each redraw with the remaining tick count.
func (t *LockoutTimer) Run(onTick func(remaining int)) {
	for t.remaining = t.ticks; t.remaining > 0; t.remaining-- {
		t.display.ShowCountdown(t.remaining)
		if onTick != nil {
			onTick(t.remaining)
		}

		t.indicator.Set(true)
		t.sleeper.Sleep(t.pulse)
		t.indicator.Set(false)
		t.sleeper.Sleep(t.tick - t.pulse)
	}
}
