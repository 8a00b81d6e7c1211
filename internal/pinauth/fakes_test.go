package pinauth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// fakeKeypad replays a fixed key sequence, then reports no key.
type fakeKeypad struct {
	keys []Key
}

func newFakeKeypad(keys string) *fakeKeypad {
	k := &fakeKeypad{}
	for i := 0; i < len(keys); i++ {
		k.keys = append(k.keys, Key(keys[i]))
	}
	return k
}

func (k *fakeKeypad) Poll() (Key, bool) {
	if len(k.keys) == 0 {
		return 0, false
	}
	key := k.keys[0]
	k.keys = k.keys[1:]
	return key, true
}

// fakeDisplay records every rendering call.
type fakeDisplay struct {
	calls      []string
	mask       int
	result     string
	countdowns []int
	readyCount int
}

func (d *fakeDisplay) ShowReady() {
	d.calls = append(d.calls, "ready")
	d.mask = 0
	d.result = ""
	d.readyCount++
}

func (d *fakeDisplay) ShowMask(count int) {
	d.calls = append(d.calls, fmt.Sprintf("mask:%d", count))
	d.mask = count
}

func (d *fakeDisplay) ShowResult(text string) {
	d.calls = append(d.calls, "result:"+text)
	d.result = text
}

func (d *fakeDisplay) ShowCountdown(seconds int) {
	d.calls = append(d.calls, fmt.Sprintf("countdown:%d", seconds))
	d.countdowns = append(d.countdowns, seconds)
}

// fakeIndicator records LED transitions.
type fakeIndicator struct {
	on      bool
	changes []bool
}

func (i *fakeIndicator) Set(on bool) {
	i.on = on
	i.changes = append(i.changes, on)
}

// onCount returns how many times the LEDs were switched on.
func (i *fakeIndicator) onCount() int {
	n := 0
	for _, c := range i.changes {
		if c {
			n++
		}
	}
	return n
}

// fakeSink captures serial output.
type fakeSink struct {
	lines  []string
	echoed []byte
}

func (s *fakeSink) LogLine(text string) { s.lines = append(s.lines, text) }
func (s *fakeSink) Echo(c byte)         { s.echoed = append(s.echoed, c) }

func (s *fakeSink) last() string {
	if len(s.lines) == 0 {
		return ""
	}
	return s.lines[len(s.lines)-1]
}

// fakeSleeper accumulates simulated time.
type fakeSleeper struct {
	total time.Duration
	calls []time.Duration
}

func (s *fakeSleeper) Sleep(d time.Duration) {
	s.total += d
	s.calls = append(s.calls, d)
}

// memWord is an in-memory WordStore.
type memWord struct {
	value   uint32
	set     bool
	loads   int
	stores  int
	loadErr error
}

func (m *memWord) LoadWord(_ context.Context) (uint32, bool, error) {
	m.loads++
	if m.loadErr != nil {
		return 0, false, m.loadErr
	}
	return m.value, m.set, nil
}

func (m *memWord) StoreWord(_ context.Context, value uint32) error {
	m.stores++
	m.value = value
	m.set = true
	return nil
}

// spyVerifier wraps a Verifier and keeps the candidates it was given.
type spyVerifier struct {
	inner      Verifier
	candidates []string
}

func (v *spyVerifier) Verify(ctx context.Context, candidate []byte) (bool, error) {
	v.candidates = append(v.candidates, string(candidate))
	return v.inner.Verify(ctx, candidate)
}

// fakeRecorder collects attempts and lockout events.
type fakeRecorder struct {
	attempts []Attempt
	lockouts []LockoutEvent
	err      error
}

func (r *fakeRecorder) RecordAttempt(_ context.Context, a Attempt) error {
	r.attempts = append(r.attempts, a)
	return r.err
}

func (r *fakeRecorder) RecordLockout(_ context.Context, e LockoutEvent) error {
	r.lockouts = append(r.lockouts, e)
	return r.err
}

var errBoom = errors.New("boom")

// rig bundles a controller with its fakes.
type rig struct {
	ctrl      *Controller
	keypad    *fakeKeypad
	display   *fakeDisplay
	indicator *fakeIndicator
	sink      *fakeSink
	sleeper   *fakeSleeper
	nv        *memWord
	verifier  *spyVerifier
	recorder  *fakeRecorder
}

// newRig builds a controller over a HashStore initialised with "0258".
func newRig(t *testing.T, policy LogPolicy) *rig {
	t.Helper()

	nv := &memWord{}
	store, err := NewHashStore(nv, "0258")
	if err != nil {
		t.Fatalf("NewHashStore() error = %v", err)
	}
	if _, err := store.InitializeIfNeeded(context.Background()); err != nil {
		t.Fatalf("InitializeIfNeeded() error = %v", err)
	}

	r := &rig{
		keypad:    newFakeKeypad(""),
		display:   &fakeDisplay{},
		indicator: &fakeIndicator{},
		sink:      &fakeSink{},
		sleeper:   &fakeSleeper{},
		nv:        nv,
		verifier:  &spyVerifier{inner: store},
		recorder:  &fakeRecorder{},
	}

	ctrl, err := NewController(Options{
		Keypad:    r.keypad,
		Display:   r.display,
		Indicator: r.indicator,
		Sink:      r.sink,
		Verifier:  r.verifier,
		Sleeper:   r.sleeper,
		Policy:    policy,
		DeviceID:  "pinpad-test",
		Now:       func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
		Recorders: []Recorder{r.recorder},
	})
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	r.ctrl = ctrl
	return r
}

// press feeds keys straight into the controller.
func (r *rig) press(keys string) {
	for i := 0; i < len(keys); i++ {
		r.ctrl.HandleKey(context.Background(), Key(keys[i]))
	}
}
