package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/nerrad567/graylogic-pinpad/internal/infrastructure/config"
	"github.com/nerrad567/graylogic-pinpad/internal/infrastructure/database"
	"github.com/nerrad567/graylogic-pinpad/internal/infrastructure/logging"
	"github.com/nerrad567/graylogic-pinpad/internal/pinauth"
)

// lockoutPulse is the LED on-time at the start of each lockout second.
const lockoutPulse = 150 * time.Millisecond

// serve wires storage, hardware and recorders and runs the controller until
// ctx is cancelled, the key input ends, or a shutdown arrives over MQTT.
func serve(ctx context.Context, cfg *config.Config, db *database.DB, log *logging.Logger, stdin io.Reader, stdout io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	clock := clockwork.NewRealClock()

	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check: %w", err)
	}

	policy, err := pinauth.ParseLogPolicy(cfg.Auth.LogPolicy)
	if err != nil {
		return fmt.Errorf("log policy: %w", err)
	}

	verifier, err := buildVerifier(ctx, cfg, db, clock, log)
	if err != nil {
		return err
	}

	hw, err := openHardware(cfg, clock, stdin, stdout, log)
	if err != nil {
		return err
	}
	defer hw.Close(log)

	recorders, closeRecorders := connectRecorders(ctx, cfg, db, clock, cancel, log)
	defer closeRecorders()

	var keys pinauth.KeypadSource = hw.keypad
	if hw.drained != nil {
		keys = &endOfInput{KeypadSource: hw.keypad, drained: hw.drained, stop: cancel}
	}

	ctrl, err := pinauth.NewController(pinauth.Options{
		Keypad:    keys,
		Display:   hw.display,
		Indicator: hw.indicator,
		Sink:      hw.sink,
		Verifier:  verifier,
		Sleeper:   clock,
		Policy:    policy,
		Timing: pinauth.Timing{
			BlinkCount:    cfg.Auth.BlinkCount,
			BlinkInterval: cfg.Auth.BlinkInterval(),
			IdleInterval:  cfg.Auth.IdleInterval(),
			LockoutTicks:  cfg.Auth.LockoutSeconds,
			LockoutTick:   time.Second,
			LockoutPulse:  lockoutPulse,
		},
		MaxFailures: maxFailures(cfg.Auth.MaxFailures),
		DeviceID:    cfg.Device.ID,
		Now:         clock.Now,
		Logger:      log,
		Recorders:   recorders,
	})
	if err != nil {
		return fmt.Errorf("creating controller: %w", err)
	}

	log.Info("starting PIN pad",
		"version", version,
		"hardware", cfg.Hardware.Mode,
		"verification", cfg.Auth.Verification,
		"nvstore", cfg.NVStore.Backend,
	)

	if err := ctrl.Run(ctx); err != nil {
		return fmt.Errorf("running controller: %w", err)
	}

	log.Info("PIN pad stopped")
	return nil
}

// maxFailures maps the config value, where 0 disables lockout, onto the
// controller's convention, where a negative value does.
func maxFailures(configured int) int {
	if configured == 0 {
		return -1
	}
	return configured
}

// endOfInput stops the controller once a finite key source is exhausted.
type endOfInput struct {
	pinauth.KeypadSource
	drained func() bool
	stop    context.CancelFunc
}

func (e *endOfInput) Poll() (pinauth.Key, bool) {
	k, ok := e.KeypadSource.Poll()
	if !ok && e.drained() {
		e.stop()
	}
	return k, ok
}
