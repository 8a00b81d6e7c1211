package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/graylogic-pinpad/internal/infrastructure/mqtt"
	"github.com/nerrad567/graylogic-pinpad/internal/pinauth"
)

// Publisher is the subset of *mqtt.Client used by MQTTRecorder.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// AttemptMessage is the JSON body published on graylogic/pinpad/{id}/attempt.
type AttemptMessage struct {
	DeviceID  string `json:"device_id"`
	Outcome   string `json:"outcome"`
	Trigger   string `json:"trigger"`
	Length    int    `json:"length"`
	Failures  int    `json:"failures"`
	Timestamp string `json:"timestamp"`
}

// LockoutMessage is the JSON body published on graylogic/pinpad/{id}/lockout.
type LockoutMessage struct {
	DeviceID  string `json:"device_id"`
	Phase     string `json:"phase"`
	Seconds   int    `json:"seconds"`
	Timestamp string `json:"timestamp"`
}

// MQTTRecorder publishes events as non-retained JSON messages.
type MQTTRecorder struct {
	pub Publisher
	qos byte
}

// NewMQTTRecorder returns a recorder publishing at qos.
func NewMQTTRecorder(pub Publisher, qos byte) *MQTTRecorder {
	return &MQTTRecorder{pub: pub, qos: qos}
}

// RecordAttempt implements pinauth.Recorder.
func (r *MQTTRecorder) RecordAttempt(_ context.Context, a pinauth.Attempt) error {
	return r.publish(mqtt.Topics{}.PinpadAttempt(a.DeviceID), AttemptMessage{
		DeviceID:  a.DeviceID,
		Outcome:   strings.ToLower(a.Outcome()),
		Trigger:   string(a.Trigger),
		Length:    a.Length,
		Failures:  a.Failures,
		Timestamp: formatTime(a.At),
	})
}

// RecordLockout implements pinauth.Recorder.
func (r *MQTTRecorder) RecordLockout(_ context.Context, e pinauth.LockoutEvent) error {
	return r.publish(mqtt.Topics{}.PinpadLockout(e.DeviceID), LockoutMessage{
		DeviceID:  e.DeviceID,
		Phase:     string(e.Phase),
		Seconds:   e.Seconds,
		Timestamp: formatTime(e.At),
	})
}

func (r *MQTTRecorder) publish(topic string, msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", topic, err)
	}
	if err := r.pub.Publish(topic, payload, r.qos, false); err != nil {
		return fmt.Errorf("publishing %s: %w", topic, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}
