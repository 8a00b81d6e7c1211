package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementAttempts = "pinpad_attempts"
	MeasurementLockouts = "pinpad_lockouts"
)

// AttemptMetric is one verification outcome. It never carries PIN digits
// or digests.
type AttemptMetric struct {
	DeviceID string
	Outcome  string // "ok" or "fail"
	Trigger  string // "auto" or "submit"
	Length   int
	Failures int
	At       time.Time
}

// LockoutMetric is one lockout transition.
type LockoutMetric struct {
	DeviceID string
	Phase    string // "started" or "ended"
	Seconds  int
	At       time.Time
}

// WriteAttemptMetric queues an attempt point.
//
// Tags: device_id, outcome, trigger. Fields: length, failures.
// The write is non-blocking; data is batched and sent asynchronously.
func (c *Client) WriteAttemptMetric(m AttemptMetric) {
	c.WritePointWithTime(MeasurementAttempts,
		map[string]string{
			"device_id": m.DeviceID,
			"outcome":   m.Outcome,
			"trigger":   m.Trigger,
		},
		map[string]interface{}{
			"length":   m.Length,
			"failures": m.Failures,
		},
		m.At,
	)
}

// WriteLockoutMetric queues a lockout point.
//
// Tags: device_id, phase. Fields: seconds.
func (c *Client) WriteLockoutMetric(m LockoutMetric) {
	c.WritePointWithTime(MeasurementLockouts,
		map[string]string{
			"device_id": m.DeviceID,
			"phase":     m.Phase,
		},
		map[string]interface{}{
			"seconds": m.Seconds,
		},
		m.At,
	)
}

// WritePointWithTime writes a custom point with a specific timestamp.
// A zero timestamp is replaced with the current time.
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
