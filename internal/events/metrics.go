package events

import (
	"context"
	"strings"

	"github.com/nerrad567/graylogic-pinpad/internal/infrastructure/influxdb"
	"github.com/nerrad567/graylogic-pinpad/internal/pinauth"
)

// MetricsWriter is the subset of *influxdb.Client used by MetricsRecorder.
type MetricsWriter interface {
	WriteAttemptMetric(m influxdb.AttemptMetric)
	WriteLockoutMetric(m influxdb.LockoutMetric)
}

// MetricsRecorder queues events as InfluxDB points. Writes are asynchronous,
// so it never returns an error; failures surface through the client's
// SetOnError callback.
type MetricsRecorder struct {
	w MetricsWriter
}

// NewMetricsRecorder returns a recorder writing to w.
func NewMetricsRecorder(w MetricsWriter) *MetricsRecorder {
	return &MetricsRecorder{w: w}
}

// RecordAttempt implements pinauth.Recorder.
func (r *MetricsRecorder) RecordAttempt(_ context.Context, a pinauth.Attempt) error {
	r.w.WriteAttemptMetric(influxdb.AttemptMetric{
		DeviceID: a.DeviceID,
		Outcome:  strings.ToLower(a.Outcome()),
		Trigger:  string(a.Trigger),
		Length:   a.Length,
		Failures: a.Failures,
		At:       a.At,
	})
	return nil
}

// RecordLockout implements pinauth.Recorder.
func (r *MetricsRecorder) RecordLockout(_ context.Context, e pinauth.LockoutEvent) error {
	r.w.WriteLockoutMetric(influxdb.LockoutMetric{
		DeviceID: e.DeviceID,
		Phase:    string(e.Phase),
		Seconds:  e.Seconds,
		At:       e.At,
	})
	return nil
}
