// Package influxdb writes PIN pad metrics to InfluxDB.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched non-blocking writes and health checks.
//
// # Measurements
//
//	pinpad_attempts  tags: device_id, outcome, trigger  fields: length, failures
//	pinpad_lockouts  tags: device_id, phase             fields: seconds
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteAttemptMetric(influxdb.AttemptMetric{DeviceID: "door-east", Outcome: "fail"})
//
// # Error Handling
//
// Write failures are delivered asynchronously to the SetOnError callback.
// Connection and health check errors are returned directly.
package influxdb
