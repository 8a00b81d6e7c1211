// Package mqtt publishes PIN pad events to an MQTT broker.
//
// This package manages:
//   - Connection to Mosquitto with auto-reconnect
//   - Attempt and lockout event publishing
//   - A retained status topic with Last Will and Testament
//   - Subscription to the system shutdown signal
//
// # Topics
//
//	graylogic/pinpad/{device_id}/attempt   verification outcomes
//	graylogic/pinpad/{device_id}/lockout   lockout started / ended
//	graylogic/pinpad/{device_id}/status    retained online / offline
//	graylogic/system/shutdown              stop request
//
// Payloads never carry PIN digits, even under the plaintext log policy.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, cfg.Device.ID)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Publish(mqtt.Topics{}.PinpadAttempt(cfg.Device.ID), payload, client.QoS(), false)
package mqtt
