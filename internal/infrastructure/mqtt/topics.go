package mqtt

import "fmt"

// Topic prefixes. Every PIN pad publishes under its own device ID.
const (
	// TopicPrefixPinpad is the base for per-device PIN pad topics.
	TopicPrefixPinpad = "graylogic/pinpad"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "graylogic/system"
)

// Topics provides builders for PIN pad MQTT topics.
//
//	topics := mqtt.Topics{}
//	attemptTopic := topics.PinpadAttempt("door-east")
//	// Returns: "graylogic/pinpad/door-east/attempt"
type Topics struct{}

// PinpadAttempt returns the topic for verification attempt events.
//
// Example: graylogic/pinpad/door-east/attempt
func (Topics) PinpadAttempt(deviceID string) string {
	return fmt.Sprintf("%s/%s/attempt", TopicPrefixPinpad, deviceID)
}

// PinpadLockout returns the topic for lockout start and end events.
//
// Example: graylogic/pinpad/door-east/lockout
func (Topics) PinpadLockout(deviceID string) string {
	return fmt.Sprintf("%s/%s/lockout", TopicPrefixPinpad, deviceID)
}

// PinpadStatus returns the retained online/offline topic, also used for the LWT.
//
// Example: graylogic/pinpad/door-east/status
func (Topics) PinpadStatus(deviceID string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefixPinpad, deviceID)
}

// SystemShutdown returns the shutdown signal topic.
//
// Example: graylogic/system/shutdown
func (Topics) SystemShutdown() string {
	return fmt.Sprintf("%s/shutdown", TopicPrefixSystem)
}

// AllPinpadAttempts returns a pattern matching attempts from every PIN pad.
//
// Pattern: graylogic/pinpad/+/attempt
func (Topics) AllPinpadAttempts() string {
	return fmt.Sprintf("%s/+/attempt", TopicPrefixPinpad)
}

// AllPinpadLockouts returns a pattern matching lockouts from every PIN pad.
//
// Pattern: graylogic/pinpad/+/lockout
func (Topics) AllPinpadLockouts() string {
	return fmt.Sprintf("%s/+/lockout", TopicPrefixPinpad)
}
