// Package events forwards PIN pad attempt and lockout events to MQTT and
// InfluxDB. Both recorders implement pinauth.Recorder and never see PIN
// digits or digests.
package events
