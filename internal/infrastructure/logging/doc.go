// Package logging provides structured operator logging for the PIN pad.
//
// This package wraps Go's standard log/slog package. It is separate from the
// device serial log (package serial), which carries the fixed [AUTH] and
// [RESULT] lines.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stderr"   # stderr, stdout, discard
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("PIN pad ready", "device_id", cfg.Device.ID)
//
// # Security
//
// Never log PIN digits or the stored hash word at any level.
package logging
