package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/graylogic-pinpad/internal/pinauth"
)

// Config is the root configuration of the PIN pad.
// It is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device   DeviceConfig   `yaml:"device"`
	Auth     AuthConfig     `yaml:"auth"`
	Hardware HardwareConfig `yaml:"hardware"`
	NVStore  NVStoreConfig  `yaml:"nvstore"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DeviceConfig identifies this PIN pad in logs, MQTT topics and metrics.
type DeviceConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// AuthConfig controls verification, logging policy and lockout.
type AuthConfig struct {
	// DefaultPIN is hashed into the NV store at start-up when the stored
	// word differs. Override it via PINPAD_DEFAULT_PIN rather than the file.
	DefaultPIN string `yaml:"default_pin"`

	// Verification is "hashed" (compare FNV-1a digests against the NV
	// store) or "plaintext" (compare against DefaultPIN directly).
	Verification string `yaml:"verification"`

	// LogPolicy is "hashed" or "plaintext"; see pinauth.LogPolicy.
	LogPolicy string `yaml:"log_policy"`

	// MaxFailures is the consecutive failures that trigger a lockout.
	// 0 disables lockout.
	MaxFailures int `yaml:"max_failures"`

	LockoutSeconds  int `yaml:"lockout_seconds"`
	BlinkCount      int `yaml:"blink_count"`
	BlinkIntervalMS int `yaml:"blink_interval_ms"`
	IdleIntervalMS  int `yaml:"idle_interval_ms"`
}

// HardwareConfig selects and wires the peripherals.
type HardwareConfig struct {
	// Mode is "simulator" (console keypad, virtual LCD and LEDs) or "gpio".
	Mode   string       `yaml:"mode"`
	Keypad KeypadConfig `yaml:"keypad"`
	LCD    LCDConfig    `yaml:"lcd"`
	LEDs   []string     `yaml:"leds"`
	Serial SerialConfig `yaml:"serial"`
}

// KeypadConfig names the matrix lines (gpioreg names).
type KeypadConfig struct {
	Columns []string `yaml:"columns"`
	Rows    []string `yaml:"rows"`
}

// LCDConfig names the HD44780 control and data lines.
type LCDConfig struct {
	RS   string   `yaml:"rs"`
	RW   string   `yaml:"rw"`
	EN   string   `yaml:"en"`
	Data []string `yaml:"data"`
}

// SerialConfig selects the log sink device. An empty device writes to
// standard output.
type SerialConfig struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

// NVStoreConfig selects where the PIN hash word is persisted.
type NVStoreConfig struct {
	// Backend is "eeprom" (image file) or "sqlite" (nv_words table).
	Backend string `yaml:"backend"`

	// Path of the EEPROM image. Empty keeps the image in memory only.
	Path string `yaml:"path"`

	// Size of the EEPROM image in bytes.
	Size int `yaml:"size"`

	// Address of the hash word.
	Address int `yaml:"address"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains operator log settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern PINPAD_SECTION_KEY, for example
// PINPAD_DEVICE_ID or PINPAD_MQTT_HOST.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig matches the reference firmware: PIN 0258, three failures,
// ten second lockout, six 150 ms blinks.
func defaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			ID:   "pinpad-01",
			Name: "PIN Pad",
		},
		Auth: AuthConfig{
			DefaultPIN:      "0258",
			Verification:    "hashed",
			LogPolicy:       "hashed",
			MaxFailures:     pinauth.DefaultMaxFailures,
			LockoutSeconds:  10,
			BlinkCount:      6,
			BlinkIntervalMS: 150,
			IdleIntervalMS:  3,
		},
		Hardware: HardwareConfig{
			Mode:   "simulator",
			Serial: SerialConfig{Baud: 9600},
		},
		NVStore: NVStoreConfig{
			Backend: "eeprom",
			Path:    "./data/eeprom.bin",
			Size:    1024,
			Address: 0,
		},
		Database: DatabaseConfig{
			Path:        "./data/pinpad.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "graylogic-pinpad",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		InfluxDB: InfluxDBConfig{
			URL:           "http://localhost:8086",
			Org:           "graylogic",
			Bucket:        "pinpad",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies PINPAD_* environment variables.
func applyEnvOverrides(cfg *Config) {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	str("PINPAD_DEVICE_ID", &cfg.Device.ID)

	// Secrets belong in the environment (or a .env file), not config.yaml.
	str("PINPAD_DEFAULT_PIN", &cfg.Auth.DefaultPIN)
	str("PINPAD_VERIFICATION", &cfg.Auth.Verification)
	str("PINPAD_LOG_POLICY", &cfg.Auth.LogPolicy)

	str("PINPAD_HARDWARE_MODE", &cfg.Hardware.Mode)
	str("PINPAD_SERIAL_DEVICE", &cfg.Hardware.Serial.Device)

	str("PINPAD_NVSTORE_BACKEND", &cfg.NVStore.Backend)
	str("PINPAD_NVSTORE_PATH", &cfg.NVStore.Path)

	str("PINPAD_DATABASE_PATH", &cfg.Database.Path)

	boolean("PINPAD_MQTT_ENABLED", &cfg.MQTT.Enabled)
	str("PINPAD_MQTT_HOST", &cfg.MQTT.Broker.Host)
	str("PINPAD_MQTT_USERNAME", &cfg.MQTT.Auth.Username)
	str("PINPAD_MQTT_PASSWORD", &cfg.MQTT.Auth.Password)

	boolean("PINPAD_INFLUXDB_ENABLED", &cfg.InfluxDB.Enabled)
	str("PINPAD_INFLUXDB_URL", &cfg.InfluxDB.URL)
	str("PINPAD_INFLUXDB_TOKEN", &cfg.InfluxDB.Token)

	str("PINPAD_LOG_LEVEL", &cfg.Logging.Level)
}

// Validate checks the configuration and reports every problem at once.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Device.ID == "" {
		errs = append(errs, "device.id is required")
	}
	if strings.ContainsAny(c.Device.ID, "/+# ") {
		errs = append(errs, "device.id must not contain '/', '+', '#' or spaces (used in MQTT topics)")
	}

	errs = append(errs, c.validateAuth()...)
	errs = append(errs, c.validateHardware()...)
	errs = append(errs, c.validateNVStore()...)

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && (c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535) {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" || c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.url, influxdb.org and influxdb.bucket are required when influxdb is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateAuth() []string {
	var errs []string
	a := c.Auth

	if err := pinauth.ValidatePIN(a.DefaultPIN); err != nil {
		errs = append(errs, "auth.default_pin must be exactly 4 digits")
	}
	switch a.Verification {
	case "hashed", "plaintext":
	default:
		errs = append(errs, fmt.Sprintf("auth.verification %q must be hashed or plaintext", a.Verification))
	}
	if _, err := pinauth.ParseLogPolicy(a.LogPolicy); err != nil {
		errs = append(errs, fmt.Sprintf("auth.log_policy %q must be hashed or plaintext", a.LogPolicy))
	}
	if a.MaxFailures < 0 {
		errs = append(errs, "auth.max_failures must be >= 0 (0 disables lockout)")
	}
	if a.LockoutSeconds < 1 {
		errs = append(errs, "auth.lockout_seconds must be at least 1")
	}
	if a.BlinkCount < 0 || a.BlinkIntervalMS < 0 || a.IdleIntervalMS < 0 {
		errs = append(errs, "auth blink and idle settings must not be negative")
	}
	return errs
}

func (c *Config) validateHardware() []string {
	h := c.Hardware
	var errs []string

	if h.Serial.Baud <= 0 {
		errs = append(errs, "hardware.serial.baud must be positive")
	}

	switch h.Mode {
	case "simulator":
		return errs
	case "gpio":
	default:
		return append(errs, fmt.Sprintf("hardware.mode %q must be simulator or gpio", h.Mode))
	}

	if len(h.Keypad.Columns) != 3 {
		errs = append(errs, "hardware.keypad.columns must list 3 pins")
	}
	if len(h.Keypad.Rows) != 4 {
		errs = append(errs, "hardware.keypad.rows must list 4 pins")
	}
	if h.LCD.RS == "" || h.LCD.EN == "" {
		errs = append(errs, "hardware.lcd.rs and hardware.lcd.en are required")
	}
	if len(h.LCD.Data) != 8 {
		errs = append(errs, "hardware.lcd.data must list 8 pins (D0-D7)")
	}
	if len(h.LEDs) == 0 {
		errs = append(errs, "hardware.leds must list at least one pin")
	}
	return errs
}

func (c *Config) validateNVStore() []string {
	n := c.NVStore
	switch n.Backend {
	case "eeprom":
		if n.Address < 0 || n.Address+4 > n.Size {
			return []string{fmt.Sprintf("nvstore.address %#x does not fit a 32-bit word in %d bytes", n.Address, n.Size)}
		}
	case "sqlite":
		if n.Address < 0 {
			return []string{"nvstore.address must not be negative"}
		}
	default:
		return []string{fmt.Sprintf("nvstore.backend %q must be eeprom or sqlite", n.Backend)}
	}
	return nil
}

// BlinkInterval returns the LED blink half-period.
func (a AuthConfig) BlinkInterval() time.Duration {
	return time.Duration(a.BlinkIntervalMS) * time.Millisecond
}

// IdleInterval returns the keypad idle poll delay.
func (a AuthConfig) IdleInterval() time.Duration {
	return time.Duration(a.IdleIntervalMS) * time.Millisecond
}

// ReconnectDelays returns the reconnect back-off bounds.
func (m MQTTConfig) ReconnectDelays() (initial, maximum time.Duration) {
	return time.Duration(m.Reconnect.InitialDelay) * time.Second,
		time.Duration(m.Reconnect.MaxDelay) * time.Second
}
