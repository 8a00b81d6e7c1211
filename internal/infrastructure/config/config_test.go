package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
device:
  id: "door-east"
auth:
  log_policy: "plaintext"
  max_failures: 5
hardware:
  serial:
    baud: 19200
nvstore:
  backend: "sqlite"
  address: 16
database:
  path: "/tmp/test.db"
mqtt:
  enabled: true
  broker:
    host: "broker.local"
    port: 1883
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.ID != "door-east" {
		t.Errorf("Device.ID = %q, want %q", cfg.Device.ID, "door-east")
	}
	if cfg.Auth.LogPolicy != "plaintext" {
		t.Errorf("Auth.LogPolicy = %q, want plaintext", cfg.Auth.LogPolicy)
	}
	if cfg.Auth.MaxFailures != 5 {
		t.Errorf("Auth.MaxFailures = %d, want 5", cfg.Auth.MaxFailures)
	}
	if cfg.NVStore.Backend != "sqlite" || cfg.NVStore.Address != 16 {
		t.Errorf("NVStore = %+v, want sqlite at 16", cfg.NVStore)
	}
	if cfg.Hardware.Serial.Baud != 19200 {
		t.Errorf("Hardware.Serial.Baud = %d, want 19200", cfg.Hardware.Serial.Baud)
	}
	if !cfg.MQTT.Enabled || cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT = %+v", cfg.MQTT)
	}

	// Untouched keys keep their defaults.
	if cfg.Auth.DefaultPIN != "0258" {
		t.Errorf("Auth.DefaultPIN = %q, want default 0258", cfg.Auth.DefaultPIN)
	}
	if cfg.Auth.LockoutSeconds != 10 {
		t.Errorf("Auth.LockoutSeconds = %d, want 10", cfg.Auth.LockoutSeconds)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "invalid: [yaml: content")

	_, err := Load(path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
device:
  id: ""
auth:
  default_pin: "12"
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	for _, want := range []string{"device.id is required", "auth.default_pin"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Load() error = %q, want it to mention %q", err, want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	gpio := func(c *Config) {
		c.Hardware.Mode = "gpio"
		c.Hardware.Keypad = KeypadConfig{
			Columns: []string{"GPIO5", "GPIO6", "GPIO13"},
			Rows:    []string{"GPIO19", "GPIO26", "GPIO16", "GPIO20"},
		}
		c.Hardware.LCD = LCDConfig{
			RS:   "GPIO7",
			EN:   "GPIO8",
			Data: []string{"GPIO9", "GPIO10", "GPIO11", "GPIO12", "GPIO14", "GPIO15", "GPIO17", "GPIO18"},
		}
		c.Hardware.LEDs = []string{"GPIO21"}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "gpio fully wired", mutate: gpio},
		{name: "lockout disabled", mutate: func(c *Config) { c.Auth.MaxFailures = 0 }},
		{name: "sqlite backend", mutate: func(c *Config) { c.NVStore.Backend = "sqlite"; c.NVStore.Address = 4096 }},
		{
			name:    "missing device ID",
			mutate:  func(c *Config) { c.Device.ID = "" },
			wantErr: "device.id is required",
		},
		{
			name:    "device ID with topic wildcard",
			mutate:  func(c *Config) { c.Device.ID = "door/#" },
			wantErr: "device.id must not contain",
		},
		{
			name:    "non-digit default PIN",
			mutate:  func(c *Config) { c.Auth.DefaultPIN = "02a8" },
			wantErr: "auth.default_pin",
		},
		{
			name:    "unknown verification",
			mutate:  func(c *Config) { c.Auth.Verification = "bcrypt" },
			wantErr: "auth.verification",
		},
		{
			name:    "unknown log policy",
			mutate:  func(c *Config) { c.Auth.LogPolicy = "verbose" },
			wantErr: "auth.log_policy",
		},
		{
			name:    "negative max failures",
			mutate:  func(c *Config) { c.Auth.MaxFailures = -1 },
			wantErr: "auth.max_failures",
		},
		{
			name:    "zero lockout",
			mutate:  func(c *Config) { c.Auth.LockoutSeconds = 0 },
			wantErr: "auth.lockout_seconds",
		},
		{
			name:    "negative blink interval",
			mutate:  func(c *Config) { c.Auth.BlinkIntervalMS = -1 },
			wantErr: "must not be negative",
		},
		{
			name:    "unknown hardware mode",
			mutate:  func(c *Config) { c.Hardware.Mode = "usb" },
			wantErr: "hardware.mode",
		},
		{
			name:    "gpio short keypad",
			mutate:  func(c *Config) { gpio(c); c.Hardware.Keypad.Rows = c.Hardware.Keypad.Rows[:3] },
			wantErr: "hardware.keypad.rows",
		},
		{
			name:    "gpio missing LCD data",
			mutate:  func(c *Config) { gpio(c); c.Hardware.LCD.Data = nil },
			wantErr: "hardware.lcd.data",
		},
		{
			name:    "gpio without LEDs",
			mutate:  func(c *Config) { gpio(c); c.Hardware.LEDs = nil },
			wantErr: "hardware.leds",
		},
		{
			name:    "zero baud",
			mutate:  func(c *Config) { c.Hardware.Serial.Baud = 0 },
			wantErr: "hardware.serial.baud",
		},
		{
			name:    "word past end of EEPROM",
			mutate:  func(c *Config) { c.NVStore.Address = 1021 },
			wantErr: "nvstore.address",
		},
		{
			name:    "unknown NV backend",
			mutate:  func(c *Config) { c.NVStore.Backend = "flash" },
			wantErr: "nvstore.backend",
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database.path",
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name:    "enabled MQTT with bad port",
			mutate:  func(c *Config) { c.MQTT.Enabled = true; c.MQTT.Broker.Port = 70000 },
			wantErr: "mqtt.broker.port",
		},
		{
			name:    "disabled MQTT ignores port",
			mutate:  func(c *Config) { c.MQTT.Broker.Port = 0 },
			wantErr: "",
		},
		{
			name:    "enabled InfluxDB without bucket",
			mutate:  func(c *Config) { c.InfluxDB.Enabled = true; c.InfluxDB.Bucket = "" },
			wantErr: "influxdb.url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := defaultConfig()
	cfg.Device.ID = ""
	cfg.Database.Path = ""
	cfg.MQTT.QoS = 9

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil")
	}
	if got := strings.Count(err.Error(), ";"); got != 2 {
		t.Errorf("Validate() joined %d separators, want 2: %v", got, err)
	}
	if !strings.HasPrefix(err.Error(), "configuration errors: ") {
		t.Errorf("Validate() error = %q, want configuration errors prefix", err)
	}
}

func TestDurations(t *testing.T) {
	a := AuthConfig{BlinkIntervalMS: 150, IdleIntervalMS: 3}
	if got := a.BlinkInterval(); got != 150*time.Millisecond {
		t.Errorf("BlinkInterval() = %v, want 150ms", got)
	}
	if got := a.IdleInterval(); got != 3*time.Millisecond {
		t.Errorf("IdleInterval() = %v, want 3ms", got)
	}

	m := MQTTConfig{Reconnect: MQTTReconnectConfig{InitialDelay: 2, MaxDelay: 30}}
	initial, maximum := m.ReconnectDelays()
	if initial != 2*time.Second || maximum != 30*time.Second {
		t.Errorf("ReconnectDelays() = %v, %v; want 2s, 30s", initial, maximum)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("PINPAD_DEVICE_ID", "door-west")
	t.Setenv("PINPAD_DEFAULT_PIN", "4321")
	t.Setenv("PINPAD_LOG_POLICY", "plaintext")
	t.Setenv("PINPAD_HARDWARE_MODE", "gpio")
	t.Setenv("PINPAD_SERIAL_DEVICE", "/dev/ttyUSB0")
	t.Setenv("PINPAD_NVSTORE_BACKEND", "sqlite")
	t.Setenv("PINPAD_DATABASE_PATH", "/custom/path.db")
	t.Setenv("PINPAD_MQTT_ENABLED", "true")
	t.Setenv("PINPAD_MQTT_HOST", "mqtt.example.com")
	t.Setenv("PINPAD_MQTT_PASSWORD", "testpass")
	t.Setenv("PINPAD_INFLUXDB_ENABLED", "not-a-bool")
	t.Setenv("PINPAD_INFLUXDB_TOKEN", "secret-token")

	applyEnvOverrides(cfg)

	checks := []struct {
		name string
		got  string
		want string
	}{
		{"Device.ID", cfg.Device.ID, "door-west"},
		{"Auth.DefaultPIN", cfg.Auth.DefaultPIN, "4321"},
		{"Auth.LogPolicy", cfg.Auth.LogPolicy, "plaintext"},
		{"Hardware.Mode", cfg.Hardware.Mode, "gpio"},
		{"Hardware.Serial.Device", cfg.Hardware.Serial.Device, "/dev/ttyUSB0"},
		{"NVStore.Backend", cfg.NVStore.Backend, "sqlite"},
		{"Database.Path", cfg.Database.Path, "/custom/path.db"},
		{"MQTT.Broker.Host", cfg.MQTT.Broker.Host, "mqtt.example.com"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "testpass"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "secret-token"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}

	if !cfg.MQTT.Enabled {
		t.Error("MQTT.Enabled = false, want true")
	}
	if cfg.InfluxDB.Enabled {
		t.Error("unparseable PINPAD_INFLUXDB_ENABLED should leave the default")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaultConfig should validate: %v", err)
	}
	if cfg.Auth.DefaultPIN != "0258" {
		t.Errorf("defaultConfig Auth.DefaultPIN = %q, want 0258", cfg.Auth.DefaultPIN)
	}
	if cfg.Auth.MaxFailures != 3 || cfg.Auth.LockoutSeconds != 10 {
		t.Errorf("defaultConfig lockout = %d/%ds, want 3/10s", cfg.Auth.MaxFailures, cfg.Auth.LockoutSeconds)
	}
	if cfg.Hardware.Mode != "simulator" {
		t.Errorf("defaultConfig Hardware.Mode = %q, want simulator", cfg.Hardware.Mode)
	}
	if cfg.MQTT.Enabled || cfg.InfluxDB.Enabled {
		t.Error("defaultConfig should leave MQTT and InfluxDB disabled")
	}
}
