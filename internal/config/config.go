package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Out-of-calibration policies for roll/pitch.
const (
	PolicyClamp       = "clamp"       // saturate at the output range
	PolicyPassthrough = "passthrough" // keep the linear extrapolation
)

// Debounce modes for the frequency buttons.
const (
	DebounceSettle = "settle" // sleep after each action, long press repeats
	DebounceEdge   = "edge"   // act on rising edge only
)

// Display types.
const (
	DisplayConsole = "console"
	DisplayHD44780 = "hd44780"
	DisplayNone    = "none"
)

// BusConfig describes the I2C bus and the joystick face on it.
type BusConfig struct {
	Device       string `yaml:"device"`        // e.g., "/dev/i2c-1"
	JoystickAddr uint16 `yaml:"joystick_addr"` // joystick face address (default 0x5E)
	BootSweep    bool   `yaml:"boot_sweep"`    // play the LED sweep at startup
}

// ButtonsConfig holds the GPIO pins (BCM) for the three frequency buttons.
// Buttons are wired active LOW with pull-ups.
type ButtonsConfig struct {
	APin     int    `yaml:"a_pin"`    // reset to 0
	BPin     int    `yaml:"b_pin"`    // decrement
	CPin     int    `yaml:"c_pin"`    // increment
	Debounce string `yaml:"debounce"` // "settle" or "edge"
}

// DisplayConfig selects the local display surface.
type DisplayConfig struct {
	Type    string `yaml:"type"`    // "console", "hd44780" or "none"
	Addr    uint8  `yaml:"addr"`    // HD44780 I2C backpack address (default 0x27)
	Columns uint8  `yaml:"columns"` // HD44780 width in characters
	Rows    uint8  `yaml:"rows"`    // HD44780 height in lines
}

// NetworkConfig is the UDP destination of the telemetry frames.
type NetworkConfig struct {
	DestHost string `yaml:"dest_host"` // e.g., "192.168.30.150"
	DestPort int    `yaml:"dest_port"` // e.g., 4210
}

// MQTTConfig enables an optional MQTT mirror of each frame.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`    // e.g., "tcp://localhost:1883"; empty = disabled
	Topic    string `yaml:"topic"`     // e.g., "ornipad/telemetry"
	ClientID string `yaml:"client_id"` // MQTT client identifier
}

// CalibrationConfig maps raw joystick ranges onto control angles.
type CalibrationConfig struct {
	XMin          int    `yaml:"x_min"`          // raw x at full left (-AngleLimit)
	XMax          int    `yaml:"x_max"`          // raw x at full right (+AngleLimit)
	YMin          int    `yaml:"y_min"`          // raw y at full forward (+AngleLimit)
	YMax          int    `yaml:"y_max"`          // raw y at full back (-AngleLimit)
	AngleLimit    int    `yaml:"angle_limit"`    // degrees
	FrequencyStep int    `yaml:"frequency_step"` // frequency increment per press
	FrequencyMax  int    `yaml:"frequency_max"`  // frequency ceiling
	Policy        string `yaml:"policy"`         // "clamp" or "passthrough"
}

// TimingConfig holds loop delays and task ticks.
type TimingConfig struct {
	PollDelayMs     int `yaml:"poll_delay_ms"`     // delay between loop iterations
	SettleDelayMs   int `yaml:"settle_delay_ms"`   // delay after a button action
	DisplayTickMs   int `yaml:"display_tick_ms"`   // display refresh interval
	BroadcastTickMs int `yaml:"broadcast_tick_ms"` // UDP send interval
	MonitorTickMs   int `yaml:"monitor_tick_ms"`   // web monitor publish interval
}

// WebConfig configures the read-only monitor.
type WebConfig struct {
	Port int `yaml:"port"` // 0 = disabled
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	DebugLevel int  `yaml:"debug_level"` // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	MockHW     bool `yaml:"mock_hw"`     // use mock bus/GPIO (true=dev/test, false=real board)
}

// Config aggregates all application configuration.
type Config struct {
	Bus         BusConfig         `yaml:"bus"`
	Buttons     ButtonsConfig     `yaml:"buttons"`
	Display     DisplayConfig     `yaml:"display"`
	Network     NetworkConfig     `yaml:"network"`
	MQTT        MQTTConfig        `yaml:"mqtt"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Timing      TimingConfig      `yaml:"timing"`
	Web         WebConfig         `yaml:"web"`
	Defaults    DefaultsConfig    `yaml:"defaults"`
}

// Environment variables that override the file.
const (
	EnvDestHost   = "ORNIPAD_DEST_HOST"
	EnvDestPort   = "ORNIPAD_DEST_PORT"
	EnvMQTTBroker = "ORNIPAD_MQTT_BROKER"
	EnvDebugLevel = "ORNIPAD_DEBUG_LEVEL"
)

// Load reads a YAML file, applies .env / environment overrides
// and returns the validated configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	// .env is optional; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides fields from environment variables looked up with getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvDestHost)); v != "" {
		c.Network.DestHost = v
	}
	if v := strings.TrimSpace(getenv(EnvDestPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDestPort, err)
		}
		c.Network.DestPort = port
	}
	if v := strings.TrimSpace(getenv(EnvMQTTBroker)); v != "" {
		c.MQTT.Broker = v
	}
	if v := strings.TrimSpace(getenv(EnvDebugLevel)); v != "" {
		lvl, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDebugLevel, err)
		}
		c.Defaults.DebugLevel = lvl
	}
	return nil
}

// Normalize fills defaults and validates the configuration.
func (c *Config) Normalize() error {
	if c.Bus.Device == "" {
		c.Bus.Device = "/dev/i2c-1"
	}
	if c.Bus.JoystickAddr == 0 {
		c.Bus.JoystickAddr = 0x5E
	}
	if c.Bus.JoystickAddr > 0x7F {
		return fmt.Errorf("bus.joystick_addr must be a 7-bit address, got 0x%x", c.Bus.JoystickAddr)
	}

	if c.Buttons.APin <= 0 || c.Buttons.BPin <= 0 || c.Buttons.CPin <= 0 {
		return fmt.Errorf("buttons.a_pin, b_pin and c_pin are required")
	}
	if c.Buttons.APin == c.Buttons.BPin || c.Buttons.BPin == c.Buttons.CPin || c.Buttons.APin == c.Buttons.CPin {
		return fmt.Errorf("button pins must be distinct, got %d/%d/%d", c.Buttons.APin, c.Buttons.BPin, c.Buttons.CPin)
	}
	switch c.Buttons.Debounce {
	case "":
		c.Buttons.Debounce = DebounceSettle
	case DebounceSettle, DebounceEdge:
	default:
		return fmt.Errorf("unsupported buttons.debounce: %s", c.Buttons.Debounce)
	}

	switch c.Display.Type {
	case "":
		c.Display.Type = DisplayConsole
	case DisplayConsole, DisplayNone:
	case DisplayHD44780:
		if c.Display.Addr == 0 {
			c.Display.Addr = 0x27
		}
		if c.Display.Columns == 0 {
			c.Display.Columns = 20
		}
		if c.Display.Rows == 0 {
			c.Display.Rows = 4
		}
		if c.Display.Rows < 4 {
			return fmt.Errorf("display.rows must be >= 4, got %d", c.Display.Rows)
		}
	default:
		return fmt.Errorf("unsupported display type: %s", c.Display.Type)
	}

	if c.Network.DestHost == "" {
		return fmt.Errorf("network.dest_host is required")
	}
	if c.Network.DestPort <= 0 || c.Network.DestPort > 65535 {
		return fmt.Errorf("network.dest_port must be 1-65535, got %d", c.Network.DestPort)
	}

	if c.MQTT.Broker != "" {
		if c.MQTT.Topic == "" {
			c.MQTT.Topic = "ornipad/telemetry"
		}
		if c.MQTT.ClientID == "" {
			c.MQTT.ClientID = "ornipad"
		}
	}

	if err := c.normalizeCalibration(); err != nil {
		return err
	}

	// Default loop timings of the firmware controller
	if c.Timing.PollDelayMs <= 0 {
		c.Timing.PollDelayMs = 50
	}
	if c.Timing.SettleDelayMs <= 0 {
		c.Timing.SettleDelayMs = 100
	}
	if c.Timing.DisplayTickMs <= 0 {
		c.Timing.DisplayTickMs = 5
	}
	if c.Timing.BroadcastTickMs <= 0 {
		c.Timing.BroadcastTickMs = 5
	}
	if c.Timing.MonitorTickMs <= 0 {
		c.Timing.MonitorTickMs = 100
	}

	if c.Web.Port < 0 || c.Web.Port > 65535 {
		return fmt.Errorf("web.port must be 0-65535, got %d", c.Web.Port)
	}
	if c.Defaults.DebugLevel < 0 || c.Defaults.DebugLevel > 4 {
		return fmt.Errorf("defaults.debug_level must be between 0 and 4, got %d", c.Defaults.DebugLevel)
	}
	return nil
}

func (c *Config) normalizeCalibration() error {
	cal := &c.Calibration
	if cal.XMin == 0 && cal.XMax == 0 {
		cal.XMin, cal.XMax = 280, 810
	}
	if cal.YMin == 0 && cal.YMax == 0 {
		cal.YMin, cal.YMax = 250, 740
	}
	if cal.XMin >= cal.XMax {
		return fmt.Errorf("calibration.x_min must be < x_max, got %d >= %d", cal.XMin, cal.XMax)
	}
	if cal.YMin >= cal.YMax {
		return fmt.Errorf("calibration.y_min must be < y_max, got %d >= %d", cal.YMin, cal.YMax)
	}
	if cal.AngleLimit == 0 {
		cal.AngleLimit = 45
	}
	if cal.AngleLimit < 0 || cal.AngleLimit > 127 {
		return fmt.Errorf("calibration.angle_limit must be 1-127, got %d", cal.AngleLimit)
	}
	if cal.FrequencyStep == 0 {
		cal.FrequencyStep = 5
	}
	if cal.FrequencyMax == 0 {
		cal.FrequencyMax = 50
	}
	if cal.FrequencyStep < 0 || cal.FrequencyMax < 0 || cal.FrequencyMax > 255 {
		return fmt.Errorf("calibration frequency step/max out of range: %d/%d", cal.FrequencyStep, cal.FrequencyMax)
	}
	if cal.FrequencyMax%cal.FrequencyStep != 0 {
		return fmt.Errorf("calibration.frequency_max (%d) must be a multiple of frequency_step (%d)", cal.FrequencyMax, cal.FrequencyStep)
	}
	switch cal.Policy {
	case "":
		cal.Policy = PolicyClamp
	case PolicyClamp, PolicyPassthrough:
	default:
		return fmt.Errorf("unsupported calibration.policy: %s", cal.Policy)
	}
	return nil
}

// DestAddr returns the "host:port" UDP destination.
func (c *Config) DestAddr() string {
	return net.JoinHostPort(c.Network.DestHost, strconv.Itoa(c.Network.DestPort))
}

// PollDelay returns the delay between two polling iterations.
func (c *Config) PollDelay() time.Duration {
	return time.Duration(c.Timing.PollDelayMs) * time.Millisecond
}

// SettleDelay returns the hold-off after a button action.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Timing.SettleDelayMs) * time.Millisecond
}

// DisplayTick returns the display refresh interval.
func (c *Config) DisplayTick() time.Duration {
	return time.Duration(c.Timing.DisplayTickMs) * time.Millisecond
}

// BroadcastTick returns the datagram send interval.
func (c *Config) BroadcastTick() time.Duration {
	return time.Duration(c.Timing.BroadcastTickMs) * time.Millisecond
}

// MonitorTick returns the web monitor publish interval.
func (c *Config) MonitorTick() time.Duration {
	return time.Duration(c.Timing.MonitorTickMs) * time.Millisecond
}
