package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/itohio/thermomon/pkg/thermistor"
)

var ErrInvalid = errors.New("invalid configuration")

// Config represents the host application configuration.
type Config struct {
	Serial     SerialConfig     `yaml:"serial"`
	Divider    DividerConfig    `yaml:"divider"`
	Thermistor ThermistorConfig `yaml:"thermistor"`
	Monitor    MonitorConfig    `yaml:"monitor"`
	Mock       MockConfig       `yaml:"mock"`
	Log        LogConfig        `yaml:"log"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// DividerConfig describes the sensing circuit on the device.
type DividerConfig struct {
	SeriesResistor float64 `yaml:"series_resistor"` // Ohms
	VRef           float64 `yaml:"vref"`            // Used when the device does not report its reference
	ADCBits        int     `yaml:"adc_bits"`        // Codes are divided by 1<<ADCBits
}

// ThermistorConfig selects the calibration table and smoothing window.
type ThermistorConfig struct {
	Table  string `yaml:"table"`
	Window int    `yaml:"window"`
}

// MonitorConfig contains host-side monitor parameters.
type MonitorConfig struct {
	ReportInterval time.Duration `yaml:"report_interval"` // How often smoothed readings are logged
	ReadTimeout    time.Duration `yaml:"read_timeout"`    // Longest wait for one raw sample
}

// MockConfig contains simulated probe configuration.
type MockConfig struct {
	MinTemperature float64       `yaml:"min_temperature"` // Table unit
	MaxTemperature float64       `yaml:"max_temperature"` // Table unit
	SweepPeriod    time.Duration `yaml:"sweep_period"`    // Full cold-hot-cold cycle
	NoiseLevel     float64       `yaml:"noise_level"`     // ADC codes, peak
	SampleRate     time.Duration `yaml:"sample_rate"`
	DropEvery      int           `yaml:"drop_every"` // Emit an open-circuit sample every N samples (0 = never)
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns a default configuration matching the reference board.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0",
			BaudRate: 115200,
		},
		Divider: DividerConfig{
			SeriesResistor: 150,
			VRef:           3.32,
			ADCBits:        16, // TinyGo normalises machine.ADC readings to 16 bits
		},
		Thermistor: ThermistorConfig{
			Table:  thermistor.PQYNPT18,
			Window: 120,
		},
		Monitor: MonitorConfig{
			ReportInterval: time.Second,
			ReadTimeout:    2 * time.Second,
		},
		Mock: MockConfig{
			MinTemperature: 70,
			MaxTemperature: 210,
			SweepPeriod:    2 * time.Minute,
			NoiseLevel:     40,
			SampleRate:     20 * time.Millisecond,
			DropEvery:      0,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks values that have no safe default. The calibration table is
// built here so a bad name aborts startup.
func (c *Config) Validate() error {
	if _, err := thermistor.Lookup(c.Thermistor.Table); err != nil {
		return fmt.Errorf("%w: thermistor.table: %w", ErrInvalid, err)
	}
	if c.Thermistor.Window <= 0 {
		return fmt.Errorf("%w: thermistor.window must be positive, got %d", ErrInvalid, c.Thermistor.Window)
	}
	if c.Divider.SeriesResistor <= 0 {
		return fmt.Errorf("%w: divider.series_resistor must be positive", ErrInvalid)
	}
	if c.Divider.ADCBits <= 0 || c.Divider.ADCBits > 16 {
		return fmt.Errorf("%w: divider.adc_bits must be 1..16, got %d", ErrInvalid, c.Divider.ADCBits)
	}
	if c.Divider.VRef <= 0 || c.Divider.VRef > 65 {
		return fmt.Errorf("%w: divider.vref must be in (0, 65] volts, got %v", ErrInvalid, c.Divider.VRef)
	}
	if c.Monitor.ReportInterval <= 0 {
		return fmt.Errorf("%w: monitor.report_interval must be positive, got %v", ErrInvalid, c.Monitor.ReportInterval)
	}
	if c.Monitor.ReadTimeout <= 0 {
		return fmt.Errorf("%w: monitor.read_timeout must be positive, got %v", ErrInvalid, c.Monitor.ReadTimeout)
	}
	if c.Mock.MinTemperature >= c.Mock.MaxTemperature {
		return fmt.Errorf("%w: mock temperature range is empty", ErrInvalid)
	}
	if c.Mock.SampleRate <= 0 {
		return fmt.Errorf("%w: mock.sample_rate must be positive, got %v", ErrInvalid, c.Mock.SampleRate)
	}
	if c.Mock.SweepPeriod <= 0 {
		return fmt.Errorf("%w: mock.sweep_period must be positive, got %v", ErrInvalid, c.Mock.SweepPeriod)
	}
	if c.Mock.NoiseLevel < 0 {
		return fmt.Errorf("%w: mock.noise_level must not be negative, got %v", ErrInvalid, c.Mock.NoiseLevel)
	}
	if c.Mock.DropEvery < 0 {
		return fmt.Errorf("%w: mock.drop_every must not be negative, got %d", ErrInvalid, c.Mock.DropEvery)
	}
	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Divider.SeriesResistor == 0 {
		c.Divider.SeriesResistor = def.Divider.SeriesResistor
	}
	if c.Divider.VRef == 0 {
		c.Divider.VRef = def.Divider.VRef
	}
	if c.Divider.ADCBits == 0 {
		c.Divider.ADCBits = def.Divider.ADCBits
	}

	if c.Thermistor.Table == "" {
		c.Thermistor.Table = def.Thermistor.Table
	}
	if c.Thermistor.Window == 0 {
		c.Thermistor.Window = def.Thermistor.Window
	}

	if c.Monitor.ReportInterval == 0 {
		c.Monitor.ReportInterval = def.Monitor.ReportInterval
	}
	if c.Monitor.ReadTimeout == 0 {
		c.Monitor.ReadTimeout = def.Monitor.ReadTimeout
	}

	if c.Mock.SweepPeriod == 0 {
		c.Mock.SweepPeriod = def.Mock.SweepPeriod
	}
	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}
