package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/relabs-tech/inertial_fusion/internal/fusion"
	"github.com/relabs-tech/inertial_fusion/internal/orientation"
	"github.com/relabs-tech/inertial_fusion/internal/step"
)

// DefaultPath is where binaries look for the configuration file.
const DefaultPath = "./fusion_config.txt"

// Input sources.
const (
	InputMock   = "mock"
	InputReplay = "replay"
	InputSerial = "serial"
)

// Config holds all application configuration values.
type Config struct {
	// Fusion
	FusionAlgorithm     orientation.Algorithm
	AccErrorGain        float64
	GravErrorGain       float64
	CorrectionDamping   float64
	OutlierThreshold    float64
	PanicThreshold      float64
	PanicCount          int
	PanicMotionLimit    float64
	InterpolationWeight float64

	// Step detection
	StepThreshold    float64
	StepDelaySeconds float64
	SamplePeriod     float64

	// Identity
	DeviceID string

	// Input
	InputSource    string
	ReplayFile     string
	SerialPort     string
	SerialBaudRate int

	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string

	// Topics
	TopicOrientation string
	TopicStep        string

	// Timing
	ConsoleLogInterval int // milliseconds
	MockSampleInterval int // milliseconds

	// Web Server
	WebServerPort int

	// Recording and metrics
	RecordDB    string // SQLite path, empty disables recording
	MetricsPort int    // 0 disables the Prometheus endpoint
}

// Default returns the configuration used when a key is absent.
func Default() *Config {
	o := orientation.DefaultParams()
	s := step.DefaultParams()
	return &Config{
		FusionAlgorithm:     orientation.AccGyroAlgorithm,
		AccErrorGain:        o.AccErrorGain,
		GravErrorGain:       o.GravErrorGain,
		CorrectionDamping:   o.CorrectionDamping,
		OutlierThreshold:    o.OutlierThreshold,
		PanicThreshold:      o.PanicThreshold,
		PanicCount:          o.PanicCount,
		PanicMotionLimit:    o.PanicMotionLimit,
		InterpolationWeight: o.InterpolationWeight,

		StepThreshold:    s.Threshold,
		StepDelaySeconds: s.Delay,
		SamplePeriod:     s.SamplePeriod,

		InputSource:    InputMock,
		SerialBaudRate: 115200,

		MQTTBroker:           "tcp://localhost:1883",
		MQTTClientIDProducer: "fusion-producer",
		MQTTClientIDConsole:  "fusion-console",
		MQTTClientIDWeb:      "fusion-web",

		TopicOrientation: "inertial/fusion/orientation",
		TopicStep:        "inertial/fusion/step",

		ConsoleLogInterval: 1000,
		MockSampleInterval: 20,

		WebServerPort: 8080,
	}
}

// Load reads the configuration file and returns a Config struct.
// Keys not present keep their defaults.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if cfg.DeviceID == "" {
		cfg.DeviceID = uuid.NewString()
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseFloat(key, value string, min, max float64) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s must be %g-%g, got %g", key, min, max, v)
	}
	return v, nil
}

func parseInt(key, value string, min int) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v < min {
		return 0, fmt.Errorf("%s must be at least %d, got %d", key, min, v)
	}
	return v, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// Fusion
	case "FUSION_ALGORITHM":
		c.FusionAlgorithm, err = orientation.ParseAlgorithm(value)
	case "ACC_ERROR_GAIN":
		c.AccErrorGain, err = parseFloat(key, value, 0, 1e6)
	case "GRAV_ERROR_GAIN":
		c.GravErrorGain, err = parseFloat(key, value, 0, 1e6)
	case "CORRECTION_DAMPING":
		c.CorrectionDamping, err = parseFloat(key, value, 0, 1)
	case "OUTLIER_THRESHOLD":
		c.OutlierThreshold, err = parseFloat(key, value, 0, 1)
	case "PANIC_THRESHOLD":
		c.PanicThreshold, err = parseFloat(key, value, 0, 1)
	case "PANIC_COUNT":
		c.PanicCount, err = parseInt(key, value, 0)
	case "PANIC_MOTION_LIMIT":
		c.PanicMotionLimit, err = parseFloat(key, value, 0, 1e6)
	case "INTERPOLATION_WEIGHT":
		c.InterpolationWeight, err = parseFloat(key, value, 0, 1)

	// Step detection
	case "STEP_THRESHOLD":
		c.StepThreshold, err = parseFloat(key, value, 0, 1e6)
	case "STEP_DELAY_SECONDS":
		c.StepDelaySeconds, err = parseFloat(key, value, 0, 60)
	case "SAMPLE_PERIOD":
		c.SamplePeriod, err = parseFloat(key, value, 1e-4, 10)

	// Identity
	case "DEVICE_ID":
		c.DeviceID = value

	// Input
	case "INPUT_SOURCE":
		switch value {
		case InputMock, InputReplay, InputSerial:
			c.InputSource = value
		default:
			return fmt.Errorf("INPUT_SOURCE must be mock, replay or serial, got %q", value)
		}
	case "REPLAY_FILE":
		c.ReplayFile = value
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		c.SerialBaudRate, err = parseInt(key, value, 1)

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value

	// Topics
	case "TOPIC_ORIENTATION":
		c.TopicOrientation = value
	case "TOPIC_STEP":
		c.TopicStep = value

	// Timing
	case "CONSOLE_LOG_INTERVAL":
		c.ConsoleLogInterval, err = parseInt(key, value, 1)
	case "MOCK_SAMPLE_INTERVAL":
		c.MockSampleInterval, err = parseInt(key, value, 0)

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value, 1)

	// Recording and metrics
	case "RECORD_DB":
		c.RecordDB = value
	case "METRICS_PORT":
		c.MetricsPort, err = parseInt(key, value, 0)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

// validate checks that all required fields are set and consistent.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicOrientation == "" {
		return fmt.Errorf("TOPIC_ORIENTATION is required")
	}
	if c.PanicThreshold > c.OutlierThreshold {
		return fmt.Errorf("PANIC_THRESHOLD (%g) must not exceed OUTLIER_THRESHOLD (%g)", c.PanicThreshold, c.OutlierThreshold)
	}
	if c.MetricsPort != 0 && c.MetricsPort == c.WebServerPort {
		return fmt.Errorf("METRICS_PORT must differ from WEB_SERVER_PORT")
	}
	switch c.InputSource {
	case InputReplay:
		if c.ReplayFile == "" {
			return fmt.Errorf("REPLAY_FILE is required when INPUT_SOURCE=replay")
		}
	case InputSerial:
		if c.SerialPort == "" {
			return fmt.Errorf("SERIAL_PORT is required when INPUT_SOURCE=serial")
		}
	}
	return nil
}

// OrientationParams returns the filter tuning.
func (c *Config) OrientationParams() orientation.Params {
	p := orientation.DefaultParams()
	p.AccErrorGain = c.AccErrorGain
	p.GravErrorGain = c.GravErrorGain
	p.CorrectionDamping = c.CorrectionDamping
	p.OutlierThreshold = c.OutlierThreshold
	p.PanicThreshold = c.PanicThreshold
	p.PanicCount = c.PanicCount
	p.PanicMotionLimit = c.PanicMotionLimit
	p.InterpolationWeight = c.InterpolationWeight
	return p
}

// StepParams returns the step detector tuning.
func (c *Config) StepParams() step.Params {
	return step.Params{
		Threshold:    c.StepThreshold,
		Delay:        c.StepDelaySeconds,
		SamplePeriod: c.SamplePeriod,
	}
}

// FusionParams bundles everything the engine needs.
func (c *Config) FusionParams() fusion.Params {
	return fusion.Params{
		Algorithm:   c.FusionAlgorithm,
		Orientation: c.OrientationParams(),
		Step:        c.StepParams(),
	}
}
