package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Delivery reliability levels for outbound topics
const (
	ReliabilityBestEffort = "BEST_EFFORT"
	ReliabilityReliable   = "RELIABLE"
)

// Config represents the keyboard teleop configuration.
// It is constructed once at startup and passed by pointer to the components.
type Config struct {
	RobotNamespace string        `yaml:"robot_namespace" json:"robot_namespace"`
	Logging        LoggingConfig `yaml:"logging" json:"logging"`
	Teleop         TeleopConfig  `yaml:"teleop" json:"teleop"`
	PTU            PTUConfig     `yaml:"ptu" json:"ptu"`
	Topics         TopicsConfig  `yaml:"topics" json:"topics"`
	ZeroMQ         ZeroMQConfig  `yaml:"zeromq" json:"zeromq"`
	Server         ServerConfig  `yaml:"server" json:"server"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level   string `yaml:"level" json:"level"`
	LogPath string `yaml:"log_path,omitempty" json:"log_path,omitempty"`
}

// TeleopConfig holds the input and publish cadence and the initial scale factors
type TeleopConfig struct {
	PublishRateHz float64 `yaml:"publish_rate_hz" json:"publish_rate_hz"`
	KeyTimeoutMs  int     `yaml:"key_timeout_ms" json:"key_timeout_ms"`
	InitialSpeed  float64 `yaml:"initial_speed" json:"initial_speed"`
	InitialTurn   float64 `yaml:"initial_turn" json:"initial_turn"`
}

// PTUConfig holds pan-tilt step size, angle limits (degrees) and the command speed
type PTUConfig struct {
	StepDeg      float64 `yaml:"step_deg" json:"step_deg"`
	MinPan       float64 `yaml:"min_pan" json:"min_pan"`
	MaxPan       float64 `yaml:"max_pan" json:"max_pan"`
	MinTilt      float64 `yaml:"min_tilt" json:"min_tilt"`
	MaxTilt      float64 `yaml:"max_tilt" json:"max_tilt"`
	CommandSpeed int     `yaml:"command_speed" json:"command_speed"`
}

// TopicsConfig holds the two outbound topic bindings
type TopicsConfig struct {
	Twist   TopicBinding `yaml:"twist" json:"twist"`
	PanTilt TopicBinding `yaml:"pan_tilt" json:"pan_tilt"`
}

// TopicBinding describes one outbound topic and how it is delivered
type TopicBinding struct {
	Name        string `yaml:"name" json:"name"`
	Namespaced  bool   `yaml:"namespaced" json:"namespaced"`
	BindAddress string `yaml:"bind_address" json:"bind_address"`
	Reliability string `yaml:"reliability" json:"reliability"`
	Depth       int    `yaml:"depth" json:"depth"`
}

// ZeroMQConfig holds socket options shared by all publishers
type ZeroMQConfig struct {
	LingerMs      int `yaml:"linger_ms" json:"linger_ms"`
	SendTimeoutMs int `yaml:"send_timeout_ms" json:"send_timeout_ms"`
}

// ServerConfig holds the optional status HTTP server configuration
type ServerConfig struct {
	Enabled          bool `yaml:"enabled" json:"enabled"`
	HTTPPort         int  `yaml:"http_port" json:"http_port"`
	StatusIntervalMs int  `yaml:"status_interval_ms" json:"status_interval_ms"`
}

// Default returns the configuration the operator gets without a config file.
func Default() *Config {
	return &Config{
		RobotNamespace: "/j100_0667",
		Logging: LoggingConfig{
			Level: "info",
		},
		Teleop: TeleopConfig{
			PublishRateHz: 10,
			KeyTimeoutMs:  100,
			InitialSpeed:  0.5,
			InitialTurn:   1.0,
		},
		PTU: PTUConfig{
			StepDeg:      2.0,
			MinPan:       -55.0,
			MaxPan:       55.0,
			MinTilt:      -55.0,
			MaxTilt:      55.0,
			CommandSpeed: 30,
		},
		Topics: TopicsConfig{
			Twist: TopicBinding{
				Name:        "cmd_vel",
				Namespaced:  true,
				BindAddress: "tcp://*:5560",
				Reliability: ReliabilityBestEffort,
				Depth:       10,
			},
			// The pan-tilt driver subscribes to a global topic.
			PanTilt: TopicBinding{
				Name:        "/pan_tilt_cmd_deg",
				Namespaced:  false,
				BindAddress: "tcp://*:5561",
				Reliability: ReliabilityReliable,
				Depth:       10,
			},
		},
		ZeroMQ: ZeroMQConfig{
			LingerMs:      500,
			SendTimeoutMs: 100,
		},
		Server: ServerConfig{
			Enabled:          false,
			HTTPPort:         8080,
			StatusIntervalMs: 200,
		},
	}
}

// LoadConfig loads configuration from the specified file path on top of Default.
// An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file '%s': %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file '%s': %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file '%s': %w", path, err)
	}

	return cfg, nil
}

// Validate checks required fields and value ranges
func (c *Config) Validate() error {
	if c.Teleop.PublishRateHz <= 0 {
		return fmt.Errorf("teleop.publish_rate_hz must be positive, got %v", c.Teleop.PublishRateHz)
	}
	if c.Teleop.KeyTimeoutMs <= 0 {
		return fmt.Errorf("teleop.key_timeout_ms must be positive, got %d", c.Teleop.KeyTimeoutMs)
	}
	if c.Teleop.InitialSpeed <= 0 || c.Teleop.InitialTurn <= 0 {
		return fmt.Errorf("teleop.initial_speed and teleop.initial_turn must be positive")
	}
	if c.PTU.StepDeg <= 0 {
		return fmt.Errorf("ptu.step_deg must be positive, got %v", c.PTU.StepDeg)
	}
	if c.PTU.MinPan > c.PTU.MaxPan {
		return fmt.Errorf("ptu.min_pan (%v) is greater than ptu.max_pan (%v)", c.PTU.MinPan, c.PTU.MaxPan)
	}
	if c.PTU.MinTilt > c.PTU.MaxTilt {
		return fmt.Errorf("ptu.min_tilt (%v) is greater than ptu.max_tilt (%v)", c.PTU.MinTilt, c.PTU.MaxTilt)
	}

	bindings := map[string]TopicBinding{
		"topics.twist":    c.Topics.Twist,
		"topics.pan_tilt": c.Topics.PanTilt,
	}
	for field, b := range bindings {
		if b.Name == "" {
			return fmt.Errorf("missing required field in config: %s.name", field)
		}
		if b.BindAddress == "" {
			return fmt.Errorf("missing required field in config: %s.bind_address", field)
		}
		switch b.Reliability {
		case ReliabilityBestEffort, ReliabilityReliable:
		default:
			return fmt.Errorf("%s.reliability must be %s or %s, got '%s'",
				field, ReliabilityBestEffort, ReliabilityReliable, b.Reliability)
		}
		if b.Depth <= 0 {
			return fmt.Errorf("%s.depth must be positive, got %d", field, b.Depth)
		}
	}
	// The pan-tilt driver listens on a global topic, and only the pan-tilt
	// stream waits for delivery.
	if c.Topics.PanTilt.Namespaced {
		return fmt.Errorf("topics.pan_tilt.namespaced must be false")
	}
	if c.Topics.Twist.Reliability != ReliabilityBestEffort {
		return fmt.Errorf("topics.twist.reliability must be %s, got '%s'", ReliabilityBestEffort, c.Topics.Twist.Reliability)
	}
	if c.Topics.PanTilt.Reliability != ReliabilityReliable {
		return fmt.Errorf("topics.pan_tilt.reliability must be %s, got '%s'", ReliabilityReliable, c.Topics.PanTilt.Reliability)
	}
	if c.Topics.Twist.BindAddress == c.Topics.PanTilt.BindAddress {
		return fmt.Errorf("topics.twist and topics.pan_tilt must use different bind addresses")
	}

	if c.Server.Enabled {
		if c.Server.HTTPPort <= 0 {
			return fmt.Errorf("missing required field in config: server.http_port")
		}
		if c.Server.StatusIntervalMs <= 0 {
			return fmt.Errorf("server.status_interval_ms must be positive, got %d", c.Server.StatusIntervalMs)
		}
	}

	return nil
}

// TopicName resolves the wire topic for a binding, prefixing the robot
// namespace when the binding is namespaced and a namespace is configured.
func (c *Config) TopicName(b TopicBinding) string {
	if !b.Namespaced || c.RobotNamespace == "" {
		return b.Name
	}
	return strings.TrimSuffix(c.RobotNamespace, "/") + "/" + strings.TrimPrefix(b.Name, "/")
}

// TwistTopic returns the resolved base velocity topic
func (c *Config) TwistTopic() string {
	return c.TopicName(c.Topics.Twist)
}

// PanTiltTopic returns the resolved pan-tilt command topic
func (c *Config) PanTiltTopic() string {
	return c.TopicName(c.Topics.PanTilt)
}

// PublishPeriod converts the publish rate into a ticker period
func (c *Config) PublishPeriod() time.Duration {
	return time.Duration(float64(time.Second) / c.Teleop.PublishRateHz)
}

// KeyTimeout returns the bounded wait for one key read
func (c *Config) KeyTimeout() time.Duration {
	return time.Duration(c.Teleop.KeyTimeoutMs) * time.Millisecond
}

// StatusInterval returns the status websocket push period
func (c *Config) StatusInterval() time.Duration {
	return time.Duration(c.Server.StatusIntervalMs) * time.Millisecond
}
