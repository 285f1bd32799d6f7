// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values. Everything here is a
// startup constant: the file is read once and the struct is never written
// afterwards.
type Config struct {
	// Heading source: "mag" (raw magnetometer), "fused" (upstream fusion
	// stage yaw over MQTT), or "mock" (bench source).
	Source string

	// Magnetometer hardware
	I2CBus     string
	MPUI2CAddr uint16

	// Mapping of sensor axes to vessel axes: "x", "y", "-x" or "-y".
	MagForwardAxis string
	MagLateralAxis string

	// Calibration
	AxisInverted   bool
	MountOffsetDeg float64
	DeclinationDeg float64

	// Sentence
	TalkerID string

	// Transport
	UDPDestinations []string
	SerialPort      string
	SerialBaudRate  int

	// Timing
	SampleInterval int // milliseconds

	// MQTT
	MQTTBroker          string
	MQTTClientIDSender  string
	MQTTClientIDConsole string
	MQTTClientIDWeb     string
	MQTTClientIDDisplay string

	// Topics
	TopicHeading  string
	TopicYawFused string

	// Web Server
	WebServerPort int

	// Display
	DisplayUpdateInterval int // milliseconds
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported so other packages cannot access it directly.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex protects concurrent access. Write lock for
//     initialization, read lock for Get() allows concurrent readers.
//
// External code must use InitGlobal() to set and Get() to read.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := &Config{}
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

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Heading source
	case "SOURCE":
		if value != "mag" && value != "fused" && value != "mock" {
			return fmt.Errorf("SOURCE must be mag, fused or mock, got %q", value)
		}
		c.Source = value

	// Magnetometer hardware
	case "I2C_BUS":
		c.I2CBus = value
	case "MPU_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid MPU_I2C_ADDR %q: %w", value, err)
		}
		c.MPUI2CAddr = uint16(addr)

	// Axis mapping
	case "MAG_FORWARD_AXIS":
		if err := validAxis(value); err != nil {
			return fmt.Errorf("MAG_FORWARD_AXIS: %w", err)
		}
		c.MagForwardAxis = value
	case "MAG_LATERAL_AXIS":
		if err := validAxis(value); err != nil {
			return fmt.Errorf("MAG_LATERAL_AXIS: %w", err)
		}
		c.MagLateralAxis = value

	// Calibration
	case "AXIS_INVERTED":
		inverted, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid AXIS_INVERTED %q: %w", value, err)
		}
		c.AxisInverted = inverted
	case "MOUNT_OFFSET_DEG":
		offset, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid MOUNT_OFFSET_DEG %q: %w", value, err)
		}
		c.MountOffsetDeg = offset
	case "DECLINATION_DEG":
		decl, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid DECLINATION_DEG %q: %w", value, err)
		}
		c.DeclinationDeg = decl

	// Sentence
	case "TALKER_ID":
		if len(value) != 2 {
			return fmt.Errorf("TALKER_ID must be exactly two characters, got %q", value)
		}
		c.TalkerID = value

	// Transport
	case "UDP_DESTINATIONS":
		for _, ep := range strings.Split(value, ",") {
			ep = strings.TrimSpace(ep)
			if ep == "" {
				continue
			}
			if !strings.Contains(ep, ":") {
				return fmt.Errorf("UDP destination %q must be host:port", ep)
			}
			c.UDPDestinations = append(c.UDPDestinations, ep)
		}
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD %q: %w", value, err)
		}
		c.SerialBaudRate = rate

	// Timing
	case "SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_INTERVAL %q: %w", value, err)
		}
		if interval < 5 || interval > 250 {
			return fmt.Errorf("SAMPLE_INTERVAL must be 5-250 ms (4-200 Hz), got %d", interval)
		}
		c.SampleInterval = interval

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_SENDER":
		c.MQTTClientIDSender = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_HEADING":
		c.TopicHeading = value
	case "TOPIC_YAW_FUSED":
		c.TopicYawFused = value

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

func validAxis(value string) error {
	switch value {
	case "x", "y", "-x", "-y":
		return nil
	}
	return fmt.Errorf("axis must be x, y, -x or -y, got %q", value)
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.Source == "" {
		return fmt.Errorf("SOURCE is required")
	}
	if c.TalkerID == "" {
		return fmt.Errorf("TALKER_ID is required")
	}
	if len(c.UDPDestinations) == 0 {
		return fmt.Errorf("UDP_DESTINATIONS is required")
	}
	if c.SampleInterval == 0 {
		return fmt.Errorf("SAMPLE_INTERVAL is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once so this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
