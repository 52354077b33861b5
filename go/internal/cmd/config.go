package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mcdev12/simviewer/go/internal/field"
	"github.com/mcdev12/simviewer/go/internal/gateway"
	"github.com/mcdev12/simviewer/go/internal/playback"
	"github.com/mcdev12/simviewer/go/internal/relay"
	"github.com/mcdev12/simviewer/go/internal/viewer"
)

type Config struct {
	Engine struct {
		URL         string `yaml:"url"`
		SocketURL   string `yaml:"socket_url"`
		OffensePlay string `yaml:"offense_play"`
		DefensePlay string `yaml:"defense_play"`
	} `yaml:"engine"`

	Viewer struct {
		Width          int                     `yaml:"width"`
		Height         int                     `yaml:"height"`
		BufferCapacity int                     `yaml:"buffer_capacity"`
		TrailLength    int                     `yaml:"trail_length"`
		Zoom           string                  `yaml:"zoom"`
		Presets        map[string]field.Preset `yaml:"presets"`
		Interpolate    bool                    `yaml:"interpolate"`
		FrameInterval  time.Duration           `yaml:"frame_interval"`
		LerpRate       float64                 `yaml:"lerp_rate"`
	} `yaml:"viewer"`

	Relay struct {
		Enabled bool         `yaml:"enabled"`
		NATS    relay.Config `yaml:"nats"`
	} `yaml:"relay"`

	Archive struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"archive"`

	Inspect struct {
		Addr string `yaml:"addr"`
	} `yaml:"inspect"`
}

func defaultConfig() *Config {
	var c Config
	c.Engine.URL = "http://localhost:8000"
	c.Engine.SocketURL = gateway.DefaultConnectionConfig().URL
	c.Viewer.Width = 1280
	c.Viewer.Height = 800
	c.Viewer.BufferCapacity = playback.DefaultBufferCapacity
	c.Viewer.TrailLength = viewer.DefaultTrailLength
	c.Viewer.Zoom = field.ZoomNormal.String()
	c.Viewer.Interpolate = true
	c.Relay.NATS = relay.DefaultConfig()
	c.Inspect.Addr = ":8080"
	return &c
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// loadConfig reads the optional YAML file at path over the defaults, then
// applies environment overrides.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.Engine.URL = getEnv("ENGINE_URL", config.Engine.URL)
	config.Engine.SocketURL = getEnv("ENGINE_WS_URL", config.Engine.SocketURL)
	config.Viewer.BufferCapacity = getEnvAsInt("BUFFER_CAPACITY", config.Viewer.BufferCapacity)
	config.Viewer.Zoom = getEnv("VIEWER_ZOOM", config.Viewer.Zoom)
	config.Relay.Enabled = getEnvAsBool("RELAY_ENABLED", config.Relay.Enabled)
	config.Relay.NATS.URL = getEnv("NATS_URL", config.Relay.NATS.URL)
	config.Archive.Enabled = getEnvAsBool("ARCHIVE_ENABLED", config.Archive.Enabled)
	config.Inspect.Addr = getEnv("INSPECT_ADDR", config.Inspect.Addr)

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		return fmt.Errorf("invalid canvas size %dx%d", c.Viewer.Width, c.Viewer.Height)
	}
	if c.Viewer.BufferCapacity <= 0 {
		return fmt.Errorf("invalid buffer capacity %d", c.Viewer.BufferCapacity)
	}
	if _, err := field.ParseZoomMode(c.Viewer.Zoom); err != nil {
		return err
	}
	if _, err := c.presets(); err != nil {
		return err
	}
	return nil
}

// presets converts the named presets from the file into zoom modes
func (c *Config) presets() (map[field.ZoomMode]field.Preset, error) {
	out := make(map[field.ZoomMode]field.Preset, len(c.Viewer.Presets))
	for name, p := range c.Viewer.Presets {
		mode, err := field.ParseZoomMode(strings.ToLower(name))
		if err != nil {
			return nil, fmt.Errorf("invalid zoom preset: %w", err)
		}
		out[mode] = p
	}
	return out, nil
}

func (c *Config) connectionConfig() gateway.ConnectionConfig {
	cc := gateway.DefaultConnectionConfig()
	cc.URL = c.Engine.SocketURL
	return cc
}
