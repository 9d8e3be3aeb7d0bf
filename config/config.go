// Package config loads and saves the camdeck configuration file.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// CameraConfig describes one remote camera: its MQTT device name, which
// switcher input it feeds, and whether its tally board is driven.
type CameraConfig struct {
	Name          string `json:"name"`
	SwitcherInput string `json:"switcherInput"`
	Tally         bool   `json:"tally,omitempty"`
}

// SurfaceConfig names the MIDI port of the control surface.
type SurfaceConfig struct {
	PortName string `json:"portName"`
}

// Config is the main configuration structure.
type Config struct {
	BrokerURL string         `json:"brokerURL"`
	Surface   SurfaceConfig  `json:"surface,omitempty"`
	Cameras   []CameraConfig `json:"cameras,omitempty"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BrokerURL: "mqtt://localhost:1883",
		Surface: SurfaceConfig{
			PortName: "X-TOUCH MINI",
		},
		Cameras: []CameraConfig{
			{Name: "cam-1", SwitcherInput: "1"},
		},
	}
}

// ConfigDir returns the config directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "camdeck"), nil
}

// ConfigPath returns the full path to config.json.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// FindCamera finds a camera config by device name.
func (c *Config) FindCamera(name string) *CameraConfig {
	for i := range c.Cameras {
		if c.Cameras[i].Name == name {
			return &c.Cameras[i]
		}
	}
	return nil
}

// CameraForInput finds the camera feeding a switcher input.
func (c *Config) CameraForInput(input string) *CameraConfig {
	for i := range c.Cameras {
		if c.Cameras[i].SwitcherInput == input {
			return &c.Cameras[i]
		}
	}
	return nil
}
