package slicer

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the service configuration file. The classification threshold
// and the preview voxel size are fixed deployment parameters, not per-call
// options; they are read once at startup.
type Config struct {
	MQTT MQTTConfig `yaml:"mqtt" json:"mqtt"`

	// MinOccupiedPoints is the minimum per-cell point count for a cell to
	// be classified occupied.
	MinOccupiedPoints int `yaml:"minOccupiedPoints,omitempty" json:"minOccupiedPoints,omitempty"`

	// VoxelSize is the edge length (world units) of the voxel grid used to
	// downsample the display cloud for preview.
	VoxelSize float64 `yaml:"voxelSize,omitempty" json:"voxelSize,omitempty"`

	// DebounceMs is the idle window for coalescing preview updates.
	DebounceMs int `yaml:"debounceMs,omitempty" json:"debounceMs,omitempty"`

	// OutputDir is the default directory for conversion outputs.
	OutputDir string `yaml:"outputDir,omitempty" json:"outputDir,omitempty"`
}

// MQTTConfig holds MQTT connection settings. An empty broker disables MQTT.
type MQTTConfig struct {
	Broker        string `yaml:"broker,omitempty" json:"broker,omitempty"`
	RangeTopic    string `yaml:"rangeTopic,omitempty" json:"rangeTopic,omitempty"`
	PublishPrefix string `yaml:"publishPrefix,omitempty" json:"publishPrefix,omitempty"`
	ClientID      string `yaml:"clientId,omitempty" json:"clientId,omitempty"`
	Username      string `yaml:"username,omitempty" json:"username,omitempty"`
	Password      string `yaml:"password,omitempty" json:"password,omitempty"`
}

// Deployment defaults applied by DefaultConfig and LoadConfig.
const (
	DefaultMinOccupiedPoints = 1
	DefaultVoxelSize         = 0.1
	DefaultDebounce          = 10 * time.Millisecond
)

// DefaultConfig returns a config with all deployment constants set.
func DefaultConfig() *Config {
	return &Config{
		MinOccupiedPoints: DefaultMinOccupiedPoints,
		VoxelSize:         DefaultVoxelSize,
		DebounceMs:        int(DefaultDebounce / time.Millisecond),
		OutputDir:         ".",
	}
}

// Debounce returns the configured preview idle window.
func (c *Config) Debounce() time.Duration {
	if c.DebounceMs <= 0 {
		return DefaultDebounce
	}
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// LoadConfig loads the service configuration from a YAML file and fills
// defaults for unset deployment constants.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if config.MinOccupiedPoints < 0 {
		return nil, fmt.Errorf("minOccupiedPoints must not be negative, got %d", config.MinOccupiedPoints)
	}
	if config.VoxelSize < 0 {
		return nil, fmt.Errorf("voxelSize must not be negative, got %g", config.VoxelSize)
	}

	if config.MinOccupiedPoints == 0 {
		config.MinOccupiedPoints = DefaultMinOccupiedPoints
	}
	if config.VoxelSize == 0 {
		config.VoxelSize = DefaultVoxelSize
	}
	if config.OutputDir == "" {
		config.OutputDir = "."
	}

	return &config, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
