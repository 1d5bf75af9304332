package slicer

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `mqtt:
  broker: tcp://localhost:1883
  rangeTopic: cloudslice/range
  clientId: cloudslice-test
minOccupiedPoints: 3
voxelSize: 0.25
debounceMs: 50
outputDir: /tmp/maps
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if config.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("Broker = %q, want tcp://localhost:1883", config.MQTT.Broker)
	}
	if config.MQTT.RangeTopic != "cloudslice/range" {
		t.Errorf("RangeTopic = %q, want cloudslice/range", config.MQTT.RangeTopic)
	}
	if config.MinOccupiedPoints != 3 {
		t.Errorf("MinOccupiedPoints = %d, want 3", config.MinOccupiedPoints)
	}
	if config.VoxelSize != 0.25 {
		t.Errorf("VoxelSize = %g, want 0.25", config.VoxelSize)
	}
	if config.Debounce() != 50*time.Millisecond {
		t.Errorf("Debounce() = %v, want 50ms", config.Debounce())
	}
	if config.OutputDir != "/tmp/maps" {
		t.Errorf("OutputDir = %q, want /tmp/maps", config.OutputDir)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("mqtt:\n  broker: tcp://host:1883\n"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if config.MinOccupiedPoints != DefaultMinOccupiedPoints {
		t.Errorf("MinOccupiedPoints = %d, want default %d", config.MinOccupiedPoints, DefaultMinOccupiedPoints)
	}
	if config.VoxelSize != DefaultVoxelSize {
		t.Errorf("VoxelSize = %g, want default %g", config.VoxelSize, DefaultVoxelSize)
	}
	if config.Debounce() != DefaultDebounce {
		t.Errorf("Debounce() = %v, want default %v", config.Debounce(), DefaultDebounce)
	}
	if config.OutputDir != "." {
		t.Errorf("OutputDir = %q, want .", config.OutputDir)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(dir, "nope.yaml")); err == nil {
			t.Error("LoadConfig() succeeded for a missing file")
		}
	})

	cases := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "mqtt: [broken\n"},
		{"negative threshold", "minOccupiedPoints: -1\n"},
		{"negative voxel size", "voxelSize: -0.5\n"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("writing config: %v", err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Error("LoadConfig() succeeded, want error")
			}
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	config := DefaultConfig()
	config.MQTT.Broker = "tcp://broker:1883"
	config.MinOccupiedPoints = 2

	if err := SaveConfig(path, config); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if loaded.MQTT.Broker != config.MQTT.Broker {
		t.Errorf("Broker = %q, want %q", loaded.MQTT.Broker, config.MQTT.Broker)
	}
	if loaded.MinOccupiedPoints != config.MinOccupiedPoints {
		t.Errorf("MinOccupiedPoints = %d, want %d", loaded.MinOccupiedPoints, config.MinOccupiedPoints)
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	if config.MinOccupiedPoints != DefaultMinOccupiedPoints {
		t.Errorf("MinOccupiedPoints = %d, want %d", config.MinOccupiedPoints, DefaultMinOccupiedPoints)
	}
	if config.Debounce() != DefaultDebounce {
		t.Errorf("Debounce() = %v, want %v", config.Debounce(), DefaultDebounce)
	}
}
