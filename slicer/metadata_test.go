package slicer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestEncodeMapMeta(t *testing.T) {
	meta := &MapMeta{
		Image:          "map.pgm",
		Resolution:     0.05,
		OriginX:        -2.5,
		OriginY:        3,
		OccupiedThresh: 0.65,
		FreeThresh:     0.2,
		Negate:         0,
	}

	want := "image: map.pgm\n" +
		"resolution: 0.05\n" +
		"origin: [-2.5, 3, 0.0]\n" +
		"occupied_thresh: 0.65\n" +
		"free_thresh: 0.2\n" +
		"negate: 0\n"

	if got := string(EncodeMapMeta(meta)); got != want {
		t.Errorf("EncodeMapMeta() = %q, want %q", got, want)
	}
}

func TestEncodeMapMetaKeyOrder(t *testing.T) {
	meta := &MapMeta{Image: "floor.pgm", Resolution: 0.1, OccupiedThresh: 0.65, FreeThresh: 0.2}
	lines := strings.Split(strings.TrimRight(string(EncodeMapMeta(meta)), "\n"), "\n")

	wantKeys := []string{"image", "resolution", "origin", "occupied_thresh", "free_thresh", "negate"}
	if len(lines) != len(wantKeys) {
		t.Fatalf("sidecar has %d lines, want %d", len(lines), len(wantKeys))
	}
	for i, key := range wantKeys {
		if !strings.HasPrefix(lines[i], key+":") {
			t.Errorf("line %d = %q, want it to start with %q", i, lines[i], key+":")
		}
	}
}

func TestMapMetaParsesAsYAML(t *testing.T) {
	meta := &MapMeta{
		Image:          "map.pgm",
		Resolution:     0.05,
		OriginX:        -1.25,
		OriginY:        0.5,
		OccupiedThresh: 0.65,
		FreeThresh:     0.2,
		Negate:         1,
	}

	var parsed struct {
		Image          string    `yaml:"image"`
		Resolution     float64   `yaml:"resolution"`
		Origin         []float64 `yaml:"origin"`
		OccupiedThresh float64   `yaml:"occupied_thresh"`
		FreeThresh     float64   `yaml:"free_thresh"`
		Negate         int       `yaml:"negate"`
	}
	if err := yaml.Unmarshal(EncodeMapMeta(meta), &parsed); err != nil {
		t.Fatalf("sidecar is not valid YAML: %v", err)
	}

	if parsed.Image != meta.Image {
		t.Errorf("image = %q, want %q", parsed.Image, meta.Image)
	}
	if parsed.Resolution != meta.Resolution {
		t.Errorf("resolution = %g, want %g", parsed.Resolution, meta.Resolution)
	}
	if len(parsed.Origin) != 3 {
		t.Fatalf("origin has %d elements, want 3", len(parsed.Origin))
	}
	if parsed.Origin[0] != meta.OriginX || parsed.Origin[1] != meta.OriginY || parsed.Origin[2] != 0 {
		t.Errorf("origin = %v, want [%g %g 0]", parsed.Origin, meta.OriginX, meta.OriginY)
	}
	if parsed.OccupiedThresh != meta.OccupiedThresh || parsed.FreeThresh != meta.FreeThresh {
		t.Errorf("thresholds = %g/%g, want %g/%g",
			parsed.OccupiedThresh, parsed.FreeThresh, meta.OccupiedThresh, meta.FreeThresh)
	}
	if parsed.Negate != meta.Negate {
		t.Errorf("negate = %d, want %d", parsed.Negate, meta.Negate)
	}
}

func TestWriteMapMeta(t *testing.T) {
	meta := &MapMeta{Image: "map.pgm", Resolution: 0.05, OccupiedThresh: 0.65, FreeThresh: 0.2}
	path := filepath.Join(t.TempDir(), "maps", "map.yaml")

	if err := WriteMapMeta(path, meta); err != nil {
		t.Fatalf("WriteMapMeta() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading sidecar: %v", err)
	}
	if string(data) != string(EncodeMapMeta(meta)) {
		t.Errorf("file content differs from EncodeMapMeta() output")
	}
}
