package slicer

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestEncodePGM(t *testing.T) {
	raster := &Raster{
		Pixels: [][]uint8{
			{0, 255, 0},
			{255, 0, 255},
		},
		Width:  3,
		Height: 2,
	}

	var buf bytes.Buffer
	if err := EncodePGM(&buf, raster); err != nil {
		t.Fatalf("EncodePGM() error: %v", err)
	}

	want := "P2\n3 2\n255\n0 255 0\n255 0 255\n"
	if buf.String() != want {
		t.Errorf("EncodePGM() = %q, want %q", buf.String(), want)
	}
}

func TestEncodeDecodePGMRoundTrip(t *testing.T) {
	raster := &Raster{
		Pixels: [][]uint8{
			{0, 255},
			{255, 0},
			{0, 0},
		},
		Width:  2,
		Height: 3,
	}

	var buf bytes.Buffer
	if err := EncodePGM(&buf, raster); err != nil {
		t.Fatalf("EncodePGM() error: %v", err)
	}

	got, err := DecodePGM(&buf)
	if err != nil {
		t.Fatalf("DecodePGM() error: %v", err)
	}
	if got.Width != raster.Width || got.Height != raster.Height {
		t.Fatalf("decoded %dx%d, want %dx%d", got.Width, got.Height, raster.Width, raster.Height)
	}
	for y := range raster.Pixels {
		for x := range raster.Pixels[y] {
			if got.Pixels[y][x] != raster.Pixels[y][x] {
				t.Errorf("pixel (%d,%d) = %d, want %d", x, y, got.Pixels[y][x], raster.Pixels[y][x])
			}
		}
	}
}

func TestDecodePGMCommentsAndWhitespace(t *testing.T) {
	input := "P2 # ascii graymap\n# full comment line\n2 1\n255\n  0\t255\n"
	got, err := DecodePGM(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodePGM() error: %v", err)
	}
	if got.Width != 2 || got.Height != 1 {
		t.Fatalf("decoded %dx%d, want 2x1", got.Width, got.Height)
	}
	if got.Pixels[0][0] != 0 || got.Pixels[0][1] != 255 {
		t.Errorf("decoded row = %v, want [0 255]", got.Pixels[0])
	}
}

func TestDecodePGMErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty stream", ""},
		{"wrong magic", "P5\n2 1\n255\n0 0\n"},
		{"zero width", "P2\n0 1\n255\n"},
		{"bad height", "P2\n2 x\n255\n0 0\n"},
		{"maxval too large", "P2\n1 1\n65535\n0\n"},
		{"missing samples", "P2\n2 2\n255\n0 0 0\n"},
		{"extra samples", "P2\n1 1\n255\n0 0\n"},
		{"sample above maxval", "P2\n1 1\n100\n200\n"},
		{"negative sample", "P2\n1 1\n255\n-1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodePGM(strings.NewReader(tt.input)); err == nil {
				t.Errorf("DecodePGM(%q) succeeded, want error", tt.input)
			}
		})
	}
}

func TestWriteReadPGM(t *testing.T) {
	raster := &Raster{
		Pixels: [][]uint8{{0, 255}},
		Width:  2,
		Height: 1,
	}

	path := filepath.Join(t.TempDir(), "out", "map.pgm")
	if err := WritePGM(path, raster); err != nil {
		t.Fatalf("WritePGM() error: %v", err)
	}

	got, err := ReadPGM(path)
	if err != nil {
		t.Fatalf("ReadPGM() error: %v", err)
	}
	if got.Width != 2 || got.Height != 1 || got.Pixels[0][0] != 0 || got.Pixels[0][1] != 255 {
		t.Errorf("ReadPGM() = %+v, want the raster written", got)
	}
}
