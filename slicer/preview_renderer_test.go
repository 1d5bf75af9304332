package slicer

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestPreviewRendererRender(t *testing.T) {
	points := Cloud{
		{X: 0, Y: 0, Z: 0},
		{X: 2, Y: 1, Z: 0.5},
		{X: 1, Y: 2, Z: 1},
	}
	r := NewPreviewRenderer()

	img := r.Render(points, ElevationRange{MinZ: 0, MaxZ: 1})
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		t.Fatalf("Render() produced empty image %v", bounds)
	}
	if bounds.Dx() > r.MaxDim+2*r.Padding || bounds.Dy() > r.MaxDim+2*r.Padding {
		t.Errorf("Render() image %v exceeds MaxDim %d", bounds, r.MaxDim)
	}
}

func TestPreviewRendererEmptyBand(t *testing.T) {
	r := NewPreviewRenderer()
	img := r.Render(nil, ElevationRange{MinZ: 0, MaxZ: 1})
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		t.Error("Render(nil) must still produce a placeholder image")
	}
}

func TestPreviewRendererDegenerateSpan(t *testing.T) {
	// All points share one X: the image must still be valid.
	points := Cloud{
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 5, Z: 1},
	}
	r := NewPreviewRenderer()
	img := r.Render(points, ElevationRange{MinZ: 0, MaxZ: 1})
	if img.Bounds().Dx() <= 0 || img.Bounds().Dy() <= 0 {
		t.Errorf("Render() produced invalid image %v for a zero-width cloud", img.Bounds())
	}
}

func TestPreviewRendererRenderPNG(t *testing.T) {
	points := Cloud{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1}}
	r := NewPreviewRenderer()

	var buf bytes.Buffer
	if err := r.RenderPNG(&buf, points, ElevationRange{MinZ: 0, MaxZ: 1}); err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}
	if img.Bounds().Dx() <= 0 {
		t.Error("decoded PNG is empty")
	}
}

func TestPreviewRendererSavePNG(t *testing.T) {
	points := Cloud{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1}}
	r := NewPreviewRenderer()
	path := filepath.Join(t.TempDir(), "preview.png")

	if err := r.SavePNG(path, points, ElevationRange{MinZ: 0, MaxZ: 1}); err != nil {
		t.Fatalf("SavePNG() error: %v", err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("SavePNG() wrote nothing: %v", err)
	}
}

func TestElevationColorRamp(t *testing.T) {
	low := elevationColor(0)
	high := elevationColor(1)
	if low.B <= high.B {
		t.Errorf("low elevation should be bluer: %v vs %v", low, high)
	}
	if high.R <= low.R {
		t.Errorf("high elevation should be redder: %v vs %v", high, low)
	}

	// Out-of-band values clamp instead of overflowing.
	if elevationColor(-5) != low {
		t.Error("elevationColor(-5) != elevationColor(0)")
	}
	if elevationColor(5) != high {
		t.Error("elevationColor(5) != elevationColor(1)")
	}
}
