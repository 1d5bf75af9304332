package slicer

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// PreviewRenderer draws a top-down scatter of a filtered point set,
// colored by elevation across the current band. It stands in for the
// interactive 3-D renderer of the desktop tool: the session hands it a
// fresh filtered snapshot per query.
type PreviewRenderer struct {
	MaxDim  int // longest image edge in pixels
	Padding int // padding around the scatter
}

// NewPreviewRenderer creates a renderer with default settings.
func NewPreviewRenderer() *PreviewRenderer {
	return &PreviewRenderer{
		MaxDim:  800,
		Padding: 24,
	}
}

// Render draws the points into a new image. An empty set yields a small
// placeholder image carrying only the label, so "nothing to draw" still
// produces a valid response body.
func (r *PreviewRenderer) Render(points Cloud, band ElevationRange) *image.RGBA {
	label := fmt.Sprintf("z [%.3f, %.3f]  %d points", band.MinZ, band.MaxZ, len(points))

	if len(points) == 0 {
		img := newFilledImage(320, 48)
		drawText(img, 8, 28, "no points in band  "+label, color.RGBA{80, 80, 80, 255})
		return img
	}

	bound := points.Bound()
	spanX := bound.Max[0] - bound.Min[0]
	spanY := bound.Max[1] - bound.Min[1]

	// Fit the longer world axis to MaxDim pixels. Degenerate spans still
	// render: a single column or row of points collapses to a line.
	scale := 1.0
	maxSpan := spanX
	if spanY > maxSpan {
		maxSpan = spanY
	}
	if maxSpan > 0 {
		scale = float64(r.MaxDim-2*r.Padding) / maxSpan
	}

	width := int(spanX*scale) + 2*r.Padding
	height := int(spanY*scale) + 2*r.Padding
	if width <= 0 {
		width = 2*r.Padding + 1
	}
	if height <= 0 {
		height = 2*r.Padding + 1
	}

	img := newFilledImage(width, height)

	zSpan := band.MaxZ - band.MinZ
	for _, p := range points {
		ix := int((p.X-bound.Min[0])*scale) + r.Padding
		// World Y grows upward, image rows grow downward.
		iy := height - 1 - (int((p.Y-bound.Min[1])*scale) + r.Padding)
		if ix < 0 || ix >= width || iy < 0 || iy >= height {
			continue
		}
		t := 0.0
		if zSpan > 0 {
			t = (p.Z - band.MinZ) / zSpan
		}
		img.Set(ix, iy, elevationColor(t))
	}

	drawText(img, 8, height-8, label, color.RGBA{0, 0, 0, 255})
	return img
}

// RenderPNG renders the points and encodes the image as PNG.
func (r *PreviewRenderer) RenderPNG(w io.Writer, points Cloud, band ElevationRange) error {
	return png.Encode(w, r.Render(points, band))
}

// SavePNG renders the points to a PNG file.
func (r *PreviewRenderer) SavePNG(path string, points Cloud, band ElevationRange) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return r.RenderPNG(f, points, band)
}

func newFilledImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	bg := color.RGBA{240, 240, 240, 255}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, bg)
		}
	}
	return img
}

// elevationColor maps t in [0,1] onto a blue-to-red ramp.
func elevationColor(t float64) color.RGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return color.RGBA{
		R: uint8(255 * t),
		G: uint8(64 * (1 - t)),
		B: uint8(255 * (1 - t)),
		A: 255,
	}
}

// drawText renders text onto an image at the specified position.
func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
