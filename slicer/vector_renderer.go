package slicer

import (
	"image/color"
	"image/png"
	"io"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
)

// VectorRenderer renders an occupancy count grid as vector graphics in
// world coordinates: one filled square per occupied cell. Useful for
// inspecting a slice at any zoom before committing to a PGM export.
type VectorRenderer struct {
	Grid        *Grid
	MinOccupied int
	Padding     float64           // padding in world units
	Resolution  canvas.Resolution // resolution for PNG output
	CellColor   color.RGBA
	GridColor   color.RGBA // bounding box outline
}

// NewVectorRenderer creates a renderer with default settings.
func NewVectorRenderer(grid *Grid, minOccupied int) *VectorRenderer {
	return &VectorRenderer{
		Grid:        grid,
		MinOccupied: minOccupied,
		Padding:     grid.Resolution * 2,
		Resolution:  canvas.DPMM(10),
		CellColor:   color.RGBA{40, 40, 40, 255},
		GridColor:   color.RGBA{180, 180, 180, 255},
	}
}

// canvasRenderer is the interface both the svg and rasterizer renderers
// implement.
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// RenderToSVG writes the occupancy cells as an SVG to the provided writer.
func (r *VectorRenderer) RenderToSVG(w io.Writer) error {
	width, height := r.canvasSize()

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, width, height)
	return svgRenderer.Close()
}

// RenderToPNG rasterizes the occupancy cells and encodes them as PNG.
func (r *VectorRenderer) RenderToPNG(w io.Writer) error {
	width, height := r.canvasSize()

	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, width, height)
	return png.Encode(w, rast)
}

func (r *VectorRenderer) canvasSize() (float64, float64) {
	spanX := r.Grid.Bound.Max[0] - r.Grid.Bound.Min[0]
	spanY := r.Grid.Bound.Max[1] - r.Grid.Bound.Min[1]
	return spanX + 2*r.Padding, spanY + 2*r.Padding
}

func (r *VectorRenderer) renderToCanvas(renderer canvasRenderer, width, height float64) {
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	spanX := r.Grid.Bound.Max[0] - r.Grid.Bound.Min[0]
	spanY := r.Grid.Bound.Max[1] - r.Grid.Bound.Min[1]
	cellW := spanX / float64(r.Grid.Width)
	cellH := spanY / float64(r.Grid.Height)

	cellStyle := canvas.DefaultStyle
	cellStyle.Fill = canvas.Paint{Color: r.CellColor}
	cellStyle.Stroke = canvas.Paint{Color: canvas.Transparent}

	// Grid rows are stored in image order (row 0 = maxY); the canvas Y
	// axis grows upward, so row 0 is drawn at the top of the canvas.
	for row := 0; row < r.Grid.Height; row++ {
		y0 := r.Padding + float64(r.Grid.Height-1-row)*cellH
		for col := 0; col < r.Grid.Width; col++ {
			if r.Grid.Counts[row][col] < r.MinOccupied {
				continue
			}
			x0 := r.Padding + float64(col)*cellW

			cp := &canvas.Path{}
			cp.MoveTo(x0, y0)
			cp.LineTo(x0+cellW, y0)
			cp.LineTo(x0+cellW, y0+cellH)
			cp.LineTo(x0, y0+cellH)
			cp.Close()
			renderer.RenderPath(cp, cellStyle, canvas.Identity)
		}
	}

	// Outline the rasterized bounding box.
	outline := canvas.DefaultStyle
	outline.Fill = canvas.Paint{Color: canvas.Transparent}
	outline.Stroke = canvas.Paint{Color: r.GridColor}
	outline.StrokeWidth = cellH / 10

	op := &canvas.Path{}
	op.MoveTo(r.Padding, r.Padding)
	op.LineTo(r.Padding+spanX, r.Padding)
	op.LineTo(r.Padding+spanX, r.Padding+spanY)
	op.LineTo(r.Padding, r.Padding+spanY)
	op.Close()
	renderer.RenderPath(op, outline, canvas.Identity)
}
