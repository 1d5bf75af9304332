package slicer

import (
	"fmt"
	"math"
)

// Rasterize projects the points onto the horizontal plane and accumulates
// them into a 2-D count grid at the given resolution (world units per
// cell).
//
// The grid spans exactly the XY bounding box of the points:
// width = ceil((maxX-minX)/resolution), height likewise for Y, and points
// are binned by linear mapping into those width x height cells. Binning is
// closed-interval: a point exactly on the upper boundary of an axis lands
// in the last cell of that axis, so every input point lands in exactly one
// cell and the sum of all cell counts equals len(points).
//
// The returned grid is already flipped vertically into image order: row 0
// corresponds to maxY, row height-1 to minY.
func Rasterize(points Cloud, resolution float64) (*Grid, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidResolution, resolution)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: nothing to rasterize", ErrEmptyRange)
	}

	bound := points.Bound()
	spanX := bound.Max[0] - bound.Min[0]
	spanY := bound.Max[1] - bound.Min[1]

	width := int(math.Ceil(spanX / resolution))
	height := int(math.Ceil(spanY / resolution))
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: extent %gx%g at resolution %g yields %dx%d grid",
			ErrDegenerateGeometry, spanX, spanY, resolution, width, height)
	}

	counts := make([][]int, height)
	for i := range counts {
		counts[i] = make([]int, width)
	}

	for _, p := range points {
		col := int((p.X - bound.Min[0]) / spanX * float64(width))
		if col >= width {
			col = width - 1
		}
		row := int((p.Y - bound.Min[1]) / spanY * float64(height))
		if row >= height {
			row = height - 1
		}
		// Image rows run top to bottom while world Y grows upward.
		counts[height-1-row][col]++
	}

	return &Grid{
		Counts:     counts,
		Width:      width,
		Height:     height,
		Bound:      bound,
		Resolution: resolution,
	}, nil
}
