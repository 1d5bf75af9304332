package slicer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FootprintFeatureCollection exports the occupied cells of a count grid as
// a GeoJSON FeatureCollection in world coordinates: one polygon per
// occupied cell, carrying its point count, plus the grid bounding box as a
// final feature. Downstream GIS tooling can overlay this on other layers
// without understanding the PGM convention.
func FootprintFeatureCollection(grid *Grid, minOccupied int) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	spanX := grid.Bound.Max[0] - grid.Bound.Min[0]
	spanY := grid.Bound.Max[1] - grid.Bound.Min[1]
	cellW := spanX / float64(grid.Width)
	cellH := spanY / float64(grid.Height)

	for row := 0; row < grid.Height; row++ {
		// Row 0 is the top of the image, i.e. the maxY strip.
		y0 := grid.Bound.Min[1] + float64(grid.Height-1-row)*cellH
		for col := 0; col < grid.Width; col++ {
			count := grid.Counts[row][col]
			if count < minOccupied {
				continue
			}
			x0 := grid.Bound.Min[0] + float64(col)*cellW

			ring := orb.Ring{
				{x0, y0},
				{x0 + cellW, y0},
				{x0 + cellW, y0 + cellH},
				{x0, y0 + cellH},
				{x0, y0},
			}
			f := geojson.NewFeature(orb.Polygon{ring})
			f.Properties = geojson.Properties{
				"count": count,
				"row":   row,
				"col":   col,
			}
			fc.Append(f)
		}
	}

	bboxFeature := geojson.NewFeature(grid.Bound.ToPolygon())
	bboxFeature.Properties = geojson.Properties{
		"kind":       "bounds",
		"resolution": grid.Resolution,
		"width":      grid.Width,
		"height":     grid.Height,
	}
	fc.Append(bboxFeature)

	return fc
}

// WriteFootprint marshals the footprint collection to a GeoJSON file,
// creating the destination directory if needed.
func WriteFootprint(path string, grid *Grid, minOccupied int) error {
	fc := FootprintFeatureCollection(grid, minOccupied)
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling footprint GeoJSON: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing footprint %s: %w", path, err)
	}
	return nil
}
