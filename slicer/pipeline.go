package slicer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Pipeline runs the full conversion chain over a loaded point cloud:
// elevation filter, grid rasterization, occupancy classification, and
// encoding of the raster plus its metadata sidecar. It performs no
// internal locking; the cloud is immutable once handed over and a
// deployment runs at most one conversion at a time.
type Pipeline struct {
	raw         Cloud
	minOccupied int
}

// NewPipeline creates a pipeline over the raw full-resolution cloud.
// minOccupied is the per-cell classification threshold, a deployment
// constant from Config.
func NewPipeline(raw Cloud, minOccupied int) *Pipeline {
	return &Pipeline{raw: raw, minOccupied: minOccupied}
}

// Cloud returns the raw cloud the pipeline operates on.
func (p *Pipeline) Cloud() Cloud {
	return p.raw
}

// Convert runs Filter -> Rasterize -> Classify -> Encode for one request
// and returns the two output paths. No files are written unless the whole
// in-memory chain succeeds first.
func (p *Pipeline) Convert(req ConvertRequest) (*ConvertResult, *MapMeta, error) {
	if len(p.raw) == 0 {
		return nil, nil, ErrEmptyCloud
	}
	if req.Resolution <= 0 {
		return nil, nil, fmt.Errorf("%w: got %g", ErrInvalidResolution, req.Resolution)
	}
	req.ApplyDefaults()

	filtered := FilterByElevation(p.raw, req.Range)
	if len(filtered) == 0 {
		return nil, nil, fmt.Errorf("%w: [%g, %g]", ErrEmptyRange, req.Range.MinZ, req.Range.MaxZ)
	}

	grid, err := Rasterize(filtered, req.Resolution)
	if err != nil {
		return nil, nil, err
	}
	raster := Classify(grid, p.minOccupied)

	name := req.OutputName
	if name == "" {
		name = "map.pgm"
	}
	if !strings.HasSuffix(name, ".pgm") {
		name += ".pgm"
	}
	pgmPath := filepath.Join(req.OutputDir, name)
	yamlPath := strings.TrimSuffix(pgmPath, ".pgm") + ".yaml"

	if err := WritePGM(pgmPath, raster); err != nil {
		return nil, nil, err
	}

	meta := &MapMeta{
		Image:          filepath.Base(pgmPath),
		Resolution:     req.Resolution,
		OriginX:        grid.Bound.Min[0],
		OriginY:        grid.Bound.Min[1],
		OccupiedThresh: req.OccupiedThresh,
		FreeThresh:     req.FreeThresh,
		Negate:         req.Negate,
	}
	if err := WriteMapMeta(yamlPath, meta); err != nil {
		return nil, nil, err
	}

	return &ConvertResult{
		PGMPath:  pgmPath,
		YAMLPath: yamlPath,
		Width:    grid.Width,
		Height:   grid.Height,
	}, meta, nil
}
