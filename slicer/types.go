package slicer

import (
	"math"

	"github.com/paulmach/orb"
)

// Occupancy markers written into the raster by Classify.
const (
	OccupiedValue = 0
	FreeValue     = 255
)

// Point is a single 3-D sample from a point cloud.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Cloud is an ordered sequence of 3-D points. Once handed to a Session it is
// treated as immutable; no code in this package mutates a Cloud in place.
type Cloud []Point

// ZRange returns the minimum and maximum elevation in the cloud.
// ok is false for an empty cloud.
func (c Cloud) ZRange() (minZ, maxZ float64, ok bool) {
	if len(c) == 0 {
		return 0, 0, false
	}
	minZ, maxZ = c[0].Z, c[0].Z
	for _, p := range c[1:] {
		if p.Z < minZ {
			minZ = p.Z
		}
		if p.Z > maxZ {
			maxZ = p.Z
		}
	}
	return minZ, maxZ, true
}

// Bound returns the horizontal (XY) bounding box of the cloud.
func (c Cloud) Bound() orb.Bound {
	b := orb.Bound{
		Min: orb.Point{math.Inf(1), math.Inf(1)},
		Max: orb.Point{math.Inf(-1), math.Inf(-1)},
	}
	for _, p := range c {
		b = b.Extend(orb.Point{p.X, p.Y})
	}
	return b
}

// ElevationRange is an inclusive band of elevations. The ordering invariant
// MinZ <= MaxZ is maintained by Session; a range constructed by hand may
// violate it, in which case FilterByElevation returns an empty result.
type ElevationRange struct {
	MinZ float64 `json:"minZ"`
	MaxZ float64 `json:"maxZ"`
}

// Contains reports whether z lies inside the closed band.
func (r ElevationRange) Contains(z float64) bool {
	return z >= r.MinZ && z <= r.MaxZ
}

// Grid is a 2-D array of per-cell point counts produced by Rasterize.
// Rows run top to bottom in image order: row 0 covers the maximum-Y strip
// of the bounding box, row Height-1 the minimum-Y strip.
type Grid struct {
	Counts     [][]int
	Width      int
	Height     int
	Bound      orb.Bound
	Resolution float64
}

// Total returns the sum of all cell counts.
func (g *Grid) Total() int {
	n := 0
	for _, row := range g.Counts {
		for _, c := range row {
			n += c
		}
	}
	return n
}

// Raster is an 8-bit grayscale occupancy image, row 0 first (top row).
type Raster struct {
	Pixels [][]uint8
	Width  int
	Height int
}

// MapMeta is the georeferencing sidecar paired with a written raster.
// Origin is the world coordinate of the bottom-left cell of the image,
// i.e. (minX, minY) of the rasterized bounding box.
type MapMeta struct {
	Image          string  `yaml:"image" json:"image"`
	Resolution     float64 `yaml:"resolution" json:"resolution"`
	OriginX        float64 `yaml:"-" json:"originX"`
	OriginY        float64 `yaml:"-" json:"originY"`
	OccupiedThresh float64 `yaml:"occupied_thresh" json:"occupiedThresh"`
	FreeThresh     float64 `yaml:"free_thresh" json:"freeThresh"`
	Negate         int     `yaml:"negate" json:"negate"`
}

// ConvertRequest carries the parameters for one PGM/YAML conversion.
type ConvertRequest struct {
	Range          ElevationRange `json:"range"`
	Resolution     float64        `json:"resolution"`
	OutputDir      string         `json:"outputDir"`
	OutputName     string         `json:"outputName"`
	OccupiedThresh float64        `json:"occupiedThresh"`
	FreeThresh     float64        `json:"freeThresh"`
	Negate         int            `json:"negate"`
}

// ApplyDefaults fills the occupancy threshold fields consumers rarely set.
func (r *ConvertRequest) ApplyDefaults() {
	if r.OccupiedThresh == 0 {
		r.OccupiedThresh = DefaultOccupiedThresh
	}
	if r.FreeThresh == 0 {
		r.FreeThresh = DefaultFreeThresh
	}
}

// ConvertResult reports the two files produced by a conversion.
type ConvertResult struct {
	PGMPath  string `json:"pgmPath"`
	YAMLPath string `json:"yamlPath"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Default occupancy thresholds passed through to the metadata sidecar.
// They describe how downstream navigation tooling should interpret the
// raster and are not used by the classifier itself.
const (
	DefaultOccupiedThresh = 0.65
	DefaultFreeThresh     = 0.2
)
