package slicer

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// CloudStats summarizes a loaded cloud for the info endpoints: point count,
// horizontal extent and the elevation distribution.
type CloudStats struct {
	Count int `json:"count"`

	MinX float64 `json:"minX"`
	MaxX float64 `json:"maxX"`
	MinY float64 `json:"minY"`
	MaxY float64 `json:"maxY"`

	MinZ    float64 `json:"minZ"`
	MaxZ    float64 `json:"maxZ"`
	MeanZ   float64 `json:"meanZ"`
	StdDevZ float64 `json:"stdDevZ"`
	Z05     float64 `json:"z05"`
	MedianZ float64 `json:"medianZ"`
	Z95     float64 `json:"z95"`
}

// ComputeStats computes summary statistics over the cloud. ok is false for
// an empty cloud.
func ComputeStats(c Cloud) (*CloudStats, bool) {
	if len(c) == 0 {
		return nil, false
	}

	zs := make([]float64, len(c))
	for i, p := range c {
		zs[i] = p.Z
	}
	sort.Float64s(zs)

	bound := c.Bound()
	mean, std := stat.MeanStdDev(zs, nil)

	s := &CloudStats{
		Count:   len(c),
		MinX:    bound.Min[0],
		MaxX:    bound.Max[0],
		MinY:    bound.Min[1],
		MaxY:    bound.Max[1],
		MinZ:    zs[0],
		MaxZ:    zs[len(zs)-1],
		MeanZ:   mean,
		Z05:     stat.Quantile(0.05, stat.Empirical, zs, nil),
		MedianZ: stat.Quantile(0.5, stat.Empirical, zs, nil),
		Z95:     stat.Quantile(0.95, stat.Empirical, zs, nil),
	}
	// MeanStdDev returns NaN stddev for a single sample.
	if len(zs) > 1 {
		s.StdDevZ = std
	}
	return s, true
}

// SuggestBand returns the central elevation band between the 5th and 95th
// percentiles, a reasonable starting slice that drops floor and ceiling
// outliers.
func (s *CloudStats) SuggestBand() ElevationRange {
	return ElevationRange{MinZ: s.Z05, MaxZ: s.Z95}
}
