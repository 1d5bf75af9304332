package slicer

import (
	"math"
	"testing"
)

func TestComputeStats(t *testing.T) {
	var cloud Cloud
	for i := 1; i <= 10; i++ {
		cloud = append(cloud, Point{X: float64(i), Y: float64(-i), Z: float64(i)})
	}

	stats, ok := ComputeStats(cloud)
	if !ok {
		t.Fatal("ComputeStats() ok = false for a populated cloud")
	}

	if stats.Count != 10 {
		t.Errorf("Count = %d, want 10", stats.Count)
	}
	if stats.MinX != 1 || stats.MaxX != 10 {
		t.Errorf("X extent = [%g, %g], want [1, 10]", stats.MinX, stats.MaxX)
	}
	if stats.MinY != -10 || stats.MaxY != -1 {
		t.Errorf("Y extent = [%g, %g], want [-10, -1]", stats.MinY, stats.MaxY)
	}
	if stats.MinZ != 1 || stats.MaxZ != 10 {
		t.Errorf("Z extent = [%g, %g], want [1, 10]", stats.MinZ, stats.MaxZ)
	}
	if !almostEqual(stats.MeanZ, 5.5) {
		t.Errorf("MeanZ = %g, want 5.5", stats.MeanZ)
	}
	if math.Abs(stats.StdDevZ-math.Sqrt(82.5/9)) > 1e-9 {
		t.Errorf("StdDevZ = %g, want sample stddev of 1..10", stats.StdDevZ)
	}
	if stats.MedianZ != 5 {
		t.Errorf("MedianZ = %g, want 5", stats.MedianZ)
	}
	if stats.Z05 != 1 || stats.Z95 != 10 {
		t.Errorf("percentiles = [%g, %g], want [1, 10]", stats.Z05, stats.Z95)
	}
}

func TestComputeStatsSinglePoint(t *testing.T) {
	stats, ok := ComputeStats(Cloud{{X: 1, Y: 2, Z: 3}})
	if !ok {
		t.Fatal("ComputeStats() ok = false for a single point")
	}
	if stats.MeanZ != 3 || stats.MedianZ != 3 {
		t.Errorf("MeanZ/MedianZ = %g/%g, want 3/3", stats.MeanZ, stats.MedianZ)
	}
	if stats.StdDevZ != 0 {
		t.Errorf("StdDevZ = %g, want 0 for a single sample", stats.StdDevZ)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	if _, ok := ComputeStats(nil); ok {
		t.Error("ComputeStats(nil) ok = true, want false")
	}
}

func TestSuggestBand(t *testing.T) {
	stats := &CloudStats{Z05: 0.25, Z95: 1.75}
	band := stats.SuggestBand()
	if band.MinZ != 0.25 || band.MaxZ != 1.75 {
		t.Errorf("SuggestBand() = [%g, %g], want [0.25, 1.75]", band.MinZ, band.MaxZ)
	}
}
