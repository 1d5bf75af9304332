package slicer

import "testing"

func TestFilterByElevation(t *testing.T) {
	cloud := Cloud{
		{X: 0, Y: 0, Z: -1.0},
		{X: 1, Y: 1, Z: 0.0},
		{X: 2, Y: 2, Z: 0.5},
		{X: 3, Y: 3, Z: 1.0},
		{X: 4, Y: 4, Z: 2.5},
	}

	tests := []struct {
		name  string
		r     ElevationRange
		wantZ []float64
	}{
		{
			name:  "interior band",
			r:     ElevationRange{MinZ: 0.0, MaxZ: 1.0},
			wantZ: []float64{0.0, 0.5, 1.0},
		},
		{
			name:  "boundary points included",
			r:     ElevationRange{MinZ: -1.0, MaxZ: -1.0},
			wantZ: []float64{-1.0},
		},
		{
			name:  "full range keeps everything",
			r:     ElevationRange{MinZ: -1.0, MaxZ: 2.5},
			wantZ: []float64{-1.0, 0.0, 0.5, 1.0, 2.5},
		},
		{
			name:  "band below cloud",
			r:     ElevationRange{MinZ: -10, MaxZ: -5},
			wantZ: []float64{},
		},
		{
			name:  "inverted band selects nothing",
			r:     ElevationRange{MinZ: 1.0, MaxZ: 0.0},
			wantZ: []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByElevation(cloud, tt.r)
			if len(got) != len(tt.wantZ) {
				t.Fatalf("FilterByElevation() returned %d points, want %d", len(got), len(tt.wantZ))
			}
			for i, p := range got {
				if p.Z != tt.wantZ[i] {
					t.Errorf("point %d has z=%g, want %g", i, p.Z, tt.wantZ[i])
				}
			}
		})
	}
}

func TestFilterByElevationPreservesOrder(t *testing.T) {
	cloud := Cloud{
		{X: 3, Y: 0, Z: 0.5},
		{X: 1, Y: 0, Z: 0.5},
		{X: 2, Y: 0, Z: 0.5},
	}

	got := FilterByElevation(cloud, ElevationRange{MinZ: 0, MaxZ: 1})
	for i, p := range got {
		if p.X != cloud[i].X {
			t.Errorf("point %d out of order: x=%g, want %g", i, p.X, cloud[i].X)
		}
	}
}

func TestFilterByElevationDoesNotMutateInput(t *testing.T) {
	cloud := Cloud{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 5},
		{X: 2, Y: 2, Z: 1},
	}

	_ = FilterByElevation(cloud, ElevationRange{MinZ: 0, MaxZ: 1})

	want := []float64{0, 5, 1}
	for i, p := range cloud {
		if p.Z != want[i] {
			t.Errorf("input point %d mutated: z=%g, want %g", i, p.Z, want[i])
		}
	}
}

func TestFilterByElevationEmptyInput(t *testing.T) {
	if got := FilterByElevation(nil, ElevationRange{MinZ: 0, MaxZ: 1}); len(got) != 0 {
		t.Errorf("FilterByElevation(nil) = %d points, want 0", len(got))
	}
}
