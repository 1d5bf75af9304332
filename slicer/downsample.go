package slicer

import (
	"math"
	"sort"
)

type voxelKey struct {
	IX, IY, IZ int
}

// VoxelDownsample reduces a cloud to one centroid point per occupied voxel
// of edge length voxelSize. It builds the reduced display cloud used by the
// preview path; the full-resolution cloud is untouched. A voxelSize <= 0
// disables downsampling and returns the input unchanged.
//
// Output points are ordered by voxel index so repeated calls over the same
// cloud produce identical sequences.
func VoxelDownsample(points Cloud, voxelSize float64) Cloud {
	if voxelSize <= 0 || len(points) == 0 {
		return points
	}

	type accum struct {
		x, y, z float64
		n       int
	}
	voxels := make(map[voxelKey]*accum)

	for _, p := range points {
		k := voxelKey{
			IX: int(math.Floor(p.X / voxelSize)),
			IY: int(math.Floor(p.Y / voxelSize)),
			IZ: int(math.Floor(p.Z / voxelSize)),
		}
		a := voxels[k]
		if a == nil {
			a = &accum{}
			voxels[k] = a
		}
		a.x += p.X
		a.y += p.Y
		a.z += p.Z
		a.n++
	}

	keys := make([]voxelKey, 0, len(voxels))
	for k := range voxels {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.IZ != b.IZ {
			return a.IZ < b.IZ
		}
		if a.IY != b.IY {
			return a.IY < b.IY
		}
		return a.IX < b.IX
	})

	out := make(Cloud, 0, len(keys))
	for _, k := range keys {
		a := voxels[k]
		out = append(out, Point{
			X: a.x / float64(a.n),
			Y: a.y / float64(a.n),
			Z: a.z / float64(a.n),
		})
	}
	return out
}
