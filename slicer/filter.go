package slicer

// FilterByElevation returns the subsequence of points whose elevation lies
// in the closed band [r.MinZ, r.MaxZ], preserving input order. An inverted
// band (MinZ > MaxZ) selects nothing; the caller contract is that the
// owning Session never presents one, but a hand-built range degrades to an
// empty result rather than faulting.
func FilterByElevation(points Cloud, r ElevationRange) Cloud {
	var out Cloud
	for _, p := range points {
		if r.Contains(p.Z) {
			out = append(out, p)
		}
	}
	return out
}
