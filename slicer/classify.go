package slicer

// Classify thresholds the count grid into a binary occupancy raster: a cell
// with count >= minOccupied becomes OccupiedValue (0), everything else
// FreeValue (255). The comparison is inclusive on the occupied side.
func Classify(grid *Grid, minOccupied int) *Raster {
	pixels := make([][]uint8, grid.Height)
	for y := 0; y < grid.Height; y++ {
		row := make([]uint8, grid.Width)
		for x := 0; x < grid.Width; x++ {
			if grid.Counts[y][x] >= minOccupied {
				row[x] = OccupiedValue
			} else {
				row[x] = FreeValue
			}
		}
		pixels[y] = row
	}
	return &Raster{
		Pixels: pixels,
		Width:  grid.Width,
		Height: grid.Height,
	}
}
