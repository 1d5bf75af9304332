package slicer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// EncodeMapMeta renders the metadata sidecar that pairs a written raster
// with its georeferencing. Key order is fixed by the consumer contract
// (image, resolution, origin, occupied_thresh, free_thresh, negate) and
// origin is a bracketed three-element list with a literal 0.0 elevation,
// so the document is rendered by hand rather than through a YAML
// marshaller, which orders keys its own way.
func EncodeMapMeta(m *MapMeta) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "image: %s\n", m.Image)
	fmt.Fprintf(&buf, "resolution: %s\n", formatFloat(m.Resolution))
	fmt.Fprintf(&buf, "origin: [%s, %s, 0.0]\n", formatFloat(m.OriginX), formatFloat(m.OriginY))
	fmt.Fprintf(&buf, "occupied_thresh: %s\n", formatFloat(m.OccupiedThresh))
	fmt.Fprintf(&buf, "free_thresh: %s\n", formatFloat(m.FreeThresh))
	fmt.Fprintf(&buf, "negate: %d\n", m.Negate)
	return buf.Bytes()
}

// WriteMapMeta writes the sidecar next to the raster, creating the
// destination directory if needed.
func WriteMapMeta(path string, m *MapMeta) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, EncodeMapMeta(m), 0644); err != nil {
		return fmt.Errorf("writing map metadata %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
