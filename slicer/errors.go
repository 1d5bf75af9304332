package slicer

import "errors"

// Conversion failure modes. Callers match with errors.Is; the wrapped
// messages carry the offending range, dimensions or path.
var (
	// ErrEmptyCloud means the raw point cloud holds zero points.
	ErrEmptyCloud = errors.New("point cloud is empty")

	// ErrEmptyRange means the elevation filter produced zero points for a
	// conversion request. The preview path never returns this; an empty
	// preview is a normal outcome.
	ErrEmptyRange = errors.New("no points in elevation range")

	// ErrDegenerateGeometry means the filtered points have zero extent on
	// the X or Y axis, so grid dimensions are ill-defined.
	ErrDegenerateGeometry = errors.New("degenerate bounding box")

	// ErrInvalidResolution means a resolution <= 0 was requested.
	ErrInvalidResolution = errors.New("resolution must be positive")

	// ErrLoad means the point cloud source was unusable (missing file,
	// unsupported format, malformed data). Fatal to the session.
	ErrLoad = errors.New("point cloud load failed")
)
