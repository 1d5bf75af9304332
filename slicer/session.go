package slicer

import (
	"fmt"
	"sync"
	"time"
)

// PreviewFunc receives the filtered display points after a debounced
// recompute. points is nil when the current band selects nothing, which is
// a normal "nothing to draw" outcome.
type PreviewFunc func(points Cloud, r ElevationRange)

// Session holds the state of one loaded point cloud: the immutable raw
// buffer, the voxel-downsampled display cloud, the overall elevation range
// derived at load time and the current user-selected band.
//
// Band updates arrive in rapid bursts from the driving layer (HTTP, MQTT).
// Each update restarts a single-shot debounce timer; only after the idle
// window passes does one filter pass run and reach the preview callback,
// so a drag gesture costs one recompute, not one per event. Conversions
// are explicit requests and are never debounced.
type Session struct {
	mu       sync.RWMutex
	raw      Cloud
	display  Cloud
	overall  ElevationRange
	current  ElevationRange
	pipeline *Pipeline
	config   *Config

	timerMu   sync.Mutex
	timer     *time.Timer
	onPreview PreviewFunc
}

// NewSession creates an empty session with the given deployment config.
func NewSession(config *Config) *Session {
	if config == nil {
		config = DefaultConfig()
	}
	return &Session{config: config}
}

// SetCloud hands the loaded point buffer to the session. It derives the
// overall elevation range, initializes the current band to the full range
// and builds the downsampled display cloud. The buffer is treated as
// read-only from this moment on.
func (s *Session) SetCloud(raw Cloud) error {
	minZ, maxZ, ok := raw.ZRange()
	if !ok {
		return ErrEmptyCloud
	}

	display := VoxelDownsample(raw, s.config.VoxelSize)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = raw
	s.display = display
	s.overall = ElevationRange{MinZ: minZ, MaxZ: maxZ}
	s.current = s.overall
	s.pipeline = NewPipeline(raw, s.config.MinOccupiedPoints)
	return nil
}

// HasCloud reports whether a cloud has been loaded.
func (s *Session) HasCloud() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.raw) > 0
}

// RawCloud returns the full-resolution cloud.
func (s *Session) RawCloud() Cloud {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.raw
}

// DisplayCloud returns the downsampled cloud used for preview.
func (s *Session) DisplayCloud() Cloud {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.display
}

// Range returns the current elevation band.
func (s *Session) Range() ElevationRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// OverallRange returns the full elevation range observed at load time.
func (s *Session) OverallRange() ElevationRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overall
}

// SetPreviewFunc registers the callback invoked after each debounced
// recompute.
func (s *Session) SetPreviewFunc(fn PreviewFunc) {
	s.timerMu.Lock()
	s.onPreview = fn
	s.timerMu.Unlock()
}

// SetMinZ updates the lower band bound, clamped to the overall range.
// Moving it past the upper bound drags the upper bound along, preserving
// MinZ <= MaxZ. The preview recompute is scheduled, not run inline.
func (s *Session) SetMinZ(v float64) ElevationRange {
	s.mu.Lock()
	v = clamp(v, s.overall.MinZ, s.overall.MaxZ)
	s.current.MinZ = v
	if s.current.MaxZ < v {
		s.current.MaxZ = v
	}
	r := s.current
	s.mu.Unlock()

	s.schedulePreview()
	return r
}

// SetMaxZ updates the upper band bound, clamped to the overall range,
// dragging the lower bound when crossed.
func (s *Session) SetMaxZ(v float64) ElevationRange {
	s.mu.Lock()
	v = clamp(v, s.overall.MinZ, s.overall.MaxZ)
	s.current.MaxZ = v
	if s.current.MinZ > v {
		s.current.MinZ = v
	}
	r := s.current
	s.mu.Unlock()

	s.schedulePreview()
	return r
}

// SetRange updates both bounds at once (normalizing an inverted pair) and
// schedules a preview recompute.
func (s *Session) SetRange(minZ, maxZ float64) ElevationRange {
	if minZ > maxZ {
		minZ, maxZ = maxZ, minZ
	}
	s.mu.Lock()
	s.current = ElevationRange{
		MinZ: clamp(minZ, s.overall.MinZ, s.overall.MaxZ),
		MaxZ: clamp(maxZ, s.overall.MinZ, s.overall.MaxZ),
	}
	r := s.current
	s.mu.Unlock()

	s.schedulePreview()
	return r
}

// Reset restores the band to the full overall range.
func (s *Session) Reset() ElevationRange {
	s.mu.Lock()
	s.current = s.overall
	r := s.current
	s.mu.Unlock()

	s.schedulePreview()
	return r
}

// Preview filters the display cloud by the given band. A nil result means
// nothing to draw; it is not an error. The call is cheap enough to run on
// every request, which is what the debounce contract requires.
func (s *Session) Preview(r ElevationRange) Cloud {
	display := s.DisplayCloud()
	if len(display) == 0 {
		return nil
	}
	filtered := FilterByElevation(display, r)
	if len(filtered) == 0 {
		return nil
	}
	return filtered
}

// Convert runs one full conversion over the raw cloud. Unset request
// fields fall back to the session band and the configured output
// directory. Conversions run to completion or failure; they are never
// debounced or cancelled mid-flight.
func (s *Session) Convert(req ConvertRequest) (*ConvertResult, *MapMeta, error) {
	s.mu.RLock()
	pipeline := s.pipeline
	current := s.current
	s.mu.RUnlock()

	if pipeline == nil {
		return nil, nil, fmt.Errorf("%w: no cloud loaded", ErrEmptyCloud)
	}
	if req.Range == (ElevationRange{}) {
		req.Range = current
	}
	if req.OutputDir == "" {
		req.OutputDir = s.config.OutputDir
	}
	return pipeline.Convert(req)
}

// schedulePreview restarts the single-shot debounce timer. Rapid repeated
// calls collapse into one recompute after the idle window; a recompute
// that was already pending is cancelled by the next call and its result
// discarded.
func (s *Session) schedulePreview() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if s.onPreview == nil {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.config.Debounce(), s.firePreview)
}

func (s *Session) firePreview() {
	s.timerMu.Lock()
	fn := s.onPreview
	s.timerMu.Unlock()
	if fn == nil {
		return
	}

	r := s.Range()
	fn(s.Preview(r), r)
}

// Stop cancels any pending debounced preview.
func (s *Session) Stop() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
