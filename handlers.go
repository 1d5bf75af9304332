package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/kwv/cloudslice/slicer"
)

const defaultHTTPResolution = 0.05

// newHTTPServer creates an HTTP server with all endpoints
func newHTTPServer(session *slicer.Session, config *slicer.Config, publisher *slicer.Publisher) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		status := struct {
			Status    string    `json:"status"`
			Timestamp time.Time `json:"timestamp"`
			HasCloud  bool      `json:"hasCloud"`
		}{
			Status:    "ok",
			Timestamp: time.Now(),
			HasCloud:  session.HasCloud(),
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Printf("Error encoding health status: %v", err)
		}
	})

	// Point cloud statistics endpoint
	mux.HandleFunc("/cloud.json", func(w http.ResponseWriter, r *http.Request) {
		stats, ok := slicer.ComputeStats(session.RawCloud())
		if !ok {
			http.Error(w, "No point cloud loaded", http.StatusServiceUnavailable)
			return
		}

		band := session.Range()
		suggested := stats.SuggestBand()
		resp := struct {
			Stats         *slicer.CloudStats    `json:"stats"`
			Band          slicer.ElevationRange `json:"band"`
			SuggestedBand slicer.ElevationRange `json:"suggestedBand"`
		}{
			Stats:         stats,
			Band:          band,
			SuggestedBand: suggested,
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Printf("Error encoding cloud stats: %v", err)
		}
	})

	// Top-down preview of the current (or requested) elevation band
	mux.HandleFunc("/preview.png", func(w http.ResponseWriter, r *http.Request) {
		if !session.HasCloud() {
			http.Error(w, "No point cloud loaded", http.StatusServiceUnavailable)
			return
		}

		band, err := bandFromQuery(r, session)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		points := session.Preview(band)
		renderer := slicer.NewPreviewRenderer()

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		if err := renderer.RenderPNG(w, points, band); err != nil {
			log.Printf("Error encoding preview PNG: %v", err)
		}
	})

	// Vector render of the occupancy slice
	mux.HandleFunc("/slice.svg", func(w http.ResponseWriter, r *http.Request) {
		grid, status, err := sliceFromQuery(r, session, config)
		if err != nil {
			http.Error(w, err.Error(), status)
			return
		}

		renderer := slicer.NewVectorRenderer(grid, config.MinOccupiedPoints)

		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-cache")
		if err := renderer.RenderToSVG(w); err != nil {
			log.Printf("Error encoding slice SVG: %v", err)
		}
	})

	// Occupied-cell footprint as GeoJSON
	mux.HandleFunc("/footprint.json", func(w http.ResponseWriter, r *http.Request) {
		grid, status, err := sliceFromQuery(r, session, config)
		if err != nil {
			http.Error(w, err.Error(), status)
			return
		}

		fc := slicer.FootprintFeatureCollection(grid, config.MinOccupiedPoints)

		w.Header().Set("Content-Type", "application/geo+json")
		if err := json.NewEncoder(w).Encode(fc); err != nil {
			log.Printf("Error encoding footprint GeoJSON: %v", err)
		}
	})

	// Conversion endpoint: writes the PGM raster and YAML sidecar
	mux.HandleFunc("/convert", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req slicer.ConvertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
			return
		}

		result, meta, err := session.Convert(req)
		if err != nil {
			http.Error(w, err.Error(), convertErrorStatus(err))
			return
		}

		log.Printf("[HTTP] conversion complete: %s (%dx%d)", result.PGMPath, result.Width, result.Height)
		if publisher != nil {
			if err := publisher.PublishConversion(result, req); err != nil {
				log.Printf("Error publishing conversion event: %v", err)
			}
		}

		resp := struct {
			Result *slicer.ConvertResult `json:"result"`
			Meta   *slicer.MapMeta       `json:"meta"`
		}{
			Result: result,
			Meta:   meta,
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Printf("Error encoding conversion result: %v", err)
		}
	})

	// Default route serves HTML page embedding the preview
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = fmt.Fprint(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>cloudslice</title>
<style>
*{margin:0;padding:0;box-sizing:border-box}
html,body{width:100%;height:100%;overflow:hidden;background:#1a1a1a}
img{display:block;width:100vw;height:100vh;object-fit:contain}
</style>
</head>
<body>
<img src="/preview.png" alt="Point Cloud Preview">
</body>
</html>`)
	})

	// Wrap mux with logging middleware
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[HTTP] %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
		mux.ServeHTTP(w, r)
	})
}

// bandFromQuery reads optional min_z/max_z query parameters, defaulting to
// the session's current band.
func bandFromQuery(r *http.Request, session *slicer.Session) (slicer.ElevationRange, error) {
	band := session.Range()

	if v := r.URL.Query().Get("min_z"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return band, fmt.Errorf("invalid min_z %q", v)
		}
		band.MinZ = f
	}
	if v := r.URL.Query().Get("max_z"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return band, fmt.Errorf("invalid max_z %q", v)
		}
		band.MaxZ = f
	}
	return band, nil
}

// sliceFromQuery filters and rasterizes the requested band for the SVG and
// GeoJSON endpoints. Returns the HTTP status to use on error.
func sliceFromQuery(r *http.Request, session *slicer.Session, config *slicer.Config) (*slicer.Grid, int, error) {
	if !session.HasCloud() {
		return nil, http.StatusServiceUnavailable, errors.New("no point cloud loaded")
	}

	band, err := bandFromQuery(r, session)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	resolution := defaultHTTPResolution
	if v := r.URL.Query().Get("resolution"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("invalid resolution %q", v)
		}
		resolution = f
	}

	filtered := slicer.FilterByElevation(session.RawCloud(), band)
	if len(filtered) == 0 {
		return nil, http.StatusUnprocessableEntity,
			fmt.Errorf("no points in band [%g, %g]", band.MinZ, band.MaxZ)
	}

	grid, err := slicer.Rasterize(filtered, resolution)
	if err != nil {
		return nil, convertErrorStatus(err), err
	}
	return grid, 0, nil
}

// convertErrorStatus maps pipeline errors to HTTP status codes
func convertErrorStatus(err error) int {
	switch {
	case errors.Is(err, slicer.ErrInvalidResolution):
		return http.StatusBadRequest
	case errors.Is(err, slicer.ErrEmptyCloud),
		errors.Is(err, slicer.ErrEmptyRange),
		errors.Is(err, slicer.ErrDegenerateGeometry):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
