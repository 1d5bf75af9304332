package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kwv/cloudslice/slicer"
)

// App encapsulates the application state and dependencies
type App struct {
	Config     *slicer.Config
	Session    *slicer.Session
	MQTTClient *slicer.MQTTClient
	Publisher  *slicer.Publisher

	// CLI Flags (effectively dependencies)
	CloudFile      string
	ConfigFile     string
	MinZ           float64
	MaxZ           float64
	BandSet        bool
	Resolution     float64
	OutputDir      string
	OutputName     string
	OccupiedThresh float64
	FreeThresh     float64
	Negate         int
	RenderFormat   string
	HttpPort       int
	HttpMode       bool
	MqttMode       bool
}

// AppOptions carries parsed CLI flags into the App
type AppOptions struct {
	CloudFile      string
	ConfigFile     string
	MinZ           float64
	MaxZ           float64
	BandSet        bool
	Resolution     float64
	OutputDir      string
	OutputName     string
	OccupiedThresh float64
	FreeThresh     float64
	Negate         int
	RenderFormat   string
	HttpPort       int
	HttpMode       bool
	MqttMode       bool
}

// NewApp creates a new App instance
func NewApp() *App {
	return &App{}
}

// ApplyOptions applies CLI options to the App instance
func (a *App) ApplyOptions(opts AppOptions) {
	a.CloudFile = opts.CloudFile
	a.ConfigFile = opts.ConfigFile
	a.MinZ = opts.MinZ
	a.MaxZ = opts.MaxZ
	a.BandSet = opts.BandSet
	a.Resolution = opts.Resolution
	a.OutputDir = opts.OutputDir
	a.OutputName = opts.OutputName
	a.OccupiedThresh = opts.OccupiedThresh
	a.FreeThresh = opts.FreeThresh
	a.Negate = opts.Negate
	a.RenderFormat = opts.RenderFormat
	a.HttpPort = opts.HttpPort
	a.HttpMode = opts.HttpMode
	a.MqttMode = opts.MqttMode
}

// loadConfig loads config.yaml, falling back to defaults when the file is
// absent.
func (a *App) loadConfig() *slicer.Config {
	if a.Config != nil {
		return a.Config
	}
	if _, err := os.Stat(a.ConfigFile); err == nil {
		config, err := slicer.LoadConfig(a.ConfigFile)
		if err != nil {
			log.Fatalf("Failed to load config %s: %v", a.ConfigFile, err)
		}
		log.Printf("Loaded config from %s", a.ConfigFile)
		a.Config = config
	} else {
		a.Config = slicer.DefaultConfig()
	}
	return a.Config
}

// loadSession loads the point cloud named by -cloud and hands it to a
// fresh session. Loading happens exactly once; the buffer is immutable
// afterwards.
func (a *App) loadSession() *slicer.Session {
	if a.Session != nil {
		return a.Session
	}
	if a.CloudFile == "" {
		log.Fatal("No input cloud: use -cloud FILE")
	}

	config := a.loadConfig()

	cloud, err := slicer.LoadCloud(a.CloudFile)
	if err != nil {
		log.Fatalf("Failed to load point cloud: %v", err)
	}

	session := slicer.NewSession(config)
	if err := session.SetCloud(cloud); err != nil {
		log.Fatalf("Failed to initialize session: %v", err)
	}

	overall := session.OverallRange()
	fmt.Printf("Loaded %d points from %s (z range [%g, %g], display cloud %d points)\n",
		len(cloud), a.CloudFile, overall.MinZ, overall.MaxZ, len(session.DisplayCloud()))

	a.Session = session
	return session
}

// requestBand returns the band selected by the CLI flags, or the full
// overall range when -band was not given.
func (a *App) requestBand(session *slicer.Session) slicer.ElevationRange {
	if a.BandSet {
		return session.SetRange(a.MinZ, a.MaxZ)
	}
	return session.OverallRange()
}

// buildRequest assembles a conversion request from the CLI flags.
func (a *App) buildRequest(session *slicer.Session) slicer.ConvertRequest {
	outputDir := a.OutputDir
	if outputDir == "" {
		outputDir = a.Config.OutputDir
	}
	return slicer.ConvertRequest{
		Range:          a.requestBand(session),
		Resolution:     a.Resolution,
		OutputDir:      outputDir,
		OutputName:     a.OutputName,
		OccupiedThresh: a.OccupiedThresh,
		FreeThresh:     a.FreeThresh,
		Negate:         a.Negate,
	}
}

// RunInfo prints point cloud statistics
func (a *App) RunInfo() {
	session := a.loadSession()

	stats, ok := slicer.ComputeStats(session.RawCloud())
	if !ok {
		log.Fatal("No statistics: cloud is empty")
	}

	fmt.Printf("Points:    %d\n", stats.Count)
	fmt.Printf("X extent:  [%g, %g]\n", stats.MinX, stats.MaxX)
	fmt.Printf("Y extent:  [%g, %g]\n", stats.MinY, stats.MaxY)
	fmt.Printf("Z extent:  [%g, %g]\n", stats.MinZ, stats.MaxZ)
	fmt.Printf("Z mean:    %.4f (stddev %.4f)\n", stats.MeanZ, stats.StdDevZ)
	fmt.Printf("Z median:  %.4f (p05 %.4f, p95 %.4f)\n", stats.MedianZ, stats.Z05, stats.Z95)

	band := stats.SuggestBand()
	fmt.Printf("Suggested band: [%g, %g]\n", band.MinZ, band.MaxZ)
}

// RunConvert runs a single conversion and prints the output paths
func (a *App) RunConvert() {
	session := a.loadSession()
	req := a.buildRequest(session)

	result, meta, err := session.Convert(req)
	if err != nil {
		log.Fatalf("Conversion failed: %v", err)
	}

	fmt.Printf("Created raster:   %s (%dx%d)\n", result.PGMPath, result.Width, result.Height)
	fmt.Printf("Created metadata: %s (origin [%g, %g, 0.0])\n", result.YAMLPath, meta.OriginX, meta.OriginY)
}

// RunFootprint writes the occupied-cell footprint as GeoJSON
func (a *App) RunFootprint() {
	session := a.loadSession()
	grid := a.sliceGrid(session)

	path := a.outputPath("footprint.geojson")
	if err := slicer.WriteFootprint(path, grid, a.Config.MinOccupiedPoints); err != nil {
		log.Fatalf("Footprint export failed: %v", err)
	}
	fmt.Printf("Created footprint: %s\n", path)
}

// RunRender writes the occupancy slice as SVG or PNG
func (a *App) RunRender() {
	session := a.loadSession()
	grid := a.sliceGrid(session)

	renderer := slicer.NewVectorRenderer(grid, a.Config.MinOccupiedPoints)

	var path string
	switch a.RenderFormat {
	case "svg":
		path = a.outputPath("slice.svg")
	case "png":
		path = a.outputPath("slice.png")
	default:
		log.Fatalf("Invalid format: %s (must be svg or png)", a.RenderFormat)
	}

	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("Error creating output file %s: %v", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Warning: error closing output file %s: %v", path, err)
		}
	}()

	if a.RenderFormat == "svg" {
		err = renderer.RenderToSVG(f)
	} else {
		err = renderer.RenderToPNG(f)
	}
	if err != nil {
		log.Fatalf("Error rendering slice: %v", err)
	}
	fmt.Printf("Created render: %s\n", path)
}

// sliceGrid filters and rasterizes the current band for the footprint and
// render modes.
func (a *App) sliceGrid(session *slicer.Session) *slicer.Grid {
	band := a.requestBand(session)
	filtered := slicer.FilterByElevation(session.RawCloud(), band)
	if len(filtered) == 0 {
		log.Fatalf("No points in band [%g, %g]", band.MinZ, band.MaxZ)
	}

	grid, err := slicer.Rasterize(filtered, a.Resolution)
	if err != nil {
		log.Fatalf("Rasterization failed: %v", err)
	}
	return grid
}

func (a *App) outputPath(name string) string {
	dir := a.OutputDir
	if dir == "" {
		dir = a.Config.OutputDir
	}
	if dir == "" || dir == "." {
		return name
	}
	return dir + string(os.PathSeparator) + name
}

// RunService starts the combined MQTT and/or HTTP service
func (a *App) RunService() {
	fmt.Println("Starting cloudslice service...")

	session := a.loadSession()
	config := a.Config

	// Wire the debounced preview output to the MQTT publisher; the HTTP
	// preview endpoint queries the session directly instead.
	session.SetPreviewFunc(func(points slicer.Cloud, r slicer.ElevationRange) {
		if a.Publisher != nil {
			if err := a.Publisher.PublishPreview(r, len(points)); err != nil {
				log.Printf("Error publishing preview: %v", err)
			}
		}
	})

	if a.MqttMode {
		mqttClient, err := slicer.InitMQTT(config, func(minZ, maxZ float64) {
			r := session.SetRange(minZ, maxZ)
			log.Printf("[MQTT] band update -> [%g, %g]", r.MinZ, r.MaxZ)
		})
		if err != nil {
			log.Fatalf("Failed to initialize MQTT: %v", err)
		}
		if mqttClient == nil {
			log.Fatal("MQTT broker not configured in config.yaml")
		}
		a.MQTTClient = mqttClient
		a.Publisher = slicer.NewPublisher(mqttClient.GetClient())
		fmt.Println("MQTT band subscription and publisher initialized")
	}

	if a.HttpMode {
		httpServer := newHTTPServer(session, config, a.Publisher)
		go func() {
			addr := fmt.Sprintf("0.0.0.0:%d", a.HttpPort)
			log.Printf("[HTTP] Starting server on %s", addr)
			if err := http.ListenAndServe(addr, httpServer); err != nil {
				log.Fatalf("[HTTP] Server error: %v", err)
			}
		}()
	}

	fmt.Println("\nService Running")
	fmt.Println("===============")

	if a.MqttMode {
		fmt.Println("\nMQTT:")
		fmt.Printf("  Band updates:  %s\n", a.MQTTClient.RangeTopic())
		fmt.Println("  Publishing:    {prefix}/preview, {prefix}/conversions")
	}
	if a.HttpMode {
		fmt.Printf("\nHTTP endpoints (port %d):\n", a.HttpPort)
		fmt.Println("  GET  /health       - Health check")
		fmt.Println("  GET  /cloud.json   - Point cloud statistics")
		fmt.Println("  GET  /preview.png  - Top-down preview of the current band")
		fmt.Println("  GET  /slice.svg    - Vector render of the occupancy slice")
		fmt.Println("  GET  /footprint.json - Occupied-cell footprint as GeoJSON")
		fmt.Println("  POST /convert      - Run a PGM/YAML conversion")
	}

	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	fmt.Println("\nShutting down service...")
	session.Stop()
	if a.MQTTClient != nil {
		a.MQTTClient.Disconnect()
	}
	fmt.Println("Service stopped")
}
