package main

import (
	"flag"
	"fmt"

	"github.com/kwv/cloudslice/slicer"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	cloudFile  = flag.String("cloud", "", "Input point cloud file (.pcd, .ply or .xyz)")
	configFile = flag.String("config", "config.yaml", "Path to configuration file")

	infoOnly    = flag.Bool("info", false, "Print point cloud statistics and exit")
	convertOnly = flag.Bool("convert", false, "Run a single PGM/YAML conversion and exit")
	footprint   = flag.Bool("footprint", false, "Write the occupied-cell footprint as GeoJSON and exit")
	renderOnly  = flag.Bool("render", false, "Render the occupancy slice as SVG or PNG and exit")

	minZ       = flag.Float64("min-z", 0, "Lower elevation bound (requires -band)")
	maxZ       = flag.Float64("max-z", 0, "Upper elevation bound (requires -band)")
	bandSet    = flag.Bool("band", false, "Use -min-z/-max-z instead of the full elevation range")
	resolution = flag.Float64("resolution", 0.05, "Grid resolution in world units per cell")
	outputDir  = flag.String("output-dir", "", "Output directory (default: from config)")
	outputName = flag.String("output", "map.pgm", "Output PGM file name")

	occupiedThresh = flag.Float64("occupied-thresh", slicer.DefaultOccupiedThresh, "occupied_thresh written to the metadata sidecar")
	freeThresh     = flag.Float64("free-thresh", slicer.DefaultFreeThresh, "free_thresh written to the metadata sidecar")
	negate         = flag.Int("negate", 0, "negate flag written to the metadata sidecar (0 or 1)")

	renderFormat = flag.String("format", "svg", "Render format for -render: svg or png")

	httpMode = flag.Bool("http", false, "Enable the HTTP server")
	httpPort = flag.Int("http-port", 8080, "HTTP server port")
	mqttMode = flag.Bool("mqtt", false, "Enable MQTT band updates and result publishing")
)

func main() {
	flag.Parse()
	fmt.Printf("cloudslice version: %s\n", Version)

	app := NewApp()
	app.ApplyOptions(AppOptions{
		CloudFile:      *cloudFile,
		ConfigFile:     *configFile,
		MinZ:           *minZ,
		MaxZ:           *maxZ,
		BandSet:        *bandSet,
		Resolution:     *resolution,
		OutputDir:      *outputDir,
		OutputName:     *outputName,
		OccupiedThresh: *occupiedThresh,
		FreeThresh:     *freeThresh,
		Negate:         *negate,
		RenderFormat:   *renderFormat,
		HttpPort:       *httpPort,
		HttpMode:       *httpMode,
		MqttMode:       *mqttMode,
	})

	switch {
	case *infoOnly:
		app.RunInfo()
	case *convertOnly:
		app.RunConvert()
	case *footprint:
		app.RunFootprint()
	case *renderOnly:
		app.RunRender()
	case *httpMode || *mqttMode:
		app.RunService()
	default:
		fmt.Println("cloudslice: slice a 3-D point cloud into a 2-D occupancy map")
		fmt.Println()
		fmt.Println("Use -cloud FILE with one of:")
		fmt.Println("  -info       print point cloud statistics")
		fmt.Println("  -convert    write the PGM raster and YAML sidecar")
		fmt.Println("  -footprint  write the occupied-cell footprint as GeoJSON")
		fmt.Println("  -render     write the occupancy slice as SVG or PNG")
		fmt.Println("  -http       serve previews and conversions over HTTP")
		fmt.Println("  -mqtt       accept band updates and publish results over MQTT")
		fmt.Println()
		fmt.Println("Configuration:")
		fmt.Println("  config.yaml - deployment constants and MQTT settings")
	}
}
