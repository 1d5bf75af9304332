package slicer

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadCloud reads a point cloud file, dispatching on the file extension.
// Supported formats: ASCII PCD (.pcd), ASCII PLY (.ply) and plain
// whitespace-separated XYZ (.xyz, .txt). All failures wrap ErrLoad; a file
// that parses but contains no points is also a load failure.
func LoadCloud(path string) (Cloud, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer f.Close()

	var cloud Cloud
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pcd":
		cloud, err = parsePCD(f)
	case ".ply":
		cloud, err = parsePLY(f)
	case ".xyz", ".txt":
		cloud, err = parseXYZ(f)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrLoad, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoad, path, err)
	}
	if len(cloud) == 0 {
		return nil, fmt.Errorf("%w: %s contains no points", ErrLoad, path)
	}
	return cloud, nil
}

// parsePCD parses the ASCII variant of the PCD format. The x, y and z
// columns are located via the FIELDS header line; other columns are ignored.
func parsePCD(f *os.File) (Cloud, error) {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	xi, yi, zi := -1, -1, -1
	inHeader := true
	var cloud Cloud

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if inHeader {
			fields := strings.Fields(line)
			switch strings.ToUpper(fields[0]) {
			case "FIELDS":
				for i, name := range fields[1:] {
					switch strings.ToLower(name) {
					case "x":
						xi = i
					case "y":
						yi = i
					case "z":
						zi = i
					}
				}
			case "DATA":
				if len(fields) < 2 || strings.ToLower(fields[1]) != "ascii" {
					return nil, fmt.Errorf("unsupported PCD data encoding %q (only ascii)", line)
				}
				if xi < 0 || yi < 0 || zi < 0 {
					return nil, fmt.Errorf("PCD header missing x/y/z fields")
				}
				inHeader = false
			}
			continue
		}

		p, err := parsePointColumns(line, xi, yi, zi)
		if err != nil {
			return nil, err
		}
		cloud = append(cloud, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if inHeader {
		return nil, fmt.Errorf("PCD header has no DATA section")
	}
	return cloud, nil
}

// parsePLY parses the ASCII variant of the PLY format. Only the vertex
// element is read; any elements declared after it are ignored.
func parsePLY(f *os.File) (Cloud, error) {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "ply" {
		return nil, fmt.Errorf("missing ply magic")
	}

	vertexCount := -1
	xi, yi, zi := -1, -1, -1
	propIndex := 0
	inVertexElement := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] == "comment" {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) < 2 || fields[1] != "ascii" {
				return nil, fmt.Errorf("unsupported PLY format %q (only ascii)", line)
			}
		case "element":
			inVertexElement = len(fields) >= 3 && fields[1] == "vertex"
			if inVertexElement {
				n, err := strconv.Atoi(fields[2])
				if err != nil || n < 0 {
					return nil, fmt.Errorf("bad vertex count in %q", line)
				}
				vertexCount = n
			}
		case "property":
			if inVertexElement && len(fields) >= 3 {
				switch fields[len(fields)-1] {
				case "x":
					xi = propIndex
				case "y":
					yi = propIndex
				case "z":
					zi = propIndex
				}
				propIndex++
			}
		case "end_header":
			if vertexCount < 0 {
				return nil, fmt.Errorf("PLY header has no vertex element")
			}
			if xi < 0 || yi < 0 || zi < 0 {
				return nil, fmt.Errorf("PLY vertex element missing x/y/z properties")
			}
			return parsePLYVertices(scanner, vertexCount, xi, yi, zi)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("PLY header not terminated")
}

func parsePLYVertices(scanner *bufio.Scanner, count, xi, yi, zi int) (Cloud, error) {
	cloud := make(Cloud, 0, count)
	for len(cloud) < count && scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		p, err := parsePointColumns(line, xi, yi, zi)
		if err != nil {
			return nil, err
		}
		cloud = append(cloud, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(cloud) < count {
		return nil, fmt.Errorf("PLY declares %d vertices, found %d", count, len(cloud))
	}
	return cloud, nil
}

// parseXYZ parses plain whitespace-separated x y z rows. Blank lines and
// lines starting with # or // are skipped.
func parseXYZ(f *os.File) (Cloud, error) {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var cloud Cloud
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		p, err := parsePointColumns(line, 0, 1, 2)
		if err != nil {
			return nil, err
		}
		cloud = append(cloud, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cloud, nil
}

func parsePointColumns(line string, xi, yi, zi int) (Point, error) {
	fields := strings.Fields(line)
	max := xi
	if yi > max {
		max = yi
	}
	if zi > max {
		max = zi
	}
	if len(fields) <= max {
		return Point{}, fmt.Errorf("short point row %q", line)
	}

	var p Point
	var err error
	if p.X, err = strconv.ParseFloat(fields[xi], 64); err != nil {
		return Point{}, fmt.Errorf("bad x in %q: %v", line, err)
	}
	if p.Y, err = strconv.ParseFloat(fields[yi], 64); err != nil {
		return Point{}, fmt.Errorf("bad y in %q: %v", line, err)
	}
	if p.Z, err = strconv.ParseFloat(fields[zi], 64); err != nil {
		return Point{}, fmt.Errorf("bad z in %q: %v", line, err)
	}
	return p, nil
}
