package slicer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const pgmMagic = "P2"

// EncodePGM writes the raster in the ASCII portable-graymap format: the P2
// magic, a "width height" line, the 255 maxval line, then height lines of
// width space-separated samples, top row first.
func EncodePGM(w io.Writer, r *Raster) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n", pgmMagic)
	fmt.Fprintf(bw, "%d %d\n", r.Width, r.Height)
	fmt.Fprintln(bw, "255")

	for _, row := range r.Pixels {
		for x, v := range row {
			if x > 0 {
				if err := bw.WriteByte(' '); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(strconv.Itoa(int(v))); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WritePGM encodes the raster to path, creating the destination directory
// if it does not exist.
func WritePGM(path string, r *Raster) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating PGM file: %w", err)
	}
	if err := EncodePGM(f, r); err != nil {
		f.Close()
		return fmt.Errorf("writing PGM file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing PGM file %s: %w", path, err)
	}
	return nil
}

// DecodePGM parses an ASCII PGM stream back into a Raster. Samples may be
// separated by any whitespace; # comment lines are skipped per the format.
func DecodePGM(r io.Reader) (*Raster, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var tokens []string
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		tokens = append(tokens, strings.Fields(line)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(tokens) < 4 {
		return nil, fmt.Errorf("truncated PGM header")
	}
	if tokens[0] != pgmMagic {
		return nil, fmt.Errorf("bad PGM magic %q (want %s)", tokens[0], pgmMagic)
	}

	width, err := strconv.Atoi(tokens[1])
	if err != nil || width <= 0 {
		return nil, fmt.Errorf("bad PGM width %q", tokens[1])
	}
	height, err := strconv.Atoi(tokens[2])
	if err != nil || height <= 0 {
		return nil, fmt.Errorf("bad PGM height %q", tokens[2])
	}
	maxval, err := strconv.Atoi(tokens[3])
	if err != nil || maxval <= 0 || maxval > 255 {
		return nil, fmt.Errorf("bad PGM maxval %q", tokens[3])
	}

	samples := tokens[4:]
	if len(samples) != width*height {
		return nil, fmt.Errorf("PGM declares %dx%d=%d samples, found %d",
			width, height, width*height, len(samples))
	}

	pixels := make([][]uint8, height)
	for y := 0; y < height; y++ {
		row := make([]uint8, width)
		for x := 0; x < width; x++ {
			v, err := strconv.Atoi(samples[y*width+x])
			if err != nil || v < 0 || v > maxval {
				return nil, fmt.Errorf("bad PGM sample %q at (%d,%d)", samples[y*width+x], x, y)
			}
			row[x] = uint8(v)
		}
		pixels[y] = row
	}

	return &Raster{Pixels: pixels, Width: width, Height: height}, nil
}

// ReadPGM reads and decodes a PGM file.
func ReadPGM(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PGM file: %w", err)
	}
	defer f.Close()
	return DecodePGM(f)
}
