package trace

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	startParameters = "START PARAMETERS"
	endParameters   = "END PARAMETERS"
	startSurfaces   = "START SURFACES"
)

// The record schema the PARAMETERS block must declare, in this exact order.
var expectedParameters = []string{
	"id", "x", "y", "z", "side", "previous ID", "next ID", "surface ID",
}

// SurfaceEntry is one named surface from the SURFACES section.
type SurfaceEntry struct {
	ID   int32
	Path string
}

// Metadata holds the parsed contents of the trace sidecar file.
type Metadata struct {
	// Path to the metadata file.
	File string

	// All surfaces declared in the SURFACES section, in file order.
	Surfaces []SurfaceEntry

	// Power carried by a single photon. Best-effort: parsed from the
	// trailing line of the file, zero when absent.
	PhotonPower float64
}

// Resolve maps a surface path to its identifier. Matching is by substring
// against each declared surface path; the first match wins.
func (m *Metadata) Resolve(surfacePath string) (int32, bool) {
	for _, entry := range m.Surfaces {
		if strings.Contains(entry.Path, surfacePath) {
			return entry.ID, true
		}
	}
	return 0, false
}

// ReadMetadata locates the single .txt metadata file inside dir and parses
// it. Zero or multiple .txt entries fail with ErrMetadataMissing.
func ReadMetadata(dir string) (*Metadata, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDirectory, dir)
	}

	var found []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".txt" {
			found = append(found, filepath.Join(dir, entry.Name()))
		}
	}
	if len(found) != 1 {
		return nil, fmt.Errorf("%w: found %d in %s", ErrMetadataMissing, len(found), dir)
	}

	return parseMetadata(found[0])
}

func parseMetadata(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trace: could not open metadata file: %w", err)
	}
	defer f.Close()

	md := &Metadata{File: path}

	var (
		paramStarted, paramEnded bool
		surfacesStarted          bool
		paramIndex               int
		lastLine                 string
	)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r\n")
		if line != "" {
			lastLine = line
		}

		switch {
		case line == startParameters:
			if paramStarted {
				return nil, fmt.Errorf("%w: duplicate %s", ErrBadMetadata, startParameters)
			}
			paramStarted = true
		case line == endParameters:
			if !paramStarted {
				return nil, fmt.Errorf("%w: %s before %s", ErrBadMetadata, endParameters, startParameters)
			}
			if paramIndex != len(expectedParameters) {
				return nil, fmt.Errorf("%w: PARAMETERS section lists %d of %d parameters", ErrBadMetadata, paramIndex, len(expectedParameters))
			}
			paramEnded = true
		case paramStarted && !paramEnded:
			if paramIndex >= len(expectedParameters) || line != expectedParameters[paramIndex] {
				return nil, fmt.Errorf("%w: unexpected parameter %q", ErrBadMetadata, line)
			}
			paramIndex++
		case line == startSurfaces:
			surfacesStarted = true
		case surfacesStarted && line != "":
			if entry, ok := parseSurfaceEntry(line); ok {
				md.Surfaces = append(md.Surfaces, entry)
			}
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("trace: error reading metadata file: %w", err)
	}

	if !paramStarted || !paramEnded {
		return nil, fmt.Errorf("%w: incomplete PARAMETERS section", ErrBadMetadata)
	}
	if !surfacesStarted {
		return nil, fmt.Errorf("%w: missing %s section", ErrBadMetadata, startSurfaces)
	}

	// The trailing line declares the photon power. Older trace variants
	// omit it; its absence is not an error.
	if power, err := strconv.ParseFloat(strings.TrimSpace(lastLine), 64); err == nil && power > 0 {
		md.PhotonPower = power
	}

	return md, nil
}

// parseSurfaceEntry splits a "<id> <surface-path>" surfaces line. Lines
// whose leading token is not an integer (such as the photon power line)
// are not entries.
func parseSurfaceEntry(line string) (SurfaceEntry, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return SurfaceEntry{}, false
	}
	id, err := strconv.ParseInt(fields[0], 10, 32)
	if err != nil {
		return SurfaceEntry{}, false
	}
	return SurfaceEntry{ID: int32(id), Path: strings.Join(fields[1:], " ")}, true
}
