package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/CST-Modelling-Tools/tonatiuhXX-angular-distribution-analysis/log"
)

var logger = log.New("trace")

// Data filenames carry their stream position as a trailing _<int> index.
var dataFileIndexPattern = regexp.MustCompile(`_(\d+)\.dat$`)

// A served ray path needs at least this many photons; shorter chains are
// silently dropped.
const minPathPhotons = 2

type dataFile struct {
	path  string
	index int
}

// cursor is the resumable read position inside the concatenated stream.
type cursor struct {
	fileIndex   int
	recordIndex int
}

// Server turns the concatenation of all data files in a trace directory
// into a resumable sequence of ray paths, served in bounded batches.
//
// A Server is not safe for concurrent use; during a parallel run it is
// driven by the producer goroutine only.
type Server struct {
	dir       string
	meta      *Metadata
	surfaceID int32
	files     []dataFile

	cur       cursor
	file      *os.File // open handle for files[cur.fileIndex], nil between files
	remaining int64    // undecoded bytes left in the open file

	// Decoded photons of the current chunk.
	buf    []Photon
	bufIdx int

	// Current-path accumulator. Lives on the server so a path in
	// progress survives both file and serve-call boundaries.
	accum []Photon

	// Upper bound on photons decoded per read.
	chunkPhotons int
}

// Open validates the trace directory, parses its metadata file and
// resolves surfacePath to the reference surface identifier.
func Open(dir, surfacePath string) (*Server, error) {
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDirectory, dir)
	}

	meta, err := ReadMetadata(dir)
	if err != nil {
		return nil, err
	}

	surfaceID, ok := meta.Resolve(surfacePath)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSurfaceNotFound, surfacePath)
	}

	files, err := scanDataFiles(dir)
	if err != nil {
		return nil, err
	}

	chunkPhotons := int(MemoryThreshold() / RecordSize)
	logger.Debugf("opened trace %s: %d data files, surface %q -> %d", dir, len(files), surfacePath, surfaceID)

	return &Server{
		dir:          dir,
		meta:         meta,
		surfaceID:    surfaceID,
		files:        files,
		chunkPhotons: chunkPhotons,
	}, nil
}

// scanDataFiles collects the .dat files of the directory sorted ascending
// by their filename index.
func scanDataFiles(dir string) ([]dataFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDirectory, dir)
	}

	var files []dataFile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".dat" {
			continue
		}
		match := dataFileIndexPattern.FindStringSubmatch(entry.Name())
		if match == nil {
			return nil, fmt.Errorf("%w: %s", ErrBadFilename, entry.Name())
		}
		index, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrBadFilename, entry.Name())
		}
		files = append(files, dataFile{path: filepath.Join(dir, entry.Name()), index: index})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDataFiles, dir)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].index < files[j].index })
	return files, nil
}

// ReferenceSurfaceID returns the resolved reference surface identifier.
func (s *Server) ReferenceSurfaceID() int32 {
	return s.surfaceID
}

// Metadata returns the parsed trace metadata.
func (s *Server) Metadata() *Metadata {
	return s.meta
}

// ServeRayPaths returns up to n ray paths, resuming from the cursor. An
// empty result means the stream is exhausted; fewer than n paths are
// returned only at end of stream. n <= 0 returns empty without advancing.
func (s *Server) ServeRayPaths(n int) ([]RayPath, error) {
	paths := make([]RayPath, 0, min(n, 64))
	if n <= 0 {
		return paths, nil
	}

	for len(paths) < n {
		if s.bufIdx >= len(s.buf) {
			more, err := s.loadNextChunk()
			if err != nil {
				return nil, err
			}
			if !more {
				// The stream ended inside a chain. Without its
				// terminator the chain is incomplete; discard it.
				s.accum = nil
				break
			}
		}
		s.drainBuffer(&paths, n)
	}

	return paths, nil
}

// Reset returns the cursor to the start of the stream without re-reading
// metadata. The current-path accumulator is discarded as well.
func (s *Server) Reset() {
	if s.file != nil {
		s.file.Close()
		s.file = nil
	}
	s.cur = cursor{}
	s.remaining = 0
	s.buf = nil
	s.bufIdx = 0
	s.accum = nil
}

// Close releases the file handle held for the file under the cursor.
func (s *Server) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// drainBuffer walks the decoded chunk, growing the accumulator and
// emitting completed paths, until the chunk or the request is exhausted.
func (s *Server) drainBuffer(paths *[]RayPath, max int) {
	for s.bufIdx < len(s.buf) && len(*paths) < max {
		photon := s.buf[s.bufIdx]
		s.bufIdx++
		s.cur.recordIndex++

		// A start marker closes whatever came before it, terminated
		// or not.
		if photon.IsPathStart() && len(s.accum) > 0 {
			s.flush(paths)
		}

		s.accum = append(s.accum, photon)

		if photon.IsPathEnd() {
			s.flush(paths)
		}
	}
}

// flush emits the accumulated path if it is long enough and clears the
// accumulator either way.
func (s *Server) flush(paths *[]RayPath) {
	if len(s.accum) >= minPathPhotons {
		*paths = append(*paths, RayPath{Photons: s.accum})
		s.accum = nil
		return
	}
	s.accum = s.accum[:0]
}

// loadNextChunk decodes the next run of records into the photon buffer,
// opening and closing data files as the cursor crosses them. Returns
// false when every file has been consumed.
func (s *Server) loadNextChunk() (bool, error) {
	for {
		if s.file == nil {
			if s.cur.fileIndex >= len(s.files) {
				return false, nil
			}

			df := s.files[s.cur.fileIndex]
			f, err := os.Open(df.path)
			if err != nil {
				return false, fmt.Errorf("trace: could not open data file: %w", err)
			}
			fi, err := f.Stat()
			if err != nil {
				f.Close()
				return false, fmt.Errorf("trace: could not stat data file: %w", err)
			}
			if fi.Size()%RecordSize != 0 {
				f.Close()
				return false, fmt.Errorf("%w: %s (%d bytes)", ErrTruncatedFile, df.path, fi.Size())
			}

			s.file = f
			s.remaining = fi.Size()
			s.cur.recordIndex = 0
			logger.Debugf("reading %s (%d records)", df.path, fi.Size()/RecordSize)
		}

		if s.remaining == 0 {
			s.file.Close()
			s.file = nil
			s.cur.fileIndex++
			continue
		}

		photons := s.chunkPhotons
		if int64(photons)*RecordSize > s.remaining {
			photons = int(s.remaining / RecordSize)
		}

		raw := make([]byte, photons*RecordSize)
		if _, err := io.ReadFull(s.file, raw); err != nil {
			return false, fmt.Errorf("trace: error reading %s: %w", s.files[s.cur.fileIndex].path, err)
		}
		s.remaining -= int64(len(raw))

		s.buf = s.buf[:0]
		for off := 0; off < len(raw); off += RecordSize {
			s.buf = append(s.buf, recordPhoton(DecodeRecord(raw[off:])))
		}
		s.bufIdx = 0
		return true, nil
	}
}
