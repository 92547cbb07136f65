package trace

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// rec builds a photon record; coordinates are derived from the id so each
// photon is distinguishable.
func rec(id, prev, next, surface int32) [RecordWords]float64 {
	return [RecordWords]float64{
		float64(id),
		float64(id) * 1.5,
		float64(id) * -2.0,
		float64(id) * 0.5,
		0,
		float64(prev),
		float64(next),
		float64(surface),
	}
}

func writeDataFile(t *testing.T, dir, name string, records ...[RecordWords]float64) {
	t.Helper()
	buf := make([]byte, len(records)*RecordSize)
	for i, r := range records {
		EncodeRecord(r, buf[i*RecordSize:])
	}
	if err := os.WriteFile(filepath.Join(dir, name), buf, 0644); err != nil {
		t.Fatal(err)
	}
}

// newFixture creates a trace directory with the standard metadata file and
// the given data files.
func newFixture(t *testing.T, files map[string][][RecordWords]float64) string {
	t.Helper()
	dir := t.TempDir()
	writeMetadataFile(t, dir, validMetadata)
	for name, records := range files {
		writeDataFile(t, dir, name, records...)
	}
	return dir
}

func pathIDs(p RayPath) []int32 {
	ids := make([]int32, len(p.Photons))
	for i, photon := range p.Photons {
		ids[i] = photon.ID
	}
	return ids
}

func TestOpenInvalidDirectory(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing"), "Shape/A"); !errors.Is(err, ErrInvalidDirectory) {
		t.Fatalf("expected ErrInvalidDirectory; got %v", err)
	}
}

func TestOpenNoDataFiles(t *testing.T) {
	dir := t.TempDir()
	writeMetadataFile(t, dir, validMetadata)

	if _, err := Open(dir, "Shape/A"); !errors.Is(err, ErrNoDataFiles) {
		t.Fatalf("expected ErrNoDataFiles; got %v", err)
	}
}

func TestOpenBadFilename(t *testing.T) {
	dir := newFixture(t, map[string][][RecordWords]float64{
		"photons.dat": {rec(1, 0, 2, 1), rec(2, 1, 0, 1)},
	})

	if _, err := Open(dir, "Shape/A"); !errors.Is(err, ErrBadFilename) {
		t.Fatalf("expected ErrBadFilename; got %v", err)
	}
}

func TestOpenSurfaceNotFound(t *testing.T) {
	dir := newFixture(t, map[string][][RecordWords]float64{
		"trace_0.dat": {rec(1, 0, 2, 1), rec(2, 1, 0, 1)},
	})

	if _, err := Open(dir, "//No/Such/Surface"); !errors.Is(err, ErrSurfaceNotFound) {
		t.Fatalf("expected ErrSurfaceNotFound; got %v", err)
	}
}

func TestReferenceSurfaceID(t *testing.T) {
	dir := newFixture(t, map[string][][RecordWords]float64{
		"trace_0.dat": {rec(1, 0, 2, 1), rec(2, 1, 0, 1)},
	})

	srv, err := Open(dir, "Shape/A")
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()

	if got := srv.ReferenceSurfaceID(); got != 7 {
		t.Fatalf("expected reference surface id 7; got %d", got)
	}
	if power := srv.Metadata().PhotonPower; power != 3.5 {
		t.Fatalf("expected photon power 3.5; got %v", power)
	}
}

func TestServeSingleRayPath(t *testing.T) {
	dir := newFixture(t, map[string][][RecordWords]float64{
		"trace_0.dat": {rec(1, 0, 2, 1), rec(2, 1, 3, 1), rec(3, 2, 4, 7), rec(4, 3, 0, 12)},
	})

	srv, err := Open(dir, "Shape/A")
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()

	paths, err := srv.ServeRayPaths(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected 1 ray path; got %d", len(paths))
	}
	if exp, got := []int32{1, 2, 3, 4}, pathIDs(paths[0]); !reflect.DeepEqual(got, exp) {
		t.Fatalf("expected photon ids %v; got %v", exp, got)
	}

	// Photon fields survive the decode intact.
	if p := paths[0].Photons[2]; p.X != 4.5 || p.Y != -6 || p.Z != 1.5 || p.SurfaceID != 7 {
		t.Fatalf("unexpected photon contents: %+v", p)
	}
}

func TestServeSplitPaths(t *testing.T) {
	dir := newFixture(t, map[string][][RecordWords]float64{
		"trace_0.dat": {rec(1, 0, 2, 1), rec(2, 1, 0, 1), rec(3, 0, 4, 1), rec(4, 3, 0, 1)},
	})

	srv, err := Open(dir, "Shape/A")
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()

	paths, err := srv.ServeRayPaths(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 ray paths; got %d", len(paths))
	}
	if exp, got := []int32{1, 2}, pathIDs(paths[0]); !reflect.DeepEqual(got, exp) {
		t.Fatalf("expected first path %v; got %v", exp, got)
	}
	if exp, got := []int32{3, 4}, pathIDs(paths[1]); !reflect.DeepEqual(got, exp) {
		t.Fatalf("expected second path %v; got %v", exp, got)
	}
}

func TestServeBatchResume(t *testing.T) {
	dir := newFixture(t, map[string][][RecordWords]float64{
		"trace_0.dat": {rec(1, 0, 2, 1), rec(2, 1, 0, 1), rec(3, 0, 4, 1), rec(4, 3, 0, 1)},
	})

	srv, err := Open(dir, "Shape/A")
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()

	for i, exp := range [][]int32{{1, 2}, {3, 4}} {
		paths, err := srv.ServeRayPaths(1)
		if err != nil {
			t.Fatal(err)
		}
		if len(paths) != 1 {
			t.Fatalf("call %d: expected 1 ray path; got %d", i, len(paths))
		}
		if got := pathIDs(paths[0]); !reflect.DeepEqual(got, exp) {
			t.Fatalf("call %d: expected path %v; got %v", i, exp, got)
		}
	}

	paths, err := srv.ServeRayPaths(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 0 {
		t.Fatalf("expected empty result at end of stream; got %d paths", len(paths))
	}
}

func TestServeAcrossFileBoundary(t *testing.T) {
	dir := newFixture(t, map[string][][RecordWords]float64{
		"trace_0.dat": {rec(1, 0, 2, 1), rec(2, 1, 3, 1)},
		"trace_1.dat": {rec(3, 2, 4, 1), rec(4, 3, 0, 1)},
	})

	srv, err := Open(dir, "Shape/A")
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()

	paths, err := srv.ServeRayPaths(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected a single path spanning both files; got %d", len(paths))
	}
	if exp, got := []int32{1, 2, 3, 4}, pathIDs(paths[0]); !reflect.DeepEqual(got, exp) {
		t.Fatalf("expected photon ids %v; got %v", exp, got)
	}
}

func TestFileOrderingIsNumeric(t *testing.T) {
	// Lexicographic ordering would visit trace_10 before trace_2.
	dir := newFixture(t, map[string][][RecordWords]float64{
		"trace_2.dat":  {rec(1, 0, 2, 1), rec(2, 1, 3, 1)},
		"trace_10.dat": {rec(3, 2, 4, 1), rec(4, 3, 0, 1)},
	})

	srv, err := Open(dir, "Shape/A")
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()

	paths, err := srv.ServeRayPaths(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected 1 ray path; got %d", len(paths))
	}
	if exp, got := []int32{1, 2, 3, 4}, pathIDs(paths[0]); !reflect.DeepEqual(got, exp) {
		t.Fatalf("expected photon ids %v; got %v", exp, got)
	}
}

func TestServeZeroBatch(t *testing.T) {
	dir := newFixture(t, map[string][][RecordWords]float64{
		"trace_0.dat": {rec(1, 0, 2, 1), rec(2, 1, 0, 1)},
	})

	srv, err := Open(dir, "Shape/A")
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()

	paths, err := srv.ServeRayPaths(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 0 {
		t.Fatalf("expected empty result for zero batch size; got %d paths", len(paths))
	}

	// The cursor must not have moved.
	paths, err = srv.ServeRayPaths(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || !reflect.DeepEqual(pathIDs(paths[0]), []int32{1, 2}) {
		t.Fatalf("expected the full stream after a zero batch; got %v", paths)
	}
}

func TestSinglePhotonPathDropped(t *testing.T) {
	dir := newFixture(t, map[string][][RecordWords]float64{
		"trace_0.dat": {rec(1, 0, 0, 1), rec(2, 0, 3, 1), rec(3, 2, 0, 1)},
	})

	srv, err := Open(dir, "Shape/A")
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()

	paths, err := srv.ServeRayPaths(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected the single-photon path to be dropped; got %d paths", len(paths))
	}
	if exp, got := []int32{2, 3}, pathIDs(paths[0]); !reflect.DeepEqual(got, exp) {
		t.Fatalf("expected photon ids %v; got %v", exp, got)
	}
}

func TestUnterminatedTrailingChainDropped(t *testing.T) {
	// The trailing chain [3, 4] never sees its terminator: every served
	// path must still end with a NextID link of NoLink.
	dir := newFixture(t, map[string][][RecordWords]float64{
		"trace_0.dat": {rec(1, 0, 2, 1), rec(2, 1, 0, 1), rec(3, 0, 4, 1), rec(4, 3, 5, 1)},
	})

	srv, err := Open(dir, "Shape/A")
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()

	paths, err := srv.ServeRayPaths(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || !reflect.DeepEqual(pathIDs(paths[0]), []int32{1, 2}) {
		t.Fatalf("expected only the terminated path to be served; got %v", paths)
	}
	for _, p := range paths {
		if last := p.Photons[len(p.Photons)-1]; !last.IsPathEnd() {
			t.Fatalf("served ray path %v whose last photon has nextID=%d", pathIDs(p), last.NextID)
		}
	}

	paths, err = srv.ServeRayPaths(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 0 {
		t.Fatalf("expected no paths after end of stream; got %d", len(paths))
	}
}

func TestResetReplaysStream(t *testing.T) {
	dir := newFixture(t, map[string][][RecordWords]float64{
		"trace_0.dat": {rec(1, 0, 2, 1), rec(2, 1, 3, 1)},
		"trace_1.dat": {rec(3, 2, 0, 1), rec(4, 0, 5, 1), rec(5, 4, 0, 1)},
	})

	srv, err := Open(dir, "Shape/A")
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()

	first, err := srv.ServeRayPaths(100)
	if err != nil {
		t.Fatal(err)
	}

	srv.Reset()

	second, err := srv.ServeRayPaths(100)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected reset to replay the stream; got %v then %v", first, second)
	}
}

func TestResetClearsAccumulator(t *testing.T) {
	dir := newFixture(t, map[string][][RecordWords]float64{
		"trace_0.dat": {rec(1, 0, 2, 1), rec(2, 1, 0, 1), rec(3, 0, 4, 1), rec(4, 3, 0, 1)},
	})

	srv, err := Open(dir, "Shape/A")
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()

	// Stop mid-stream with a path in the accumulator.
	if _, err = srv.ServeRayPaths(1); err != nil {
		t.Fatal(err)
	}
	srv.Reset()

	paths, err := srv.ServeRayPaths(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected both paths after reset; got %d", len(paths))
	}
	if exp, got := []int32{1, 2}, pathIDs(paths[0]); !reflect.DeepEqual(got, exp) {
		t.Fatalf("expected first path %v; got %v", exp, got)
	}
}

func TestTruncatedFile(t *testing.T) {
	dir := newFixture(t, nil)
	if err := os.WriteFile(filepath.Join(dir, "trace_0.dat"), make([]byte, RecordSize+7), 0644); err != nil {
		t.Fatal(err)
	}

	srv, err := Open(dir, "Shape/A")
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()

	if _, err = srv.ServeRayPaths(10); !errors.Is(err, ErrTruncatedFile) {
		t.Fatalf("expected ErrTruncatedFile; got %v", err)
	}
}

func TestServeNoDuplicatesAcrossCalls(t *testing.T) {
	files := map[string][][RecordWords]float64{}
	var records [][RecordWords]float64
	id := int32(1)
	for path := 0; path < 25; path++ {
		records = append(records, rec(id, 0, id+1, 1), rec(id+1, id, id+2, 7), rec(id+2, id+1, 0, 12))
		id += 3
	}
	files["trace_0.dat"] = records[:30]
	files["trace_1.dat"] = records[30:]
	dir := newFixture(t, files)

	srv, err := Open(dir, "Shape/A")
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()

	var served [][]int32
	for {
		paths, err := srv.ServeRayPaths(4)
		if err != nil {
			t.Fatal(err)
		}
		if len(paths) == 0 {
			break
		}
		for _, p := range paths {
			served = append(served, pathIDs(p))
		}
	}

	if len(served) != 25 {
		t.Fatalf("expected 25 ray paths; got %d", len(served))
	}
	want := int32(1)
	for i, ids := range served {
		exp := []int32{want, want + 1, want + 2}
		if !reflect.DeepEqual(ids, exp) {
			t.Fatalf("path %d: expected %v; got %v", i, exp, ids)
		}
		want += 3
	}
}
