package trace

import (
	"encoding/binary"
	"math"
)

const (
	// RecordWords is the number of 64-bit values in one photon record.
	RecordWords = 8

	// RecordSize is the on-disk size of one photon record in bytes.
	RecordSize = RecordWords * 8
)

// DecodeRecord decodes one big-endian photon record into host floats.
// b must hold at least RecordSize bytes.
func DecodeRecord(b []byte) [RecordWords]float64 {
	var w [RecordWords]float64
	for i := range w {
		w[i] = math.Float64frombits(binary.BigEndian.Uint64(b[i*8:]))
	}
	return w
}

// EncodeRecord writes the big-endian representation of one photon record
// into b. b must hold at least RecordSize bytes.
func EncodeRecord(w [RecordWords]float64, b []byte) {
	for i, v := range w {
		binary.BigEndian.PutUint64(b[i*8:], math.Float64bits(v))
	}
}

// recordPhoton builds a photon from a decoded record. The integer-valued
// fields are stored on disk as floats; truncation recovers them.
func recordPhoton(w [RecordWords]float64) Photon {
	return Photon{
		ID:        int32(w[0]),
		X:         w[1],
		Y:         w[2],
		Z:         w[3],
		Side:      int32(w[4]),
		PrevID:    int32(w[5]),
		NextID:    int32(w[6]),
		SurfaceID: int32(w[7]),
	}
}
