package trace

import "errors"

var (
	ErrInvalidDirectory = errors.New("trace: path is not a directory")
	ErrMetadataMissing  = errors.New("trace: expected exactly one metadata .txt file")
	ErrBadMetadata      = errors.New("trace: malformed metadata file")
	ErrSurfaceNotFound  = errors.New("trace: surface path not found in metadata")
	ErrNoDataFiles      = errors.New("trace: no .dat files in directory")
	ErrBadFilename      = errors.New("trace: data filename lacks a _<index> suffix")
	ErrTruncatedFile    = errors.New("trace: data file size is not a multiple of the record size")

	// All Go targets are pure little- or big-endian so the byte-order
	// normalization in DecodeRecord can never observe a mixed-endian
	// host. The kind is kept so callers can classify it.
	ErrUnsupportedPlatform = errors.New("trace: unsupported host byte order")
)
