// Package errs defines the sentinel errors shared across the zisraw packages.
//
// Call sites wrap these with fmt.Errorf("%w: ...") to attach context while
// keeping errors.Is classification intact.
package errs

import "errors"

var (
	// ErrTruncated indicates the stream ended inside a segment header or
	// payload, or a declared size extends past the end of the file.
	ErrTruncated = errors.New("truncated stream")

	// ErrInvalidStructure indicates a malformed or internally inconsistent
	// container: bad magic, used size exceeding allocated size, negative
	// counts, missing required dimensions, or disagreeing duplicate records.
	ErrInvalidStructure = errors.New("invalid structure")

	// ErrDuplicateTile indicates two tiles in the same pyramid level derived
	// the same tile identity.
	ErrDuplicateTile = errors.New("duplicate tile")

	// ErrMissingBaseLevel indicates pyramid reconstruction found no tiles at
	// subsampling (1, 1), or no tiles at all.
	ErrMissingBaseLevel = errors.New("missing base level")

	// ErrUnsupportedCompression indicates a tile declares a compression
	// scheme with no registered decoder.
	ErrUnsupportedCompression = errors.New("unsupported compression")

	// ErrCodec indicates a registered decoder failed on a tile payload.
	ErrCodec = errors.New("codec failure")

	// ErrNotFound indicates a lookup by tile identity or attachment name had
	// no match.
	ErrNotFound = errors.New("not found")

	// ErrOutOfRange indicates a level index outside the level list or a
	// degenerate region request.
	ErrOutOfRange = errors.New("out of range")

	// ErrClosed indicates an operation on a closed reader.
	ErrClosed = errors.New("reader closed")
)
