package segment

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/slidecraft/zisraw/errs"
)

// Header is the 32-byte header preceding every segment payload.
type Header struct {
	// ID is the ASCII segment tag with NUL padding stripped.
	ID string // byte offset 0-15
	// AllocatedSize is the number of payload bytes reserved on disk.
	AllocatedSize int64 // byte offset 16-23
	// UsedSize is the number of payload bytes that carry meaning. Writers may
	// leave it at zero, which means the whole allocation is in use.
	UsedSize int64 // byte offset 24-31
}

// ParseHeader parses a segment header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the header (must be at least 32 bytes)
//
// Returns:
//   - Header: Parsed header
//   - error: ErrTruncated if data is short, ErrInvalidStructure if a size is
//     negative or UsedSize exceeds AllocatedSize
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: segment header needs %d bytes, have %d", errs.ErrTruncated, HeaderSize, len(data))
	}

	h := Header{
		ID:            trimASCII(data[0:tagSize]),
		AllocatedSize: int64(binary.LittleEndian.Uint64(data[16:24])),
		UsedSize:      int64(binary.LittleEndian.Uint64(data[24:32])),
	}

	if h.AllocatedSize < 0 || h.UsedSize < 0 {
		return Header{}, fmt.Errorf("%w: segment %q declares a negative size", errs.ErrInvalidStructure, h.ID)
	}
	if h.UsedSize > h.AllocatedSize {
		return Header{}, fmt.Errorf("%w: segment %q uses %d of %d allocated bytes",
			errs.ErrInvalidStructure, h.ID, h.UsedSize, h.AllocatedSize)
	}

	return h, nil
}

// Used returns the meaningful payload size: UsedSize, or AllocatedSize when
// the writer left UsedSize at zero.
func (h Header) Used() int64 {
	if h.UsedSize == 0 {
		return h.AllocatedSize
	}

	return h.UsedSize
}

// trimASCII cuts a fixed-width ASCII field at its first NUL.
func trimASCII(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}

	return string(b)
}
