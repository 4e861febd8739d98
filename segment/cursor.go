package segment

import (
	"fmt"
	"io"

	"github.com/slidecraft/zisraw/errs"
)

// Cursor walks a segment stream sequentially. It keeps its own offset and
// issues only positional reads, so any number of cursors may share one
// io.ReaderAt.
type Cursor struct {
	r    io.ReaderAt
	size int64
	off  int64
}

// NewCursor returns a cursor over the first size bytes of r, positioned at
// offset zero.
func NewCursor(r io.ReaderAt, size int64) *Cursor {
	return &Cursor{r: r, size: size}
}

// Offset returns the position of the next segment header.
func (c *Cursor) Offset() int64 { return c.off }

// Seek repositions the cursor to an absolute offset.
func (c *Cursor) Seek(off int64) { c.off = off }

// Next reads the segment header at the current offset and advances past the
// segment's allocated payload, landing exactly on the next header regardless
// of how much padding the writer left.
//
// Returns:
//   - *Segment: The segment at the previous offset
//   - error: io.EOF when the cursor sat exactly at the end of the stream,
//     ErrTruncated when the stream ends inside a header or a declared
//     payload, ErrInvalidStructure for a malformed header
func (c *Cursor) Next() (*Segment, error) {
	if c.off == c.size {
		return nil, io.EOF
	}

	seg, err := ReadSegmentAt(c.r, c.size, c.off)
	if err != nil {
		return nil, err
	}

	c.off = seg.BodyPos() + seg.Header.AllocatedSize

	return seg, nil
}

// Segment is one parsed segment header plus the location of its payload.
type Segment struct {
	Header Header
	// Pos is the absolute offset of the segment header.
	Pos int64

	r io.ReaderAt
}

// ReadSegmentAt reads and validates the segment header at an absolute
// offset. Tile loads call it directly with a directory position instead of
// walking the stream.
func ReadSegmentAt(r io.ReaderAt, fileSize, off int64) (*Segment, error) {
	if off < 0 || off > fileSize-HeaderSize {
		return nil, fmt.Errorf("%w: segment header at offset %d extends past end of file (%d bytes)",
			errs.ErrTruncated, off, fileSize)
	}

	var buf [HeaderSize]byte
	if _, err := r.ReadAt(buf[:], off); err != nil {
		return nil, fmt.Errorf("read segment header at offset %d: %w", off, err)
	}

	hdr, err := ParseHeader(buf[:])
	if err != nil {
		return nil, fmt.Errorf("segment at offset %d: %w", off, err)
	}

	if hdr.AllocatedSize > fileSize-off-HeaderSize {
		return nil, fmt.Errorf("%w: segment %q at offset %d declares %d payload bytes past end of file",
			errs.ErrTruncated, hdr.ID, off, hdr.AllocatedSize)
	}

	return &Segment{Header: hdr, Pos: off, r: r}, nil
}

// BodyPos returns the absolute offset of the segment payload.
func (s *Segment) BodyPos() int64 { return s.Pos + HeaderSize }

// Payload reads the meaningful payload bytes into a fresh buffer. A positive
// max caps the allocation; larger payloads fail with ErrInvalidStructure
// instead of being read.
func (s *Segment) Payload(max int64) ([]byte, error) {
	n := s.Header.Used()
	if max > 0 && n > max {
		return nil, fmt.Errorf("%w: segment %q payload of %d bytes exceeds the %d byte cap",
			errs.ErrInvalidStructure, s.Header.ID, n, max)
	}

	buf := make([]byte, n)
	if _, err := s.r.ReadAt(buf, s.BodyPos()); err != nil {
		return nil, fmt.Errorf("read %q payload at offset %d: %w", s.Header.ID, s.BodyPos(), err)
	}

	return buf, nil
}

// PayloadReader returns a positional reader over the meaningful payload.
func (s *Segment) PayloadReader() *io.SectionReader {
	return io.NewSectionReader(s.r, s.BodyPos(), s.Header.Used())
}
