package segment

import (
	"encoding/binary"
	"fmt"

	"github.com/slidecraft/zisraw/errs"
	"github.com/slidecraft/zisraw/format"
)

// DimensionEntry places a tile on one axis of the acquisition coordinate
// space. Start and Size are expressed in level-0 coordinates.
type DimensionEntry struct {
	Axis  format.Dimension // byte offset 0-3, ASCII NUL padded
	Start int32            // byte offset 4-7
	Size  int32            // byte offset 8-11
}

// Entry is one directory entry: everything needed to place a stored tile and
// load it later, without touching the tile payload.
//
// The same encoding appears twice on disk, once in the directory segment and
// once inside each sub-block segment.
type Entry struct {
	// schema "DV", byte offset 0-1
	PixelType   format.PixelType       // byte offset 2-5
	Compression format.CompressionType // byte offset 6-9
	// FilePosition is the absolute offset of the tile's sub-block segment
	// header.
	FilePosition int64 // byte offset 10-17
	// FilePart keys the acquisition source the tile belongs to.
	FilePart int32 // byte offset 18-21
	// StoredSize is the size of the compressed pixel payload.
	StoredSize int64 // byte offset 22-29
	// Width and Height are the tile extents in level-0 coordinates. The
	// stored pixel buffer holds Width/SubsampleX by Height/SubsampleY pixels.
	Width  int32 // byte offset 30-33
	Height int32 // byte offset 34-37
	// SubsampleX and SubsampleY are the integer downsampling factors between
	// level-0 coordinates and the stored pixels.
	SubsampleX int32 // byte offset 38-41
	SubsampleY int32 // byte offset 42-45
	// dimension count, byte offset 46-49
	Dimensions []DimensionEntry // byte offset 50 onward, 12 bytes each
}

// Dimension returns the entry for the given axis.
func (e *Entry) Dimension(axis format.Dimension) (DimensionEntry, bool) {
	for _, d := range e.Dimensions {
		if d.Axis == axis {
			return d, true
		}
	}

	return DimensionEntry{}, false
}

// Start returns the axis start in level-0 coordinates, or zero when the
// entry does not carry the axis.
func (e *Entry) Start(axis format.Dimension) int32 {
	d, _ := e.Dimension(axis)
	return d.Start
}

// ParseDirectory parses the ZISRAWDIRECTORY payload into its entries.
//
// Parameters:
//   - data: Payload bytes
//   - fileSize: Total container size, for tile position validation
//
// Returns:
//   - []Entry: Parsed entries in directory order
//   - error: ErrTruncated if the payload ends inside an entry,
//     ErrInvalidStructure for a negative count or a malformed entry
func ParseDirectory(data []byte, fileSize int64) ([]Entry, error) {
	if len(data) < directoryFixedSize {
		return nil, fmt.Errorf("%w: directory payload needs %d bytes, have %d",
			errs.ErrTruncated, directoryFixedSize, len(data))
	}

	count := int32(binary.LittleEndian.Uint32(data[0:4]))
	if count < 0 {
		return nil, fmt.Errorf("%w: directory declares %d entries", errs.ErrInvalidStructure, count)
	}

	// Every entry occupies at least its fixed portion; bound the declared
	// count against the payload before trusting it with an allocation.
	need := int64(directoryFixedSize) + int64(count)*entryFixedSize
	if need > int64(len(data)) {
		return nil, fmt.Errorf("%w: %d directory entries need %d bytes, have %d",
			errs.ErrTruncated, count, need, len(data))
	}

	entries := make([]Entry, 0, count)
	off := directoryFixedSize

	for i := int32(0); i < count; i++ {
		e, n, err := parseEntry(data[off:], fileSize)
		if err != nil {
			return nil, fmt.Errorf("directory entry %d: %w", i, err)
		}

		entries = append(entries, e)
		off += n
	}

	return entries, nil
}

// parseEntry parses one packed entry and returns its encoded length.
func parseEntry(data []byte, fileSize int64) (Entry, int, error) {
	if len(data) < entryFixedSize {
		return Entry{}, 0, fmt.Errorf("%w: entry needs %d bytes, have %d",
			errs.ErrTruncated, entryFixedSize, len(data))
	}

	if schema := string(data[0:2]); schema != entrySchema {
		return Entry{}, 0, fmt.Errorf("%w: unknown entry schema %q", errs.ErrInvalidStructure, schema)
	}

	e := Entry{
		PixelType:    format.PixelType(binary.LittleEndian.Uint32(data[2:6])),
		Compression:  format.CompressionType(binary.LittleEndian.Uint32(data[6:10])),
		FilePosition: int64(binary.LittleEndian.Uint64(data[10:18])),
		FilePart:     int32(binary.LittleEndian.Uint32(data[18:22])),
		StoredSize:   int64(binary.LittleEndian.Uint64(data[22:30])),
		Width:        int32(binary.LittleEndian.Uint32(data[30:34])),
		Height:       int32(binary.LittleEndian.Uint32(data[34:38])),
		SubsampleX:   int32(binary.LittleEndian.Uint32(data[38:42])),
		SubsampleY:   int32(binary.LittleEndian.Uint32(data[42:46])),
	}

	switch {
	case e.FilePosition < 0 || e.FilePosition > fileSize-HeaderSize:
		return Entry{}, 0, fmt.Errorf("%w: tile position %d outside the file (%d bytes)",
			errs.ErrInvalidStructure, e.FilePosition, fileSize)
	case e.StoredSize <= 0:
		return Entry{}, 0, fmt.Errorf("%w: stored size %d must be positive", errs.ErrInvalidStructure, e.StoredSize)
	case e.Width <= 0 || e.Height <= 0:
		return Entry{}, 0, fmt.Errorf("%w: tile extent %dx%d must be positive",
			errs.ErrInvalidStructure, e.Width, e.Height)
	case e.SubsampleX < 1 || e.SubsampleY < 1:
		return Entry{}, 0, fmt.Errorf("%w: subsampling %dx%d must be at least 1",
			errs.ErrInvalidStructure, e.SubsampleX, e.SubsampleY)
	}

	dimCount := int32(binary.LittleEndian.Uint32(data[46:50]))
	if dimCount < 2 {
		return Entry{}, 0, fmt.Errorf("%w: %d dimension entries, need at least X and Y",
			errs.ErrInvalidStructure, dimCount)
	}

	size := entryFixedSize + int(dimCount)*dimensionEntrySize
	if len(data) < size {
		return Entry{}, 0, fmt.Errorf("%w: %d dimension entries need %d bytes, have %d",
			errs.ErrTruncated, dimCount, size, len(data))
	}

	e.Dimensions = make([]DimensionEntry, 0, dimCount)
	seen := make(map[format.Dimension]struct{}, dimCount)

	for off := entryFixedSize; off < size; off += dimensionEntrySize {
		d := DimensionEntry{
			Axis:  format.Dimension(trimASCII(data[off : off+4])),
			Start: int32(binary.LittleEndian.Uint32(data[off+4 : off+8])),
			Size:  int32(binary.LittleEndian.Uint32(data[off+8 : off+12])),
		}

		if d.Axis == "" {
			return Entry{}, 0, fmt.Errorf("%w: empty dimension axis", errs.ErrInvalidStructure)
		}
		if _, dup := seen[d.Axis]; dup {
			return Entry{}, 0, fmt.Errorf("%w: duplicate dimension axis %q", errs.ErrInvalidStructure, d.Axis)
		}

		seen[d.Axis] = struct{}{}
		e.Dimensions = append(e.Dimensions, d)
	}

	for _, axis := range []format.Dimension{format.DimX, format.DimY} {
		if _, ok := seen[axis]; !ok {
			return Entry{}, 0, fmt.Errorf("%w: missing required dimension %q", errs.ErrInvalidStructure, axis)
		}
	}

	return e, size, nil
}
