package segment

import (
	"encoding/binary"
	"fmt"

	"github.com/slidecraft/zisraw/errs"
)

// SubBlock is a parsed ZISRAWSUBBLOCK payload: the embedded copy of the
// directory entry plus the three byte ranges that follow it. The slices
// alias the payload buffer handed to ParseSubBlock.
type SubBlock struct {
	// Entry is the embedded directory entry copy. Writers that die between
	// rewriting the directory and the sub-blocks leave the two copies
	// disagreeing, so callers cross-check it against the directory's record.
	Entry Entry
	// Metadata is the per-tile XML, possibly empty.
	Metadata []byte
	// Data is the compressed pixel payload.
	Data []byte
	// Attachment is the optional per-tile attachment, possibly empty.
	Attachment []byte
}

// ParseSubBlock parses a sub-block payload.
//
//	┌──────────────────────────────────────────────┐
//	│ MetadataSize (4 bytes) int32                 │
//	│ AttachmentSize (4 bytes) int32               │
//	│ DataSize (8 bytes) int64                     │
//	├──────────────────────────────────────────────┤
//	│ directory entry copy (variable)              │
//	├──────────────────────────────────────────────┤
//	│ tile XML (MetadataSize bytes)                │
//	│ pixel payload (DataSize bytes)               │
//	│ tile attachment (AttachmentSize bytes)       │
//	└──────────────────────────────────────────────┘
//
// Returns ErrInvalidStructure for negative sizes and ErrTruncated when the
// declared ranges extend past the payload.
func ParseSubBlock(payload []byte, fileSize int64) (SubBlock, error) {
	if len(payload) < subBlockFixedSize {
		return SubBlock{}, fmt.Errorf("%w: sub-block payload needs %d bytes, have %d",
			errs.ErrTruncated, subBlockFixedSize, len(payload))
	}

	metaSize := int32(binary.LittleEndian.Uint32(payload[0:4]))
	attachSize := int32(binary.LittleEndian.Uint32(payload[4:8]))
	dataSize := int64(binary.LittleEndian.Uint64(payload[8:16]))

	if metaSize < 0 || attachSize < 0 || dataSize < 0 {
		return SubBlock{}, fmt.Errorf("%w: sub-block declares a negative range", errs.ErrInvalidStructure)
	}

	entry, entryLen, err := parseEntry(payload[subBlockFixedSize:], fileSize)
	if err != nil {
		return SubBlock{}, fmt.Errorf("embedded entry: %w", err)
	}

	// Check the ranges one at a time against what remains; summing the
	// declared sizes first could overflow on hostile values.
	off := int64(subBlockFixedSize + entryLen)
	rest := int64(len(payload)) - off
	if int64(metaSize) > rest || dataSize > rest-int64(metaSize) ||
		int64(attachSize) > rest-int64(metaSize)-dataSize {
		return SubBlock{}, fmt.Errorf("%w: sub-block declares %d+%d+%d byte ranges, payload has %d",
			errs.ErrTruncated, metaSize, dataSize, attachSize, rest)
	}

	sb := SubBlock{Entry: entry}
	sb.Metadata = payload[off : off+int64(metaSize)]
	off += int64(metaSize)
	sb.Data = payload[off : off+dataSize]
	off += dataSize
	sb.Attachment = payload[off : off+int64(attachSize)]

	return sb, nil
}
