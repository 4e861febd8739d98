package segment

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"

	"github.com/slidecraft/zisraw/errs"
)

// FileHeader is the payload of the ZISRAWFILE segment that must open the
// stream. Positions are absolute offsets of other segment headers within the
// file; a position of zero means the segment is absent.
type FileHeader struct {
	Major int32 // byte offset 0-3
	Minor int32 // byte offset 4-7
	// bytes 8-15 reserved
	PrimaryFileGUID uuid.UUID // byte offset 16-31
	FileGUID        uuid.UUID // byte offset 32-47
	// FilePart is the part number of this file within a multi-part
	// acquisition; zero for single-part files.
	FilePart          int32 // byte offset 48-51
	DirectoryPosition int64 // byte offset 52-59
	MetadataPosition  int64 // byte offset 60-67
	// UpdatePending is set while a writer rewrites the directory in place. A
	// file with the flag still set has no consistent snapshot to offer.
	UpdatePending               bool  // byte offset 68-71
	AttachmentDirectoryPosition int64 // byte offset 72-79
}

// ParseFileHeader parses the ZISRAWFILE payload.
//
// Parameters:
//   - data: Payload bytes (at least the 80-byte fixed portion)
//   - fileSize: Total container size, for position validation
//
// Returns:
//   - FileHeader: Parsed header
//   - error: ErrTruncated if data is short, ErrInvalidStructure for an
//     unsupported major version or an announced position outside the file
func ParseFileHeader(data []byte, fileSize int64) (FileHeader, error) {
	if len(data) < fileHeaderSize {
		return FileHeader{}, fmt.Errorf("%w: file header needs %d bytes, have %d",
			errs.ErrTruncated, fileHeaderSize, len(data))
	}

	h := FileHeader{
		Major:                       int32(binary.LittleEndian.Uint32(data[0:4])),
		Minor:                       int32(binary.LittleEndian.Uint32(data[4:8])),
		FilePart:                    int32(binary.LittleEndian.Uint32(data[48:52])),
		DirectoryPosition:           int64(binary.LittleEndian.Uint64(data[52:60])),
		MetadataPosition:            int64(binary.LittleEndian.Uint64(data[60:68])),
		UpdatePending:               binary.LittleEndian.Uint32(data[68:72]) != 0,
		AttachmentDirectoryPosition: int64(binary.LittleEndian.Uint64(data[72:80])),
	}
	copy(h.PrimaryFileGUID[:], data[16:32])
	copy(h.FileGUID[:], data[32:48])

	if h.Major != SupportedMajor {
		return FileHeader{}, fmt.Errorf("%w: container version %d.%d is not supported",
			errs.ErrInvalidStructure, h.Major, h.Minor)
	}

	for _, pos := range []int64{h.DirectoryPosition, h.MetadataPosition, h.AttachmentDirectoryPosition} {
		if pos == 0 {
			continue
		}
		if pos < 0 || pos >= fileSize {
			return FileHeader{}, fmt.Errorf("%w: announced segment position %d outside the file (%d bytes)",
				errs.ErrInvalidStructure, pos, fileSize)
		}
	}

	return h, nil
}
