package segment

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"

	"github.com/slidecraft/zisraw/errs"
)

// AttachmentEntry names one binary attachment and points at its ZISRAWATTACH
// segment.
type AttachmentEntry struct {
	// schema "A1", byte offset 0-1; bytes 2-11 reserved
	// FilePosition is the absolute offset of the attachment segment header.
	FilePosition int64 // byte offset 12-19
	// bytes 20-23 reserved
	ContentGUID uuid.UUID // byte offset 24-39
	// ContentType is a short ASCII type marker, e.g. "CZI" or "JPG".
	ContentType string // byte offset 40-47, NUL padded
	// Name identifies the attachment, e.g. "Thumbnail" or "Label".
	Name string // byte offset 48-127, NUL padded
}

// ParseAttachmentDirectory parses the ZISRAWATTDIR payload into its entries.
func ParseAttachmentDirectory(data []byte, fileSize int64) ([]AttachmentEntry, error) {
	if len(data) < attachDirFixedSize {
		return nil, fmt.Errorf("%w: attachment directory payload needs %d bytes, have %d",
			errs.ErrTruncated, attachDirFixedSize, len(data))
	}

	count := int32(binary.LittleEndian.Uint32(data[0:4]))
	if count < 0 {
		return nil, fmt.Errorf("%w: attachment directory declares %d entries", errs.ErrInvalidStructure, count)
	}

	need := int64(attachDirFixedSize) + int64(count)*attachmentEntrySize
	if need > int64(len(data)) {
		return nil, fmt.Errorf("%w: %d attachment entries need %d bytes, have %d",
			errs.ErrTruncated, count, need, len(data))
	}

	entries := make([]AttachmentEntry, 0, count)

	for i := int32(0); i < count; i++ {
		buf := data[attachDirFixedSize+int(i)*attachmentEntrySize:][:attachmentEntrySize]

		if schema := string(buf[0:2]); schema != attachmentSchema {
			return nil, fmt.Errorf("%w: attachment entry %d has unknown schema %q",
				errs.ErrInvalidStructure, i, schema)
		}

		e := AttachmentEntry{
			FilePosition: int64(binary.LittleEndian.Uint64(buf[12:20])),
			ContentType:  trimASCII(buf[40:48]),
			Name:         trimASCII(buf[48:128]),
		}
		copy(e.ContentGUID[:], buf[24:40])

		if e.FilePosition < 0 || e.FilePosition > fileSize-HeaderSize {
			return nil, fmt.Errorf("%w: attachment %q position %d outside the file (%d bytes)",
				errs.ErrInvalidStructure, e.Name, e.FilePosition, fileSize)
		}

		entries = append(entries, e)
	}

	return entries, nil
}
