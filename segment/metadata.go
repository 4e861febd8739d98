package segment

import (
	"encoding/binary"
	"fmt"

	"github.com/slidecraft/zisraw/errs"
)

// ParseMetadata extracts the document XML from a ZISRAWMETADATA payload. The
// XML is returned verbatim; interpreting it is the caller's business.
func ParseMetadata(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: metadata payload needs 4 bytes, have %d", errs.ErrTruncated, len(data))
	}

	size := int32(binary.LittleEndian.Uint32(data[0:4]))
	if size < 0 {
		return nil, fmt.Errorf("%w: metadata declares %d XML bytes", errs.ErrInvalidStructure, size)
	}
	if int64(size) > int64(len(data)-4) {
		return nil, fmt.Errorf("%w: metadata declares %d XML bytes, payload has %d",
			errs.ErrTruncated, size, len(data)-4)
	}

	return data[4 : 4+int(size)], nil
}
