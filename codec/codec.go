package codec

import (
	"fmt"
	"sync"

	"github.com/slidecraft/zisraw/errs"
	"github.com/slidecraft/zisraw/format"
)

// BlockInfo describes the tile a payload belongs to, as recorded in its
// directory entry. Decoders use it to size buffers and to validate that the
// payload can actually produce the declared pixels.
type BlockInfo struct {
	PixelType format.PixelType
	// Width and Height are the decoded extents in pixels.
	Width  int
	Height int
}

// Size returns the expected decoded payload size in bytes, or 0 when the
// pixel type is unknown.
func (b BlockInfo) Size() int {
	return b.Width * b.Height * b.PixelType.BytesPerPixel()
}

// Decoder turns a stored tile payload back into raw pixels.
//
// Implementations must be safe for concurrent use. The returned slice is
// owned by the caller; it may alias src when no transformation was needed.
type Decoder interface {
	Decode(src []byte, info BlockInfo) ([]byte, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[format.CompressionType]Decoder{
		format.CompressionNone:  rawDecoder{},
		format.CompressionJPEG:  jpegDecoder{},
		format.CompressionLZW:   lzwDecoder{},
		format.CompressionZstd0: zstdDecoder{},
		format.CompressionZstd1: zstdDecoder{headered: true},
	}
)

// ForCompression returns the decoder registered for a compression type.
//
// Returns:
//   - Decoder: Registered decoder
//   - error: ErrUnsupportedCompression when nothing is registered for the
//     type, JPEG XR and unknown schemes included
func ForCompression(c format.CompressionType) (Decoder, error) {
	registryMu.RLock()
	d, ok := registry[c]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s (%d)", errs.ErrUnsupportedCompression, c, int32(c))
	}

	return d, nil
}

// Register installs or replaces the decoder for a compression type. A nil
// decoder removes the registration.
func Register(c format.CompressionType, d Decoder) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if d == nil {
		delete(registry, c)
		return
	}

	registry[c] = d
}
