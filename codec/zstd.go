package codec

import (
	"fmt"

	"github.com/slidecraft/zisraw/errs"
	"github.com/slidecraft/zisraw/format"
)

// zstdDecoder handles both Zstandard flavors. The plain flavor is a bare
// frame; the headered flavor prefixes the frame with a small parameter
// block that may request hi/lo byte repacking of 16-bit samples.
type zstdDecoder struct {
	headered bool
}

var _ Decoder = zstdDecoder{}

func (d zstdDecoder) Decode(src []byte, info BlockInfo) ([]byte, error) {
	frame := src
	repack := false

	if d.headered {
		off, hiLo, err := parseZstdHeader(src)
		if err != nil {
			return nil, err
		}

		frame = src[off:]
		repack = hiLo
	}

	out, err := zstdDecompress(frame, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", errs.ErrCodec, err)
	}

	if repack {
		return unpackHiLo(out, info.PixelType)
	}

	return out, nil
}

// parseZstdHeader reads the headered-flavor prefix: byte 0 is the header
// size including itself; when the header reaches a parameter chunk (id 1 at
// byte 1), bit 0 of byte 2 requests hi/lo repacking.
func parseZstdHeader(src []byte) (int, bool, error) {
	if len(src) < 1 {
		return 0, false, fmt.Errorf("%w: zstd: empty payload", errs.ErrCodec)
	}

	size := int(src[0])
	if size < 1 || size > len(src) {
		return 0, false, fmt.Errorf("%w: zstd: header of %d bytes in a %d byte payload",
			errs.ErrCodec, size, len(src))
	}

	hiLo := false
	if size >= 3 && src[1] == 1 {
		hiLo = src[2]&1 != 0
	}

	return size, hiLo, nil
}

// unpackHiLo reassembles 16-bit samples stored as a low-byte half followed
// by a high-byte half.
func unpackHiLo(packed []byte, p format.PixelType) ([]byte, error) {
	if p != format.PixelGray16 && p != format.PixelBgr48 {
		return nil, fmt.Errorf("%w: zstd: hi/lo packing on %s pixels", errs.ErrCodec, p)
	}
	if len(packed)%2 != 0 {
		return nil, fmt.Errorf("%w: zstd: hi/lo packed payload of %d bytes is not even",
			errs.ErrCodec, len(packed))
	}

	half := len(packed) / 2
	lo, hi := packed[:half], packed[half:]

	out := make([]byte, len(packed))
	for i := 0; i < half; i++ {
		out[2*i] = lo[i]
		out[2*i+1] = hi[i]
	}

	return out, nil
}
