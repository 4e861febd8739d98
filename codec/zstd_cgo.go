//go:build cgo

package codec

import (
	"github.com/valyala/gozstd"
)

// zstdDecompress inflates one frame through the libzstd bindings. sizeHint
// presizes the output buffer; zero or negative hints are ignored.
func zstdDecompress(frame []byte, sizeHint int) ([]byte, error) {
	var dst []byte
	if sizeHint > 0 {
		dst = make([]byte, 0, sizeHint)
	}

	return gozstd.Decompress(dst, frame)
}
