//go:build !cgo

package codec

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdDecoderPool reuses zstd decoders across tiles. The klauspost decoder
// is designed for exactly this: it operates without allocations after a
// warmup, so pooling removes the per-tile setup cost.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			// Cannot happen with valid static options.
			panic(fmt.Sprintf("create pooled zstd decoder: %v", err))
		}

		return decoder
	},
}

// zstdDecompress inflates one frame. sizeHint presizes the output buffer;
// zero or negative hints are ignored.
func zstdDecompress(frame []byte, sizeHint int) ([]byte, error) {
	decoder := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	var dst []byte
	if sizeHint > 0 {
		dst = make([]byte, 0, sizeHint)
	}

	// DecodeAll is stateless, so the pooled decoder stays reusable even
	// when this call fails.
	return decoder.DecodeAll(frame, dst)
}
