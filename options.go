package zisraw

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/slidecraft/zisraw/internal/options"
)

// Option configures a Reader at open time. The Reader is immutable once
// open, so every option applies before the container is touched.
type Option = options.Option[*Reader]

// WithLogger wires a logger into the reader. The reader logs segment
// routing and level reconstruction at Debug and tolerated tile failures at
// Warn; the default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return options.NoError(func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	})
}

// WithTileCache keeps up to entries decoded tiles in an LRU cache, keyed by
// tile identity and subsampling. Region reads over overlapping requests stop
// re-reading and re-decompressing shared tiles. Zero disables the cache;
// that is the default.
func WithTileCache(entries int) Option {
	return options.New(func(r *Reader) error {
		if entries < 0 {
			return fmt.Errorf("tile cache size %d is negative", entries)
		}

		r.cacheSize = entries

		return nil
	})
}

// WithDecodeWorkers decodes the tiles of a region read on up to n worker
// goroutines. Compositing stays sequential in canonical tile order, so the
// output is byte-identical to the serial path. The default is 1.
func WithDecodeWorkers(n int) Option {
	return options.New(func(r *Reader) error {
		if n < 1 {
			return fmt.Errorf("decode worker count %d must be at least 1", n)
		}

		r.workers = n

		return nil
	})
}

// WithFillOnError makes region reads tolerate tile failures: a tile that
// cannot be loaded or decoded leaves its area at the fill value and is
// logged at Warn. The default is to fail the whole read on the first broken
// tile.
func WithFillOnError() Option {
	return options.NoError(func(r *Reader) {
		r.fillOnErr = true
	})
}

// WithMaxSegmentSize caps the directory, metadata, and attachment directory
// payload sizes accepted at open time, guarding against corrupt headers
// that declare absurd allocations. The default is DefaultMaxSegmentSize.
func WithMaxSegmentSize(n int64) Option {
	return options.New(func(r *Reader) error {
		if n <= 0 {
			return fmt.Errorf("max segment size %d must be positive", n)
		}

		r.maxSegment = n

		return nil
	})
}
