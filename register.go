package zisraw

import (
	"github.com/slidecraft/zisraw/slide"
)

var _ slide.Slide = (*Reader)(nil)

// The file header tag, NUL padded to the full 16-byte tag field, is the
// container magic.
const magic = "ZISRAWFILE\x00\x00\x00\x00\x00\x00"

func init() {
	slide.Register("zisraw", magic, func(path string) (slide.Slide, error) {
		r, err := Open(path)
		if err != nil {
			return nil, err
		}

		return r, nil
	})
}
