package codec

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/image/tiff/lzw"

	"github.com/slidecraft/zisraw/errs"
)

// lzwDecoder handles LZW tiles. The stream is the TIFF flavor: MSB-first bit
// order with the early code-width change, which is why this uses the x/image
// reader instead of compress/lzw.
type lzwDecoder struct{}

var _ Decoder = lzwDecoder{}

func (lzwDecoder) Decode(src []byte, info BlockInfo) ([]byte, error) {
	r := lzw.NewReader(bytes.NewReader(src), lzw.MSB, 8)
	defer r.Close()

	buf := bytes.NewBuffer(make([]byte, 0, info.Size()))
	if _, err := io.Copy(buf, r); err != nil {
		return nil, fmt.Errorf("%w: lzw: %v", errs.ErrCodec, err)
	}

	return buf.Bytes(), nil
}
