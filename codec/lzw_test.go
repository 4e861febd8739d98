package codec

import (
	"bytes"
	stdlzw "compress/lzw"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slidecraft/zisraw/errs"
	"github.com/slidecraft/zisraw/format"
)

// lzwStream compresses data MSB-first. The standard encoder switches code
// widths one code later than the TIFF flavor, so inputs here stay small
// enough that the dictionary never reaches the first switch and the streams
// coincide.
func lzwStream(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := stdlzw.NewWriter(&buf, stdlzw.MSB, 8)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return buf.Bytes()
}

func TestLzwDecoder(t *testing.T) {
	t.Run("Round trip", func(t *testing.T) {
		pixels := bytes.Repeat([]byte{10, 20, 30, 40, 50}, 32)
		info := BlockInfo{PixelType: format.PixelGray8, Width: len(pixels), Height: 1}

		out, err := lzwDecoder{}.Decode(lzwStream(t, pixels), info)

		require.NoError(t, err)
		require.Equal(t, pixels, out)
	})

	t.Run("Single row of distinct bytes", func(t *testing.T) {
		pixels := make([]byte, 100)
		for i := range pixels {
			pixels[i] = byte(i)
		}
		info := BlockInfo{PixelType: format.PixelGray8, Width: 100, Height: 1}

		out, err := lzwDecoder{}.Decode(lzwStream(t, pixels), info)

		require.NoError(t, err)
		require.Equal(t, pixels, out)
	})

	t.Run("Corrupt stream", func(t *testing.T) {
		stream := lzwStream(t, bytes.Repeat([]byte{1, 2, 3}, 40))
		stream = stream[:len(stream)/2]
		stream = append(stream, 0xFF, 0xFF, 0xFF, 0xFF)

		_, err := lzwDecoder{}.Decode(stream, BlockInfo{PixelType: format.PixelGray8, Width: 120, Height: 1})

		require.ErrorIs(t, err, errs.ErrCodec)
	})
}
