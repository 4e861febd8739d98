package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/slidecraft/zisraw/errs"
	"github.com/slidecraft/zisraw/format"
)

// jpegDecoder handles baseline JPEG tiles via the standard library decoder,
// repacking the decoded image into the pixel layout the tile declares.
type jpegDecoder struct{}

var _ Decoder = jpegDecoder{}

func (jpegDecoder) Decode(src []byte, info BlockInfo) ([]byte, error) {
	img, err := jpeg.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: jpeg: %v", errs.ErrCodec, err)
	}

	b := img.Bounds()
	if b.Dx() != info.Width || b.Dy() != info.Height {
		return nil, fmt.Errorf("%w: jpeg decodes to %dx%d, tile declares %dx%d",
			errs.ErrCodec, b.Dx(), b.Dy(), info.Width, info.Height)
	}

	switch info.PixelType {
	case format.PixelGray8:
		return jpegToGray8(img), nil
	case format.PixelBgr24:
		return jpegToBgr(img, 3), nil
	case format.PixelBgra32:
		return jpegToBgr(img, 4), nil
	default:
		return nil, fmt.Errorf("%w: jpeg cannot produce %s pixels", errs.ErrCodec, info.PixelType)
	}
}

func jpegToGray8(img image.Image) []byte {
	b := img.Bounds()
	out := make([]byte, b.Dx()*b.Dy())

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < b.Dy(); y++ {
			copy(out[y*b.Dx():(y+1)*b.Dx()], src.Pix[y*src.Stride:y*src.Stride+b.Dx()])
		}
	case *image.YCbCr:
		// Luma plane is the gray channel.
		for y := 0; y < b.Dy(); y++ {
			copy(out[y*b.Dx():(y+1)*b.Dx()], src.Y[y*src.YStride:y*src.YStride+b.Dx()])
		}
	default:
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				r, g, bl, _ := img.At(x, y).RGBA()
				// BT.601 luma, same weights the image/color gray model uses.
				out[i] = uint8((19595*r + 38470*g + 7471*bl + 1<<15) >> 24)
				i++
			}
		}
	}

	return out
}

// jpegToBgr flattens any decoded image into 8-bit BGR pixels, with a fourth
// opaque alpha byte when stride is 4.
func jpegToBgr(img image.Image, stride int) []byte {
	b := img.Bounds()
	out := make([]byte, b.Dx()*b.Dy()*stride)

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			out[i] = uint8(bl >> 8)
			out[i+1] = uint8(g >> 8)
			out[i+2] = uint8(r >> 8)
			if stride == 4 {
				out[i+3] = 0xFF
			}
			i += stride
		}
	}

	return out
}
