package format

type (
	CompressionType int32
	PixelType       int32
	Dimension       string
)

const (
	CompressionNone   CompressionType = 0 // CompressionNone represents uncompressed pixel data.
	CompressionJPEG   CompressionType = 1 // CompressionJPEG represents baseline JPEG.
	CompressionLZW    CompressionType = 2 // CompressionLZW represents TIFF-flavor LZW (MSB first).
	CompressionJPEGXR CompressionType = 4 // CompressionJPEGXR represents JPEG XR (recognized, not decodable).
	CompressionZstd0  CompressionType = 5 // CompressionZstd0 represents a bare Zstandard frame.
	CompressionZstd1  CompressionType = 6 // CompressionZstd1 represents a Zstandard frame behind a small header.
)

const (
	PixelGray8              PixelType = 0  // 8-bit grayscale
	PixelGray16             PixelType = 1  // 16-bit grayscale
	PixelGray32Float        PixelType = 2  // 32-bit float grayscale
	PixelBgr24              PixelType = 3  // 8-bit BGR triples
	PixelBgr48              PixelType = 4  // 16-bit BGR triples
	PixelBgr96Float         PixelType = 8  // 32-bit float BGR triples
	PixelBgra32             PixelType = 9  // 8-bit BGRA quads
	PixelGray64ComplexFloat PixelType = 10 // complex of 32-bit floats
	PixelBgr192ComplexFloat PixelType = 11 // BGR triples of complex 32-bit floats
	PixelGray32             PixelType = 12 // 32-bit integer grayscale
	PixelGray64Float        PixelType = 13 // 64-bit float grayscale
)

// Dimension axes of the sub-block coordinate space. Axis codes outside this
// list are preserved verbatim and treated as planar.
const (
	DimX Dimension = "X" // pixel column
	DimY Dimension = "Y" // pixel row
	DimZ Dimension = "Z" // focal plane
	DimC Dimension = "C" // channel
	DimT Dimension = "T" // time point
	DimS Dimension = "S" // scene
	DimR Dimension = "R" // rotation
	DimI Dimension = "I" // illumination direction
	DimH Dimension = "H" // phase
	DimV Dimension = "V" // view
	DimB Dimension = "B" // block (deprecated)
	DimM Dimension = "M" // mosaic tile index
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "Uncompressed"
	case CompressionJPEG:
		return "JPEG"
	case CompressionLZW:
		return "LZW"
	case CompressionJPEGXR:
		return "JPEG-XR"
	case CompressionZstd0:
		return "Zstd0"
	case CompressionZstd1:
		return "Zstd1"
	default:
		return "Unknown"
	}
}

func (p PixelType) String() string {
	switch p {
	case PixelGray8:
		return "Gray8"
	case PixelGray16:
		return "Gray16"
	case PixelGray32Float:
		return "Gray32Float"
	case PixelBgr24:
		return "Bgr24"
	case PixelBgr48:
		return "Bgr48"
	case PixelBgr96Float:
		return "Bgr96Float"
	case PixelBgra32:
		return "Bgra32"
	case PixelGray64ComplexFloat:
		return "Gray64ComplexFloat"
	case PixelBgr192ComplexFloat:
		return "Bgr192ComplexFloat"
	case PixelGray32:
		return "Gray32"
	case PixelGray64Float:
		return "Gray64Float"
	default:
		return "Unknown"
	}
}

// BytesPerPixel returns the storage size of one pixel, or 0 for pixel types
// this package does not know.
func (p PixelType) BytesPerPixel() int {
	switch p {
	case PixelGray8:
		return 1
	case PixelGray16:
		return 2
	case PixelBgr24:
		return 3
	case PixelGray32Float, PixelGray32, PixelBgra32:
		return 4
	case PixelBgr48:
		return 6
	case PixelGray64ComplexFloat, PixelGray64Float:
		return 8
	case PixelBgr96Float:
		return 12
	case PixelBgr192ComplexFloat:
		return 24
	default:
		return 0
	}
}

// IsSpatial reports whether the axis addresses pixels within a plane.
func (d Dimension) IsSpatial() bool {
	return d == DimX || d == DimY
}

// IsPlanar reports whether the axis selects a plane during region reads.
// Spatial axes position tiles within a plane and the mosaic index tiles the
// plane, so neither constrains plane matching; the deprecated block axis is
// ignored the same way. Every other axis is a plane selector.
func (d Dimension) IsPlanar() bool {
	switch d {
	case DimX, DimY, DimM, DimB:
		return false
	default:
		return true
	}
}
