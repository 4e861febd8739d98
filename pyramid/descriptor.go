package pyramid

import (
	"github.com/slidecraft/zisraw/format"
	"github.com/slidecraft/zisraw/segment"
)

// Descriptor places a tile on its pyramid level, in level pixels. After
// Build finishes, descriptors are normalized so the level origin is (0,0).
type Descriptor struct {
	X      int64
	Y      int64
	Width  int64
	Height int64
}

// Describe derives a tile's level geometry from its directory entry: starts
// and extents divide by the subsampling factors, integer division, remainder
// dropped. An extent that is not an exact multiple of the subsampling loses
// the fractional pixel; that is the format's behavior, not a rounding choice.
func Describe(e *segment.Entry) Descriptor {
	xd, _ := e.Dimension(format.DimX)
	yd, _ := e.Dimension(format.DimY)

	return Descriptor{
		X:      int64(xd.Start / e.SubsampleX),
		Y:      int64(yd.Start / e.SubsampleY),
		Width:  int64(e.Width / e.SubsampleX),
		Height: int64(e.Height / e.SubsampleY),
	}
}

// Intersect clips the descriptor rectangle against a request rectangle and
// reports whether anything overlaps.
func (d Descriptor) Intersect(x, y, w, h int64) (Descriptor, bool) {
	x0 := max(d.X, x)
	y0 := max(d.Y, y)
	x1 := min(d.X+d.Width, x+w)
	y1 := min(d.Y+d.Height, y+h)

	if x0 >= x1 || y0 >= y1 {
		return Descriptor{}, false
	}

	return Descriptor{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, true
}
