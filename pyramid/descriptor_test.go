package pyramid

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slidecraft/zisraw/format"
	"github.com/slidecraft/zisraw/segment"
)

func TestDescribe(t *testing.T) {
	entry := func(x, y, w, h, subX, subY int32) *segment.Entry {
		return &segment.Entry{
			Width:      w,
			Height:     h,
			SubsampleX: subX,
			SubsampleY: subY,
			Dimensions: []segment.DimensionEntry{
				{Axis: format.DimX, Start: x, Size: w},
				{Axis: format.DimY, Start: y, Size: h},
			},
		}
	}

	t.Run("Base level passes through", func(t *testing.T) {
		d := Describe(entry(1024, 2048, 512, 256, 1, 1))

		require.Equal(t, Descriptor{X: 1024, Y: 2048, Width: 512, Height: 256}, d)
	})

	t.Run("Subsampling divides starts and extents", func(t *testing.T) {
		d := Describe(entry(1024, 2048, 512, 256, 4, 4))

		require.Equal(t, Descriptor{X: 256, Y: 512, Width: 128, Height: 64}, d)
	})

	t.Run("Anisotropic subsampling", func(t *testing.T) {
		d := Describe(entry(100, 100, 100, 100, 2, 5))

		require.Equal(t, Descriptor{X: 50, Y: 20, Width: 50, Height: 20}, d)
	})

	t.Run("Remainder drops", func(t *testing.T) {
		d := Describe(entry(1001, 999, 333, 335, 10, 10))

		require.Equal(t, Descriptor{X: 100, Y: 99, Width: 33, Height: 33}, d)
	})
}

func TestDescriptor_Intersect(t *testing.T) {
	d := Descriptor{X: 100, Y: 100, Width: 50, Height: 50}

	t.Run("Full containment", func(t *testing.T) {
		clip, ok := d.Intersect(0, 0, 1000, 1000)

		require.True(t, ok)
		require.Equal(t, d, clip)
	})

	t.Run("Partial overlap clips", func(t *testing.T) {
		clip, ok := d.Intersect(120, 130, 100, 100)

		require.True(t, ok)
		require.Equal(t, Descriptor{X: 120, Y: 130, Width: 30, Height: 20}, clip)
	})

	t.Run("Request inside the tile", func(t *testing.T) {
		clip, ok := d.Intersect(110, 110, 10, 10)

		require.True(t, ok)
		require.Equal(t, Descriptor{X: 110, Y: 110, Width: 10, Height: 10}, clip)
	})

	t.Run("Disjoint rectangles", func(t *testing.T) {
		_, ok := d.Intersect(200, 200, 50, 50)

		require.False(t, ok)
	})

	t.Run("Touching edges do not overlap", func(t *testing.T) {
		_, ok := d.Intersect(150, 100, 50, 50)

		require.False(t, ok)
	})
}
