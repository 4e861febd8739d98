package zisraw

import (
	"io"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slidecraft/zisraw/errs"
	"github.com/slidecraft/zisraw/format"
	"github.com/slidecraft/zisraw/internal/czitest"
)

func singleTileFile(spec czitest.TileSpec) *czitest.File {
	b := czitest.New()
	b.AddTile(spec)

	return b.Build()
}

func firstTile(t *testing.T, r *Reader, level int) *Tile {
	t.Helper()

	tiles, err := r.Tiles(level)
	require.NoError(t, err)

	for tile := range tiles {
		return tile
	}

	t.Fatal("level has no tiles")

	return nil
}

func TestReader_Tiles(t *testing.T) {
	r := buildReader(t, mosaicFile())

	tiles, err := r.Tiles(0)
	require.NoError(t, err)

	var placements [][2]int64
	for tile := range tiles {
		placements = append(placements, [2]int64{tile.Desc.X, tile.Desc.Y})
		require.Equal(t, format.PixelGray8, tile.Entry.PixelType)
	}

	// Canonical order: ascending Y, then X.
	require.Equal(t, [][2]int64{{0, 0}, {64, 0}, {0, 64}, {64, 64}}, placements)

	_, err = r.Tiles(5)
	require.ErrorIs(t, err, errs.ErrOutOfRange)
}

func TestReader_TileData(t *testing.T) {
	t.Run("Uncompressed", func(t *testing.T) {
		r := buildReader(t, singleTileFile(czitest.TileSpec{
			PixelType: format.PixelGray8,
			X:         0, Y: 0, Width: 64, Height: 64,
		}))
		tile := firstTile(t, r, 0)

		buf, err := r.TileData(tile.ID)

		require.NoError(t, err)
		require.Equal(t, czitest.Gradient(64, 64, format.PixelGray8, 0), buf)
	})

	t.Run("Zstd bare frame", func(t *testing.T) {
		r := buildReader(t, singleTileFile(czitest.TileSpec{
			PixelType:   format.PixelGray8,
			Compression: format.CompressionZstd0,
			X:           0, Y: 0, Width: 64, Height: 64,
		}))
		tile := firstTile(t, r, 0)

		buf, err := r.TileData(tile.ID)

		require.NoError(t, err)
		require.Equal(t, czitest.Gradient(64, 64, format.PixelGray8, 0), buf)
	})

	t.Run("Headered zstd with hi/lo packing", func(t *testing.T) {
		r := buildReader(t, singleTileFile(czitest.TileSpec{
			PixelType:   format.PixelGray16,
			Compression: format.CompressionZstd1,
			HiLo:        true,
			X:           0, Y: 0, Width: 32, Height: 32,
		}))
		tile := firstTile(t, r, 0)

		buf, err := r.TileData(tile.ID)

		require.NoError(t, err)
		require.Equal(t, czitest.Gradient(32, 32, format.PixelGray16, 0), buf)
	})

	t.Run("Subsampled tile decodes at stored extent", func(t *testing.T) {
		b := czitest.New()
		b.AddTile(czitest.TileSpec{PixelType: format.PixelGray8, X: 0, Y: 0, Width: 128, Height: 128})
		b.AddTile(czitest.TileSpec{
			PixelType: format.PixelGray8,
			X:         0, Y: 0, Width: 128, Height: 128,
			SubX: 4, SubY: 4,
		})
		r := buildReader(t, b.Build())
		tile := firstTile(t, r, 1)

		buf, err := r.TileDataAt(1, tile.ID)

		require.NoError(t, err)
		// A 128x128 tile at 4x subsampling stores 32x32 pixels.
		require.Len(t, buf, 32*32)
		require.Equal(t, czitest.Gradient(32, 32, format.PixelGray8, 0), buf)
	})

	t.Run("Unknown identity", func(t *testing.T) {
		r := buildReader(t, mosaicFile())

		_, err := r.TileData(TileID(0xdeadbeef))

		require.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("JPEG XR payload", func(t *testing.T) {
		r := buildReader(t, singleTileFile(czitest.TileSpec{
			PixelType:   format.PixelGray8,
			Compression: format.CompressionJPEGXR,
			Raw:         []byte("opaque jxr payload"),
			X:           0, Y: 0, Width: 64, Height: 64,
		}))
		tile := firstTile(t, r, 0)

		_, err := r.TileData(tile.ID)

		require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
	})

	t.Run("Decoded size disagrees with geometry", func(t *testing.T) {
		r := buildReader(t, singleTileFile(czitest.TileSpec{
			PixelType: format.PixelGray8,
			Raw:       []byte{1, 2, 3},
			X:         0, Y: 0, Width: 64, Height: 64,
		}))
		tile := firstTile(t, r, 0)

		_, err := r.TileData(tile.ID)

		require.ErrorIs(t, err, errs.ErrInvalidStructure)
	})

	t.Run("Embedded entry disagrees with directory", func(t *testing.T) {
		r := buildReader(t, singleTileFile(czitest.TileSpec{
			PixelType: format.PixelGray8,
			X:         0, Y: 0, Width: 64, Height: 64,
			EmbeddedWidthDelta: 8,
		}))
		tile := firstTile(t, r, 0)

		_, err := r.TileData(tile.ID)

		require.ErrorIs(t, err, errs.ErrInvalidStructure)
	})
}

func TestReader_TileLevelScope(t *testing.T) {
	// An overview stored as the base slot at coarser subsampling shares the
	// base tile's identity. The bare accessors resolve finest first; the At
	// variants pin the level.
	overXML := []byte(`<METADATA><Tile>overview</Tile></METADATA>`)

	b := czitest.New()
	b.AddTile(czitest.TileSpec{
		PixelType: format.PixelGray8,
		X:         0, Y: 0, Width: 128, Height: 128,
	})
	b.AddTile(czitest.TileSpec{
		PixelType: format.PixelGray8,
		Metadata:  overXML,
		X:         0, Y: 0, Width: 128, Height: 128,
		SubX: 2, SubY: 2,
	})
	r := buildReader(t, b.Build())

	over := firstTile(t, r, 1)
	require.Equal(t, firstTile(t, r, 0).ID, over.ID)

	t.Run("Bare identity resolves finest first", func(t *testing.T) {
		buf, err := r.TileData(over.ID)

		require.NoError(t, err)
		require.Len(t, buf, 128*128)
	})

	t.Run("Scoped data follows the level", func(t *testing.T) {
		buf, err := r.TileDataAt(1, over.ID)

		require.NoError(t, err)
		require.Equal(t, czitest.Gradient(64, 64, format.PixelGray8, 0), buf)
	})

	t.Run("Scoped raw and metadata follow the level", func(t *testing.T) {
		raw, err := r.TileRawAt(1, over.ID)
		require.NoError(t, err)
		require.Len(t, raw, 64*64)

		meta, err := r.TileMetadataAt(1, over.ID)
		require.NoError(t, err)
		require.Equal(t, overXML, meta)
	})

	t.Run("Bad level", func(t *testing.T) {
		_, err := r.TileDataAt(7, over.ID)

		require.ErrorIs(t, err, errs.ErrOutOfRange)
	})

	t.Run("Identity missing from the level", func(t *testing.T) {
		_, err := r.TileDataAt(0, TileID(0x1234))

		require.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestReader_TileIDDimensionOrder(t *testing.T) {
	// Identities canonicalize the dimension list, so two writers emitting
	// the same entries in different axis order agree on every ID.
	spec := czitest.TileSpec{
		PixelType: format.PixelGray8,
		X:         16, Y: 32, Width: 64, Height: 64,
		Dims: []czitest.Dim{
			{Axis: format.DimC, Start: 1, Size: 1},
			{Axis: format.DimZ, Start: 3, Size: 1},
		},
	}
	forward := firstTile(t, buildReader(t, singleTileFile(spec)), 0)

	spec.ReverseDims = true
	reversed := firstTile(t, buildReader(t, singleTileFile(spec)), 0)

	require.Equal(t, forward.ID, reversed.ID)
	require.Equal(t, forward.Desc, reversed.Desc)
}

func TestReader_TileRaw(t *testing.T) {
	pixels := czitest.Gradient(64, 64, format.PixelGray8, 7)
	r := buildReader(t, singleTileFile(czitest.TileSpec{
		PixelType: format.PixelGray8,
		Pixels:    pixels,
		X:         0, Y: 0, Width: 64, Height: 64,
	}))
	tile := firstTile(t, r, 0)

	raw, err := r.TileRaw(tile.ID)

	require.NoError(t, err)
	// Uncompressed tiles store the pixels verbatim.
	require.Equal(t, pixels, raw)
}

func TestReader_TileMetadata(t *testing.T) {
	xml := []byte(`<METADATA><Tags/></METADATA>`)
	r := buildReader(t, singleTileFile(czitest.TileSpec{
		PixelType: format.PixelGray8,
		Metadata:  xml,
		X:         0, Y: 0, Width: 64, Height: 64,
	}))
	tile := firstTile(t, r, 0)

	meta, err := r.TileMetadata(tile.ID)

	require.NoError(t, err)
	require.Equal(t, xml, meta)
}

func TestReader_PaddedAllocations(t *testing.T) {
	// Writers that round allocations up leave junk after every payload; the
	// walk and the tile loads must never look at it.
	b := czitest.New().Pad(37)
	b.AddTile(czitest.TileSpec{PixelType: format.PixelGray8, X: 0, Y: 0, Width: 64, Height: 64})
	r := buildReader(t, b.Build())
	tile := firstTile(t, r, 0)

	buf, err := r.TileData(tile.ID)

	require.NoError(t, err)
	require.Equal(t, czitest.Gradient(64, 64, format.PixelGray8, 0), buf)
}

type countingReaderAt struct {
	r     io.ReaderAt
	reads atomic.Int64
}

func (c *countingReaderAt) ReadAt(p []byte, off int64) (int, error) {
	c.reads.Add(1)
	return c.r.ReadAt(p, off)
}

func TestReader_TileCache(t *testing.T) {
	f := singleTileFile(czitest.TileSpec{
		PixelType: format.PixelGray8,
		X:         0, Y: 0, Width: 64, Height: 64,
	})

	t.Run("Cache hit skips the file", func(t *testing.T) {
		counting := &countingReaderAt{r: f.Reader()}
		r, err := NewReader(counting, f.Size(), WithTileCache(8))
		require.NoError(t, err)
		defer r.Close()

		tile := firstTile(t, r, 0)

		_, err = r.TileData(tile.ID)
		require.NoError(t, err)

		before := counting.reads.Load()

		_, err = r.TileData(tile.ID)
		require.NoError(t, err)

		require.Equal(t, before, counting.reads.Load())
	})

	t.Run("Returned buffers are isolated from the cache", func(t *testing.T) {
		r := buildReader(t, f, WithTileCache(8))
		tile := firstTile(t, r, 0)

		first, err := r.TileData(tile.ID)
		require.NoError(t, err)

		first[0] ^= 0xFF

		second, err := r.TileData(tile.ID)
		require.NoError(t, err)
		require.Equal(t, czitest.Gradient(64, 64, format.PixelGray8, 0), second)
	})
}
