package zisraw

import (
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/slidecraft/zisraw/errs"
	"github.com/slidecraft/zisraw/pyramid"
)

// ReadRegion decodes a rectangle of one level into a tightly packed
// row-major buffer of w*h pixels in the default plane's pixel type.
//
// Coordinates are level pixels with the level origin at (0,0). The request
// may extend past the level bounds or over gaps in the tile coverage; those
// pixels keep the zero fill value. Tiles composite in canonical order, so
// overlapping tiles resolve the same way on every read.
//
// Returns:
//   - []byte: The composited region
//   - error: ErrOutOfRange for a bad level index or a degenerate extent;
//     tile failures propagate unless the reader was opened WithFillOnError
func (r *Reader) ReadRegion(level int, x, y, w, h int64) ([]byte, error) {
	return r.ReadRegionPlane(level, x, y, w, h, nil)
}

// ReadRegionPlane is ReadRegion on an explicit plane: axes in plane
// override the level's default plane, which sits at the minimal start of
// every planar axis.
//
// The buffer's pixel type follows the plane. A level can mix types across
// its planes, say a Gray16 fluorescence channel beside Bgr24 brightfield;
// each plane reads in the type of its own first tile in canonical order,
// and tiles disagreeing with it inside one plane fail the read.
func (r *Reader) ReadRegionPlane(level int, x, y, w, h int64, plane Plane) ([]byte, error) {
	lvl, err := r.level(level)
	if err != nil {
		return nil, err
	}

	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: region extent %dx%d", errs.ErrOutOfRange, w, h)
	}

	eff := lvl.DefaultPlane()
	for axis, v := range plane {
		eff[axis] = v
	}

	// The plane's type follows plane membership, not the request rectangle,
	// so every read of one plane agrees on its buffer layout.
	px := lvl.PixelType
	var tiles []*pyramid.Tile
	matched := false
	for t := range lvl.Tiles() {
		if !t.MatchesPlane(eff) {
			continue
		}
		if !matched {
			px = t.Entry.PixelType
			matched = true
		}

		if _, ok := t.Desc.Intersect(x, y, w, h); ok {
			tiles = append(tiles, t)
		}
	}

	bpp := int64(px.BytesPerPixel())
	if bpp == 0 {
		return nil, fmt.Errorf("%w: level %d plane has unknown pixel type %d",
			errs.ErrInvalidStructure, level, int32(px))
	}
	if w > math.MaxInt64/h || w*h > math.MaxInt64/bpp {
		return nil, fmt.Errorf("%w: region extent %dx%d overflows", errs.ErrOutOfRange, w, h)
	}

	dst := make([]byte, w*h*bpp)

	bufs, tileErrs := r.loadTiles(tiles)

	for i, t := range tiles {
		err := tileErrs[i]
		if err == nil && t.Entry.PixelType != px {
			err = fmt.Errorf("%w: tile %s is %s in a %s plane",
				errs.ErrInvalidStructure, t.ID, t.Entry.PixelType, px)
		}

		if err != nil {
			if !r.fillOnErr {
				return nil, err
			}

			r.logger.Warn("leaving broken tile at fill value",
				zap.Stringer("tile", t.ID), zap.Int("level", level), zap.Error(err))

			continue
		}

		compositeTile(dst, x, y, w, h, bpp, t, bufs[i])
	}

	return dst, nil
}

// loadTiles decodes the candidate tiles, on the worker pool when one is
// configured. Results line up with the input; compositing stays strictly
// ordered regardless of decode order.
func (r *Reader) loadTiles(tiles []*pyramid.Tile) ([][]byte, []error) {
	bufs := make([][]byte, len(tiles))
	tileErrs := make([]error, len(tiles))

	if r.pool == nil || len(tiles) < 2 {
		for i, t := range tiles {
			bufs[i], tileErrs[i] = r.loadTile(t)
			if tileErrs[i] != nil && !r.fillOnErr {
				// The read is going to fail; skip the remaining tiles.
				break
			}
		}

		return bufs, tileErrs
	}

	var wg sync.WaitGroup
	for i, t := range tiles {
		wg.Add(1)

		if err := r.pool.Submit(func() {
			defer wg.Done()
			bufs[i], tileErrs[i] = r.loadTile(t)
		}); err != nil {
			tileErrs[i] = err
			wg.Done()
		}
	}
	wg.Wait()

	return bufs, tileErrs
}

// compositeTile copies the overlap between one decoded tile and the request
// rectangle into the destination buffer.
func compositeTile(dst []byte, rx, ry, rw, rh, bpp int64, t *pyramid.Tile, src []byte) {
	clip, ok := t.Desc.Intersect(rx, ry, rw, rh)
	if !ok {
		return
	}

	rowBytes := clip.Width * bpp
	srcStride := t.Desc.Width * bpp
	srcCol := (clip.X - t.Desc.X) * bpp

	for row := int64(0); row < clip.Height; row++ {
		srcOff := (clip.Y-t.Desc.Y+row)*srcStride + srcCol
		dstOff := ((clip.Y-ry+row)*rw + (clip.X - rx)) * bpp
		copy(dst[dstOff:dstOff+rowBytes], src[srcOff:srcOff+rowBytes])
	}
}
