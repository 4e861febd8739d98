package pyramid

import (
	"cmp"
	"fmt"
	"iter"
	"slices"

	"github.com/slidecraft/zisraw/errs"
	"github.com/slidecraft/zisraw/format"
	"github.com/slidecraft/zisraw/internal/tileid"
	"github.com/slidecraft/zisraw/segment"
)

// TileID is the stable 64-bit identity of one stored tile.
type TileID uint64

func (id TileID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// Plane selects one plane of the acquisition space: a start coordinate per
// planar axis. Axes a tile does not carry never constrain matching.
type Plane map[format.Dimension]int32

// Tile is one member of a level: the directory entry, the derived identity,
// and the level-coordinate placement.
type Tile struct {
	ID     TileID
	Source int
	Entry  segment.Entry
	Desc   Descriptor
}

// MatchesPlane reports whether the tile lies on the given plane. A planar
// axis matches when the requested coordinate falls inside the tile's range
// on that axis; axes missing from either side match unconditionally.
func (t *Tile) MatchesPlane(p Plane) bool {
	for _, d := range t.Entry.Dimensions {
		if !d.Axis.IsPlanar() {
			continue
		}

		want, ok := p[d.Axis]
		if !ok {
			continue
		}

		size := d.Size
		if size < 1 {
			size = 1
		}
		if want < d.Start || want >= d.Start+size {
			return false
		}
	}

	return true
}

// Level is one reconstructed pyramid level.
type Level struct {
	// SubsampleX and SubsampleY identify the level; the base level is (1,1).
	SubsampleX int32
	SubsampleY int32
	// PixelType is the type of the level's first tile in directory order.
	// Planes can differ from it; region reads resolve the type per plane
	// and fall back to this value for a plane holding no tiles.
	PixelType format.PixelType
	// OriginX and OriginY locate the level's (0,0) in un-normalized level
	// coordinates.
	OriginX int64
	OriginY int64
	// Width and Height are the union extent of the member tiles.
	Width  int64
	Height int64

	tiles    map[TileID]*Tile
	order    []*Tile
	planeMin Plane
}

// TileCount returns the number of tiles on the level.
func (l *Level) TileCount() int { return len(l.tiles) }

// Tile looks a tile up by identity.
func (l *Level) Tile(id TileID) (*Tile, bool) {
	t, ok := l.tiles[id]
	return t, ok
}

// Tiles iterates the level's tiles in canonical order: ascending Y, then X,
// then identity. Compositing follows this order, which makes overlap
// resolution reproducible.
func (l *Level) Tiles() iter.Seq[*Tile] {
	return func(yield func(*Tile) bool) {
		for _, t := range l.order {
			if !yield(t) {
				return
			}
		}
	}
}

// DefaultPlane returns the level's default plane: every planar axis seen on
// the level at its minimal start coordinate.
func (l *Level) DefaultPlane() Plane {
	p := make(Plane, len(l.planeMin))
	for axis, start := range l.planeMin {
		p[axis] = start
	}

	return p
}

// Pyramid is the reconstructed level stack.
type Pyramid struct {
	// Levels in resolution order: Levels[0] is the base level.
	Levels []*Level
	// Parts are the distinct source part numbers, ascending. A tile's
	// Source is an index into this list.
	Parts []int32
}

// Build reconstructs the pyramid from parsed directory entries.
//
// Tiles group by their exact subsampling pair; groups order by subsampling
// product, tie-broken by the X then the Y factor. The (1,1) group must
// exist and becomes level 0.
//
// Returns:
//   - *Pyramid: Reconstructed levels
//   - error: ErrMissingBaseLevel when there are no entries or no (1,1)
//     group, ErrDuplicateTile when two entries in one level derive the same
//     identity, ErrInvalidStructure for degenerate tile geometry
func Build(entries []segment.Entry) (*Pyramid, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: directory has no tiles", errs.ErrMissingBaseLevel)
	}

	ordinals := sourceOrdinals(entries)

	levels := make(map[[2]int32]*Level)
	for i := range entries {
		e := &entries[i]

		desc := Describe(e)
		if desc.Width < 1 || desc.Height < 1 {
			return nil, fmt.Errorf("%w: tile at offset %d degenerates to %dx%d level pixels",
				errs.ErrInvalidStructure, e.FilePosition, desc.Width, desc.Height)
		}

		key := [2]int32{e.SubsampleX, e.SubsampleY}
		lvl, ok := levels[key]
		if !ok {
			lvl = &Level{
				SubsampleX: e.SubsampleX,
				SubsampleY: e.SubsampleY,
				PixelType:  e.PixelType,
				tiles:      make(map[TileID]*Tile),
				planeMin:   make(Plane),
			}
			levels[key] = lvl
		}

		t := &Tile{
			ID:     TileID(tileid.Sum(ordinals[e.FilePart], e.Dimensions)),
			Source: ordinals[e.FilePart],
			Entry:  *e,
			Desc:   desc,
		}

		if prev, dup := lvl.tiles[t.ID]; dup {
			return nil, fmt.Errorf("%w: tiles at offsets %d and %d share identity %s",
				errs.ErrDuplicateTile, prev.Entry.FilePosition, e.FilePosition, t.ID)
		}

		lvl.tiles[t.ID] = t
	}

	p := &Pyramid{
		Levels: make([]*Level, 0, len(levels)),
		Parts:  make([]int32, 0, len(ordinals)),
	}
	for _, lvl := range levels {
		lvl.finish()
		p.Levels = append(p.Levels, lvl)
	}

	slices.SortFunc(p.Levels, func(a, b *Level) int {
		pa := int64(a.SubsampleX) * int64(a.SubsampleY)
		pb := int64(b.SubsampleX) * int64(b.SubsampleY)
		if c := cmp.Compare(pa, pb); c != 0 {
			return c
		}
		if c := cmp.Compare(a.SubsampleX, b.SubsampleX); c != 0 {
			return c
		}

		return cmp.Compare(a.SubsampleY, b.SubsampleY)
	})

	base := p.Levels[0]
	if base.SubsampleX != 1 || base.SubsampleY != 1 {
		return nil, fmt.Errorf("%w: finest tiles are subsampled %dx%d",
			errs.ErrMissingBaseLevel, base.SubsampleX, base.SubsampleY)
	}

	for part := range ordinals {
		p.Parts = append(p.Parts, part)
	}
	slices.Sort(p.Parts)

	return p, nil
}

// finish freezes a level: derive origin and extent, normalize descriptors,
// record plane minimums, and fix the canonical tile order.
func (l *Level) finish() {
	first := true
	var maxX, maxY int64

	for _, t := range l.tiles {
		if first {
			l.OriginX, l.OriginY = t.Desc.X, t.Desc.Y
			maxX, maxY = t.Desc.X+t.Desc.Width, t.Desc.Y+t.Desc.Height
			first = false
		} else {
			l.OriginX = min(l.OriginX, t.Desc.X)
			l.OriginY = min(l.OriginY, t.Desc.Y)
			maxX = max(maxX, t.Desc.X+t.Desc.Width)
			maxY = max(maxY, t.Desc.Y+t.Desc.Height)
		}

		for _, d := range t.Entry.Dimensions {
			if !d.Axis.IsPlanar() {
				continue
			}
			if cur, ok := l.planeMin[d.Axis]; !ok || d.Start < cur {
				l.planeMin[d.Axis] = d.Start
			}
		}
	}

	l.Width = maxX - l.OriginX
	l.Height = maxY - l.OriginY

	l.order = make([]*Tile, 0, len(l.tiles))
	for _, t := range l.tiles {
		t.Desc.X -= l.OriginX
		t.Desc.Y -= l.OriginY
		l.order = append(l.order, t)
	}

	slices.SortFunc(l.order, func(a, b *Tile) int {
		if c := cmp.Compare(a.Desc.Y, b.Desc.Y); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Desc.X, b.Desc.X); c != 0 {
			return c
		}

		return cmp.Compare(a.ID, b.ID)
	})
}

// sourceOrdinals maps every part number in the directory to its ordinal in
// ascending part order.
func sourceOrdinals(entries []segment.Entry) map[int32]int {
	parts := make([]int32, 0, 1)
	seen := make(map[int32]struct{}, 1)

	for i := range entries {
		part := entries[i].FilePart
		if _, ok := seen[part]; !ok {
			seen[part] = struct{}{}
			parts = append(parts, part)
		}
	}

	slices.Sort(parts)

	ordinals := make(map[int32]int, len(parts))
	for i, part := range parts {
		ordinals[part] = i
	}

	return ordinals
}
