package zisraw

import (
	"bytes"
	"fmt"
	"iter"

	"github.com/slidecraft/zisraw/codec"
	"github.com/slidecraft/zisraw/errs"
	"github.com/slidecraft/zisraw/pyramid"
	"github.com/slidecraft/zisraw/segment"
)

// TileID is the stable 64-bit identity of one stored tile. It is derived
// from the tile's source and canonicalized dimension entries, so the same
// container always yields the same identities.
type TileID = pyramid.TileID

// Tile is one stored tile with its identity and level placement.
type Tile = pyramid.Tile

// Plane selects one plane of the acquisition space, e.g. a channel and a
// focal index. Axes left out fall back to the level's default plane.
type Plane = pyramid.Plane

// Tiles iterates one level's tiles in canonical order.
func (r *Reader) Tiles(level int) (iter.Seq[*Tile], error) {
	lvl, err := r.level(level)
	if err != nil {
		return nil, err
	}

	return lvl.Tiles(), nil
}

// TileData decodes one tile by identity and returns its raw pixels, row
// major, in the tile's declared pixel type. An identity stored at several
// subsamplings resolves to the finest level holding it; TileDataAt reaches
// the coarser copies.
//
// Returns ErrNotFound for an unknown identity, ErrUnsupportedCompression or
// ErrCodec when the payload cannot be decoded.
func (r *Reader) TileData(id TileID) ([]byte, error) {
	t, err := r.findTile(id)
	if err != nil {
		return nil, err
	}

	return r.tileData(t)
}

// TileDataAt is TileData scoped to one level, so a tile obtained from Tiles
// round-trips through its own level even when a coarser copy shares its
// identity. Returns ErrOutOfRange for a bad level index and ErrNotFound
// when the level does not hold the identity.
func (r *Reader) TileDataAt(level int, id TileID) ([]byte, error) {
	t, err := r.findTileAt(level, id)
	if err != nil {
		return nil, err
	}

	return r.tileData(t)
}

func (r *Reader) tileData(t *Tile) ([]byte, error) {
	buf, err := r.loadTile(t)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		// Cached buffers are shared with future reads.
		buf = bytes.Clone(buf)
	}

	return buf, nil
}

// TileRaw returns one tile's stored payload without decoding it.
func (r *Reader) TileRaw(id TileID) ([]byte, error) {
	t, err := r.findTile(id)
	if err != nil {
		return nil, err
	}

	sb, err := r.readSubBlock(t)
	if err != nil {
		return nil, err
	}

	return sb.Data, nil
}

// TileRawAt is TileRaw scoped to one level.
func (r *Reader) TileRawAt(level int, id TileID) ([]byte, error) {
	t, err := r.findTileAt(level, id)
	if err != nil {
		return nil, err
	}

	sb, err := r.readSubBlock(t)
	if err != nil {
		return nil, err
	}

	return sb.Data, nil
}

// TileMetadata returns one tile's embedded XML, which may be empty.
func (r *Reader) TileMetadata(id TileID) ([]byte, error) {
	t, err := r.findTile(id)
	if err != nil {
		return nil, err
	}

	sb, err := r.readSubBlock(t)
	if err != nil {
		return nil, err
	}

	return sb.Metadata, nil
}

// TileMetadataAt is TileMetadata scoped to one level.
func (r *Reader) TileMetadataAt(level int, id TileID) ([]byte, error) {
	t, err := r.findTileAt(level, id)
	if err != nil {
		return nil, err
	}

	sb, err := r.readSubBlock(t)
	if err != nil {
		return nil, err
	}

	return sb.Metadata, nil
}

// findTile resolves an identity across the whole pyramid. Levels order
// finest first, so a slot stored at several subsamplings yields its finest
// copy.
func (r *Reader) findTile(id TileID) (*Tile, error) {
	if r.closed.Load() {
		return nil, errs.ErrClosed
	}

	for _, lvl := range r.pyr.Levels {
		if t, ok := lvl.Tile(id); ok {
			return t, nil
		}
	}

	return nil, fmt.Errorf("%w: tile %s", errs.ErrNotFound, id)
}

func (r *Reader) findTileAt(level int, id TileID) (*Tile, error) {
	lvl, err := r.level(level)
	if err != nil {
		return nil, err
	}

	t, ok := lvl.Tile(id)
	if !ok {
		return nil, fmt.Errorf("%w: tile %s on level %d", errs.ErrNotFound, id, level)
	}

	return t, nil
}

// cacheKey identifies a decoded tile. The same TileID recurs across levels
// when a writer stores an overview as the base slot at coarser subsampling,
// so the identity alone cannot key the cache.
type cacheKey struct {
	id         TileID
	subX, subY int32
}

func keyOf(t *Tile) cacheKey {
	return cacheKey{id: t.ID, subX: t.Entry.SubsampleX, subY: t.Entry.SubsampleY}
}

// loadTile reads, decodes, and validates one tile. Buffers served from the
// cache are shared; callers that hand pixels out copy them first.
func (r *Reader) loadTile(t *Tile) ([]byte, error) {
	if r.cache != nil {
		if buf, ok := r.cache.Get(keyOf(t)); ok {
			return buf, nil
		}
	}

	sb, err := r.readSubBlock(t)
	if err != nil {
		return nil, err
	}

	dec, err := codec.ForCompression(t.Entry.Compression)
	if err != nil {
		return nil, fmt.Errorf("tile %s: %w", t.ID, err)
	}

	info := codec.BlockInfo{
		PixelType: t.Entry.PixelType,
		Width:     int(t.Desc.Width),
		Height:    int(t.Desc.Height),
	}

	buf, err := dec.Decode(sb.Data, info)
	if err != nil {
		return nil, fmt.Errorf("tile %s: %w", t.ID, err)
	}

	if len(buf) != info.Size() {
		return nil, fmt.Errorf("%w: tile %s decodes to %d bytes, its geometry needs %d",
			errs.ErrInvalidStructure, t.ID, len(buf), info.Size())
	}

	if r.cache != nil {
		r.cache.Add(keyOf(t), buf)
	}

	return buf, nil
}

// readSubBlock fetches a tile's sub-block segment and cross-checks the
// embedded directory entry against the directory's record.
func (r *Reader) readSubBlock(t *Tile) (segment.SubBlock, error) {
	seg, err := segment.ReadSegmentAt(r.r, r.size, t.Entry.FilePosition)
	if err != nil {
		return segment.SubBlock{}, fmt.Errorf("tile %s: %w", t.ID, err)
	}
	if seg.Header.ID != segment.TagSubBlock {
		return segment.SubBlock{}, fmt.Errorf("%w: tile %s position %d holds a %q segment",
			errs.ErrInvalidStructure, t.ID, t.Entry.FilePosition, seg.Header.ID)
	}

	payload, err := seg.Payload(0)
	if err != nil {
		return segment.SubBlock{}, fmt.Errorf("tile %s: %w", t.ID, err)
	}

	sb, err := segment.ParseSubBlock(payload, r.size)
	if err != nil {
		return segment.SubBlock{}, fmt.Errorf("tile %s: %w", t.ID, err)
	}

	if err := crossCheckEntry(&t.Entry, &sb.Entry); err != nil {
		return segment.SubBlock{}, fmt.Errorf("tile %s: %w", t.ID, err)
	}
	if int64(len(sb.Data)) != t.Entry.StoredSize {
		return segment.SubBlock{}, fmt.Errorf("%w: tile %s stores %d payload bytes, directory says %d",
			errs.ErrInvalidStructure, t.ID, len(sb.Data), t.Entry.StoredSize)
	}

	return sb, nil
}

// crossCheckEntry compares the two on-disk copies of a directory entry. A
// writer that died between rewriting the directory and the sub-blocks
// leaves them disagreeing, and silently trusting either copy decodes
// garbage.
func crossCheckEntry(dir, emb *segment.Entry) error {
	switch {
	case emb.PixelType != dir.PixelType:
		return fmt.Errorf("%w: sub-block pixel type %s disagrees with directory %s",
			errs.ErrInvalidStructure, emb.PixelType, dir.PixelType)
	case emb.Compression != dir.Compression:
		return fmt.Errorf("%w: sub-block compression %s disagrees with directory %s",
			errs.ErrInvalidStructure, emb.Compression, dir.Compression)
	case emb.StoredSize != dir.StoredSize:
		return fmt.Errorf("%w: sub-block stored size %d disagrees with directory %d",
			errs.ErrInvalidStructure, emb.StoredSize, dir.StoredSize)
	case emb.Width != dir.Width || emb.Height != dir.Height:
		return fmt.Errorf("%w: sub-block extent %dx%d disagrees with directory %dx%d",
			errs.ErrInvalidStructure, emb.Width, emb.Height, dir.Width, dir.Height)
	case emb.SubsampleX != dir.SubsampleX || emb.SubsampleY != dir.SubsampleY:
		return fmt.Errorf("%w: sub-block subsampling %dx%d disagrees with directory %dx%d",
			errs.ErrInvalidStructure, emb.SubsampleX, emb.SubsampleY, dir.SubsampleX, dir.SubsampleY)
	default:
		return nil
	}
}
