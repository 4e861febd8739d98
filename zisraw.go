// Package zisraw reads ZISRAW (CZI) whole-slide microscopy images.
//
// A ZISRAW container is a flat stream of self-describing segments: a file
// header, a directory of image tiles, sub-block segments holding the tiles
// themselves, an XML metadata document, and optional named attachments. The
// format stores no explicit resolution pyramid; every tile instead carries
// its own integer subsampling pair, and this package reconstructs the
// pyramid by grouping tiles on that pair and deriving level geometry from
// the union of tile extents.
//
// # Core Features
//
//   - Hash-based tile identification (64-bit xxHash64) for O(1) lookups
//   - Two-phase decoding: a cheap directory scan at open, tile payloads read
//     and decompressed only on access
//   - Per-tile codec dispatch (uncompressed, JPEG, LZW, two zstd flavors)
//   - Region reads that composite arbitrarily placed, partially covering,
//     overlapping tiles with deterministic results
//   - Positional reads throughout: a Reader is safe for unbounded
//     concurrent use
//
// # Basic Usage
//
//	r, err := zisraw.Open("scan.czi")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	w, h, _ := r.LevelDimensions(0)
//	fmt.Printf("base level: %dx%d over %d levels\n", w, h, r.LevelCount())
//
//	// Decode a 512x512 patch from the top-left of level 2.
//	buf, err := r.ReadRegion(2, 0, 0, 512, 512)
//	if err != nil {
//	    return err
//	}
//
// # Package Structure
//
// This package is the driver facade. The segment package parses the
// container structures, pyramid reconstructs levels, codec decompresses
// tile payloads, and slide defines the vendor-neutral interface the Reader
// satisfies. Most callers never need anything below the facade.
package zisraw

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/slidecraft/zisraw/errs"
	"github.com/slidecraft/zisraw/format"
	"github.com/slidecraft/zisraw/internal/options"
	"github.com/slidecraft/zisraw/pyramid"
	"github.com/slidecraft/zisraw/segment"
)

// DefaultMaxSegmentSize caps the directory, metadata, and attachment
// directory payloads accepted at open time. A corrupt entry count cannot
// make Open allocate more than this.
const DefaultMaxSegmentSize int64 = 1 << 30

// Reader decodes one container. All file access is positional, so a Reader
// is safe for concurrent use; Close is the only mutating operation.
type Reader struct {
	r    io.ReaderAt
	size int64
	// file is the handle Open created, nil when the caller supplied the
	// ReaderAt.
	file *os.File

	hdr         segment.FileHeader
	pyr         *pyramid.Pyramid
	meta        []byte
	attachments []segment.AttachmentEntry

	logger     *zap.Logger
	maxSegment int64
	fillOnErr  bool
	workers    int
	cacheSize  int

	cache *lru.Cache[cacheKey, []byte]
	pool  *ants.Pool

	closed atomic.Bool
}

// LevelInfo summarizes one pyramid level.
type LevelInfo struct {
	// Width and Height are the level extent in level pixels.
	Width  int64
	Height int64
	// SubsampleX and SubsampleY relate level pixels to level-0 pixels.
	SubsampleX int32
	SubsampleY int32
	// PixelType is the level's nominal type; planes inside the level can
	// differ, and region reads follow the plane.
	PixelType format.PixelType
	TileCount int
}

// Open opens a container file.
//
// Parameters:
//   - path: File path
//   - opts: Reader configuration, see the With functions
//
// Returns:
//   - *Reader: Open reader; the caller must Close it
//   - error: ErrInvalidStructure or ErrTruncated for a malformed container,
//     ErrMissingBaseLevel or ErrDuplicateTile for an unreconstructable
//     pyramid, otherwise the underlying file error
func Open(path string, opts ...Option) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	r, err := NewReader(f, st.Size(), opts...)
	if err != nil {
		f.Close()
		return nil, err
	}

	r.file = f

	return r, nil
}

// NewReader opens a container over an arbitrary positional reader, for
// callers that keep containers somewhere other than the filesystem. The
// reader must serve concurrent ReadAt calls. Close does not close ra.
func NewReader(ra io.ReaderAt, size int64, opts ...Option) (*Reader, error) {
	r := &Reader{
		r:          ra,
		size:       size,
		logger:     zap.NewNop(),
		maxSegment: DefaultMaxSegmentSize,
		workers:    1,
	}

	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	if err := r.open(); err != nil {
		return nil, err
	}

	return r, nil
}

// open runs the two-phase scan: walk the segment stream, parse the
// announced directory, metadata, and attachment directory, then reconstruct
// the pyramid. Tile payloads are not touched.
func (r *Reader) open() error {
	cur := segment.NewCursor(r.r, r.size)

	first, err := cur.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty file", errs.ErrTruncated)
		}

		return err
	}
	if first.Header.ID != segment.TagFile {
		return fmt.Errorf("%w: file starts with segment %q, want %q",
			errs.ErrInvalidStructure, first.Header.ID, segment.TagFile)
	}

	payload, err := first.Payload(r.maxSegment)
	if err != nil {
		return err
	}

	hdr, err := segment.ParseFileHeader(payload, r.size)
	if err != nil {
		return err
	}
	if hdr.UpdatePending {
		return fmt.Errorf("%w: writer died mid-update, no consistent snapshot", errs.ErrInvalidStructure)
	}
	if hdr.DirectoryPosition == 0 {
		return fmt.Errorf("%w: container announces no tile directory", errs.ErrInvalidStructure)
	}
	r.hdr = hdr

	var (
		entries                    []segment.Entry
		haveDir, haveMeta, haveAtt bool
	)

	for {
		seg, err := cur.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		switch {
		case seg.Pos == hdr.DirectoryPosition:
			if entries, err = r.parseDirectorySegment(seg); err != nil {
				return err
			}
			haveDir = true
		case seg.Pos == hdr.MetadataPosition:
			if err = r.parseMetadataSegment(seg); err != nil {
				return err
			}
			haveMeta = true
		case seg.Pos == hdr.AttachmentDirectoryPosition:
			if err = r.parseAttachmentDirectorySegment(seg); err != nil {
				return err
			}
			haveAtt = true
		default:
			if err = r.skipSegment(seg); err != nil {
				return err
			}
		}
	}

	if !haveDir {
		return fmt.Errorf("%w: announced directory position %d is not a segment boundary",
			errs.ErrInvalidStructure, hdr.DirectoryPosition)
	}
	if hdr.MetadataPosition != 0 && !haveMeta {
		return fmt.Errorf("%w: announced metadata position %d is not a segment boundary",
			errs.ErrInvalidStructure, hdr.MetadataPosition)
	}
	if hdr.AttachmentDirectoryPosition != 0 && !haveAtt {
		return fmt.Errorf("%w: announced attachment directory position %d is not a segment boundary",
			errs.ErrInvalidStructure, hdr.AttachmentDirectoryPosition)
	}

	pyr, err := pyramid.Build(entries)
	if err != nil {
		return err
	}
	r.pyr = pyr

	if r.cacheSize > 0 {
		// Constructor only fails for a non-positive size, which the option
		// already rejected.
		r.cache, _ = lru.New[cacheKey, []byte](r.cacheSize)
	}
	if r.workers > 1 {
		pool, err := ants.NewPool(r.workers)
		if err != nil {
			return fmt.Errorf("create decode pool: %w", err)
		}
		r.pool = pool
	}

	r.logger.Debug("container opened",
		zap.Int("levels", len(pyr.Levels)),
		zap.Int("tiles", len(entries)),
		zap.Int("sources", len(pyr.Parts)),
		zap.Stringer("guid", r.hdr.FileGUID))

	return nil
}

func (r *Reader) parseDirectorySegment(seg *segment.Segment) ([]segment.Entry, error) {
	if seg.Header.ID != segment.TagDirectory {
		return nil, fmt.Errorf("%w: directory position %d holds a %q segment",
			errs.ErrInvalidStructure, seg.Pos, seg.Header.ID)
	}

	payload, err := seg.Payload(r.maxSegment)
	if err != nil {
		return nil, err
	}

	return segment.ParseDirectory(payload, r.size)
}

func (r *Reader) parseMetadataSegment(seg *segment.Segment) error {
	if seg.Header.ID != segment.TagMetadata {
		return fmt.Errorf("%w: metadata position %d holds a %q segment",
			errs.ErrInvalidStructure, seg.Pos, seg.Header.ID)
	}

	payload, err := seg.Payload(r.maxSegment)
	if err != nil {
		return err
	}

	r.meta, err = segment.ParseMetadata(payload)

	return err
}

func (r *Reader) parseAttachmentDirectorySegment(seg *segment.Segment) error {
	if seg.Header.ID != segment.TagAttachDir {
		return fmt.Errorf("%w: attachment directory position %d holds a %q segment",
			errs.ErrInvalidStructure, seg.Pos, seg.Header.ID)
	}

	payload, err := seg.Payload(r.maxSegment)
	if err != nil {
		return err
	}

	entries, err := segment.ParseAttachmentDirectory(payload, r.size)
	if err != nil {
		return err
	}

	r.attachments = entries

	return nil
}

// skipSegment handles everything the walk does not route to a parser.
// Sub-blocks and attachments load lazily; a stray directory or metadata
// segment is a stale copy from an in-place update; a second file header
// means two containers were concatenated.
func (r *Reader) skipSegment(seg *segment.Segment) error {
	switch seg.Header.ID {
	case segment.TagSubBlock, segment.TagAttachment:
		return nil
	case segment.TagFile:
		return fmt.Errorf("%w: second file header at offset %d", errs.ErrInvalidStructure, seg.Pos)
	case segment.TagDeleted:
		r.logger.Debug("skipping deleted segment", zap.Int64("offset", seg.Pos))
		return nil
	case segment.TagDirectory, segment.TagMetadata, segment.TagAttachDir:
		r.logger.Debug("skipping unannounced segment",
			zap.String("tag", seg.Header.ID), zap.Int64("offset", seg.Pos))
		return nil
	default:
		r.logger.Debug("skipping unknown segment",
			zap.String("tag", seg.Header.ID), zap.Int64("offset", seg.Pos))
		return nil
	}
}

// LevelCount returns the number of reconstructed pyramid levels.
func (r *Reader) LevelCount() int {
	return len(r.pyr.Levels)
}

// LevelDimensions returns the pixel extent of one level.
func (r *Reader) LevelDimensions(level int) (w, h int64, err error) {
	lvl, err := r.level(level)
	if err != nil {
		return 0, 0, err
	}

	return lvl.Width, lvl.Height, nil
}

// LevelDownsample returns the subsampling factors of one level relative to
// the base level.
func (r *Reader) LevelDownsample(level int) (sx, sy int32, err error) {
	lvl, err := r.level(level)
	if err != nil {
		return 0, 0, err
	}

	return lvl.SubsampleX, lvl.SubsampleY, nil
}

// Levels returns a summary of every level, finest first.
func (r *Reader) Levels() []LevelInfo {
	infos := make([]LevelInfo, len(r.pyr.Levels))
	for i, lvl := range r.pyr.Levels {
		infos[i] = LevelInfo{
			Width:      lvl.Width,
			Height:     lvl.Height,
			SubsampleX: lvl.SubsampleX,
			SubsampleY: lvl.SubsampleY,
			PixelType:  lvl.PixelType,
			TileCount:  lvl.TileCount(),
		}
	}

	return infos
}

// Metadata returns the document XML verbatim, nil when the container
// carries none. The buffer is shared; callers must not modify it.
func (r *Reader) Metadata() []byte {
	return r.meta
}

// GUID returns the container's identity.
func (r *Reader) GUID() uuid.UUID {
	return r.hdr.FileGUID
}

// Sources returns the number of acquisition sources feeding the pyramid.
func (r *Reader) Sources() int {
	return len(r.pyr.Parts)
}

// Close releases the reader. It is idempotent; every other operation on a
// closed reader fails with ErrClosed.
func (r *Reader) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}

	if r.pool != nil {
		r.pool.Release()
	}
	if r.cache != nil {
		r.cache.Purge()
	}
	if r.file != nil {
		return r.file.Close()
	}

	return nil
}

func (r *Reader) level(i int) (*pyramid.Level, error) {
	if r.closed.Load() {
		return nil, errs.ErrClosed
	}
	if i < 0 || i >= len(r.pyr.Levels) {
		return nil, fmt.Errorf("%w: level %d of %d", errs.ErrOutOfRange, i, len(r.pyr.Levels))
	}

	return r.pyr.Levels[i], nil
}
