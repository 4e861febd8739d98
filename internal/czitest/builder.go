// Package czitest builds synthetic containers in memory for tests. It is
// the only writer in the module and deliberately stays internal: the public
// API reads containers, it does not produce them.
package czitest

import (
	"bytes"
	"encoding/binary"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/slidecraft/zisraw/format"
)

// FileGUID is the identity every built container carries.
var FileGUID = uuid.MustParse("9f3a52b1-62de-4e7a-9c11-08a1d2f4c877")

// Dim is one extra dimension entry beyond the X and Y the builder derives
// from the tile geometry.
type Dim struct {
	Axis  format.Dimension
	Start int32
	Size  int32
}

// TileSpec describes one tile to write.
type TileSpec struct {
	PixelType   format.PixelType
	Compression format.CompressionType
	FilePart    int32

	// X, Y, Width, Height are the tile placement in level-0 coordinates.
	X      int32
	Y      int32
	Width  int32
	Height int32

	// SubX, SubY default to 1. The stored buffer holds Width/SubX by
	// Height/SubY pixels.
	SubX int32
	SubY int32

	// Dims are appended after the derived X and Y entries.
	Dims []Dim
	// ReverseDims emits the dimension list back to front, for identity
	// canonicalization tests.
	ReverseDims bool

	// Pixels is the stored pixel buffer. Nil means a deterministic gradient.
	Pixels []byte
	// Raw overrides the encoded payload entirely; the builder then writes
	// Raw without compressing Pixels.
	Raw []byte
	// Metadata is the per-tile XML.
	Metadata []byte

	// HiLo stores the Zstd1 payload with hi/lo byte packing.
	HiLo bool
	// EmbeddedWidthDelta skews the width in the sub-block's embedded entry
	// copy, desynchronizing it from the directory.
	EmbeddedWidthDelta int32
}

func (t *TileSpec) subX() int32 {
	if t.SubX < 1 {
		return 1
	}
	return t.SubX
}

func (t *TileSpec) subY() int32 {
	if t.SubY < 1 {
		return 1
	}
	return t.SubY
}

// StoredWidth returns the pixel width of the stored buffer.
func (t *TileSpec) StoredWidth() int32 { return t.Width / t.subX() }

// StoredHeight returns the pixel height of the stored buffer.
func (t *TileSpec) StoredHeight() int32 { return t.Height / t.subY() }

type attachment struct {
	name        string
	contentType string
	data        []byte
}

// Builder assembles a container byte stream.
type Builder struct {
	tiles       []TileSpec
	metadata    []byte
	attachments []attachment
	pad         int64
}

// File is a built container plus the offsets tests need for surgical
// corruption.
type File struct {
	Bytes        []byte
	DirectoryPos int64
	MetadataPos  int64
	AttachDirPos int64
	// TilePos holds each tile's segment offset, in AddTile order.
	TilePos []int64
}

// Reader wraps the built bytes in a positional reader.
func (f *File) Reader() *bytes.Reader { return bytes.NewReader(f.Bytes) }

// Size returns the container length.
func (f *File) Size() int64 { return int64(len(f.Bytes)) }

func New() *Builder { return &Builder{} }

// Pad makes every sub-block segment allocate n bytes beyond its used size,
// filled with junk. Walks that skip by used size land mid-garbage.
func (b *Builder) Pad(n int64) *Builder {
	b.pad = n
	return b
}

// Metadata sets the document XML.
func (b *Builder) Metadata(xml []byte) *Builder {
	b.metadata = xml
	return b
}

// Attachment adds a named attachment.
func (b *Builder) Attachment(name, contentType string, data []byte) *Builder {
	b.attachments = append(b.attachments, attachment{name: name, contentType: contentType, data: data})
	return b
}

// AddTile adds a tile. Unset subsampling defaults to 1; nil Pixels become a
// gradient fill derived from the tile position.
func (b *Builder) AddTile(t TileSpec) *Builder {
	b.tiles = append(b.tiles, t)
	return b
}

// Build assembles the container: file header first, sub-blocks, metadata,
// attachments, and the directory last, with every announced position filled
// in.
func (b *Builder) Build() *File {
	f := &File{}
	var buf bytes.Buffer

	// Reserve the file header; its payload is rewritten once every position
	// is known.
	writeSegmentHeader(&buf, tagFile, 512, fileHeaderUsed)
	buf.Write(make([]byte, 512))

	for i := range b.tiles {
		t := &b.tiles[i]
		f.TilePos = append(f.TilePos, int64(buf.Len()))
		payload := b.subBlockPayload(t)
		writeSegmentHeader(&buf, tagSubBlock, int64(len(payload))+b.pad, int64(len(payload)))
		buf.Write(payload)
		writeJunk(&buf, b.pad)
	}

	if b.metadata != nil {
		f.MetadataPos = int64(buf.Len())
		payload := make([]byte, 4+len(b.metadata))
		binary.LittleEndian.PutUint32(payload[0:4], uint32(len(b.metadata)))
		copy(payload[4:], b.metadata)
		writeSegmentHeader(&buf, tagMetadata, int64(len(payload)), int64(len(payload)))
		buf.Write(payload)
	}

	attachPos := make([]int64, len(b.attachments))
	for i, a := range b.attachments {
		attachPos[i] = int64(buf.Len())
		writeSegmentHeader(&buf, tagAttachment, int64(len(a.data)), int64(len(a.data)))
		buf.Write(a.data)
	}
	if len(b.attachments) > 0 {
		f.AttachDirPos = int64(buf.Len())
		payload := b.attachDirPayload(attachPos)
		writeSegmentHeader(&buf, tagAttachDir, int64(len(payload)), int64(len(payload)))
		buf.Write(payload)
	}

	f.DirectoryPos = int64(buf.Len())
	payload := b.directoryPayload(f.TilePos)
	writeSegmentHeader(&buf, tagDirectory, int64(len(payload)), int64(len(payload)))
	buf.Write(payload)

	f.Bytes = buf.Bytes()
	b.patchFileHeader(f)

	return f
}

func (b *Builder) patchFileHeader(f *File) {
	p := f.Bytes[32 : 32+fileHeaderUsed]
	binary.LittleEndian.PutUint32(p[0:4], 1) // major
	binary.LittleEndian.PutUint32(p[4:8], 0) // minor
	copy(p[16:32], FileGUID[:])
	copy(p[32:48], FileGUID[:])
	binary.LittleEndian.PutUint64(p[52:60], uint64(f.DirectoryPos))
	binary.LittleEndian.PutUint64(p[60:68], uint64(f.MetadataPos))
	binary.LittleEndian.PutUint64(p[72:80], uint64(f.AttachDirPos))
}

func (b *Builder) subBlockPayload(t *TileSpec) []byte {
	data := t.Raw
	if data == nil {
		data = encodePixels(t)
	}

	entry := encodeEntry(t, 0, t.EmbeddedWidthDelta)

	var p bytes.Buffer
	var fixed [16]byte
	binary.LittleEndian.PutUint32(fixed[0:4], uint32(len(t.Metadata)))
	binary.LittleEndian.PutUint32(fixed[4:8], 0)
	binary.LittleEndian.PutUint64(fixed[8:16], uint64(len(data)))
	p.Write(fixed[:])
	p.Write(entry)
	p.Write(t.Metadata)
	p.Write(data)

	return p.Bytes()
}

func (b *Builder) directoryPayload(tilePos []int64) []byte {
	var p bytes.Buffer

	var fixed [128]byte
	binary.LittleEndian.PutUint32(fixed[0:4], uint32(len(b.tiles)))
	p.Write(fixed[:])

	for i := range b.tiles {
		p.Write(encodeEntry(&b.tiles[i], tilePos[i], 0))
	}

	return p.Bytes()
}

// encodeEntry packs one directory entry. pos overrides the tile position
// when non-zero; widthDelta skews the width field.
func encodeEntry(t *TileSpec, pos int64, widthDelta int32) []byte {
	data := t.Raw
	if data == nil {
		data = encodePixels(t)
	}

	dims := []Dim{
		{Axis: format.DimX, Start: t.X, Size: t.Width},
		{Axis: format.DimY, Start: t.Y, Size: t.Height},
	}
	dims = append(dims, t.Dims...)
	if t.ReverseDims {
		for i, j := 0, len(dims)-1; i < j; i, j = i+1, j-1 {
			dims[i], dims[j] = dims[j], dims[i]
		}
	}

	buf := make([]byte, 50+12*len(dims))
	copy(buf[0:2], "DV")
	binary.LittleEndian.PutUint32(buf[2:6], uint32(t.PixelType))
	binary.LittleEndian.PutUint32(buf[6:10], uint32(t.Compression))
	binary.LittleEndian.PutUint64(buf[10:18], uint64(pos))
	binary.LittleEndian.PutUint32(buf[18:22], uint32(t.FilePart))
	binary.LittleEndian.PutUint64(buf[22:30], uint64(len(data)))
	binary.LittleEndian.PutUint32(buf[30:34], uint32(t.Width+widthDelta))
	binary.LittleEndian.PutUint32(buf[34:38], uint32(t.Height))
	binary.LittleEndian.PutUint32(buf[38:42], uint32(t.subX()))
	binary.LittleEndian.PutUint32(buf[42:46], uint32(t.subY()))
	binary.LittleEndian.PutUint32(buf[46:50], uint32(len(dims)))

	for i, d := range dims {
		off := 50 + 12*i
		copy(buf[off:off+4], d.Axis)
		binary.LittleEndian.PutUint32(buf[off+4:off+8], uint32(d.Start))
		binary.LittleEndian.PutUint32(buf[off+8:off+12], uint32(d.Size))
	}

	return buf
}

func (b *Builder) attachDirPayload(attachPos []int64) []byte {
	var p bytes.Buffer

	var fixed [16]byte
	binary.LittleEndian.PutUint32(fixed[0:4], uint32(len(b.attachments)))
	p.Write(fixed[:])

	for i, a := range b.attachments {
		var e [128]byte
		copy(e[0:2], "A1")
		binary.LittleEndian.PutUint64(e[12:20], uint64(attachPos[i]))
		copy(e[24:40], FileGUID[:])
		copy(e[40:48], a.contentType)
		copy(e[48:128], a.name)
		p.Write(e[:])
	}

	return p.Bytes()
}

// encodePixels resolves the stored pixels (gradient when unset) and encodes
// them per the tile's compression.
func encodePixels(t *TileSpec) []byte {
	px := t.Pixels
	if px == nil {
		px = Gradient(int(t.StoredWidth()), int(t.StoredHeight()), t.PixelType, byte(t.X+t.Y))
	}

	switch t.Compression {
	case format.CompressionNone:
		return px
	case format.CompressionZstd0:
		return zstdEncode(px)
	case format.CompressionZstd1:
		if t.HiLo {
			return append([]byte{3, 1, 1}, zstdEncode(packHiLo(px))...)
		}
		return append([]byte{1}, zstdEncode(px)...)
	default:
		// Schemes without a builder-side encoder supply Raw payloads.
		return px
	}
}

// Gradient fills a stored buffer with a deterministic pattern, so copy and
// clip mistakes show up as byte diffs.
func Gradient(w, h int, p format.PixelType, seed byte) []byte {
	buf := make([]byte, w*h*p.BytesPerPixel())
	for i := range buf {
		buf[i] = seed + byte(i*7) + byte(i>>9)
	}

	return buf
}

func zstdEncode(data []byte) []byte {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		panic(err)
	}
	defer enc.Close()

	return enc.EncodeAll(data, nil)
}

// packHiLo splits 16-bit samples into a low-byte half followed by a
// high-byte half, the layout the headered zstd flavor may declare.
func packHiLo(data []byte) []byte {
	half := len(data) / 2
	out := make([]byte, len(data))
	for i := 0; i < half; i++ {
		out[i] = data[2*i]
		out[half+i] = data[2*i+1]
	}

	return out
}

const (
	tagFile       = "ZISRAWFILE"
	tagDirectory  = "ZISRAWDIRECTORY"
	tagSubBlock   = "ZISRAWSUBBLOCK"
	tagMetadata   = "ZISRAWMETADATA"
	tagAttachment = "ZISRAWATTACH"
	tagAttachDir  = "ZISRAWATTDIR"

	fileHeaderUsed = 80
)

func writeSegmentHeader(buf *bytes.Buffer, tag string, alloc, used int64) {
	var h [32]byte
	copy(h[0:16], tag)
	binary.LittleEndian.PutUint64(h[16:24], uint64(alloc))
	binary.LittleEndian.PutUint64(h[24:32], uint64(used))
	buf.Write(h[:])
}

func writeJunk(buf *bytes.Buffer, n int64) {
	junk := make([]byte, n)
	for i := range junk {
		junk[i] = 0xA5
	}
	buf.Write(junk)
}
