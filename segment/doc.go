// Package segment defines the low-level binary structures of the ZISRAW
// container and the positional primitives for walking them.
//
// A container is a flat sequence of segments. Every segment starts with the
// same 32-byte header; the payload layout depends on the segment tag. All
// integers are little-endian.
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Segment header (32 bytes, fixed)                        │
//	│  - Id (16 bytes): ASCII tag, NUL padded                 │
//	│  - AllocatedSize (8 bytes): payload bytes on disk       │
//	│  - UsedSize (8 bytes): payload bytes that carry meaning │
//	├─────────────────────────────────────────────────────────┤
//	│ Payload (AllocatedSize bytes)                           │
//	│  - first UsedSize bytes meaningful, rest is padding     │
//	└─────────────────────────────────────────────────────────┘
//
// Writers pad allocations for in-place updates, so UsedSize <= AllocatedSize
// always holds and skipping to the next segment must use AllocatedSize. A
// UsedSize of zero means the whole allocation is in use.
//
// The segment kinds:
//
//  1. ZISRAWFILE: file header, must start at offset 0. Carries the container
//     version and the absolute positions of the directory, metadata, and
//     attachment directory segments.
//  2. ZISRAWDIRECTORY: packed directory entries, one per stored tile. The
//     entry records everything needed to place and load a tile without
//     touching its payload.
//  3. ZISRAWSUBBLOCK: one tile. A small fixed header, a copy of the
//     directory entry, then per-tile XML, the compressed pixel payload, and
//     an optional attachment.
//  4. ZISRAWMETADATA: the document XML, length-prefixed.
//  5. ZISRAWATTDIR / ZISRAWATTACH: named binary attachments and their
//     directory.
//  6. DELETED: a dead allocation left behind by an in-place update.
//
// Everything here parses from positional reads over an io.ReaderAt; nothing
// keeps a shared seek offset, so parsed structures and cursors are safe to
// use from concurrent goroutines.
package segment
