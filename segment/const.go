package segment

// Segment tags. The tag occupies the first 16 bytes of every segment header,
// ASCII with NUL padding.
const (
	TagFile       = "ZISRAWFILE"      // file header, the container magic
	TagDirectory  = "ZISRAWDIRECTORY" // tile directory
	TagSubBlock   = "ZISRAWSUBBLOCK"  // one stored tile
	TagMetadata   = "ZISRAWMETADATA"  // document XML
	TagAttachment = "ZISRAWATTACH"    // attachment payload
	TagAttachDir  = "ZISRAWATTDIR"    // attachment directory
	TagDeleted    = "DELETED"         // dead allocation from an in-place update
)

// SupportedMajor is the container major version this package decodes.
const SupportedMajor = 1

const (
	// HeaderSize is the fixed size of every segment header.
	HeaderSize = 32

	// tagSize is the size of the ASCII tag field within the header.
	tagSize = 16

	// fileHeaderSize is the fixed portion of the ZISRAWFILE payload.
	fileHeaderSize = 80

	// directoryFixedSize is the directory payload prefix (entry count plus
	// reserved bytes) before the packed entries.
	directoryFixedSize = 128

	// entryFixedSize is the fixed portion of one directory entry, before its
	// dimension entries.
	entryFixedSize = 50

	// dimensionEntrySize is the size of one packed dimension entry.
	dimensionEntrySize = 12

	// subBlockFixedSize is the sub-block payload prefix before the embedded
	// directory entry.
	subBlockFixedSize = 16

	// attachDirFixedSize is the attachment directory payload prefix before
	// the packed entries.
	attachDirFixedSize = 16

	// attachmentEntrySize is the fixed size of one attachment directory
	// entry.
	attachmentEntrySize = 128
)

// Schema markers inside packed entries.
const (
	entrySchema      = "DV" // directory entry schema
	attachmentSchema = "A1" // attachment directory entry schema
)
