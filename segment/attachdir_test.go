package segment

import (
	"encoding/binary"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/slidecraft/zisraw/errs"
)

func encodeAttachmentDirectory(entries ...AttachmentEntry) []byte {
	buf := make([]byte, attachDirFixedSize+len(entries)*attachmentEntrySize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(entries)))

	for i, e := range entries {
		p := buf[attachDirFixedSize+i*attachmentEntrySize:]
		copy(p[0:2], attachmentSchema)
		binary.LittleEndian.PutUint64(p[12:20], uint64(e.FilePosition))
		copy(p[24:40], e.ContentGUID[:])
		copy(p[40:48], e.ContentType)
		copy(p[48:128], e.Name)
	}

	return buf
}

func TestParseAttachmentDirectory(t *testing.T) {
	const fileSize = 1 << 20

	guid := uuid.MustParse("0b174632-7c8e-4d1f-a2b3-c4d5e6f70819")

	t.Run("Two attachments", func(t *testing.T) {
		payload := encodeAttachmentDirectory(
			AttachmentEntry{FilePosition: 1024, ContentGUID: guid, ContentType: "JPG", Name: "Thumbnail"},
			AttachmentEntry{FilePosition: 2048, ContentType: "CZI", Name: "Label"},
		)

		entries, err := ParseAttachmentDirectory(payload, fileSize)

		require.NoError(t, err)
		require.Len(t, entries, 2)
		require.Equal(t, "Thumbnail", entries[0].Name)
		require.Equal(t, "JPG", entries[0].ContentType)
		require.Equal(t, guid, entries[0].ContentGUID)
		require.Equal(t, int64(1024), entries[0].FilePosition)
		require.Equal(t, "Label", entries[1].Name)
	})

	t.Run("Short payload", func(t *testing.T) {
		_, err := ParseAttachmentDirectory(make([]byte, attachDirFixedSize-1), fileSize)

		require.ErrorIs(t, err, errs.ErrTruncated)
	})

	t.Run("Count exceeds the payload", func(t *testing.T) {
		payload := encodeAttachmentDirectory(AttachmentEntry{FilePosition: 1024, Name: "A"})
		binary.LittleEndian.PutUint32(payload[0:4], 5)

		_, err := ParseAttachmentDirectory(payload, fileSize)

		require.ErrorIs(t, err, errs.ErrTruncated)
	})

	t.Run("Unknown entry schema", func(t *testing.T) {
		payload := encodeAttachmentDirectory(AttachmentEntry{FilePosition: 1024, Name: "A"})
		copy(payload[attachDirFixedSize:], "XX")

		_, err := ParseAttachmentDirectory(payload, fileSize)

		require.ErrorIs(t, err, errs.ErrInvalidStructure)
	})

	t.Run("Position outside the file", func(t *testing.T) {
		payload := encodeAttachmentDirectory(AttachmentEntry{FilePosition: fileSize, Name: "A"})

		_, err := ParseAttachmentDirectory(payload, fileSize)

		require.ErrorIs(t, err, errs.ErrInvalidStructure)
	})
}
