package segment

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slidecraft/zisraw/errs"
)

func encodeSubBlock(e testEntry, meta, data, attach []byte) []byte {
	buf := make([]byte, subBlockFixedSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(meta)))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(attach)))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(len(data)))

	buf = append(buf, e.encode()...)
	buf = append(buf, meta...)
	buf = append(buf, data...)
	buf = append(buf, attach...)

	return buf
}

func TestParseSubBlock(t *testing.T) {
	const fileSize = 1 << 20

	meta := []byte("<METADATA/>")
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	attach := []byte("extra")

	t.Run("All three ranges", func(t *testing.T) {
		sb, err := ParseSubBlock(encodeSubBlock(newTestEntry(), meta, data, attach), fileSize)

		require.NoError(t, err)
		require.Equal(t, meta, sb.Metadata)
		require.Equal(t, data, sb.Data)
		require.Equal(t, attach, sb.Attachment)
		require.Equal(t, int64(512), sb.Entry.FilePosition)
	})

	t.Run("Empty metadata and attachment", func(t *testing.T) {
		sb, err := ParseSubBlock(encodeSubBlock(newTestEntry(), nil, data, nil), fileSize)

		require.NoError(t, err)
		require.Empty(t, sb.Metadata)
		require.Equal(t, data, sb.Data)
		require.Empty(t, sb.Attachment)
	})

	t.Run("Short payload", func(t *testing.T) {
		_, err := ParseSubBlock(make([]byte, subBlockFixedSize-1), fileSize)

		require.ErrorIs(t, err, errs.ErrTruncated)
	})

	t.Run("Negative data size", func(t *testing.T) {
		payload := encodeSubBlock(newTestEntry(), nil, data, nil)
		binary.LittleEndian.PutUint64(payload[8:16], ^uint64(0))

		_, err := ParseSubBlock(payload, fileSize)

		require.ErrorIs(t, err, errs.ErrInvalidStructure)
	})

	t.Run("Giant data size", func(t *testing.T) {
		payload := encodeSubBlock(newTestEntry(), nil, data, nil)
		binary.LittleEndian.PutUint64(payload[8:16], 1<<62)

		_, err := ParseSubBlock(payload, fileSize)

		require.ErrorIs(t, err, errs.ErrTruncated)
	})

	t.Run("Ranges extend past the payload", func(t *testing.T) {
		payload := encodeSubBlock(newTestEntry(), meta, data, attach)

		_, err := ParseSubBlock(payload[:len(payload)-3], fileSize)

		require.ErrorIs(t, err, errs.ErrTruncated)
	})

	t.Run("Malformed embedded entry", func(t *testing.T) {
		e := newTestEntry()
		e.schema = "ZZ"

		_, err := ParseSubBlock(encodeSubBlock(e, nil, data, nil), fileSize)

		require.ErrorIs(t, err, errs.ErrInvalidStructure)
	})
}
