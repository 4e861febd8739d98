package segment

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slidecraft/zisraw/errs"
)

func TestParseMetadata(t *testing.T) {
	xml := []byte(`<ImageDocument><Metadata/></ImageDocument>`)

	encode := func(declared int32, body []byte) []byte {
		buf := make([]byte, 4+len(body))
		binary.LittleEndian.PutUint32(buf[0:4], uint32(declared))
		copy(buf[4:], body)

		return buf
	}

	t.Run("XML returned verbatim", func(t *testing.T) {
		got, err := ParseMetadata(encode(int32(len(xml)), xml))

		require.NoError(t, err)
		require.Equal(t, xml, got)
	})

	t.Run("Trailing padding ignored", func(t *testing.T) {
		payload := append(encode(int32(len(xml)), xml), 0, 0, 0, 0)

		got, err := ParseMetadata(payload)

		require.NoError(t, err)
		require.Equal(t, xml, got)
	})

	t.Run("Short payload", func(t *testing.T) {
		_, err := ParseMetadata([]byte{1, 2})

		require.ErrorIs(t, err, errs.ErrTruncated)
	})

	t.Run("Declared length past the payload", func(t *testing.T) {
		_, err := ParseMetadata(encode(int32(len(xml)+1), xml))

		require.ErrorIs(t, err, errs.ErrTruncated)
	})

	t.Run("Negative declared length", func(t *testing.T) {
		_, err := ParseMetadata(encode(-1, xml))

		require.ErrorIs(t, err, errs.ErrInvalidStructure)
	})
}
