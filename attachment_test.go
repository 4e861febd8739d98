package zisraw

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slidecraft/zisraw/errs"
	"github.com/slidecraft/zisraw/format"
	"github.com/slidecraft/zisraw/internal/czitest"
)

func TestReader_Attachments(t *testing.T) {
	thumb := []byte("jpeg bytes of a thumbnail")
	label := []byte("label image")

	b := czitest.New()
	b.AddTile(czitest.TileSpec{PixelType: format.PixelGray8, X: 0, Y: 0, Width: 64, Height: 64})
	b.Attachment("Thumbnail", "JPG", thumb)
	b.Attachment("Label", "CZI", label)
	r := buildReader(t, b.Build())

	t.Run("Listing", func(t *testing.T) {
		infos := r.Attachments()

		require.Len(t, infos, 2)
		require.Equal(t, "Thumbnail", infos[0].Name)
		require.Equal(t, "JPG", infos[0].ContentType)
		require.Equal(t, czitest.FileGUID, infos[0].ContentGUID)
		require.Equal(t, "Label", infos[1].Name)
	})

	t.Run("Payload round trip", func(t *testing.T) {
		got, err := r.AttachmentData("Thumbnail")
		require.NoError(t, err)
		require.Equal(t, thumb, got)

		got, err = r.AttachmentData("Label")
		require.NoError(t, err)
		require.Equal(t, label, got)
	})

	t.Run("Unknown name", func(t *testing.T) {
		_, err := r.AttachmentData("Barcode")

		require.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestReader_NoAttachments(t *testing.T) {
	b := czitest.New()
	b.AddTile(czitest.TileSpec{PixelType: format.PixelGray8, X: 0, Y: 0, Width: 64, Height: 64})
	r := buildReader(t, b.Build())

	require.Empty(t, r.Attachments())

	_, err := r.AttachmentData("Thumbnail")
	require.ErrorIs(t, err, errs.ErrNotFound)
}
