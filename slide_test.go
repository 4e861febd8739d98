package zisraw

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slidecraft/zisraw/slide"
)

func TestSlideIntegration(t *testing.T) {
	t.Run("Driver is registered", func(t *testing.T) {
		require.Contains(t, slide.Formats(), "zisraw")
	})

	t.Run("Sniff and open", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scan.czi")
		require.NoError(t, os.WriteFile(path, mosaicFile().Bytes, 0o644))

		s, err := slide.Open(path)
		require.NoError(t, err)
		defer s.Close()

		require.Equal(t, 2, s.LevelCount())

		w, h, err := s.LevelDimensions(0)
		require.NoError(t, err)
		require.Equal(t, int64(128), w)
		require.Equal(t, int64(128), h)

		buf, err := s.ReadRegion(0, 0, 0, 128, 128)
		require.NoError(t, err)
		require.Equal(t, expectedMosaic(), buf)
	})

	t.Run("Unknown format", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("just some text, long enough to sniff"), 0o644))

		_, err := slide.Open(path)

		require.ErrorIs(t, err, slide.ErrUnknownFormat)
	})
}
