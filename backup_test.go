package photoengine

import (
	"archive/tar"
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

func TestWriteBackupIncludesDataAndUploads(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateImage(GalleryImageInput{
		Category: "concerts",
		Title:    "Encore",
		Src:      writeUpload(t, s, "encore.jpg"),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.WriteBackup(&buf))

	gz, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	defer gz.Close()

	found := map[string]bool{}
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		found[hdr.Name] = true
	}

	require.True(t, found["data/gallery.json"], "archive should carry the gallery document")
	require.True(t, found["uploads/encore.jpg"], "archive should carry uploaded files")
}

func TestWriteBackupEmptyStore(t *testing.T) {
	s := newTestStore(t)

	var buf bytes.Buffer
	require.NoError(t, s.WriteBackup(&buf))

	gz, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	defer gz.Close()

	tr := tar.NewReader(gz)
	_, err = tr.Next()
	require.Equal(t, io.EOF, err)
}
