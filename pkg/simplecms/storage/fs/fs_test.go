package fs_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
	fsstorage "github.com/tendant/simple-cms/pkg/simplecms/storage/fs"
)

func TestNew_RequiresBaseDir(t *testing.T) {
	_, err := fsstorage.New(fsstorage.Config{})
	assert.Error(t, err)
}

func TestFSBackend(t *testing.T) {
	baseDir := t.TempDir()
	backend, err := fsstorage.New(fsstorage.Config{BaseDir: baseDir})
	require.NoError(t, err)

	ctx := context.Background()
	key := "home-logos/1700000000000-acme.png"

	t.Run("Upload", func(t *testing.T) {
		err := backend.Upload(ctx, strings.NewReader("png bytes"), simplecms.UploadParams{ObjectKey: key, MimeType: "image/png"})
		require.NoError(t, err)

		_, err = os.Stat(filepath.Join(baseDir, "home-logos", "1700000000000-acme.png"))
		assert.NoError(t, err)

		entries, err := os.ReadDir(filepath.Join(baseDir, "home-logos"))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temporary files must not be left behind")
	})

	t.Run("GetObjectMeta", func(t *testing.T) {
		meta, err := backend.GetObjectMeta(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, key, meta.Key)
		assert.Equal(t, int64(len("png bytes")), meta.Size)
		assert.Equal(t, "image/png", meta.ContentType)
	})

	t.Run("DetectsContentTypeWithoutExtension", func(t *testing.T) {
		require.NoError(t, backend.Upload(ctx, strings.NewReader("plain words here"), simplecms.UploadParams{ObjectKey: "notes"}))
		meta, err := backend.GetObjectMeta(ctx, "notes")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(meta.ContentType, "text/plain"))
	})

	t.Run("Download", func(t *testing.T) {
		rc, err := backend.Download(ctx, key)
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "png bytes", string(data))
	})

	t.Run("GetDownloadURL", func(t *testing.T) {
		_, err := backend.GetDownloadURL(ctx, key, "")
		assert.ErrorIs(t, err, simplecms.ErrUnsupportedOperation)
	})

	t.Run("RejectsEscapingKeys", func(t *testing.T) {
		err := backend.Upload(ctx, strings.NewReader("x"), simplecms.UploadParams{ObjectKey: "../outside.txt"})
		assert.Error(t, err)
		_, err = backend.Download(ctx, "../../etc/passwd")
		assert.Error(t, err)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, backend.Delete(ctx, key))

		_, err := backend.GetObjectMeta(ctx, key)
		assert.ErrorIs(t, err, simplecms.ErrObjectNotFound)
		_, err = backend.Download(ctx, key)
		assert.ErrorIs(t, err, simplecms.ErrObjectNotFound)
		assert.ErrorIs(t, backend.Delete(ctx, key), simplecms.ErrObjectNotFound)

		_, err = os.Stat(filepath.Join(baseDir, "home-logos"))
		assert.True(t, os.IsNotExist(err), "empty directories are cleaned up")
		_, err = os.Stat(baseDir)
		assert.NoError(t, err)
	})
}

func TestFSBackend_URLPrefix(t *testing.T) {
	backend, err := fsstorage.New(fsstorage.Config{BaseDir: t.TempDir(), URLPrefix: "https://cdn.example.com/uploads/"})
	require.NoError(t, err)

	url, err := backend.GetDownloadURL(context.Background(), "manual.pdf", "")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/uploads/manual.pdf", url)

	url, err = backend.GetDownloadURL(context.Background(), "manual.pdf", "User Manual.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/uploads/manual.pdf?filename=User+Manual.pdf", url)
}
