package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

func TestUploadHandler_UploadAndDownload(t *testing.T) {
	s := setupRouterTest(t)
	pdf := []byte("%PDF-1.4 manual")

	w := s.upload(t, http.MethodPost, "/api/upload", "file", "Manual.pdf", pdf, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stored := decodeBody[simplecms.StoredFile](t, w)
	assert.Equal(t, simplecms.UploadPDF, stored.Kind)
	assert.Equal(t, "uploads/"+stored.Key, stored.Path)
	assert.Equal(t, "/uploads/"+stored.Key, stored.URL)
	assert.Regexp(t, `^\d+-\d+-manual\.pdf$`, stored.Key)

	t.Run("inline", func(t *testing.T) {
		w := s.do(t, http.MethodGet, stored.URL, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, pdf, w.Body.Bytes())
		assert.Empty(t, w.Header().Get("Content-Disposition"))
	})

	t.Run("attachment", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/download/"+stored.Key, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, pdf, w.Body.Bytes())
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename=manual.pdf`, w.Header().Get("Content-Disposition"))
	})
}

func TestUploadHandler_Rejects(t *testing.T) {
	s := setupRouterTest(t)

	t.Run("missing file", func(t *testing.T) {
		w := s.upload(t, http.MethodPost, "/api/upload", "", "", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unsupported type", func(t *testing.T) {
		w := s.upload(t, http.MethodPost, "/api/upload", "file", "setup.exe", []byte("MZ"), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeBody[errorBody](t, w).Errors, "file")
	})

	t.Run("over the request cap", func(t *testing.T) {
		s := setupRouterTest(t, WithMaxUploadBytes(16))
		big := make([]byte, 2<<20)
		w := s.upload(t, http.MethodPost, "/api/upload", "file", "big.mp4", big, nil)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	assert.Empty(t, s.blobs.Keys())
}

func TestUploadHandler_ServeMissing(t *testing.T) {
	s := setupRouterTest(t)

	for _, path := range []string{"/uploads/nope.png", "/api/download/nope.pdf", "/uploads/../secret"} {
		w := s.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}
