package api

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// UploadHandler accepts block assets and serves stored uploads
type UploadHandler struct {
	service   simplecms.Service
	maxMemory int64
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(service simplecms.Service, maxMemory int64) *UploadHandler {
	return &UploadHandler{service: service, maxMemory: maxMemory}
}

// Upload stores the multipart "file" field. Images, PDFs and videos are
// accepted.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r, h.maxMemory); err != nil {
		writeError(w, r, err)
		return
	}

	upload, file, err := formFile(r, "file")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if upload == nil {
		badRequest(w, r, "No file uploaded")
		return
	}
	defer file.Close()

	stored, err := h.service.UploadAsset(r.Context(), *upload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("File uploaded", "key", stored.Key, "kind", stored.Kind, "size", stored.Size)
	render.JSON(w, r, stored)
}

// ServeUpload streams an uploaded file inline
func (h *UploadHandler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, chi.URLParam(r, "*"), false)
}

// Download sends an uploaded file as an attachment. Stores that can sign
// URLs redirect the client there instead.
func (h *UploadHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "filename")

	url, err := h.service.UploadURL(r.Context(), key, simplecms.UploadDisplayName(key))
	switch {
	case err == nil:
		http.Redirect(w, r, url, http.StatusFound)
		return
	case !errors.Is(err, simplecms.ErrUnsupportedOperation):
		writeError(w, r, err)
		return
	}

	h.serve(w, r, key, true)
}

func (h *UploadHandler) serve(w http.ResponseWriter, r *http.Request, key string, attachment bool) {
	rc, meta, err := h.service.OpenUpload(r.Context(), key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", meta.ContentType)
	if attachment {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": simplecms.UploadDisplayName(key)}))
	}

	// Seekable bodies get range support, which video playback relies on.
	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, path.Base(key), meta.UpdatedAt, rs)
		return
	}

	if meta.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
	}
	if !meta.UpdatedAt.IsZero() {
		w.Header().Set("Last-Modified", meta.UpdatedAt.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("Upload stream interrupted", "key", key, "error", err)
	}
}
