package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// decodeJSON decodes the request body into v. Malformed bodies and block
// payloads come back as a *simplecms.ValidationError for entity.
func decodeJSON(r *http.Request, entity string, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		var blockErr *simplecms.BlockError
		if errors.As(err, &blockErr) {
			return &simplecms.ValidationError{Entity: entity, Err: blockErr}
		}
		return &simplecms.ValidationError{Entity: entity, Err: fmt.Errorf("malformed request body: %w", err)}
	}
	return nil
}

// parseID reads the {id} URL parameter. Malformed ids resolve to the
// entity's not-found error.
func parseID(r *http.Request, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}

// parseForm accepts multipart and urlencoded bodies.
func parseForm(r *http.Request, maxMemory int64) error {
	err := r.ParseMultipartForm(maxMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err == nil {
		return nil
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return err
	}
	return &simplecms.ValidationError{Entity: "upload", Err: fmt.Errorf("malformed form: %w", err)}
}

// formValue returns nil when key was not submitted
func formValue(r *http.Request, key string) *string {
	if values, ok := r.PostForm[key]; ok && len(values) > 0 {
		return &values[0]
	}
	if r.MultipartForm != nil {
		if values, ok := r.MultipartForm.Value[key]; ok && len(values) > 0 {
			return &values[0]
		}
	}
	return nil
}

// formFile returns the uploaded file under field, or nil when absent. The
// caller closes the returned file.
func formFile(r *http.Request, field string) (*simplecms.UploadedFile, multipart.File, error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, &simplecms.ValidationError{Entity: "upload", Err: err}
	}
	return &simplecms.UploadedFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	}, file, nil
}
