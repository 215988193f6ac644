package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  validation.Errors `json:"errors,omitempty"`
	Failed  []FailedItem      `json:"failed,omitempty"`
}

// FailedItem names one id a bulk operation could not apply
type FailedItem struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// MessageResponse is the body of a successful request with nothing to return
type MessageResponse struct {
	Message string `json:"message"`
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, simplecms.ErrProductNotFound):
		return "Product not found"
	case errors.Is(err, simplecms.ErrBlogNotFound):
		return "Blog not found"
	case errors.Is(err, simplecms.ErrHomeLogoNotFound):
		return "Logo not found"
	default:
		return "File not found"
	}
}

// statusFor maps a service error to its HTTP status
func statusFor(err error) int {
	var posErr *simplecms.PositionUpdateError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &posErr):
		if posErr.AllNotFound() {
			return http.StatusNotFound
		}
		return http.StatusInternalServerError
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case simplecms.IsValidation(err):
		return http.StatusBadRequest
	case simplecms.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err with its mapped status. Server errors are logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Message: err.Error()}

	var posErr *simplecms.PositionUpdateError
	var fieldErrs validation.Errors
	switch {
	case errors.As(err, &posErr):
		for _, f := range posErr.Failures {
			resp.Failed = append(resp.Failed, FailedItem{ID: f.ID.String(), Message: f.Err.Error()})
		}
	case status == http.StatusNotFound:
		resp.Message = notFoundMessage(err)
	case errors.As(err, &fieldErrs):
		resp.Errors = fieldErrs
	}

	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		slog.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}

	render.Status(r, status)
	render.JSON(w, r, resp)
}

// badRequest renders a 400 with a fixed message
func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrorResponse{Message: message})
}
