package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// HomeLogoHandler handles the brand and category logos shown on the home page
type HomeLogoHandler struct {
	service   simplecms.Service
	maxMemory int64
}

// NewHomeLogoHandler creates a new home logo handler. maxMemory bounds the
// multipart bytes held in memory before spilling to disk.
func NewHomeLogoHandler(service simplecms.Service, maxMemory int64) *HomeLogoHandler {
	return &HomeLogoHandler{
		service:   service,
		maxMemory: maxMemory,
	}
}

// Routes returns the routes for home logos
func (h *HomeLogoHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListHomeLogos)
	r.Post("/", h.CreateHomeLogo)
	r.Get("/{id}", h.GetHomeLogo)
	r.Put("/{id}", h.UpdateHomeLogo)
	r.Delete("/{id}", h.DeleteHomeLogo)
	return r
}

func (h *HomeLogoHandler) ListHomeLogos(w http.ResponseWriter, r *http.Request) {
	logos, err := h.service.ListHomeLogos(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, logos)
}

func (h *HomeLogoHandler) GetHomeLogo(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, simplecms.ErrHomeLogoNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logo, err := h.service.GetHomeLogo(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, logo)
}

// CreateHomeLogo accepts a multipart form with type, value and image
func (h *HomeLogoHandler) CreateHomeLogo(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r, h.maxMemory); err != nil {
		writeError(w, r, err)
		return
	}

	image, file, err := formFile(r, "image")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if image == nil {
		badRequest(w, r, "Image is required")
		return
	}
	defer file.Close()

	req := simplecms.CreateHomeLogoRequest{
		Type:  simplecms.LogoType(r.PostFormValue("type")),
		Value: r.PostFormValue("value"),
		Image: image,
	}

	logo, err := h.service.CreateHomeLogo(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Home logo created", "logo_id", logo.ID.String(), "image_url", logo.ImageURL)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, logo)
}

// UpdateHomeLogo updates the submitted fields and optionally replaces the image
func (h *HomeLogoHandler) UpdateHomeLogo(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, simplecms.ErrHomeLogoNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := parseForm(r, h.maxMemory); err != nil {
		writeError(w, r, err)
		return
	}

	image, file, err := formFile(r, "image")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	req := simplecms.UpdateHomeLogoRequest{
		Value: formValue(r, "value"),
		Image: image,
	}
	if t := formValue(r, "type"); t != nil {
		logoType := simplecms.LogoType(*t)
		req.Type = &logoType
	}

	logo, err := h.service.UpdateHomeLogo(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, logo)
}

func (h *HomeLogoHandler) DeleteHomeLogo(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, simplecms.ErrHomeLogoNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.DeleteHomeLogo(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Home logo deleted", "logo_id", id.String())
	render.JSON(w, r, MessageResponse{Message: "Logo deleted successfully"})
}
