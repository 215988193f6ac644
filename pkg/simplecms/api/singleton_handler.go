package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// HomePageHandler serves the home page singleton
type HomePageHandler struct {
	service   simplecms.Service
	maxMemory int64
}

// NewHomePageHandler creates a new home page handler
func NewHomePageHandler(service simplecms.Service, maxMemory int64) *HomePageHandler {
	return &HomePageHandler{service: service, maxMemory: maxMemory}
}

// Routes returns the routes for the home page. The JSON document and the
// image upload take different middleware stacks.
func (h *HomePageHandler) Routes(jsonStack, uploadStack chi.Middlewares) chi.Router {
	r := chi.NewRouter()
	r.With(jsonStack...).Get("/", h.GetHomePage)
	r.With(jsonStack...).Put("/", h.UpdateHomePage)
	r.With(uploadStack...).Post("/upload", h.UploadImage)
	return r
}

// ImageUploadResponse carries the stored filename of an uploaded image
type ImageUploadResponse struct {
	ImageURL string `json:"imageUrl"`
}

func (h *HomePageHandler) GetHomePage(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.GetHomePage(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}

func (h *HomePageHandler) UpdateHomePage(w http.ResponseWriter, r *http.Request) {
	var req simplecms.UpdateHomePageRequest
	if err := decodeJSON(r, "home page", &req); err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.service.UpdateHomePage(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}

// UploadImage stores the multipart "image" field and returns its filename
func (h *HomePageHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
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
		badRequest(w, r, "No file uploaded")
		return
	}
	defer file.Close()

	key, err := h.service.UploadHomePageImage(r.Context(), *image)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, ImageUploadResponse{ImageURL: key})
}

// ContactInfoHandler serves the contact info singleton
type ContactInfoHandler struct {
	service simplecms.Service
}

// NewContactInfoHandler creates a new contact info handler
func NewContactInfoHandler(service simplecms.Service) *ContactInfoHandler {
	return &ContactInfoHandler{service: service}
}

// Routes returns the routes for contact info
func (h *ContactInfoHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetContactInfo)
	r.Put("/", h.UpdateContactInfo)
	return r
}

func (h *ContactInfoHandler) GetContactInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.GetContactInfo(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, info)
}

func (h *ContactInfoHandler) UpdateContactInfo(w http.ResponseWriter, r *http.Request) {
	var req simplecms.UpdateContactInfoRequest
	if err := decodeJSON(r, "contact info", &req); err != nil {
		writeError(w, r, err)
		return
	}

	info, err := h.service.UpdateContactInfo(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, info)
}
