package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-cms/pkg/simplecms"
	pagerender "github.com/tendant/simple-cms/pkg/simplecms/render"
)

// BlogHandler handles HTTP requests for blog posts
type BlogHandler struct {
	service  simplecms.Service
	renderer *pagerender.Renderer
}

// NewBlogHandler creates a new blog handler
func NewBlogHandler(service simplecms.Service, renderer *pagerender.Renderer) *BlogHandler {
	return &BlogHandler{
		service:  service,
		renderer: renderer,
	}
}

// Routes returns the routes for blog posts
func (h *BlogHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListBlogs)
	r.Post("/", h.CreateBlog)
	r.Get("/{id}", h.GetBlog)
	r.Get("/{id}/html", h.RenderBlog)
	r.Put("/{id}", h.UpdateBlog)
	r.Delete("/{id}", h.DeleteBlog)
	return r
}

func (h *BlogHandler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.service.ListBlogs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, blogs)
}

func (h *BlogHandler) GetBlog(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, simplecms.ErrBlogNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	blog, err := h.service.GetBlog(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, blog)
}

func (h *BlogHandler) RenderBlog(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, simplecms.ErrBlogNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	blog, err := h.service.GetBlog(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Blog(&buf, blog); err != nil {
		writeError(w, r, fmt.Errorf("render blog %s: %w", id, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *BlogHandler) CreateBlog(w http.ResponseWriter, r *http.Request) {
	var req simplecms.CreateBlogRequest
	if err := decodeJSON(r, "blog", &req); err != nil {
		writeError(w, r, err)
		return
	}

	blog, err := h.service.CreateBlog(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Blog created", "blog_id", blog.ID.String())
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, blog)
}

func (h *BlogHandler) UpdateBlog(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, simplecms.ErrBlogNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req simplecms.UpdateBlogRequest
	if err := decodeJSON(r, "blog", &req); err != nil {
		writeError(w, r, err)
		return
	}

	blog, err := h.service.UpdateBlog(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, blog)
}

func (h *BlogHandler) DeleteBlog(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, simplecms.ErrBlogNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.DeleteBlog(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Blog deleted", "blog_id", id.String())
	render.JSON(w, r, MessageResponse{Message: "Blog deleted successfully"})
}
