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

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	service  simplecms.Service
	renderer *pagerender.Renderer
}

// NewProductHandler creates a new product handler
func NewProductHandler(service simplecms.Service, renderer *pagerender.Renderer) *ProductHandler {
	return &ProductHandler{
		service:  service,
		renderer: renderer,
	}
}

// Routes returns the routes for products
func (h *ProductHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListProducts)
	r.Post("/", h.CreateProduct)
	r.Get("/categories", h.ListCategories)
	r.Get("/brands", h.ListBrands)

	// Ordering and bulk routes
	r.Put("/positions/update", h.UpdatePositions)
	r.Put("/positions/move", h.MoveProduct)
	r.Delete("/bulk-delete", h.BulkDelete)

	r.Get("/{id}", h.GetProduct)
	r.Get("/{id}/html", h.RenderProduct)
	r.Put("/{id}", h.UpdateProduct)
	r.Delete("/{id}", h.DeleteProduct)

	return r
}

// UpdatePositionsRequest is the body of a bulk position write
type UpdatePositionsRequest struct {
	Products []simplecms.PositionUpdate `json:"products"`
}

// BulkDeleteResponse reports how many products a bulk delete removed
type BulkDeleteResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount"`
}

// ListProducts lists products, optionally filtered by ?category= or ?brand=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := simplecms.ProductFilter{
		Category: r.URL.Query().Get("category"),
		Brand:    r.URL.Query().Get("brand"),
	}

	products, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, products)
}

// ListCategories returns the distinct category values in use
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, categories)
}

// ListBrands returns the distinct brand values in use
func (h *ProductHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.service.ListBrands(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, brands)
}

// GetProduct returns a single product
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, simplecms.ErrProductNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, product)
}

// RenderProduct returns the product detail page fragment as HTML
func (h *ProductHandler) RenderProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, simplecms.ErrProductNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Product(&buf, product); err != nil {
		writeError(w, r, fmt.Errorf("render product %s: %w", id, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// CreateProduct creates a new product
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req simplecms.CreateProductRequest
	if err := decodeJSON(r, "product", &req); err != nil {
		writeError(w, r, err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Product created", "product_id", product.ID.String())
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, product)
}

// UpdateProduct updates the submitted fields of a product
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, simplecms.ErrProductNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req simplecms.UpdateProductRequest
	if err := decodeJSON(r, "product", &req); err != nil {
		writeError(w, r, err)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, product)
}

// DeleteProduct deletes a product
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, simplecms.ErrProductNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Product deleted", "product_id", id.String())
	render.JSON(w, r, MessageResponse{Message: "Product deleted successfully"})
}

// UpdatePositions persists a full display order
func (h *ProductHandler) UpdatePositions(w http.ResponseWriter, r *http.Request) {
	var req UpdatePositionsRequest
	if err := decodeJSON(r, "positions", &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.UpdatePositions(r.Context(), req.Products); err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, MessageResponse{Message: "Product positions updated successfully"})
}

// MoveProduct swaps a product with its neighbour in a filtered listing and
// returns the listing in its new order
func (h *ProductHandler) MoveProduct(w http.ResponseWriter, r *http.Request) {
	var req simplecms.MoveProductRequest
	if err := decodeJSON(r, "move", &req); err != nil {
		writeError(w, r, err)
		return
	}

	products, err := h.service.MoveProduct(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, products)
}

// BulkDelete deletes every product matching one of the submitted category
// or brand values
func (h *ProductHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req simplecms.BulkDeleteRequest
	if err := decodeJSON(r, "bulk delete", &req); err != nil {
		writeError(w, r, err)
		return
	}

	deleted, err := h.service.BulkDeleteProducts(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, BulkDeleteResponse{
		Message:      fmt.Sprintf("Deleted %d product(s) by %s", deleted, req.Type),
		DeletedCount: deleted,
	})
}
