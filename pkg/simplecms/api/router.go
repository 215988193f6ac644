package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/tendant/simple-cms/pkg/simplecms"
	pagerender "github.com/tendant/simple-cms/pkg/simplecms/render"
)

const (
	defaultMaxJSONBytes   = 10 << 20
	defaultMaxUploadBytes = 200 << 20
	// multipart framing on top of the file itself
	multipartOverhead = 1 << 20
	// multipart bytes held in memory before spilling to temp files
	multipartMemory = 32 << 20

	defaultRequestTimeout = 60 * time.Second
	defaultUploadTimeout  = 15 * time.Minute
)

type routerConfig struct {
	maxJSONBytes   int64
	maxUploadBytes int64
	uploadMaxAge   int
	requestTimeout time.Duration
	uploadTimeout  time.Duration
}

// jsonStack caps JSON bodies and bounds the handler with requestTimeout.
func (c routerConfig) jsonStack() chi.Middlewares {
	return chi.Chain(timeout(c.requestTimeout), RequestSizeLimitMiddleware(c.maxJSONBytes))
}

// uploadStack serves multipart uploads. The timeout covers the whole
// transfer to the blob store.
func (c routerConfig) uploadStack() chi.Middlewares {
	return chi.Chain(timeout(c.uploadTimeout), RequestSizeLimitMiddleware(c.maxUploadBytes+multipartOverhead))
}

// timeout wraps middleware.Timeout; d <= 0 disables it.
func timeout(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.Timeout(d)
}

// RouterOption configures NewRouter
type RouterOption func(*routerConfig)

// WithMaxJSONBytes caps JSON request bodies.
func WithMaxJSONBytes(n int64) RouterOption {
	return func(c *routerConfig) { c.maxJSONBytes = n }
}

// WithMaxUploadBytes caps the file part of multipart requests. The service
// still enforces the per-kind limits.
func WithMaxUploadBytes(n int64) RouterOption {
	return func(c *routerConfig) { c.maxUploadBytes = n }
}

// WithRequestTimeout bounds JSON handlers. Zero disables the timeout.
func WithRequestTimeout(d time.Duration) RouterOption {
	return func(c *routerConfig) { c.requestTimeout = d }
}

// WithUploadTimeout bounds uploads and streamed downloads. Zero disables
// the timeout.
func WithUploadTimeout(d time.Duration) RouterOption {
	return func(c *routerConfig) { c.uploadTimeout = d }
}

// WithUploadCacheMaxAge sets the Cache-Control max-age of served uploads.
func WithUploadCacheMaxAge(seconds int) RouterOption {
	return func(c *routerConfig) { c.uploadMaxAge = seconds }
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// NewRouter wires every handler. JSON routes live under /api and uploaded
// files are served from /uploads.
func NewRouter(service simplecms.Service, renderer *pagerender.Renderer, options ...RouterOption) chi.Router {
	cfg := routerConfig{
		maxJSONBytes:   defaultMaxJSONBytes,
		maxUploadBytes: defaultMaxUploadBytes,
		uploadMaxAge:   3600,
		requestTimeout: defaultRequestTimeout,
		uploadTimeout:  defaultUploadTimeout,
	}
	for _, opt := range options {
		opt(&cfg)
	}

	products := NewProductHandler(service, renderer)
	blogs := NewBlogHandler(service, renderer)
	logos := NewHomeLogoHandler(service, multipartMemory)
	homePage := NewHomePageHandler(service, multipartMemory)
	contactInfo := NewContactInfoHandler(service)
	uploads := NewUploadHandler(service, multipartMemory)

	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, HealthResponse{Status: "healthy", Service: "simple-cms"})
	})

	r.With(timeout(cfg.uploadTimeout), CacheMiddleware(cfg.uploadMaxAge)).Get("/uploads/*", uploads.ServeUpload)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(cfg.jsonStack()...)
			r.Mount("/products", products.Routes())
			r.Mount("/blogs", blogs.Routes())
			r.Mount("/contact-info", contactInfo.Routes())
			r.Get("/catalog", catalogHandler(service))
		})

		r.Group(func(r chi.Router) {
			r.Use(cfg.uploadStack()...)
			r.Mount("/home-logos", logos.Routes())
			r.Post("/upload", uploads.Upload)
		})

		r.Mount("/home-page", homePage.Routes(cfg.jsonStack(), cfg.uploadStack()))
		r.With(timeout(cfg.uploadTimeout)).Get("/download/{filename}", uploads.Download)
	})

	return r
}

func catalogHandler(service simplecms.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog, err := service.GetCatalog(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		render.JSON(w, r, catalog)
	}
}
