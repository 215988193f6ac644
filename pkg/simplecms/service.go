package simplecms

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Service is the main interface for managing site content
type Service interface {
	// Product operations
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, filter ProductFilter) ([]*Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	ListBrands(ctx context.Context) ([]string, error)
	GetCatalog(ctx context.Context) (*Catalog, error)

	// Ordering and bulk operations
	UpdatePositions(ctx context.Context, updates []PositionUpdate) error
	MoveProduct(ctx context.Context, req MoveProductRequest) ([]*Product, error)
	BulkDeleteProducts(ctx context.Context, req BulkDeleteRequest) (int64, error)

	// Blog operations
	CreateBlog(ctx context.Context, req CreateBlogRequest) (*Blog, error)
	GetBlog(ctx context.Context, id uuid.UUID) (*Blog, error)
	UpdateBlog(ctx context.Context, id uuid.UUID, req UpdateBlogRequest) (*Blog, error)
	DeleteBlog(ctx context.Context, id uuid.UUID) error
	ListBlogs(ctx context.Context) ([]*Blog, error)

	// Home logo operations
	CreateHomeLogo(ctx context.Context, req CreateHomeLogoRequest) (*HomeLogo, error)
	GetHomeLogo(ctx context.Context, id uuid.UUID) (*HomeLogo, error)
	UpdateHomeLogo(ctx context.Context, id uuid.UUID, req UpdateHomeLogoRequest) (*HomeLogo, error)
	DeleteHomeLogo(ctx context.Context, id uuid.UUID) error
	ListHomeLogos(ctx context.Context) ([]*HomeLogo, error)

	// Singleton operations
	GetHomePage(ctx context.Context) (*HomePage, error)
	UpdateHomePage(ctx context.Context, req UpdateHomePageRequest) (*HomePage, error)
	UploadHomePageImage(ctx context.Context, file UploadedFile) (string, error)
	GetContactInfo(ctx context.Context) (*ContactInfo, error)
	UpdateContactInfo(ctx context.Context, req UpdateContactInfoRequest) (*ContactInfo, error)

	// Upload operations
	UploadAsset(ctx context.Context, file UploadedFile) (*StoredFile, error)
	OpenUpload(ctx context.Context, key string) (io.ReadCloser, *ObjectMeta, error)
	UploadURL(ctx context.Context, key string, downloadFilename string) (string, error)
}
