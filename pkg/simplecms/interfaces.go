package simplecms

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// BlobStore defines the interface for storing uploaded files
type BlobStore interface {
	// Upload stores content under params.ObjectKey
	Upload(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download opens a stored object
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes a stored object
	Delete(ctx context.Context, objectKey string) error

	// GetObjectMeta retrieves metadata for an object
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)

	// GetDownloadURL returns a URL the client can fetch directly, or
	// ErrUnsupportedOperation when the object must be streamed
	GetDownloadURL(ctx context.Context, objectKey string, downloadFilename string) (string, error)
}

// ProductRepository persists products. Implementations return
// ErrProductNotFound for unknown ids.
type ProductRepository interface {
	CreateProduct(ctx context.Context, product *Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	UpdateProduct(ctx context.Context, product *Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	// ListProducts returns matching products sorted by position ascending,
	// then creation time descending
	ListProducts(ctx context.Context, filter ProductFilter) ([]*Product, error)

	// DistinctProductValues returns the sorted non-empty values of field
	DistinctProductValues(ctx context.Context, field ProductField) ([]string, error)

	// SetProductPosition writes one product's position
	SetProductPosition(ctx context.Context, id uuid.UUID, position int) error

	// DeleteProductsByField deletes every product whose field is in values
	// and returns the number deleted
	DeleteProductsByField(ctx context.Context, field ProductField, values []string) (int64, error)
}

// BlogRepository persists blog posts. Implementations return
// ErrBlogNotFound for unknown ids.
type BlogRepository interface {
	CreateBlog(ctx context.Context, blog *Blog) error
	GetBlog(ctx context.Context, id uuid.UUID) (*Blog, error)
	UpdateBlog(ctx context.Context, blog *Blog) error
	DeleteBlog(ctx context.Context, id uuid.UUID) error

	// ListBlogs returns every post, newest first
	ListBlogs(ctx context.Context) ([]*Blog, error)
}

// HomeLogoRepository persists home logos. Implementations return
// ErrHomeLogoNotFound for unknown ids.
type HomeLogoRepository interface {
	CreateHomeLogo(ctx context.Context, logo *HomeLogo) error
	GetHomeLogo(ctx context.Context, id uuid.UUID) (*HomeLogo, error)
	UpdateHomeLogo(ctx context.Context, logo *HomeLogo) error
	DeleteHomeLogo(ctx context.Context, id uuid.UUID) error

	// ListHomeLogos returns every logo, newest first
	ListHomeLogos(ctx context.Context) ([]*HomeLogo, error)
}

// SingletonRepository persists the home page and contact info documents.
//
// The GetOrCreate methods insert defaults when no document exists and
// return the stored document. They are idempotent: concurrent first reads
// still leave exactly one document.
type SingletonRepository interface {
	GetOrCreateHomePage(ctx context.Context, defaults *HomePage) (*HomePage, error)
	SaveHomePage(ctx context.Context, page *HomePage) error
	GetOrCreateContactInfo(ctx context.Context, defaults *ContactInfo) (*ContactInfo, error)
	SaveContactInfo(ctx context.Context, info *ContactInfo) error
}

// Repository combines every document store the service uses
type Repository interface {
	ProductRepository
	BlogRepository
	HomeLogoRepository
	SingletonRepository
}
