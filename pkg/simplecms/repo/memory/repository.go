package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Repository implements simplecms.Repository using in-memory storage
type Repository struct {
	mu          sync.RWMutex
	products    map[uuid.UUID]*simplecms.Product
	blogs       map[uuid.UUID]*simplecms.Blog
	logos       map[uuid.UUID]*simplecms.HomeLogo
	homePage    *simplecms.HomePage
	contactInfo *simplecms.ContactInfo
}

// New creates a new in-memory repository
func New() simplecms.Repository {
	return &Repository{
		products: make(map[uuid.UUID]*simplecms.Product),
		blogs:    make(map[uuid.UUID]*simplecms.Blog),
		logos:    make(map[uuid.UUID]*simplecms.HomeLogo),
	}
}

func copyProduct(p *simplecms.Product) *simplecms.Product {
	c := *p
	c.VariationImages = append([]string{}, p.VariationImages...)
	c.Contents = simplecms.CloneBlocks(p.Contents)
	return &c
}

func copyBlog(b *simplecms.Blog) *simplecms.Blog {
	c := *b
	c.Contents = simplecms.CloneBlocks(b.Contents)
	return &c
}

func copyContactInfo(info *simplecms.ContactInfo) *simplecms.ContactInfo {
	c := *info
	c.EmailAddress.Emails = append([]string{}, info.EmailAddress.Emails...)
	c.PhoneNumber.Phones = append([]string{}, info.PhoneNumber.Phones...)
	return &c
}

// Product operations

func (r *Repository) CreateProduct(ctx context.Context, product *simplecms.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[product.ID]; exists {
		return fmt.Errorf("product %s already exists", product.ID)
	}
	r.products[product.ID] = copyProduct(product)
	return nil
}

func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*simplecms.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.products[id]
	if !exists {
		return nil, simplecms.ErrProductNotFound
	}
	return copyProduct(product), nil
}

func (r *Repository) UpdateProduct(ctx context.Context, product *simplecms.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[product.ID]; !exists {
		return simplecms.ErrProductNotFound
	}
	r.products[product.ID] = copyProduct(product)
	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[id]; !exists {
		return simplecms.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *Repository) ListProducts(ctx context.Context, filter simplecms.ProductFilter) ([]*simplecms.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*simplecms.Product{}
	for _, product := range r.products {
		if filter.Matches(product) {
			result = append(result, copyProduct(product))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Position != result[j].Position {
			return result[i].Position < result[j].Position
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *Repository) DistinctProductValues(ctx context.Context, field simplecms.ProductField) ([]string, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("unsupported product field %q", field)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	values := []string{}
	for _, product := range r.products {
		v := productField(product, field)
		if v != "" && !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	sort.Strings(values)
	return values, nil
}

func (r *Repository) SetProductPosition(ctx context.Context, id uuid.UUID, position int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, exists := r.products[id]
	if !exists {
		return simplecms.ErrProductNotFound
	}
	product.Position = position
	return nil
}

func (r *Repository) DeleteProductsByField(ctx context.Context, field simplecms.ProductField, values []string) (int64, error) {
	if !field.Valid() {
		return 0, fmt.Errorf("unsupported product field %q", field)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for id, product := range r.products {
		if slices.Contains(values, productField(product, field)) {
			delete(r.products, id)
			count++
		}
	}
	return count, nil
}

func productField(p *simplecms.Product, field simplecms.ProductField) string {
	if field == simplecms.FieldBrand {
		return p.Brand
	}
	return p.Category
}

// Blog operations

func (r *Repository) CreateBlog(ctx context.Context, blog *simplecms.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.blogs[blog.ID]; exists {
		return fmt.Errorf("blog %s already exists", blog.ID)
	}
	r.blogs[blog.ID] = copyBlog(blog)
	return nil
}

func (r *Repository) GetBlog(ctx context.Context, id uuid.UUID) (*simplecms.Blog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	blog, exists := r.blogs[id]
	if !exists {
		return nil, simplecms.ErrBlogNotFound
	}
	return copyBlog(blog), nil
}

func (r *Repository) UpdateBlog(ctx context.Context, blog *simplecms.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.blogs[blog.ID]; !exists {
		return simplecms.ErrBlogNotFound
	}
	r.blogs[blog.ID] = copyBlog(blog)
	return nil
}

func (r *Repository) DeleteBlog(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.blogs[id]; !exists {
		return simplecms.ErrBlogNotFound
	}
	delete(r.blogs, id)
	return nil
}

func (r *Repository) ListBlogs(ctx context.Context) ([]*simplecms.Blog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*simplecms.Blog, 0, len(r.blogs))
	for _, blog := range r.blogs {
		result = append(result, copyBlog(blog))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Home logo operations

func (r *Repository) CreateHomeLogo(ctx context.Context, logo *simplecms.HomeLogo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.logos[logo.ID]; exists {
		return fmt.Errorf("logo %s already exists", logo.ID)
	}
	logoCopy := *logo
	r.logos[logo.ID] = &logoCopy
	return nil
}

func (r *Repository) GetHomeLogo(ctx context.Context, id uuid.UUID) (*simplecms.HomeLogo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	logo, exists := r.logos[id]
	if !exists {
		return nil, simplecms.ErrHomeLogoNotFound
	}
	logoCopy := *logo
	return &logoCopy, nil
}

func (r *Repository) UpdateHomeLogo(ctx context.Context, logo *simplecms.HomeLogo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.logos[logo.ID]; !exists {
		return simplecms.ErrHomeLogoNotFound
	}
	logoCopy := *logo
	r.logos[logo.ID] = &logoCopy
	return nil
}

func (r *Repository) DeleteHomeLogo(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.logos[id]; !exists {
		return simplecms.ErrHomeLogoNotFound
	}
	delete(r.logos, id)
	return nil
}

func (r *Repository) ListHomeLogos(ctx context.Context) ([]*simplecms.HomeLogo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*simplecms.HomeLogo, 0, len(r.logos))
	for _, logo := range r.logos {
		logoCopy := *logo
		result = append(result, &logoCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Singleton operations

func (r *Repository) GetOrCreateHomePage(ctx context.Context, defaults *simplecms.HomePage) (*simplecms.HomePage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.homePage == nil {
		pageCopy := *defaults
		r.homePage = &pageCopy
	}
	pageCopy := *r.homePage
	return &pageCopy, nil
}

func (r *Repository) SaveHomePage(ctx context.Context, page *simplecms.HomePage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pageCopy := *page
	r.homePage = &pageCopy
	return nil
}

func (r *Repository) GetOrCreateContactInfo(ctx context.Context, defaults *simplecms.ContactInfo) (*simplecms.ContactInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.contactInfo == nil {
		r.contactInfo = copyContactInfo(defaults)
	}
	return copyContactInfo(r.contactInfo), nil
}

func (r *Repository) SaveContactInfo(ctx context.Context, info *simplecms.ContactInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.contactInfo = copyContactInfo(info)
	return nil
}
