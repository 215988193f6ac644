package simplecms

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// PublicUploadPath is the URL prefix under which stored uploads are served
const PublicUploadPath = "/uploads/"

// HomeLogoPrefix is the key prefix of logo images inside the blob store
const HomeLogoPrefix = "home-logos/"

// service implements the Service interface
type service struct {
	repository  Repository
	blobStores  map[string]BlobStore
	defaultBlob string
	limits      UploadLimits
	now         func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore adds a blob storage backend. The first backend added is
// the default unless WithDefaultBlobStore says otherwise.
func WithBlobStore(name string, store BlobStore) Option {
	return func(s *service) {
		if s.blobStores == nil {
			s.blobStores = make(map[string]BlobStore)
		}
		s.blobStores[name] = store
		if s.defaultBlob == "" {
			s.defaultBlob = name
		}
	}
}

// WithDefaultBlobStore selects the backend uploads are written to
func WithDefaultBlobStore(name string) Option {
	return func(s *service) {
		s.defaultBlob = name
	}
}

// WithUploadLimits overrides the per-kind upload size caps
func WithUploadLimits(limits UploadLimits) Option {
	return func(s *service) {
		s.limits = limits
	}
}

// WithClock sets the time source used for timestamps and upload keys
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		blobStores: make(map[string]BlobStore),
		limits:     DefaultUploadLimits(),
		now:        func() time.Time { return time.Now().UTC() },
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.defaultBlob != "" {
		if _, ok := s.blobStores[s.defaultBlob]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrStorageBackendNotFound, s.defaultBlob)
		}
	}

	return s, nil
}

func storageErr(op, entity, key string, err error) error {
	if IsNotFound(err) || IsValidation(err) {
		return err
	}
	return &StorageError{Op: op, Entity: entity, Key: key, Err: err}
}

// Product operations

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	now := s.now()
	product := &Product{
		ID:              uuid.New(),
		Title:           strings.TrimSpace(req.Title),
		Category:        strings.TrimSpace(req.Category),
		Brand:           strings.TrimSpace(req.Brand),
		CoverImage:      strings.TrimSpace(req.CoverImage),
		VariationImages: trimAll(req.VariationImages),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if product.VariationImages == nil {
		product.VariationImages = []string{}
	}
	if req.Position != nil {
		product.Position = *req.Position
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	blocks, err := PrepareBlocks(req.Contents)
	if err != nil {
		return nil, blockValidationError("product", err)
	}
	product.Contents = blocks

	if err := s.repository.CreateProduct(ctx, product); err != nil {
		return nil, storageErr("create", "product", product.ID.String(), err)
	}
	return product, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	product, err := s.repository.GetProduct(ctx, id)
	if err != nil {
		return nil, storageErr("get", "product", id.String(), err)
	}
	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*Product, error) {
	product, err := s.repository.GetProduct(ctx, id)
	if err != nil {
		return nil, storageErr("get", "product", id.String(), err)
	}

	if req.Title != nil {
		product.Title = strings.TrimSpace(*req.Title)
	}
	if req.Category != nil {
		product.Category = strings.TrimSpace(*req.Category)
	}
	if req.Brand != nil {
		product.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.CoverImage != nil {
		product.CoverImage = strings.TrimSpace(*req.CoverImage)
	}
	if req.VariationImages != nil {
		product.VariationImages = trimAll(*req.VariationImages)
		if product.VariationImages == nil {
			product.VariationImages = []string{}
		}
	}
	if req.Position != nil {
		product.Position = *req.Position
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if req.Contents != nil {
		blocks, err := PrepareBlocks(*req.Contents)
		if err != nil {
			return nil, blockValidationError("product", err)
		}
		product.Contents = blocks
	}
	product.UpdatedAt = s.now()

	if err := s.repository.UpdateProduct(ctx, product); err != nil {
		return nil, storageErr("update", "product", id.String(), err)
	}
	return product, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.repository.DeleteProduct(ctx, id); err != nil {
		return storageErr("delete", "product", id.String(), err)
	}
	return nil
}

func (s *service) ListProducts(ctx context.Context, filter ProductFilter) ([]*Product, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Brand = strings.TrimSpace(filter.Brand)
	products, err := s.repository.ListProducts(ctx, filter)
	if err != nil {
		return nil, storageErr("list", "product", "", err)
	}
	return products, nil
}

func (s *service) ListCategories(ctx context.Context) ([]string, error) {
	values, err := s.repository.DistinctProductValues(ctx, FieldCategory)
	if err != nil {
		return nil, storageErr("distinct", "product category", "", err)
	}
	return values, nil
}

func (s *service) ListBrands(ctx context.Context) ([]string, error) {
	values, err := s.repository.DistinctProductValues(ctx, FieldBrand)
	if err != nil {
		return nil, storageErr("distinct", "product brand", "", err)
	}
	return values, nil
}

func (s *service) GetCatalog(ctx context.Context) (*Catalog, error) {
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	brands, err := s.ListBrands(ctx)
	if err != nil {
		return nil, err
	}
	catalog := &Catalog{
		Categories:       append([]Category(nil), PredefinedCategories...),
		CustomCategories: []string{},
		Brands:           brands,
		BlockTypes:       append([]BlockType(nil), BlockTypes...),
	}
	for _, c := range categories {
		if !IsPredefinedCategory(c) {
			catalog.CustomCategories = append(catalog.CustomCategories, c)
		}
	}
	if catalog.Brands == nil {
		catalog.Brands = []string{}
	}
	return catalog, nil
}

// Ordering and bulk operations

func (s *service) UpdatePositions(ctx context.Context, updates []PositionUpdate) error {
	ids := make([]uuid.UUID, len(updates))
	seen := make(map[uuid.UUID]bool, len(updates))
	errs := validation.Errors{}
	for i, u := range updates {
		field := fmt.Sprintf("products[%d].id", i)
		id, err := uuid.Parse(strings.TrimSpace(u.ID))
		if err != nil {
			errs[field] = validation.NewError("validation_invalid_id", "invalid product id")
			continue
		}
		if seen[id] {
			errs[field] = validation.NewError("validation_duplicate_id", "product listed more than once")
			continue
		}
		seen[id] = true
		ids[i] = id
	}
	if len(errs) > 0 {
		return &ValidationError{Entity: "position update", Err: errs}
	}

	var failures []PositionFailure
	for position, id := range ids {
		if err := s.repository.SetProductPosition(ctx, id, position); err != nil {
			failures = append(failures, PositionFailure{
				ID:  id,
				Err: storageErr("set position", "product", id.String(), err),
			})
		}
	}
	if len(failures) > 0 {
		return &PositionUpdateError{Failures: failures}
	}
	return nil
}

func (s *service) MoveProduct(ctx context.Context, req MoveProductRequest) ([]*Product, error) {
	if !req.Direction.Valid() {
		return nil, &ValidationError{Entity: "move", Err: validation.Errors{
			"direction": validation.NewError("validation_direction", "direction must be up or down"),
		}}
	}
	products, err := s.ListProducts(ctx, ProductFilter{Category: req.Category, Brand: req.Brand})
	if err != nil {
		return nil, err
	}
	if req.Index < 0 || req.Index >= len(products) {
		return nil, &ValidationError{Entity: "move", Err: validation.Errors{
			"index": validation.NewError("validation_index", fmt.Sprintf("index must be between 0 and %d", len(products)-1)),
		}}
	}

	moved := Move(products, req.Index, req.Direction)
	updates := make([]PositionUpdate, len(moved))
	for i, p := range moved {
		updates[i] = PositionUpdate{ID: p.ID.String(), Position: i}
	}
	if err := s.UpdatePositions(ctx, updates); err != nil {
		return nil, err
	}
	for i, p := range moved {
		p.Position = i
	}
	return moved, nil
}

func (s *service) BulkDeleteProducts(ctx context.Context, req BulkDeleteRequest) (int64, error) {
	req.Type = ProductField(strings.TrimSpace(string(req.Type)))
	req.Items = trimAll(req.Items)
	if err := validateBulkDelete(&req); err != nil {
		return 0, err
	}
	count, err := s.repository.DeleteProductsByField(ctx, req.Type, req.Items)
	if err != nil {
		return 0, storageErr("bulk delete", "product", string(req.Type), err)
	}
	slog.Info("Products deleted in bulk", "type", req.Type, "items", req.Items, "deleted", count)
	return count, nil
}

// Blog operations

func (s *service) CreateBlog(ctx context.Context, req CreateBlogRequest) (*Blog, error) {
	now := s.now()
	blog := &Blog{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(req.Title),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validateBlog(blog); err != nil {
		return nil, err
	}
	blocks, err := PrepareBlocks(req.Contents)
	if err != nil {
		return nil, blockValidationError("blog", err)
	}
	blog.Contents = blocks

	if err := s.repository.CreateBlog(ctx, blog); err != nil {
		return nil, storageErr("create", "blog", blog.ID.String(), err)
	}
	return blog, nil
}

func (s *service) GetBlog(ctx context.Context, id uuid.UUID) (*Blog, error) {
	blog, err := s.repository.GetBlog(ctx, id)
	if err != nil {
		return nil, storageErr("get", "blog", id.String(), err)
	}
	return blog, nil
}

func (s *service) UpdateBlog(ctx context.Context, id uuid.UUID, req UpdateBlogRequest) (*Blog, error) {
	blog, err := s.repository.GetBlog(ctx, id)
	if err != nil {
		return nil, storageErr("get", "blog", id.String(), err)
	}
	if req.Title != nil {
		blog.Title = strings.TrimSpace(*req.Title)
	}
	if err := validateBlog(blog); err != nil {
		return nil, err
	}
	if req.Contents != nil {
		blocks, err := PrepareBlocks(*req.Contents)
		if err != nil {
			return nil, blockValidationError("blog", err)
		}
		blog.Contents = blocks
	}
	blog.UpdatedAt = s.now()

	if err := s.repository.UpdateBlog(ctx, blog); err != nil {
		return nil, storageErr("update", "blog", id.String(), err)
	}
	return blog, nil
}

func (s *service) DeleteBlog(ctx context.Context, id uuid.UUID) error {
	if err := s.repository.DeleteBlog(ctx, id); err != nil {
		return storageErr("delete", "blog", id.String(), err)
	}
	return nil
}

func (s *service) ListBlogs(ctx context.Context) ([]*Blog, error) {
	blogs, err := s.repository.ListBlogs(ctx)
	if err != nil {
		return nil, storageErr("list", "blog", "", err)
	}
	return blogs, nil
}

// Home logo operations

func (s *service) CreateHomeLogo(ctx context.Context, req CreateHomeLogoRequest) (*HomeLogo, error) {
	if req.Image == nil {
		return nil, &ValidationError{Entity: "home logo", Err: validation.Errors{
			"image": validation.NewError("validation_image_required", "image is required"),
		}}
	}
	if _, err := ClassifyUpload(*req.Image, s.limits, UploadImage); err != nil {
		return nil, err
	}

	now := s.now()
	key := HomeLogoPrefix + NewNamedObjectKey(now, req.Image.Filename)
	logo := &HomeLogo{
		ID:        uuid.New(),
		ImageURL:  PublicUploadPath + key,
		Type:      LogoType(strings.TrimSpace(string(req.Type))),
		Value:     strings.TrimSpace(req.Value),
		CreatedAt: now,
	}
	if err := validateHomeLogo(logo); err != nil {
		return nil, err
	}

	if err := s.store(ctx, key, *req.Image); err != nil {
		return nil, err
	}
	if err := s.repository.CreateHomeLogo(ctx, logo); err != nil {
		s.removeUpload(ctx, key)
		return nil, storageErr("create", "home logo", logo.ID.String(), err)
	}
	return logo, nil
}

func (s *service) GetHomeLogo(ctx context.Context, id uuid.UUID) (*HomeLogo, error) {
	logo, err := s.repository.GetHomeLogo(ctx, id)
	if err != nil {
		return nil, storageErr("get", "home logo", id.String(), err)
	}
	return logo, nil
}

func (s *service) UpdateHomeLogo(ctx context.Context, id uuid.UUID, req UpdateHomeLogoRequest) (*HomeLogo, error) {
	logo, err := s.repository.GetHomeLogo(ctx, id)
	if err != nil {
		return nil, storageErr("get", "home logo", id.String(), err)
	}
	if req.Type != nil {
		logo.Type = LogoType(strings.TrimSpace(string(*req.Type)))
	}
	if req.Value != nil {
		logo.Value = strings.TrimSpace(*req.Value)
	}

	var newKey, oldKey string
	if req.Image != nil {
		if _, err := ClassifyUpload(*req.Image, s.limits, UploadImage); err != nil {
			return nil, err
		}
		newKey = HomeLogoPrefix + NewNamedObjectKey(s.now(), req.Image.Filename)
		oldKey = uploadKeyFromURL(logo.ImageURL)
		logo.ImageURL = PublicUploadPath + newKey
	}
	if err := validateHomeLogo(logo); err != nil {
		return nil, err
	}

	if newKey != "" {
		if err := s.store(ctx, newKey, *req.Image); err != nil {
			return nil, err
		}
	}
	if err := s.repository.UpdateHomeLogo(ctx, logo); err != nil {
		if newKey != "" {
			s.removeUpload(ctx, newKey)
		}
		return nil, storageErr("update", "home logo", id.String(), err)
	}
	if oldKey != "" {
		s.removeUpload(ctx, oldKey)
	}
	return logo, nil
}

func (s *service) DeleteHomeLogo(ctx context.Context, id uuid.UUID) error {
	logo, err := s.repository.GetHomeLogo(ctx, id)
	if err != nil {
		return storageErr("get", "home logo", id.String(), err)
	}
	if err := s.repository.DeleteHomeLogo(ctx, id); err != nil {
		return storageErr("delete", "home logo", id.String(), err)
	}
	if key := uploadKeyFromURL(logo.ImageURL); key != "" {
		s.removeUpload(ctx, key)
	}
	return nil
}

func (s *service) ListHomeLogos(ctx context.Context) ([]*HomeLogo, error) {
	logos, err := s.repository.ListHomeLogos(ctx)
	if err != nil {
		return nil, storageErr("list", "home logo", "", err)
	}
	return logos, nil
}

// Singleton operations

func (s *service) GetHomePage(ctx context.Context) (*HomePage, error) {
	now := s.now()
	page, err := s.repository.GetOrCreateHomePage(ctx, &HomePage{
		WhoWeAre:  DefaultWhoWeAre(),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, storageErr("get", "home page", "", err)
	}
	return page, nil
}

func (s *service) UpdateHomePage(ctx context.Context, req UpdateHomePageRequest) (*HomePage, error) {
	page, err := s.GetHomePage(ctx)
	if err != nil {
		return nil, err
	}
	if u := req.WhoWeAre; u != nil {
		w := &page.WhoWeAre
		setIfPresent(&w.Image, u.Image)
		setIfPresent(&w.MainHeading, u.MainHeading)
		setIfPresent(&w.Tagline, u.Tagline)
		setIfPresent(&w.Description, u.Description)
		setIfPresent(&w.PartnerText, u.PartnerText)
		setIfPresent(&w.CertifiedText, u.CertifiedText)
		setIfPresent(&w.QualityText, u.QualityText)
	}
	page.UpdatedAt = s.now()

	if err := s.repository.SaveHomePage(ctx, page); err != nil {
		return nil, storageErr("save", "home page", "", err)
	}
	return page, nil
}

func setIfPresent(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func (s *service) UploadHomePageImage(ctx context.Context, file UploadedFile) (string, error) {
	if _, err := ClassifyUpload(file, s.limits, UploadImage); err != nil {
		return "", err
	}
	key := NewObjectKey(s.now(), file.Filename)
	if err := s.store(ctx, key, file); err != nil {
		return "", err
	}
	return key, nil
}

func (s *service) GetContactInfo(ctx context.Context) (*ContactInfo, error) {
	now := s.now()
	defaults := DefaultContactInfo()
	defaults.CreatedAt = now
	defaults.UpdatedAt = now
	info, err := s.repository.GetOrCreateContactInfo(ctx, &defaults)
	if err != nil {
		return nil, storageErr("get", "contact info", "", err)
	}
	return info, nil
}

func (s *service) UpdateContactInfo(ctx context.Context, req UpdateContactInfoRequest) (*ContactInfo, error) {
	info, err := s.GetContactInfo(ctx)
	if err != nil {
		return nil, err
	}
	if req.EmailAddress != nil {
		info.EmailAddress = *req.EmailAddress
		if info.EmailAddress.Emails == nil {
			info.EmailAddress.Emails = []string{}
		}
	}
	if req.PhoneNumber != nil {
		info.PhoneNumber = *req.PhoneNumber
		if info.PhoneNumber.Phones == nil {
			info.PhoneNumber.Phones = []string{}
		}
	}
	if req.Location != nil {
		info.Location = *req.Location
	}
	if err := validateContactInfo(info); err != nil {
		return nil, err
	}
	info.UpdatedAt = s.now()

	if err := s.repository.SaveContactInfo(ctx, info); err != nil {
		return nil, storageErr("save", "contact info", "", err)
	}
	return info, nil
}

// Upload operations

func (s *service) UploadAsset(ctx context.Context, file UploadedFile) (*StoredFile, error) {
	kind, err := ClassifyUpload(file, s.limits, UploadImage, UploadPDF, UploadVideo)
	if err != nil {
		return nil, err
	}
	key := NewUploadObjectKey(s.now(), file.Filename)
	if err := s.store(ctx, key, file); err != nil {
		return nil, err
	}
	return &StoredFile{
		Key:         key,
		Path:        UploadPrefix + key,
		URL:         PublicUploadPath + key,
		Kind:        kind,
		ContentType: UploadContentType(file),
		Size:        file.Size,
	}, nil
}

func (s *service) OpenUpload(ctx context.Context, key string) (io.ReadCloser, *ObjectMeta, error) {
	key, ok := cleanKey(key)
	if !ok {
		return nil, nil, ErrObjectNotFound
	}
	store, err := s.blobStore()
	if err != nil {
		return nil, nil, err
	}
	meta, err := store.GetObjectMeta(ctx, key)
	if err != nil {
		return nil, nil, storageErr("stat", "object", key, err)
	}
	rc, err := store.Download(ctx, key)
	if err != nil {
		return nil, nil, storageErr("download", "object", key, err)
	}
	return rc, meta, nil
}

func (s *service) UploadURL(ctx context.Context, key string, downloadFilename string) (string, error) {
	key, ok := cleanKey(key)
	if !ok {
		return "", ErrObjectNotFound
	}
	store, err := s.blobStore()
	if err != nil {
		return "", err
	}
	return store.GetDownloadURL(ctx, key, downloadFilename)
}

func (s *service) blobStore() (BlobStore, error) {
	store, ok := s.blobStores[s.defaultBlob]
	if !ok {
		return nil, &StorageError{Op: "resolve", Entity: "backend", Key: s.defaultBlob, Err: ErrStorageBackendNotFound}
	}
	return store, nil
}

func (s *service) store(ctx context.Context, key string, file UploadedFile) error {
	store, err := s.blobStore()
	if err != nil {
		return err
	}
	contentType := UploadContentType(file)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := store.Upload(ctx, file.Reader, UploadParams{ObjectKey: key, MimeType: contentType}); err != nil {
		return &StorageError{Op: "upload", Entity: "object", Key: key, Err: err}
	}
	return nil
}

// removeUpload deletes a blob the document no longer references. Failures
// leave an orphaned file and are only logged.
func (s *service) removeUpload(ctx context.Context, key string) {
	store, err := s.blobStore()
	if err != nil {
		return
	}
	if err := store.Delete(ctx, key); err != nil {
		slog.Warn("Failed to remove upload", "key", key, "error", err)
	}
}

func uploadKeyFromURL(url string) string {
	if !strings.HasPrefix(url, PublicUploadPath) {
		return ""
	}
	key, ok := cleanKey(strings.TrimPrefix(url, PublicUploadPath))
	if !ok {
		return ""
	}
	return key
}

// cleanKey rejects keys that would escape the upload root.
func cleanKey(key string) (string, bool) {
	if key == "" || strings.Contains(key, "\\") {
		return "", false
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", false
		}
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+key), "/")
	if cleaned == "" || cleaned == "." {
		return "", false
	}
	return cleaned, true
}
