package simplecms_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
	memorystorage "github.com/tendant/simple-cms/pkg/simplecms/storage/memory"
)

// flakyRepository fails SetProductPosition for the listed ids.
type flakyRepository struct {
	simplecms.Repository
	failPositions map[uuid.UUID]error
}

func (r *flakyRepository) SetProductPosition(ctx context.Context, id uuid.UUID, position int) error {
	if err, ok := r.failPositions[id]; ok {
		return err
	}
	return r.Repository.SetProductPosition(ctx, id, position)
}

// clock returns strictly increasing times so created-at ordering is stable.
func clock() func() time.Time {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func setupService(t *testing.T, opts ...simplecms.Option) (simplecms.Service, *memorystorage.Backend) {
	t.Helper()
	blobs := memorystorage.New()
	base := []simplecms.Option{
		simplecms.WithRepository(memory.New()),
		simplecms.WithBlobStore("memory", blobs),
		simplecms.WithClock(clock()),
	}
	svc, err := simplecms.New(append(base, opts...)...)
	require.NoError(t, err)
	return svc, blobs
}

func pngFile(name string) *simplecms.UploadedFile {
	return &simplecms.UploadedFile{
		Filename:    name,
		ContentType: "image/png",
		Size:        4,
		Reader:      strings.NewReader("\x89PNG"),
	}
}

func TestServiceCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []simplecms.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []simplecms.Option{},
			expectError: true,
		},
		{
			name:        "with repository should succeed",
			options:     []simplecms.Option{simplecms.WithRepository(memory.New())},
			expectError: false,
		},
		{
			name: "unknown default blob store should fail",
			options: []simplecms.Option{
				simplecms.WithRepository(memory.New()),
				simplecms.WithBlobStore("memory", memorystorage.New()),
				simplecms.WithDefaultBlobStore("s3"),
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := simplecms.New(tt.options...)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestProductLifecycle(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, simplecms.CreateProductRequest{
		Title:           "  Addressable Panel ",
		Category:        "fire-alarm",
		Brand:           "Acme",
		VariationImages: []string{" a.png ", "", "b.png"},
		Contents: simplecms.Blocks{
			{Type: simplecms.BlockTitle, Order: 7, Data: simplecms.TextData{Text: "Overview"}},
			simplecms.NewImageBlock("1.png", "2.png"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Addressable Panel", product.Title)
	assert.Equal(t, []string{"a.png", "b.png"}, product.VariationImages)
	require.Len(t, product.Contents, 2)
	assert.Equal(t, 0, product.Contents[0].Order)
	assert.Equal(t, 1, product.Contents[1].Order)

	got, err := svc.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Title, got.Title)

	title := "Conventional Panel"
	updated, err := svc.UpdateProduct(ctx, product.ID, simplecms.UpdateProductRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Conventional Panel", updated.Title)
	assert.Len(t, updated.Contents, 2, "contents are kept when not submitted")
	assert.True(t, updated.UpdatedAt.After(product.UpdatedAt))

	empty := simplecms.Blocks{}
	updated, err = svc.UpdateProduct(ctx, product.ID, simplecms.UpdateProductRequest{Contents: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.Contents)

	require.NoError(t, svc.DeleteProduct(ctx, product.ID))
	_, err = svc.GetProduct(ctx, product.ID)
	assert.ErrorIs(t, err, simplecms.ErrProductNotFound)
	assert.ErrorIs(t, svc.DeleteProduct(ctx, product.ID), simplecms.ErrProductNotFound)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   simplecms.CreateProductRequest
		field string
	}{
		{"missing title", simplecms.CreateProductRequest{Category: "fire-alarm"}, "title"},
		{"blank title", simplecms.CreateProductRequest{Title: "   ", Brand: "Acme"}, "title"},
		{"missing category and brand", simplecms.CreateProductRequest{Title: "Panel"}, "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tt.req)
			require.Error(t, err)
			assert.True(t, simplecms.IsValidation(err))
			var ve *simplecms.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Contains(t, ve.Err.Error(), tt.field)
		})
	}

	t.Run("bad block", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, simplecms.CreateProductRequest{
			Title: "Panel",
			Brand: "Acme",
			Contents: simplecms.Blocks{
				simplecms.NewTextBlock(simplecms.BlockTitle, "ok"),
				simplecms.NewTableBlock([]string{"a", "b"}, [][]string{{"only one"}}),
			},
		})
		require.Error(t, err)
		assert.True(t, simplecms.IsValidation(err))
		var be *simplecms.BlockError
		require.True(t, errors.As(err, &be))
		assert.Equal(t, 1, be.Index)
		assert.ErrorIs(t, err, simplecms.ErrTableShape)
	})

	products, err := svc.ListProducts(ctx, simplecms.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, products, "rejected products are not stored")
}

func TestUpdatePositions(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	flaky := &flakyRepository{Repository: repo, failPositions: map[uuid.UUID]error{}}
	svc, err := simplecms.New(simplecms.WithRepository(flaky), simplecms.WithClock(clock()))
	require.NoError(t, err)

	var ids []uuid.UUID
	for _, title := range []string{"A", "B", "C"} {
		p, err := svc.CreateProduct(ctx, simplecms.CreateProductRequest{Title: title, Category: "fire-alarm"})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	t.Run("index decides position", func(t *testing.T) {
		err := svc.UpdatePositions(ctx, []simplecms.PositionUpdate{
			{ID: ids[2].String(), Position: 9},
			{ID: ids[0].String(), Position: 9},
			{ID: ids[1].String(), Position: 9},
		})
		require.NoError(t, err)

		list, err := svc.ListProducts(ctx, simplecms.ProductFilter{Category: "fire-alarm"})
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []uuid.UUID{ids[2], ids[0], ids[1]}, []uuid.UUID{list[0].ID, list[1].ID, list[2].ID})
	})

	t.Run("invalid and duplicate ids", func(t *testing.T) {
		err := svc.UpdatePositions(ctx, []simplecms.PositionUpdate{
			{ID: "nope"},
			{ID: ids[0].String()},
			{ID: ids[0].String()},
		})
		require.Error(t, err)
		var ve *simplecms.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Contains(t, ve.Err.Error(), "products[0].id")
		assert.Contains(t, ve.Err.Error(), "products[2].id")
	})

	t.Run("partial failure reports failed ids", func(t *testing.T) {
		boom := errors.New("connection reset")
		flaky.failPositions[ids[1]] = boom
		defer delete(flaky.failPositions, ids[1])
		missing := uuid.New()

		err := svc.UpdatePositions(ctx, []simplecms.PositionUpdate{
			{ID: ids[1].String()},
			{ID: missing.String()},
			{ID: ids[0].String()},
		})
		require.Error(t, err)
		var pe *simplecms.PositionUpdateError
		require.True(t, errors.As(err, &pe))
		require.Len(t, pe.Failures, 2)
		assert.Equal(t, ids[1], pe.Failures[0].ID)
		assert.Equal(t, missing, pe.Failures[1].ID)
		assert.False(t, pe.AllNotFound())
		assert.ErrorIs(t, err, boom)

		var se *simplecms.StorageError
		assert.True(t, errors.As(pe.Failures[0].Err, &se))

		p, err := svc.GetProduct(ctx, ids[0])
		require.NoError(t, err)
		assert.Equal(t, 2, p.Position, "other writes still land")
	})
}

func TestMoveProduct(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for i, title := range []string{"A", "B", "C"} {
		pos := i
		p, err := svc.CreateProduct(ctx, simplecms.CreateProductRequest{Title: title, Brand: "Acme", Position: &pos})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	moved, err := svc.MoveProduct(ctx, simplecms.MoveProductRequest{Brand: "Acme", Index: 0, Direction: simplecms.DirectionDown})
	require.NoError(t, err)
	require.Len(t, moved, 3)
	assert.Equal(t, []uuid.UUID{ids[1], ids[0], ids[2]}, []uuid.UUID{moved[0].ID, moved[1].ID, moved[2].ID})

	list, err := svc.ListProducts(ctx, simplecms.ProductFilter{Brand: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ids[1], ids[0], ids[2]}, []uuid.UUID{list[0].ID, list[1].ID, list[2].ID})

	t.Run("edge move is a no-op", func(t *testing.T) {
		moved, err := svc.MoveProduct(ctx, simplecms.MoveProductRequest{Brand: "Acme", Index: 2, Direction: simplecms.DirectionDown})
		require.NoError(t, err)
		assert.Equal(t, ids[2], moved[2].ID)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := svc.MoveProduct(ctx, simplecms.MoveProductRequest{Brand: "Acme", Index: 3, Direction: simplecms.DirectionUp})
		assert.True(t, simplecms.IsValidation(err))
		_, err = svc.MoveProduct(ctx, simplecms.MoveProductRequest{Brand: "Acme", Index: 0, Direction: "left"})
		assert.True(t, simplecms.IsValidation(err))
	})
}

func TestBulkDeleteAndCatalog(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	for _, req := range []simplecms.CreateProductRequest{
		{Title: "A", Category: "fire-alarm", Brand: "Acme"},
		{Title: "B", Category: "extinguishers", Brand: "Acme"},
		{Title: "C", Category: "fire-alarm", Brand: "Globex"},
		{Title: "D", Brand: "Initech"},
	} {
		_, err := svc.CreateProduct(ctx, req)
		require.NoError(t, err)
	}

	catalog, err := svc.GetCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, simplecms.PredefinedCategories, catalog.Categories)
	assert.Equal(t, []string{"extinguishers"}, catalog.CustomCategories)
	assert.Equal(t, []string{"Acme", "Globex", "Initech"}, catalog.Brands)
	assert.Equal(t, simplecms.BlockTypes, catalog.BlockTypes)

	_, err = svc.BulkDeleteProducts(ctx, simplecms.BulkDeleteRequest{Type: "title", Items: []string{"A"}})
	assert.True(t, simplecms.IsValidation(err))
	_, err = svc.BulkDeleteProducts(ctx, simplecms.BulkDeleteRequest{Type: simplecms.FieldBrand, Items: []string{" ", ""}})
	assert.True(t, simplecms.IsValidation(err))

	count, err := svc.BulkDeleteProducts(ctx, simplecms.BulkDeleteRequest{Type: simplecms.FieldBrand, Items: []string{"Acme", "Nobody"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	brands, err := svc.ListBrands(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Globex", "Initech"}, brands)
}

func TestBlogLifecycle(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	first, err := svc.CreateBlog(ctx, simplecms.CreateBlogRequest{Title: "First"})
	require.NoError(t, err)
	second, err := svc.CreateBlog(ctx, simplecms.CreateBlogRequest{
		Title:    "Second",
		Contents: simplecms.Blocks{simplecms.NewTextBlock(simplecms.BlockContent, "<p>hi</p>")},
	})
	require.NoError(t, err)

	blogs, err := svc.ListBlogs(ctx)
	require.NoError(t, err)
	require.Len(t, blogs, 2)
	assert.Equal(t, second.ID, blogs[0].ID, "newest first")

	blank := " "
	_, err = svc.UpdateBlog(ctx, first.ID, simplecms.UpdateBlogRequest{Title: &blank})
	assert.True(t, simplecms.IsValidation(err))

	_, err = svc.UpdateBlog(ctx, uuid.New(), simplecms.UpdateBlogRequest{})
	assert.ErrorIs(t, err, simplecms.ErrBlogNotFound)

	require.NoError(t, svc.DeleteBlog(ctx, first.ID))
	_, err = svc.GetBlog(ctx, first.ID)
	assert.True(t, simplecms.IsNotFound(err))
}

func TestHomeLogoImages(t *testing.T) {
	svc, blobs := setupService(t)
	ctx := context.Background()

	_, err := svc.CreateHomeLogo(ctx, simplecms.CreateHomeLogoRequest{Type: simplecms.LogoTypeBrand, Value: "Acme"})
	assert.True(t, simplecms.IsValidation(err))

	_, err = svc.CreateHomeLogo(ctx, simplecms.CreateHomeLogoRequest{Type: "partner", Value: "Acme", Image: pngFile("acme.png")})
	assert.True(t, simplecms.IsValidation(err))
	assert.Empty(t, blobs.Keys(), "rejected logos store nothing")

	logo, err := svc.CreateHomeLogo(ctx, simplecms.CreateHomeLogoRequest{
		Type:  simplecms.LogoTypeBrand,
		Value: "Acme",
		Image: pngFile("Acme Logo.png"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(logo.ImageURL, simplecms.PublicUploadPath+simplecms.HomeLogoPrefix))
	require.Len(t, blobs.Keys(), 1)
	firstKey := blobs.Keys()[0]

	value := "Acme Corp"
	updated, err := svc.UpdateHomeLogo(ctx, logo.ID, simplecms.UpdateHomeLogoRequest{Value: &value})
	require.NoError(t, err)
	assert.Equal(t, logo.ImageURL, updated.ImageURL)
	assert.Equal(t, []string{firstKey}, blobs.Keys())

	updated, err = svc.UpdateHomeLogo(ctx, logo.ID, simplecms.UpdateHomeLogoRequest{Image: pngFile("new.png")})
	require.NoError(t, err)
	assert.NotEqual(t, logo.ImageURL, updated.ImageURL)
	keys := blobs.Keys()
	require.Len(t, keys, 1, "replaced image is removed")
	assert.NotEqual(t, firstKey, keys[0])

	require.NoError(t, svc.DeleteHomeLogo(ctx, logo.ID))
	assert.Empty(t, blobs.Keys())
	assert.ErrorIs(t, svc.DeleteHomeLogo(ctx, logo.ID), simplecms.ErrHomeLogoNotFound)
}

func TestSingletons(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	page, err := svc.GetHomePage(ctx)
	require.NoError(t, err)
	assert.Equal(t, simplecms.DefaultWhoWeAre(), page.WhoWeAre)

	tagline := "Protecting what matters"
	page, err = svc.UpdateHomePage(ctx, simplecms.UpdateHomePageRequest{
		WhoWeAre: &simplecms.WhoWeAreUpdate{Tagline: &tagline},
	})
	require.NoError(t, err)
	assert.Equal(t, tagline, page.WhoWeAre.Tagline)
	assert.Equal(t, simplecms.DefaultWhoWeAre().MainHeading, page.WhoWeAre.MainHeading)

	again, err := svc.GetHomePage(ctx)
	require.NoError(t, err)
	assert.Equal(t, tagline, again.WhoWeAre.Tagline)

	info, err := svc.GetContactInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, simplecms.DefaultContactInfo().Location, info.Location)

	info, err = svc.UpdateContactInfo(ctx, simplecms.UpdateContactInfoRequest{
		EmailAddress: &simplecms.EmailAddress{Title: "Write to us"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Write to us", info.EmailAddress.Title)
	assert.NotNil(t, info.EmailAddress.Emails)
	assert.Empty(t, info.EmailAddress.Emails)
	assert.Equal(t, simplecms.DefaultContactInfo().PhoneNumber, info.PhoneNumber)

	_, err = svc.UpdateContactInfo(ctx, simplecms.UpdateContactInfoRequest{
		PhoneNumber: &simplecms.PhoneNumber{Title: "Call", Phones: []string{"+1 555", " "}},
	})
	assert.True(t, simplecms.IsValidation(err))
}

func TestUploads(t *testing.T) {
	svc, blobs := setupService(t)
	ctx := context.Background()

	stored, err := svc.UploadAsset(ctx, simplecms.UploadedFile{
		Filename:    "Manual.PDF",
		ContentType: "application/octet-stream",
		Size:        8,
		Reader:      strings.NewReader("%PDF-1.4"),
	})
	require.NoError(t, err)
	assert.Equal(t, simplecms.UploadPDF, stored.Kind)
	assert.Equal(t, "application/pdf", stored.ContentType)
	assert.Equal(t, simplecms.UploadPrefix+stored.Key, stored.Path)
	assert.Equal(t, simplecms.PublicUploadPath+stored.Key, stored.URL)
	assert.True(t, strings.HasSuffix(stored.Key, ".pdf"))

	rc, meta, err := svc.OpenUpload(ctx, stored.Key)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(body))
	assert.Equal(t, "application/pdf", meta.ContentType)

	_, err = svc.UploadURL(ctx, stored.Key, "Manual.pdf")
	assert.ErrorIs(t, err, simplecms.ErrUnsupportedOperation)

	_, _, err = svc.OpenUpload(ctx, "../"+stored.Key)
	assert.ErrorIs(t, err, simplecms.ErrObjectNotFound)
	_, _, err = svc.OpenUpload(ctx, "missing.pdf")
	assert.True(t, simplecms.IsNotFound(err))

	_, err = svc.UploadAsset(ctx, simplecms.UploadedFile{
		Filename:    "setup.exe",
		ContentType: "application/x-msdownload",
		Size:        2,
		Reader:      strings.NewReader("MZ"),
	})
	assert.True(t, simplecms.IsValidation(err))
	assert.Len(t, blobs.Keys(), 1)

	key, err := svc.UploadHomePageImage(ctx, *pngFile("about.png"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Len(t, blobs.Keys(), 2)
}

func TestUploadsWithoutBlobStore(t *testing.T) {
	svc, err := simplecms.New(simplecms.WithRepository(memory.New()))
	require.NoError(t, err)

	_, err = svc.UploadAsset(context.Background(), *pngFile("a.png"))
	require.Error(t, err)
	assert.ErrorIs(t, err, simplecms.ErrStorageBackendNotFound)
}
