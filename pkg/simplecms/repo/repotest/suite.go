// Package repotest holds the behaviour every simplecms.Repository
// implementation must share. Store packages call Run from their tests.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Factory returns an empty repository for one subtest
type Factory func(t *testing.T) simplecms.Repository

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newProduct(title, category, brand string, position int, created time.Time) *simplecms.Product {
	return &simplecms.Product{
		ID:              uuid.New(),
		Title:           title,
		Category:        category,
		Brand:           brand,
		Position:        position,
		VariationImages: []string{},
		Contents: simplecms.Blocks{
			{Type: simplecms.BlockTitle, SubType: simplecms.SubTypeText, Order: 0, Data: simplecms.TextData{Text: title}},
			{Type: simplecms.BlockImage, SubType: simplecms.SubTypeText, Order: 1, Data: simplecms.ImageData{Files: []string{"a.jpg", "b.jpg"}}},
			{Type: simplecms.BlockImage, SubType: simplecms.SubTypeText, Order: 2, Data: simplecms.ImageData{Files: []string{"single.jpg"}, Single: true}},
			{Type: simplecms.BlockSpecification, SubType: simplecms.SubTypeImage, Order: 3, Data: simplecms.FileData{Filename: "spec.png"}},
			{Type: simplecms.BlockTable, SubType: simplecms.SubTypeText, Order: 4, Data: simplecms.TableData{
				Headers: []string{"Model", "Zones"},
				Rows:    [][]string{{"P-1", "2"}, {"P-2", "4"}},
			}},
			{Type: simplecms.BlockVideo, SubType: simplecms.SubTypeText, Order: 5, Data: simplecms.SourceData{Source: "uploads/demo.mp4"}},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func titles(products []*simplecms.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Title)
	}
	return out
}

// Run exercises every repository operation against stores built by newRepo.
func Run(t *testing.T, newRepo Factory) {
	ctx := context.Background()

	t.Run("ProductRoundTrip", func(t *testing.T) {
		repo := newRepo(t)
		product := newProduct("Panel A", "fire-alarm", "", 0, base)
		require.NoError(t, repo.CreateProduct(ctx, product))

		got, err := repo.GetProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, product.Title, got.Title)
		assert.Equal(t, product.Category, got.Category)
		assert.True(t, product.CreatedAt.Equal(got.CreatedAt))
		require.Len(t, got.Contents, len(product.Contents))
		for i, b := range got.Contents {
			assert.Equal(t, product.Contents[i].Type, b.Type)
			assert.Equal(t, product.Contents[i].SubType, b.SubType)
			assert.Equal(t, i, b.Order)
			assert.Equal(t, product.Contents[i].Data, b.Data)
		}
	})

	t.Run("ProductNotFound", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetProduct(ctx, uuid.New())
		assert.ErrorIs(t, err, simplecms.ErrProductNotFound)
		assert.ErrorIs(t, repo.UpdateProduct(ctx, newProduct("x", "c", "", 0, base)), simplecms.ErrProductNotFound)
		assert.ErrorIs(t, repo.DeleteProduct(ctx, uuid.New()), simplecms.ErrProductNotFound)
		assert.ErrorIs(t, repo.SetProductPosition(ctx, uuid.New(), 3), simplecms.ErrProductNotFound)
	})

	t.Run("ProductUpdateReplacesContents", func(t *testing.T) {
		repo := newRepo(t)
		product := newProduct("Panel A", "fire-alarm", "", 0, base)
		require.NoError(t, repo.CreateProduct(ctx, product))

		product.Title = "Panel B"
		product.Contents = simplecms.Blocks{
			{Type: simplecms.BlockContent, SubType: simplecms.SubTypeText, Order: 0, Data: simplecms.TextData{Text: "<p>hi</p>"}},
		}
		require.NoError(t, repo.UpdateProduct(ctx, product))

		got, err := repo.GetProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, "Panel B", got.Title)
		require.Len(t, got.Contents, 1)
		assert.Equal(t, simplecms.TextData{Text: "<p>hi</p>"}, got.Contents[0].Data)
	})

	t.Run("ListProductsOrder", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.CreateProduct(ctx, newProduct("old-0", "fire-alarm", "", 0, base)))
		require.NoError(t, repo.CreateProduct(ctx, newProduct("new-0", "fire-alarm", "", 0, base.Add(time.Hour))))
		require.NoError(t, repo.CreateProduct(ctx, newProduct("first", "fire-alarm", "", -1, base)))
		require.NoError(t, repo.CreateProduct(ctx, newProduct("last", "fire-alarm", "", 5, base)))
		require.NoError(t, repo.CreateProduct(ctx, newProduct("other", "other-products", "Acme", 1, base)))

		all, err := repo.ListProducts(ctx, simplecms.ProductFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "new-0", "old-0", "other", "last"}, titles(all))

		alarms, err := repo.ListProducts(ctx, simplecms.ProductFilter{Category: "fire-alarm"})
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "new-0", "old-0", "last"}, titles(alarms))

		acme, err := repo.ListProducts(ctx, simplecms.ProductFilter{Brand: "Acme"})
		require.NoError(t, err)
		assert.Equal(t, []string{"other"}, titles(acme))

		none, err := repo.ListProducts(ctx, simplecms.ProductFilter{Brand: "missing"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("SetProductPosition", func(t *testing.T) {
		repo := newRepo(t)
		a := newProduct("a", "c", "", 0, base)
		b := newProduct("b", "c", "", 1, base)
		require.NoError(t, repo.CreateProduct(ctx, a))
		require.NoError(t, repo.CreateProduct(ctx, b))

		require.NoError(t, repo.SetProductPosition(ctx, a.ID, 1))
		require.NoError(t, repo.SetProductPosition(ctx, b.ID, 0))

		list, err := repo.ListProducts(ctx, simplecms.ProductFilter{Category: "c"})
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a"}, titles(list))
	})

	t.Run("DistinctValues", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.CreateProduct(ctx, newProduct("1", "fire-alarm", "Acme", 0, base)))
		require.NoError(t, repo.CreateProduct(ctx, newProduct("2", "fire-alarm", "", 0, base)))
		require.NoError(t, repo.CreateProduct(ctx, newProduct("3", "", "Zeta", 0, base)))
		require.NoError(t, repo.CreateProduct(ctx, newProduct("4", "custom", "Acme", 0, base)))

		categories, err := repo.DistinctProductValues(ctx, simplecms.FieldCategory)
		require.NoError(t, err)
		assert.Equal(t, []string{"custom", "fire-alarm"}, categories)

		brands, err := repo.DistinctProductValues(ctx, simplecms.FieldBrand)
		require.NoError(t, err)
		assert.Equal(t, []string{"Acme", "Zeta"}, brands)
	})

	t.Run("DeleteProductsByField", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.CreateProduct(ctx, newProduct("x1", "X", "", 0, base)))
		require.NoError(t, repo.CreateProduct(ctx, newProduct("x2", "X", "", 0, base)))
		require.NoError(t, repo.CreateProduct(ctx, newProduct("y", "Y", "", 0, base)))
		keep := newProduct("z", "Z", "X", 0, base)
		require.NoError(t, repo.CreateProduct(ctx, keep))

		count, err := repo.DeleteProductsByField(ctx, simplecms.FieldCategory, []string{"X", "Y"})
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		rest, err := repo.ListProducts(ctx, simplecms.ProductFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"z"}, titles(rest))

		count, err = repo.DeleteProductsByField(ctx, simplecms.FieldBrand, []string{"nothing"})
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("BlogCRUD", func(t *testing.T) {
		repo := newRepo(t)
		older := &simplecms.Blog{ID: uuid.New(), Title: "older", Contents: simplecms.Blocks{}, CreatedAt: base, UpdatedAt: base}
		newer := &simplecms.Blog{ID: uuid.New(), Title: "newer", Contents: simplecms.Blocks{
			{Type: simplecms.BlockContent, SubType: simplecms.SubTypeText, Data: simplecms.TextData{Text: "body"}},
		}, CreatedAt: base.Add(time.Minute), UpdatedAt: base.Add(time.Minute)}
		require.NoError(t, repo.CreateBlog(ctx, older))
		require.NoError(t, repo.CreateBlog(ctx, newer))

		list, err := repo.ListBlogs(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "newer", list[0].Title)

		newer.Title = "renamed"
		require.NoError(t, repo.UpdateBlog(ctx, newer))
		got, err := repo.GetBlog(ctx, newer.ID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Title)
		require.Len(t, got.Contents, 1)

		require.NoError(t, repo.DeleteBlog(ctx, older.ID))
		_, err = repo.GetBlog(ctx, older.ID)
		assert.ErrorIs(t, err, simplecms.ErrBlogNotFound)
		assert.ErrorIs(t, repo.DeleteBlog(ctx, older.ID), simplecms.ErrBlogNotFound)
	})

	t.Run("HomeLogoCRUD", func(t *testing.T) {
		repo := newRepo(t)
		first := &simplecms.HomeLogo{ID: uuid.New(), ImageURL: "/uploads/home-logos/1.png", Type: simplecms.LogoTypeBrand, Value: "Acme", CreatedAt: base}
		second := &simplecms.HomeLogo{ID: uuid.New(), ImageURL: "/uploads/home-logos/2.png", Type: simplecms.LogoTypeCategory, Value: "fire-alarm", CreatedAt: base.Add(time.Second)}
		require.NoError(t, repo.CreateHomeLogo(ctx, first))
		require.NoError(t, repo.CreateHomeLogo(ctx, second))

		list, err := repo.ListHomeLogos(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)

		first.Value = "Zeta"
		require.NoError(t, repo.UpdateHomeLogo(ctx, first))
		got, err := repo.GetHomeLogo(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "Zeta", got.Value)

		require.NoError(t, repo.DeleteHomeLogo(ctx, first.ID))
		_, err = repo.GetHomeLogo(ctx, first.ID)
		assert.ErrorIs(t, err, simplecms.ErrHomeLogoNotFound)
	})

	t.Run("HomePageSingleton", func(t *testing.T) {
		repo := newRepo(t)
		defaults := &simplecms.HomePage{WhoWeAre: simplecms.DefaultWhoWeAre(), CreatedAt: base, UpdatedAt: base}

		first, err := repo.GetOrCreateHomePage(ctx, defaults)
		require.NoError(t, err)
		assert.Equal(t, simplecms.DefaultWhoWeAre(), first.WhoWeAre)

		other := &simplecms.HomePage{WhoWeAre: simplecms.WhoWeAre{MainHeading: "ignored"}, CreatedAt: base, UpdatedAt: base}
		second, err := repo.GetOrCreateHomePage(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, first.WhoWeAre, second.WhoWeAre)

		second.WhoWeAre.Tagline = "New tagline"
		require.NoError(t, repo.SaveHomePage(ctx, second))
		third, err := repo.GetOrCreateHomePage(ctx, defaults)
		require.NoError(t, err)
		assert.Equal(t, "New tagline", third.WhoWeAre.Tagline)
	})

	t.Run("ContactInfoSingleton", func(t *testing.T) {
		repo := newRepo(t)
		defaults := simplecms.DefaultContactInfo()
		defaults.CreatedAt, defaults.UpdatedAt = base, base

		first, err := repo.GetOrCreateContactInfo(ctx, &defaults)
		require.NoError(t, err)
		assert.Equal(t, defaults.EmailAddress, first.EmailAddress)
		assert.Equal(t, defaults.PhoneNumber, first.PhoneNumber)

		first.Location.Address = "Elsewhere"
		require.NoError(t, repo.SaveContactInfo(ctx, first))
		second, err := repo.GetOrCreateContactInfo(ctx, &defaults)
		require.NoError(t, err)
		assert.Equal(t, "Elsewhere", second.Location.Address)
		assert.Equal(t, defaults.EmailAddress.Emails, second.EmailAddress.Emails)
	})
}
