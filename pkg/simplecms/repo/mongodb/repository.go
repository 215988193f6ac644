package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	ProductsCollection    = "products"
	BlogsCollection       = "blogs"
	HomeLogosCollection   = "homelogos"
	HomePagesCollection   = "homepages"
	ContactInfoCollection = "contactinfos"
)

// Repository implements simplecms.Repository using MongoDB
type Repository struct {
	products *mongo.Collection
	blogs    *mongo.Collection
	logos    *mongo.Collection
	pages    *mongo.Collection
	contacts *mongo.Collection
}

// New creates a repository over the collections of db
func New(db *mongo.Database) *Repository {
	return &Repository{
		products: db.Collection(ProductsCollection),
		blogs:    db.Collection(BlogsCollection),
		logos:    db.Collection(HomeLogosCollection),
		pages:    db.Collection(HomePagesCollection),
		contacts: db.Collection(ContactInfoCollection),
	}
}

// EnsureIndexes creates the indexes used by listings and bulk deletes
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.products.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "brand", Value: 1}}},
		{Keys: bson.D{{Key: "position", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return handleMongoError("create product indexes", err)
	}
	if _, err := r.logos.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	}); err != nil {
		return handleMongoError("create logo indexes", err)
	}
	return nil
}

func handleMongoError(operation string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("duplicate entry in %s", operation)
	}
	if mongo.IsTimeout(err) {
		return fmt.Errorf("database timeout in %s: %w", operation, err)
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

func notFound(operation string, err error, sentinel error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return sentinel
	}
	return handleMongoError(operation, err)
}

// Documents

// blockDoc stores data in the shape it is posted in: a string, an array
// of strings, or a {headers, rows} document.
type blockDoc struct {
	Type    simplecms.BlockType `bson:"type"`
	SubType simplecms.SubType   `bson:"subType"`
	Data    bson.RawValue       `bson:"data"`
	Order   int                 `bson:"order"`
}

type productDoc struct {
	ID              any        `bson:"_id"`
	Title           string     `bson:"title"`
	Category        string     `bson:"category"`
	Brand           string     `bson:"brand"`
	CoverImage      string     `bson:"coverImage,omitempty"`
	VariationImages []string   `bson:"variationImages"`
	Position        int        `bson:"position"`
	Contents        []blockDoc `bson:"contents"`
	CreatedAt       time.Time  `bson:"createdAt"`
	UpdatedAt       time.Time  `bson:"updatedAt"`
}

type blogDoc struct {
	ID        any        `bson:"_id"`
	Title     string     `bson:"title"`
	Contents  []blockDoc `bson:"contents"`
	CreatedAt time.Time  `bson:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt"`
}

type logoDoc struct {
	ID        any                `bson:"_id"`
	ImageURL  string             `bson:"imageUrl"`
	Type      simplecms.LogoType `bson:"type"`
	Value     string             `bson:"value"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type homePageDoc struct {
	WhoWeAre  whoWeAreDoc `bson:"whoWeAre"`
	CreatedAt time.Time   `bson:"createdAt"`
	UpdatedAt time.Time   `bson:"updatedAt"`
}

type whoWeAreDoc struct {
	Image         string `bson:"image"`
	MainHeading   string `bson:"mainHeading"`
	Tagline       string `bson:"tagline"`
	Description   string `bson:"description"`
	PartnerText   string `bson:"partnerText"`
	CertifiedText string `bson:"certifiedText"`
	QualityText   string `bson:"qualityText"`
}

type contactInfoDoc struct {
	EmailAddress struct {
		Title  string   `bson:"title"`
		Emails []string `bson:"emails"`
	} `bson:"emailAddress"`
	PhoneNumber struct {
		Title  string   `bson:"title"`
		Phones []string `bson:"phones"`
	} `bson:"phoneNumber"`
	Location struct {
		Title   string `bson:"title"`
		Address string `bson:"address"`
	} `bson:"location"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func encodeBlocks(blocks simplecms.Blocks) ([]blockDoc, error) {
	docs := make([]blockDoc, 0, len(blocks))
	for i, b := range blocks {
		t, data, err := bson.MarshalValue(b.Value())
		if err != nil {
			return nil, fmt.Errorf("encode block %d: %w", i, err)
		}
		docs = append(docs, blockDoc{
			Type:    b.Type,
			SubType: b.SubType,
			Data:    bson.RawValue{Type: t, Value: data},
			Order:   b.Order,
		})
	}
	return docs, nil
}

func decodeBlockValue(raw bson.RawValue) (any, error) {
	switch raw.Type {
	case 0, bsontype.Null, bsontype.Undefined:
		return nil, nil
	case bsontype.String:
		return raw.StringValue(), nil
	case bsontype.Array:
		var list []string
		if err := raw.Unmarshal(&list); err != nil {
			return nil, err
		}
		return list, nil
	case bsontype.EmbeddedDocument:
		var table simplecms.TableData
		if err := raw.Unmarshal(&table); err != nil {
			return nil, err
		}
		return table, nil
	}
	return nil, fmt.Errorf("unsupported block data type %s", raw.Type)
}

func decodeBlocks(docs []blockDoc) (simplecms.Blocks, error) {
	blocks := make(simplecms.Blocks, 0, len(docs))
	for i, d := range docs {
		if d.SubType == "" {
			d.SubType = simplecms.SubTypeText
		}
		v, err := decodeBlockValue(d.Data)
		if err != nil {
			return nil, fmt.Errorf("decode block %d: %w", i, err)
		}
		data, err := simplecms.DecodeBlockData(d.Type, d.SubType, v)
		if err != nil {
			return nil, fmt.Errorf("decode block %d: %w", i, err)
		}
		blocks = append(blocks, simplecms.ContentBlock{
			Type:    d.Type,
			SubType: d.SubType,
			Order:   d.Order,
			Data:    data,
		})
	}
	return blocks, nil
}

func toProductDoc(p *simplecms.Product) (*productDoc, error) {
	contents, err := encodeBlocks(p.Contents)
	if err != nil {
		return nil, err
	}
	images := p.VariationImages
	if images == nil {
		images = []string{}
	}
	return &productDoc{
		ID:              documentID(p.ID),
		Title:           p.Title,
		Category:        p.Category,
		Brand:           p.Brand,
		CoverImage:      p.CoverImage,
		VariationImages: images,
		Position:        p.Position,
		Contents:        contents,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}, nil
}

func (d *productDoc) product() (*simplecms.Product, error) {
	id, err := parseDocumentID(d.ID)
	if err != nil {
		return nil, fmt.Errorf("product id %v: %w", d.ID, err)
	}
	contents, err := decodeBlocks(d.Contents)
	if err != nil {
		return nil, err
	}
	images := d.VariationImages
	if images == nil {
		images = []string{}
	}
	return &simplecms.Product{
		ID:              id,
		Title:           d.Title,
		Category:        d.Category,
		Brand:           d.Brand,
		CoverImage:      d.CoverImage,
		VariationImages: images,
		Position:        d.Position,
		Contents:        contents,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}, nil
}

// Product operations

func (r *Repository) CreateProduct(ctx context.Context, product *simplecms.Product) error {
	doc, err := toProductDoc(product)
	if err != nil {
		return err
	}
	if _, err := r.products.InsertOne(ctx, doc); err != nil {
		return handleMongoError("create product", err)
	}
	return nil
}

func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*simplecms.Product, error) {
	var doc productDoc
	if err := r.products.FindOne(ctx, bson.M{"_id": documentID(id)}).Decode(&doc); err != nil {
		return nil, notFound("get product", err, simplecms.ErrProductNotFound)
	}
	return doc.product()
}

func (r *Repository) UpdateProduct(ctx context.Context, product *simplecms.Product) error {
	doc, err := toProductDoc(product)
	if err != nil {
		return err
	}
	res, err := r.products.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return handleMongoError("update product", err)
	}
	if res.MatchedCount == 0 {
		return simplecms.ErrProductNotFound
	}
	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := r.products.DeleteOne(ctx, bson.M{"_id": documentID(id)})
	if err != nil {
		return handleMongoError("delete product", err)
	}
	if res.DeletedCount == 0 {
		return simplecms.ErrProductNotFound
	}
	return nil
}

func productQuery(filter simplecms.ProductFilter) bson.M {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Brand != "" {
		query["brand"] = filter.Brand
	}
	return query
}

func (r *Repository) ListProducts(ctx context.Context, filter simplecms.ProductFilter) ([]*simplecms.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "createdAt", Value: -1}})
	cursor, err := r.products.Find(ctx, productQuery(filter), opts)
	if err != nil {
		return nil, handleMongoError("list products", err)
	}
	defer cursor.Close(ctx)

	products := []*simplecms.Product{}
	for cursor.Next(ctx) {
		var doc productDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, handleMongoError("decode product", err)
		}
		product, err := doc.product()
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := cursor.Err(); err != nil {
		return nil, handleMongoError("list products", err)
	}
	return products, nil
}

func (r *Repository) DistinctProductValues(ctx context.Context, field simplecms.ProductField) ([]string, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("unsupported product field %q", field)
	}
	name := string(field)
	raw, err := r.products.Distinct(ctx, name, bson.M{name: bson.M{"$nin": bson.A{"", nil}}})
	if err != nil {
		return nil, handleMongoError("distinct "+name, err)
	}
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			values = append(values, s)
		}
	}
	sort.Strings(values)
	return values, nil
}

func (r *Repository) SetProductPosition(ctx context.Context, id uuid.UUID, position int) error {
	res, err := r.products.UpdateOne(ctx,
		bson.M{"_id": documentID(id)},
		bson.M{"$set": bson.M{"position": position}},
	)
	if err != nil {
		return handleMongoError("set position", err)
	}
	if res.MatchedCount == 0 {
		return simplecms.ErrProductNotFound
	}
	return nil
}

func (r *Repository) DeleteProductsByField(ctx context.Context, field simplecms.ProductField, values []string) (int64, error) {
	if !field.Valid() {
		return 0, fmt.Errorf("unsupported product field %q", field)
	}
	res, err := r.products.DeleteMany(ctx, bson.M{string(field): bson.M{"$in": values}})
	if err != nil {
		return 0, handleMongoError("bulk delete products", err)
	}
	return res.DeletedCount, nil
}

// Blog operations

func toBlogDoc(b *simplecms.Blog) (*blogDoc, error) {
	contents, err := encodeBlocks(b.Contents)
	if err != nil {
		return nil, err
	}
	return &blogDoc{
		ID:        documentID(b.ID),
		Title:     b.Title,
		Contents:  contents,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}, nil
}

func (d *blogDoc) blog() (*simplecms.Blog, error) {
	id, err := parseDocumentID(d.ID)
	if err != nil {
		return nil, fmt.Errorf("blog id %v: %w", d.ID, err)
	}
	contents, err := decodeBlocks(d.Contents)
	if err != nil {
		return nil, err
	}
	return &simplecms.Blog{
		ID:        id,
		Title:     d.Title,
		Contents:  contents,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}, nil
}

func (r *Repository) CreateBlog(ctx context.Context, blog *simplecms.Blog) error {
	doc, err := toBlogDoc(blog)
	if err != nil {
		return err
	}
	if _, err := r.blogs.InsertOne(ctx, doc); err != nil {
		return handleMongoError("create blog", err)
	}
	return nil
}

func (r *Repository) GetBlog(ctx context.Context, id uuid.UUID) (*simplecms.Blog, error) {
	var doc blogDoc
	if err := r.blogs.FindOne(ctx, bson.M{"_id": documentID(id)}).Decode(&doc); err != nil {
		return nil, notFound("get blog", err, simplecms.ErrBlogNotFound)
	}
	return doc.blog()
}

func (r *Repository) UpdateBlog(ctx context.Context, blog *simplecms.Blog) error {
	doc, err := toBlogDoc(blog)
	if err != nil {
		return err
	}
	res, err := r.blogs.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return handleMongoError("update blog", err)
	}
	if res.MatchedCount == 0 {
		return simplecms.ErrBlogNotFound
	}
	return nil
}

func (r *Repository) DeleteBlog(ctx context.Context, id uuid.UUID) error {
	res, err := r.blogs.DeleteOne(ctx, bson.M{"_id": documentID(id)})
	if err != nil {
		return handleMongoError("delete blog", err)
	}
	if res.DeletedCount == 0 {
		return simplecms.ErrBlogNotFound
	}
	return nil
}

func (r *Repository) ListBlogs(ctx context.Context) ([]*simplecms.Blog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.blogs.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, handleMongoError("list blogs", err)
	}
	defer cursor.Close(ctx)

	var docs []blogDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, handleMongoError("list blogs", err)
	}
	blogs := make([]*simplecms.Blog, 0, len(docs))
	for i := range docs {
		blog, err := docs[i].blog()
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, blog)
	}
	return blogs, nil
}

// Home logo operations

func toLogoDoc(l *simplecms.HomeLogo) *logoDoc {
	return &logoDoc{
		ID:        documentID(l.ID),
		ImageURL:  l.ImageURL,
		Type:      l.Type,
		Value:     l.Value,
		CreatedAt: l.CreatedAt,
	}
}

func (d *logoDoc) logo() (*simplecms.HomeLogo, error) {
	id, err := parseDocumentID(d.ID)
	if err != nil {
		return nil, fmt.Errorf("logo id %v: %w", d.ID, err)
	}
	return &simplecms.HomeLogo{
		ID:        id,
		ImageURL:  d.ImageURL,
		Type:      d.Type,
		Value:     d.Value,
		CreatedAt: d.CreatedAt.UTC(),
	}, nil
}

func (r *Repository) CreateHomeLogo(ctx context.Context, logo *simplecms.HomeLogo) error {
	if _, err := r.logos.InsertOne(ctx, toLogoDoc(logo)); err != nil {
		return handleMongoError("create home logo", err)
	}
	return nil
}

func (r *Repository) GetHomeLogo(ctx context.Context, id uuid.UUID) (*simplecms.HomeLogo, error) {
	var doc logoDoc
	if err := r.logos.FindOne(ctx, bson.M{"_id": documentID(id)}).Decode(&doc); err != nil {
		return nil, notFound("get home logo", err, simplecms.ErrHomeLogoNotFound)
	}
	return doc.logo()
}

func (r *Repository) UpdateHomeLogo(ctx context.Context, logo *simplecms.HomeLogo) error {
	doc := toLogoDoc(logo)
	res, err := r.logos.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return handleMongoError("update home logo", err)
	}
	if res.MatchedCount == 0 {
		return simplecms.ErrHomeLogoNotFound
	}
	return nil
}

func (r *Repository) DeleteHomeLogo(ctx context.Context, id uuid.UUID) error {
	res, err := r.logos.DeleteOne(ctx, bson.M{"_id": documentID(id)})
	if err != nil {
		return handleMongoError("delete home logo", err)
	}
	if res.DeletedCount == 0 {
		return simplecms.ErrHomeLogoNotFound
	}
	return nil
}

func (r *Repository) ListHomeLogos(ctx context.Context) ([]*simplecms.HomeLogo, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.logos.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, handleMongoError("list home logos", err)
	}
	defer cursor.Close(ctx)

	var docs []logoDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, handleMongoError("list home logos", err)
	}
	logos := make([]*simplecms.HomeLogo, 0, len(docs))
	for i := range docs {
		logo, err := docs[i].logo()
		if err != nil {
			return nil, err
		}
		logos = append(logos, logo)
	}
	return logos, nil
}

// Singleton operations

// Singleton collections hold one document. Rows written by other
// deployments may carry any _id, so lookups match the oldest document
// instead of a fixed key. Two concurrent first reads can both insert; every
// later read and write still targets the oldest.
var singletonSort = bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}

// getOrCreate returns the singleton document, inserting defaults when the
// collection is empty.
func getOrCreate(ctx context.Context, coll *mongo.Collection, defaults any, out any) error {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetSort(singletonSort).
		SetReturnDocument(options.After)
	return coll.FindOneAndUpdate(ctx, bson.M{}, bson.M{"$setOnInsert": defaults}, opts).Decode(out)
}

// saveSingleton applies update to the singleton document, creating it when
// the collection is empty.
func saveSingleton(ctx context.Context, coll *mongo.Collection, update bson.M) error {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetSort(singletonSort).
		SetReturnDocument(options.After)
	return coll.FindOneAndUpdate(ctx, bson.M{}, update, opts).Err()
}

func toHomePageDoc(p *simplecms.HomePage) homePageDoc {
	return homePageDoc{
		WhoWeAre:  whoWeAreDoc(p.WhoWeAre),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (d homePageDoc) page() *simplecms.HomePage {
	return &simplecms.HomePage{
		WhoWeAre:  simplecms.WhoWeAre(d.WhoWeAre),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func (r *Repository) GetOrCreateHomePage(ctx context.Context, defaults *simplecms.HomePage) (*simplecms.HomePage, error) {
	var doc homePageDoc
	err := getOrCreate(ctx, r.pages, toHomePageDoc(defaults), &doc)
	if err != nil {
		return nil, handleMongoError("get home page", err)
	}
	return doc.page(), nil
}

func (r *Repository) SaveHomePage(ctx context.Context, page *simplecms.HomePage) error {
	doc := toHomePageDoc(page)
	err := saveSingleton(ctx, r.pages, bson.M{
		"$set":         bson.M{"whoWeAre": doc.WhoWeAre, "updatedAt": doc.UpdatedAt},
		"$setOnInsert": bson.M{"createdAt": doc.CreatedAt},
	})
	if err != nil {
		return handleMongoError("save home page", err)
	}
	return nil
}

func toContactInfoDoc(info *simplecms.ContactInfo) contactInfoDoc {
	var doc contactInfoDoc
	doc.EmailAddress.Title = info.EmailAddress.Title
	doc.EmailAddress.Emails = append([]string{}, info.EmailAddress.Emails...)
	doc.PhoneNumber.Title = info.PhoneNumber.Title
	doc.PhoneNumber.Phones = append([]string{}, info.PhoneNumber.Phones...)
	doc.Location.Title = info.Location.Title
	doc.Location.Address = info.Location.Address
	doc.CreatedAt = info.CreatedAt
	doc.UpdatedAt = info.UpdatedAt
	return doc
}

func (d contactInfoDoc) info() *simplecms.ContactInfo {
	info := &simplecms.ContactInfo{
		EmailAddress: simplecms.EmailAddress{Title: d.EmailAddress.Title, Emails: d.EmailAddress.Emails},
		PhoneNumber:  simplecms.PhoneNumber{Title: d.PhoneNumber.Title, Phones: d.PhoneNumber.Phones},
		Location:     simplecms.Location{Title: d.Location.Title, Address: d.Location.Address},
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
	if info.EmailAddress.Emails == nil {
		info.EmailAddress.Emails = []string{}
	}
	if info.PhoneNumber.Phones == nil {
		info.PhoneNumber.Phones = []string{}
	}
	return info
}

func (r *Repository) GetOrCreateContactInfo(ctx context.Context, defaults *simplecms.ContactInfo) (*simplecms.ContactInfo, error) {
	var doc contactInfoDoc
	err := getOrCreate(ctx, r.contacts, toContactInfoDoc(defaults), &doc)
	if err != nil {
		return nil, handleMongoError("get contact info", err)
	}
	return doc.info(), nil
}

func (r *Repository) SaveContactInfo(ctx context.Context, info *simplecms.ContactInfo) error {
	doc := toContactInfoDoc(info)
	err := saveSingleton(ctx, r.contacts, bson.M{
		"$set": bson.M{
			"emailAddress": doc.EmailAddress,
			"phoneNumber":  doc.PhoneNumber,
			"location":     doc.Location,
			"updatedAt":    doc.UpdatedAt,
		},
		"$setOnInsert": bson.M{"createdAt": doc.CreatedAt},
	})
	if err != nil {
		return handleMongoError("save contact info", err)
	}
	return nil
}

var _ simplecms.Repository = (*Repository)(nil)
