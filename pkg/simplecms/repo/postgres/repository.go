package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

//go:embed schema.sql
var schema string

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements simplecms.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Migrate creates the tables and indexes if they do not exist
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return r.handlePostgresError("migrate", err)
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("duplicate entry in %s", pgErr.TableName)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "23514": // check_violation
			return fmt.Errorf("value rejected by constraint %s", pgErr.ConstraintName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

// notFound maps pgx.ErrNoRows to the entity's sentinel.
func (r *Repository) notFound(operation string, err error, sentinel error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	return r.handlePostgresError(operation, err)
}

func column(field simplecms.ProductField) (string, error) {
	switch field {
	case simplecms.FieldCategory:
		return "category", nil
	case simplecms.FieldBrand:
		return "brand", nil
	}
	return "", fmt.Errorf("unsupported product field %q", field)
}

// Product operations

const productColumns = `id, title, category, brand, cover_image, variation_images, position, contents, created_at, updated_at`

func scanProduct(row pgx.Row) (*simplecms.Product, error) {
	var p simplecms.Product
	var variations, contents []byte
	err := row.Scan(
		&p.ID, &p.Title, &p.Category, &p.Brand, &p.CoverImage,
		&variations, &p.Position, &contents, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(variations, &p.VariationImages); err != nil {
		return nil, fmt.Errorf("decode variation images: %w", err)
	}
	if err := json.Unmarshal(contents, &p.Contents); err != nil {
		return nil, fmt.Errorf("decode contents: %w", err)
	}
	return &p, nil
}

func encodeProduct(p *simplecms.Product) (variations, contents []byte, err error) {
	images := p.VariationImages
	if images == nil {
		images = []string{}
	}
	if variations, err = json.Marshal(images); err != nil {
		return nil, nil, err
	}
	if contents, err = json.Marshal(p.Contents); err != nil {
		return nil, nil, err
	}
	return variations, contents, nil
}

func (r *Repository) CreateProduct(ctx context.Context, product *simplecms.Product) error {
	variations, contents, err := encodeProduct(product)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.db.Exec(ctx, query,
		product.ID, product.Title, product.Category, product.Brand, product.CoverImage,
		variations, product.Position, contents, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return r.handlePostgresError("create product", err)
	}
	return nil
}

func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*simplecms.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	product, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.notFound("get product", err, simplecms.ErrProductNotFound)
	}
	return product, nil
}

func (r *Repository) UpdateProduct(ctx context.Context, product *simplecms.Product) error {
	variations, contents, err := encodeProduct(product)
	if err != nil {
		return err
	}
	query := `
		UPDATE products
		SET title = $2, category = $3, brand = $4, cover_image = $5,
			variation_images = $6, position = $7, contents = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		product.ID, product.Title, product.Category, product.Brand, product.CoverImage,
		variations, product.Position, contents, product.UpdatedAt,
	)
	if err != nil {
		return r.handlePostgresError("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrProductNotFound
	}
	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrProductNotFound
	}
	return nil
}

func (r *Repository) ListProducts(ctx context.Context, filter simplecms.ProductFilter) ([]*simplecms.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE ($1 = '' OR category = $1) AND ($2 = '' OR brand = $2)
		ORDER BY position ASC, created_at DESC`
	rows, err := r.db.Query(ctx, query, filter.Category, filter.Brand)
	if err != nil {
		return nil, r.handlePostgresError("list products", err)
	}
	defer rows.Close()

	products := []*simplecms.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan product", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list products", err)
	}
	return products, nil
}

func (r *Repository) DistinctProductValues(ctx context.Context, field simplecms.ProductField) ([]string, error) {
	col, err := column(field)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT DISTINCT %[1]s COLLATE "C" FROM products WHERE %[1]s <> '' ORDER BY 1`, col)
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("distinct "+col, err)
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, r.handlePostgresError("distinct "+col, err)
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

func (r *Repository) SetProductPosition(ctx context.Context, id uuid.UUID, position int) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET position = $2 WHERE id = $1`, id, position)
	if err != nil {
		return r.handlePostgresError("set position", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrProductNotFound
	}
	return nil
}

func (r *Repository) DeleteProductsByField(ctx context.Context, field simplecms.ProductField, values []string) (int64, error) {
	col, err := column(field)
	if err != nil {
		return 0, err
	}
	tag, err := r.db.Exec(ctx, fmt.Sprintf(`DELETE FROM products WHERE %s = ANY($1)`, col), values)
	if err != nil {
		return 0, r.handlePostgresError("bulk delete products", err)
	}
	return tag.RowsAffected(), nil
}

// Blog operations

const blogColumns = `id, title, contents, created_at, updated_at`

func scanBlog(row pgx.Row) (*simplecms.Blog, error) {
	var b simplecms.Blog
	var contents []byte
	if err := row.Scan(&b.ID, &b.Title, &contents, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(contents, &b.Contents); err != nil {
		return nil, fmt.Errorf("decode contents: %w", err)
	}
	return &b, nil
}

func (r *Repository) CreateBlog(ctx context.Context, blog *simplecms.Blog) error {
	contents, err := json.Marshal(blog.Contents)
	if err != nil {
		return err
	}
	query := `INSERT INTO blogs (` + blogColumns + `) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.Exec(ctx, query, blog.ID, blog.Title, contents, blog.CreatedAt, blog.UpdatedAt); err != nil {
		return r.handlePostgresError("create blog", err)
	}
	return nil
}

func (r *Repository) GetBlog(ctx context.Context, id uuid.UUID) (*simplecms.Blog, error) {
	blog, err := scanBlog(r.db.QueryRow(ctx, `SELECT `+blogColumns+` FROM blogs WHERE id = $1`, id))
	if err != nil {
		return nil, r.notFound("get blog", err, simplecms.ErrBlogNotFound)
	}
	return blog, nil
}

func (r *Repository) UpdateBlog(ctx context.Context, blog *simplecms.Blog) error {
	contents, err := json.Marshal(blog.Contents)
	if err != nil {
		return err
	}
	query := `UPDATE blogs SET title = $2, contents = $3, updated_at = $4 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, blog.ID, blog.Title, contents, blog.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update blog", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrBlogNotFound
	}
	return nil
}

func (r *Repository) DeleteBlog(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete blog", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrBlogNotFound
	}
	return nil
}

func (r *Repository) ListBlogs(ctx context.Context) ([]*simplecms.Blog, error) {
	rows, err := r.db.Query(ctx, `SELECT `+blogColumns+` FROM blogs ORDER BY created_at DESC`)
	if err != nil {
		return nil, r.handlePostgresError("list blogs", err)
	}
	defer rows.Close()

	blogs := []*simplecms.Blog{}
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan blog", err)
		}
		blogs = append(blogs, blog)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list blogs", err)
	}
	return blogs, nil
}

// Home logo operations

const logoColumns = `id, image_url, type, value, created_at`

func scanLogo(row pgx.Row) (*simplecms.HomeLogo, error) {
	var l simplecms.HomeLogo
	if err := row.Scan(&l.ID, &l.ImageURL, &l.Type, &l.Value, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repository) CreateHomeLogo(ctx context.Context, logo *simplecms.HomeLogo) error {
	query := `INSERT INTO home_logos (` + logoColumns + `) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.Exec(ctx, query, logo.ID, logo.ImageURL, string(logo.Type), logo.Value, logo.CreatedAt); err != nil {
		return r.handlePostgresError("create home logo", err)
	}
	return nil
}

func (r *Repository) GetHomeLogo(ctx context.Context, id uuid.UUID) (*simplecms.HomeLogo, error) {
	logo, err := scanLogo(r.db.QueryRow(ctx, `SELECT `+logoColumns+` FROM home_logos WHERE id = $1`, id))
	if err != nil {
		return nil, r.notFound("get home logo", err, simplecms.ErrHomeLogoNotFound)
	}
	return logo, nil
}

func (r *Repository) UpdateHomeLogo(ctx context.Context, logo *simplecms.HomeLogo) error {
	query := `UPDATE home_logos SET image_url = $2, type = $3, value = $4 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, logo.ID, logo.ImageURL, string(logo.Type), logo.Value)
	if err != nil {
		return r.handlePostgresError("update home logo", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrHomeLogoNotFound
	}
	return nil
}

func (r *Repository) DeleteHomeLogo(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM home_logos WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete home logo", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrHomeLogoNotFound
	}
	return nil
}

func (r *Repository) ListHomeLogos(ctx context.Context) ([]*simplecms.HomeLogo, error) {
	rows, err := r.db.Query(ctx, `SELECT `+logoColumns+` FROM home_logos ORDER BY created_at DESC`)
	if err != nil {
		return nil, r.handlePostgresError("list home logos", err)
	}
	defer rows.Close()

	logos := []*simplecms.HomeLogo{}
	for rows.Next() {
		logo, err := scanLogo(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan home logo", err)
		}
		logos = append(logos, logo)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list home logos", err)
	}
	return logos, nil
}

// Singleton operations

func (r *Repository) GetOrCreateHomePage(ctx context.Context, defaults *simplecms.HomePage) (*simplecms.HomePage, error) {
	who, err := json.Marshal(defaults.WhoWeAre)
	if err != nil {
		return nil, err
	}
	insert := `
		INSERT INTO home_page (id, who_we_are, created_at, updated_at)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO NOTHING`
	if _, err := r.db.Exec(ctx, insert, who, defaults.CreatedAt, defaults.UpdatedAt); err != nil {
		return nil, r.handlePostgresError("create home page", err)
	}

	var page simplecms.HomePage
	var stored []byte
	err = r.db.QueryRow(ctx, `SELECT who_we_are, created_at, updated_at FROM home_page WHERE id = 1`).
		Scan(&stored, &page.CreatedAt, &page.UpdatedAt)
	if err != nil {
		return nil, r.handlePostgresError("get home page", err)
	}
	if err := json.Unmarshal(stored, &page.WhoWeAre); err != nil {
		return nil, fmt.Errorf("decode who we are: %w", err)
	}
	return &page, nil
}

func (r *Repository) SaveHomePage(ctx context.Context, page *simplecms.HomePage) error {
	who, err := json.Marshal(page.WhoWeAre)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO home_page (id, who_we_are, created_at, updated_at)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET who_we_are = EXCLUDED.who_we_are, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.Exec(ctx, query, who, page.CreatedAt, page.UpdatedAt); err != nil {
		return r.handlePostgresError("save home page", err)
	}
	return nil
}

func encodeContactInfo(info *simplecms.ContactInfo) (emails, phones, location []byte, err error) {
	if emails, err = json.Marshal(info.EmailAddress); err != nil {
		return
	}
	if phones, err = json.Marshal(info.PhoneNumber); err != nil {
		return
	}
	location, err = json.Marshal(info.Location)
	return
}

func (r *Repository) GetOrCreateContactInfo(ctx context.Context, defaults *simplecms.ContactInfo) (*simplecms.ContactInfo, error) {
	emails, phones, location, err := encodeContactInfo(defaults)
	if err != nil {
		return nil, err
	}
	insert := `
		INSERT INTO contact_info (id, email_address, phone_number, location, created_at, updated_at)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`
	if _, err := r.db.Exec(ctx, insert, emails, phones, location, defaults.CreatedAt, defaults.UpdatedAt); err != nil {
		return nil, r.handlePostgresError("create contact info", err)
	}

	var info simplecms.ContactInfo
	err = r.db.QueryRow(ctx, `
		SELECT email_address, phone_number, location, created_at, updated_at
		FROM contact_info WHERE id = 1`).
		Scan(&emails, &phones, &location, &info.CreatedAt, &info.UpdatedAt)
	if err != nil {
		return nil, r.handlePostgresError("get contact info", err)
	}
	if err := json.Unmarshal(emails, &info.EmailAddress); err != nil {
		return nil, fmt.Errorf("decode email address: %w", err)
	}
	if err := json.Unmarshal(phones, &info.PhoneNumber); err != nil {
		return nil, fmt.Errorf("decode phone number: %w", err)
	}
	if err := json.Unmarshal(location, &info.Location); err != nil {
		return nil, fmt.Errorf("decode location: %w", err)
	}
	return &info, nil
}

func (r *Repository) SaveContactInfo(ctx context.Context, info *simplecms.ContactInfo) error {
	emails, phones, location, err := encodeContactInfo(info)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO contact_info (id, email_address, phone_number, location, created_at, updated_at)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			email_address = EXCLUDED.email_address,
			phone_number = EXCLUDED.phone_number,
			location = EXCLUDED.location,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.db.Exec(ctx, query, emails, phones, location, info.CreatedAt, info.UpdatedAt); err != nil {
		return r.handlePostgresError("save contact info", err)
	}
	return nil
}

var _ simplecms.Repository = (*Repository)(nil)
