package simplecms

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalogue entry with an ordered block list.
//
// Position is a sort key for manual ordering inside a category or brand
// listing. It is not unique; ties are broken by CreatedAt, newest first.
type Product struct {
	ID              uuid.UUID `json:"_id"`
	Title           string    `json:"title"`
	Category        string    `json:"category"`
	Brand           string    `json:"brand"`
	CoverImage      string    `json:"coverImage,omitempty"`
	VariationImages []string  `json:"variationImages"`
	Position        int       `json:"position"`
	Contents        Blocks    `json:"contents"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Blog is a post made of an ordered block list.
type Blog struct {
	ID        uuid.UUID `json:"_id"`
	Title     string    `json:"title"`
	Contents  Blocks    `json:"contents"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LogoType says what a home logo links to
type LogoType string

const (
	LogoTypeBrand    LogoType = "brand"
	LogoTypeCategory LogoType = "category"
)

// HomeLogo is an entry of the home-page logo carousel. Value is the brand
// or category name the logo links to.
type HomeLogo struct {
	ID        uuid.UUID `json:"_id"`
	ImageURL  string    `json:"imageUrl"`
	Type      LogoType  `json:"type"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

// WhoWeAre is the "who we are" section of the home page
type WhoWeAre struct {
	Image         string `json:"image"`
	MainHeading   string `json:"mainHeading"`
	Tagline       string `json:"tagline"`
	Description   string `json:"description"`
	PartnerText   string `json:"partnerText"`
	CertifiedText string `json:"certifiedText"`
	QualityText   string `json:"qualityText"`
}

// HomePage is the singleton home-page document
type HomePage struct {
	WhoWeAre  WhoWeAre  `json:"whoWeAre"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EmailAddress is the email section of the contact page
type EmailAddress struct {
	Title  string   `json:"title"`
	Emails []string `json:"emails"`
}

// PhoneNumber is the phone section of the contact page
type PhoneNumber struct {
	Title  string   `json:"title"`
	Phones []string `json:"phones"`
}

// Location is the address section of the contact page
type Location struct {
	Title   string `json:"title"`
	Address string `json:"address"`
}

// ContactInfo is the singleton contact-page document
type ContactInfo struct {
	EmailAddress EmailAddress `json:"emailAddress"`
	PhoneNumber  PhoneNumber  `json:"phoneNumber"`
	Location     Location     `json:"location"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// ProductField names a product attribute used for filtering, distinct
// listings and bulk deletes.
type ProductField string

const (
	FieldCategory ProductField = "category"
	FieldBrand    ProductField = "brand"
)

// Valid reports whether f is category or brand.
func (f ProductField) Valid() bool {
	return f == FieldCategory || f == FieldBrand
}

// ProductFilter narrows a product listing. Empty fields match everything.
type ProductFilter struct {
	Category string
	Brand    string
}

// Matches reports whether p passes the filter.
func (f ProductFilter) Matches(p *Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Brand != "" && p.Brand != f.Brand {
		return false
	}
	return true
}

// ObjectMeta describes a stored blob
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	Metadata    map[string]string
}

// UploadParams contains parameters for storing a blob
type UploadParams struct {
	ObjectKey string
	MimeType  string
}
