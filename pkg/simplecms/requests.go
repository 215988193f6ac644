package simplecms

import "io"

// Request DTOs. Field tags match the JSON bodies posted by the admin UI.

// CreateProductRequest contains parameters for creating a product
type CreateProductRequest struct {
	Title           string   `json:"title"`
	Category        string   `json:"category"`
	Brand           string   `json:"brand"`
	CoverImage      string   `json:"coverImage"`
	VariationImages []string `json:"variationImages"`
	Position        *int     `json:"position"`
	Contents        Blocks   `json:"contents"`
}

// UpdateProductRequest contains parameters for updating a product. Nil
// fields keep the stored value. A non-nil Contents replaces the whole
// block list.
type UpdateProductRequest struct {
	Title           *string   `json:"title"`
	Category        *string   `json:"category"`
	Brand           *string   `json:"brand"`
	CoverImage      *string   `json:"coverImage"`
	VariationImages *[]string `json:"variationImages"`
	Position        *int      `json:"position"`
	Contents        *Blocks   `json:"contents"`
}

// PositionUpdate is one entry of a bulk position write. Position is
// accepted for compatibility; the index in the submitted list wins.
type PositionUpdate struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// MoveProductRequest swaps one product of a filtered listing with its
// neighbour and persists the resulting order.
type MoveProductRequest struct {
	Category  string    `json:"category"`
	Brand     string    `json:"brand"`
	Index     int       `json:"index"`
	Direction Direction `json:"direction"`
}

// BulkDeleteRequest deletes every product whose Type field is in Items
type BulkDeleteRequest struct {
	Type  ProductField `json:"type"`
	Items []string     `json:"items"`
}

// CreateBlogRequest contains parameters for creating a blog post
type CreateBlogRequest struct {
	Title    string `json:"title"`
	Contents Blocks `json:"contents"`
}

// UpdateBlogRequest contains parameters for updating a blog post
type UpdateBlogRequest struct {
	Title    *string `json:"title"`
	Contents *Blocks `json:"contents"`
}

// UploadedFile is a file received from a client
type UploadedFile struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// StoredFile describes a file accepted by the upload endpoint. Key is the
// blob key; Path is the uploads/ reference embedded in video and manual
// blocks; URL is the public download path.
type StoredFile struct {
	Key         string     `json:"filename"`
	Path        string     `json:"path"`
	URL         string     `json:"url"`
	Kind        UploadKind `json:"kind"`
	ContentType string     `json:"contentType"`
	Size        int64      `json:"size"`
}

// CreateHomeLogoRequest contains parameters for creating a home logo
type CreateHomeLogoRequest struct {
	Type  LogoType
	Value string
	Image *UploadedFile
}

// UpdateHomeLogoRequest contains parameters for updating a home logo. A
// non-nil Image replaces the stored image.
type UpdateHomeLogoRequest struct {
	Type  *LogoType
	Value *string
	Image *UploadedFile
}

// WhoWeAreUpdate holds the who-we-are fields to overwrite
type WhoWeAreUpdate struct {
	Image         *string `json:"image"`
	MainHeading   *string `json:"mainHeading"`
	Tagline       *string `json:"tagline"`
	Description   *string `json:"description"`
	PartnerText   *string `json:"partnerText"`
	CertifiedText *string `json:"certifiedText"`
	QualityText   *string `json:"qualityText"`
}

// UpdateHomePageRequest merges the submitted fields into the home page
type UpdateHomePageRequest struct {
	WhoWeAre *WhoWeAreUpdate `json:"whoWeAre"`
}

// UpdateContactInfoRequest replaces each section that is present
type UpdateContactInfoRequest struct {
	EmailAddress *EmailAddress `json:"emailAddress"`
	PhoneNumber  *PhoneNumber  `json:"phoneNumber"`
	Location     *Location     `json:"location"`
}
