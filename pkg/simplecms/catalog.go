package simplecms

// Category is a predefined product category
type Category struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// PredefinedCategories is the category table shared by validation and the
// catalogue endpoint. Products may also carry a custom category.
var PredefinedCategories = []Category{
	{Value: "fire-alarm", Label: "Fire Alarm System"},
	{Value: "other-products", Label: "Other Products"},
	{Value: "fire-suppression", Label: "Fire Suppression System"},
}

// IsPredefinedCategory reports whether value is in PredefinedCategories.
func IsPredefinedCategory(value string) bool {
	for _, c := range PredefinedCategories {
		if c.Value == value {
			return true
		}
	}
	return false
}

// CategoryLabel returns the display label for a category value. Custom
// categories are their own label.
func CategoryLabel(value string) string {
	for _, c := range PredefinedCategories {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}

// Catalog is the enumeration served to the admin UI
type Catalog struct {
	Categories       []Category  `json:"categories"`
	CustomCategories []string    `json:"customCategories"`
	Brands           []string    `json:"brands"`
	BlockTypes       []BlockType `json:"blockTypes"`
}
