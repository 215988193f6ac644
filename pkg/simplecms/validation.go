package simplecms

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var errCategoryOrBrand = validation.NewError("validation_category_or_brand", "category or brand is required")

func validateProduct(p *Product) error {
	err := validation.ValidateStruct(p,
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.Category, validation.When(p.Brand == "", validation.Required.ErrorObject(errCategoryOrBrand))),
	)
	if err != nil {
		return &ValidationError{Entity: "product", Err: err}
	}
	return nil
}

func validateBlog(b *Blog) error {
	if err := validation.ValidateStruct(b, validation.Field(&b.Title, validation.Required)); err != nil {
		return &ValidationError{Entity: "blog", Err: err}
	}
	return nil
}

func validateHomeLogo(l *HomeLogo) error {
	err := validation.ValidateStruct(l,
		validation.Field(&l.Type, validation.Required, validation.In(LogoTypeBrand, LogoTypeCategory)),
		validation.Field(&l.Value, validation.Required),
		validation.Field(&l.ImageURL, validation.Required),
	)
	if err != nil {
		return &ValidationError{Entity: "home logo", Err: err}
	}
	return nil
}

func validateContactInfo(c *ContactInfo) error {
	errs := validation.Errors{}
	for _, e := range c.EmailAddress.Emails {
		if strings.TrimSpace(e) == "" {
			errs["emailAddress"] = validation.NewError("validation_empty_email", "emails must not be blank")
			break
		}
	}
	for _, p := range c.PhoneNumber.Phones {
		if strings.TrimSpace(p) == "" {
			errs["phoneNumber"] = validation.NewError("validation_empty_phone", "phones must not be blank")
			break
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Entity: "contact info", Err: errs}
	}
	return nil
}

func validateBulkDelete(req *BulkDeleteRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Type, validation.Required, validation.In(FieldCategory, FieldBrand).Error("type must be category or brand")),
		validation.Field(&req.Items, validation.Required, validation.Each(validation.Required)),
	)
	if err != nil {
		return &ValidationError{Entity: "bulk delete", Err: err}
	}
	return nil
}

func blockValidationError(entity string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Entity: entity, Err: err}
}

func trimAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
