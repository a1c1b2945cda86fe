package services

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// IsSlug reports whether s holds only lowercase letters, digits and hyphens.
func IsSlug(s string) bool { return slugPattern.MatchString(s) }

// RegisterSlugRule adds the "slug" tag to v. Every validator that checks
// slugs goes through here so products and categories accept the same values.
func RegisterSlugRule(v *validator.Validate) error {
	return v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return IsSlug(fl.Field().String())
	})
}

var categoryValidate = newCategoryValidator()

func newCategoryValidator() *validator.Validate {
	v := validator.New()
	if err := RegisterSlugRule(v); err != nil {
		panic(err)
	}
	return v
}

// Messages keyed by struct field and failing tag.
var categoryMessages = map[string]string{
	"Name.required":   "Category name is required",
	"Name.max":        "Category name must be less than 100 characters",
	"Slug.required":   "Category slug is required",
	"Slug.slug":       "Category slug must contain only lowercase letters, numbers, and hyphens",
	"Description.max": "Description must be less than 500 characters",
	"Order.gte":       "Order must be between 0 and 1000",
	"Order.lte":       "Order must be between 0 and 1000",
}

// GenerateCategorySlug derives a URL-safe slug from a category name.
func GenerateCategorySlug(name string) string {
	return Slugify(strings.TrimSpace(name))
}

// ValidateCategoryData returns nil when in is acceptable, else a *ValidationError.
func ValidateCategoryData(in CategoryInput) error {
	in.Name = strings.TrimSpace(in.Name)
	err := categoryValidate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := categoryMessages[fe.StructField()+"."+fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		msgs = append(msgs, msg)
	}
	return &ValidationError{Errors: msgs}
}
