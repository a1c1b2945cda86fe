package services

import (
	"regexp"
	"strings"

	"catalog-service/models"
)

const defaultBrand = "Unknown"

// Column names used when a field has no confirmed mapping.
var defaultColumns = map[string]string{
	models.FieldTitle:       "title",
	models.FieldBrand:       "brand",
	models.FieldDescription: "description",
	models.FieldCategoryID:  "category",
}

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s, collapses every run of characters outside [a-z0-9]
// into one hyphen and trims hyphens from both ends.
func Slugify(s string) string {
	return strings.Trim(nonSlugRun.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func cell(row models.RawRow, mapping models.ColumnMapping, field string) string {
	column, ok := mapping[field]
	if !ok || column == "" {
		column = defaultColumns[field]
	}
	v, _ := row.Get(column)
	return strings.TrimSpace(v)
}

// ValidateProductRow checks one row against the mapping and, when it passes,
// returns the normalized product. Specs, pros, cons and images are never imported.
func ValidateProductRow(row models.RawRow, rowNumber int, mapping models.ColumnMapping) models.ValidationResult {
	errs := []string{}

	title := cell(row, mapping, models.FieldTitle)
	if title == "" {
		errs = append(errs, "Title is missing or empty")
	}
	categoryID := cell(row, mapping, models.FieldCategoryID)
	if categoryID == "" {
		errs = append(errs, "Category is missing or empty")
	}
	if len(errs) > 0 {
		return models.ValidationResult{Valid: false, Errors: errs, RowNumber: rowNumber}
	}

	brand := cell(row, mapping, models.FieldBrand)
	if brand == "" {
		brand = defaultBrand
	}
	return models.ValidationResult{
		Valid:     true,
		Errors:    errs,
		RowNumber: rowNumber,
		Data: &models.NormalizedProduct{
			Title:       title,
			Brand:       brand,
			Description: cell(row, mapping, models.FieldDescription),
			CategoryID:  categoryID,
			Specs:       map[string]interface{}{},
			Pros:        []string{},
			Cons:        []string{},
			Images:      []string{},
			SEO:         models.SEO{Slug: Slugify(title)},
		},
	}
}

// ProgressFunc is told how many rows have been processed out of total.
type ProgressFunc func(current, total int)

// ValidateProducts validates rows in order, numbering them from 1. It never
// fails; invalid rows are reported in their result.
func ValidateProducts(rows []models.RawRow, mapping models.ColumnMapping, onProgress ProgressFunc) []models.ValidationResult {
	results := make([]models.ValidationResult, 0, len(rows))
	for i, row := range rows {
		results = append(results, ValidateProductRow(row, i+1, mapping))
		if onProgress != nil {
			onProgress(i+1, len(rows))
		}
	}
	return results
}

// Summarize counts valid and invalid results.
func Summarize(results []models.ValidationResult) models.ValidationSummary {
	s := models.ValidationSummary{TotalRows: len(results)}
	for _, r := range results {
		if r.Valid {
			s.ValidRows++
		}
	}
	s.InvalidRows = s.TotalRows - s.ValidRows
	return s
}

// SplitResults separates results into the valid records and the failed results.
func SplitResults(results []models.ValidationResult) ([]models.NormalizedProduct, []models.ValidationResult) {
	var valid []models.NormalizedProduct
	var invalid []models.ValidationResult
	for _, r := range results {
		if r.Valid && r.Data != nil {
			valid = append(valid, *r.Data)
			continue
		}
		invalid = append(invalid, r)
	}
	return valid, invalid
}
