package services

import (
	"context"
	"time"

	"catalog-service/models"
	"catalog-service/repository"

	"go.uber.org/zap"
)

// BatchImporter writes validated records one at a time. It is not atomic:
// records created before a failure stay created, and nothing is deduplicated.
type BatchImporter struct {
	products repository.ProductRepo
	now      func() time.Time
}

func NewBatchImporter(products repository.ProductRepo) *BatchImporter {
	return &BatchImporter{products: products, now: func() time.Time { return time.Now().UTC() }}
}

// BatchCreateProducts creates records in input order. A failed record is
// reported and the loop continues. Once ctx is done the remaining records are
// reported with the context error.
func (b *BatchImporter) BatchCreateProducts(ctx context.Context, records []models.NormalizedProduct) models.BatchCreateResult {
	result := models.BatchCreateResult{Success: []string{}, Errors: []models.BatchCreateError{}}
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			for _, rest := range records[i:] {
				result.Errors = append(result.Errors, models.BatchCreateError{Product: rest.Title, Error: err.Error()})
			}
			zap.L().Warn("batch import interrupted", zap.Int("remaining", len(records)-i), zap.Error(err))
			break
		}
		id, err := b.products.Create(ctx, b.toProduct(rec))
		if err != nil {
			result.Errors = append(result.Errors, models.BatchCreateError{Product: rec.Title, Error: err.Error()})
			continue
		}
		result.Success = append(result.Success, id)
	}
	zap.L().Info("batch import finished",
		zap.Int("created", len(result.Success)),
		zap.Int("failed", len(result.Errors)))
	return result
}

func (b *BatchImporter) toProduct(rec models.NormalizedProduct) *models.Product {
	now := b.now()
	categoryID := rec.CategoryID
	return &models.Product{
		Title:       rec.Title,
		Description: rec.Description,
		Brand:       rec.Brand,
		CategoryID:  &categoryID,
		Images:      nonNilStrings(rec.Images),
		Specs:       nonNilSpecs(rec.Specs),
		Pros:        nonNilStrings(rec.Pros),
		Cons:        nonNilStrings(rec.Cons),
		SEO:         rec.SEO,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilSpecs(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}
