package controllers

import (
	"context"
	"io"
	"time"

	"catalog-service/models"
	"catalog-service/repository"
	"catalog-service/services"
)

const (
	DefaultCacheTTL       = 10 * time.Minute
	DefaultContextTimeout = 30 * time.Second
)

// CategoryServiceAPI defines the interface for category service operations
type CategoryServiceAPI interface {
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	ListFeaturedCategories(ctx context.Context) ([]*models.Category, error)
	CreateCategory(ctx context.Context, in services.CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id string, patch services.CategoryPatch) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	ForceDeleteCategoryWithReassignment(ctx context.Context, id, reassignTo string) (int, error)
	UpdateCategoryProductCount(ctx context.Context, id string) (int, error)
	UpdateAllCategoryProductCounts(ctx context.Context) (map[string]int, error)
}

// ProductServiceAPI defines the interface for product service operations
type ProductServiceAPI interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	SearchProducts(ctx context.Context, params services.SearchParams) (*services.SearchResult, error)
	ListByCategory(ctx context.Context, categoryID string, limit int) ([]*models.Product, error)
	CountProducts(ctx context.Context) (int, error)
	CreateProduct(ctx context.Context, in services.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, in services.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type PriceServiceAPI interface {
	AddPrice(ctx context.Context, productID string, in services.PriceInput) (*models.Price, error)
	ListPrices(ctx context.Context, productID string) ([]*models.Price, error)
	GetBestPrice(ctx context.Context, productID string) (*models.Price, error)
	CreateProductWithPrices(ctx context.Context, in services.ProductInput, prices []services.PriceInput) (*models.Product, []*models.Price, error)
}

type AnalyticsServiceAPI interface {
	TrackAffiliateClick(ctx context.Context, productID, marketplace, userAgent string) (*models.AnalyticsEvent, error)
	ListEvents(ctx context.Context, productID, eventType string, limit int) ([]*models.AnalyticsEvent, error)
}

type SliderServiceAPI interface {
	ListActiveSliders(ctx context.Context) ([]*models.Slider, error)
	ListSliders(ctx context.Context) ([]*models.Slider, error)
	CreateSlider(ctx context.Context, in services.SliderInput) (*models.Slider, error)
	UpdateSlider(ctx context.Context, id string, in services.SliderInput) (*models.Slider, error)
	DeleteSlider(ctx context.Context, id string) error
}

type ImageServiceAPI interface {
	UploadProductImage(ctx context.Context, productID, filename, contentType string, data []byte) (*services.ImageUploadResult, error)
	PresignProductImage(ctx context.Context, productID, filename, contentType string, expires time.Duration) (repository.PresignedUpload, error)
}

type ImportServiceAPI interface {
	Preview(r io.Reader, sample int) (*models.ImportPreview, error)
	Validate(r io.Reader, mapping models.ColumnMapping) ([]models.RawRow, []models.ValidationResult, error)
	ErrorReport(r io.Reader, mapping models.ColumnMapping) (string, models.ValidationSummary, error)
	Import(ctx context.Context, r io.Reader, opts services.ImportOptions) (*models.BulkImportResult, error)
}

// ImportQueueAPI hands CSV files to the background worker.
type ImportQueueAPI interface {
	Enqueue(ctx context.Context, data []byte, opts services.ImportOptions) (*models.ImportJob, error)
	GetJob(ctx context.Context, id string) (*models.ImportJob, error)
}
