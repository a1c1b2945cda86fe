package repository

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a document or object does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrBatchTooLarge is returned when a batch exceeds what the backend can commit atomically.
	ErrBatchTooLarge = errors.New("batch exceeds maximum operation count")
)

// Collections used by the catalog.
const (
	CollectionProducts   = "products"
	CollectionCategories = "categories"
	CollectionPrices     = "prices"
	CollectionAnalytics  = "analytics"
	CollectionSliders    = "sliders"
)

// Document is a schemaless record. Every stored document carries its id under "id".
type Document map[string]interface{}

// Filter is an equality condition. Field may address a nested attribute with a
// dotted path such as "seo.slug". A nil Value matches null or missing fields.
type Filter struct {
	Field string
	Value interface{}
}

// Query selects documents from a collection. A zero Limit means no limit.
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

// Store is the catalog document database.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	List(ctx context.Context, collection string, q Query) ([]Document, error)
	Count(ctx context.Context, collection string, filters ...Filter) (int, error)
	// Create stores doc under a freshly generated id and returns it.
	Create(ctx context.Context, collection string, doc Document) (string, error)
	// Update merges fields into an existing document.
	Update(ctx context.Context, collection, id string, fields Document) error
	Delete(ctx context.Context, collection, id string) error
	Batch() Batch
}

// Batch collects writes that are applied all-or-nothing on Commit.
type Batch interface {
	Update(collection, id string, fields Document)
	Delete(collection, id string)
	Commit(ctx context.Context) error
}

// BlobStore holds uploaded binary objects such as product images and staged CSV files.
type BlobStore interface {
	// Upload writes data under key and returns its public URL.
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	// Delete accepts either an object key or a URL previously returned by Upload.
	Delete(ctx context.Context, keyOrURL string) error
	PresignUpload(ctx context.Context, key, contentType string, expires time.Duration) (PresignedUpload, error)
}

type PresignedUpload struct {
	URL       string            `json:"url"`
	Key       string            `json:"key"`
	PublicURL string            `json:"public_url"`
	Headers   map[string]string `json:"headers,omitempty"`
}
