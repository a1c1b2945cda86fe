package models

import "time"

// Catalog fields a CSV column can be mapped to. FieldSkip leaves the column unmapped.
const (
	FieldTitle       = "title"
	FieldBrand       = "brand"
	FieldDescription = "description"
	FieldCategoryID  = "category_id"
	FieldImages      = "images"
	FieldSpecs       = "specs"
	FieldSkip        = ""
)

// RawRow is one parsed CSV data line. Columns keeps the header order.
type RawRow struct {
	Columns []string          `json:"columns"`
	Values  map[string]string `json:"values"`
}

// Get returns the cell for column and whether the column exists.
func (r RawRow) Get(column string) (string, bool) {
	v, ok := r.Values[column]
	return v, ok
}

// FieldMapping is a proposed or confirmed column to field association.
type FieldMapping struct {
	ColumnName  string `json:"column_name"`
	MappedField string `json:"mapped_field"`
	Confidence  int    `json:"confidence"`
}

// ColumnMapping maps a catalog field to the CSV column that feeds it.
// Unmapped fields are absent.
type ColumnMapping map[string]string

// NormalizedProduct is the store-ready record produced by row validation.
type NormalizedProduct struct {
	Title       string                 `json:"title"`
	Brand       string                 `json:"brand"`
	Description string                 `json:"description"`
	CategoryID  string                 `json:"category_id"`
	Specs       map[string]interface{} `json:"specs"`
	Pros        []string               `json:"pros"`
	Cons        []string               `json:"cons"`
	Images      []string               `json:"images"`
	SEO         SEO                    `json:"seo"`
}

// ValidationResult is the outcome for one CSV row. Data is set only when Valid.
type ValidationResult struct {
	Valid     bool               `json:"valid"`
	Errors    []string           `json:"errors"`
	RowNumber int                `json:"row_number"`
	Data      *NormalizedProduct `json:"data,omitempty"`
}

type BatchCreateError struct {
	Product string `json:"product"`
	Error   string `json:"error"`
}

// BatchCreateResult lists created ids in input order and the records that failed.
type BatchCreateResult struct {
	Success []string           `json:"success"`
	Errors  []BatchCreateError `json:"errors"`
}

type ValidationSummary struct {
	TotalRows   int `json:"total_rows"`
	ValidRows   int `json:"valid_rows"`
	InvalidRows int `json:"invalid_rows"`
}

type ImportPreview struct {
	Columns    []string       `json:"columns"`
	Mappings   []FieldMapping `json:"mappings"`
	TotalRows  int            `json:"total_rows"`
	SampleRows []RawRow       `json:"sample_rows"`
	Suggested  ColumnMapping  `json:"suggested_mapping"`
}

type BulkImportResult struct {
	Summary         ValidationSummary  `json:"summary"`
	Invalid         []ValidationResult `json:"invalid"`
	Created         BatchCreateResult  `json:"created"`
	CountsRefreshed bool               `json:"counts_refreshed"`
}

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobFailed     JobStatus = "failed"
)

// ImportJob tracks an asynchronous import. The CSV itself lives in the blob store.
type ImportJob struct {
	ID            string            `json:"id"`
	Status        JobStatus         `json:"status"`
	BlobKey       string            `json:"blob_key"`
	Mapping       ColumnMapping     `json:"mapping"`
	RefreshCounts bool              `json:"refresh_counts"`
	CreatedAt     time.Time         `json:"created_at"`
	FinishedAt    *time.Time        `json:"finished_at,omitempty"`
	Result        *BulkImportResult `json:"result,omitempty"`
	Error         string            `json:"error,omitempty"`
}
