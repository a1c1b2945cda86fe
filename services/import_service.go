package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"catalog-service/models"

	"go.uber.org/zap"
)

const (
	DefaultPreviewRows = 5

	MetricProductsImported  = "ProductsImported"
	MetricImportFailures    = "ProductImportFailures"
	MetricImportInvalidRows = "ProductImportInvalidRows"
	MetricImportLatency     = "ProductImportLatency"
)

// ImportOptions controls one import run.
type ImportOptions struct {
	Mapping       models.ColumnMapping
	RefreshCounts bool
	JobID         string
}

// ImportService drives a CSV through parsing, mapping, validation and the
// batch importer.
type ImportService struct {
	importer   *BatchImporter
	categories *CategoryService
	events     EventPublisher
	topicArn   string
	metrics    MetricsRecorder
}

// NewImportService builds the service. events and metrics may be nil.
func NewImportService(importer *BatchImporter, categories *CategoryService, events EventPublisher, topicArn string, metrics MetricsRecorder) *ImportService {
	return &ImportService{
		importer:   importer,
		categories: categories,
		events:     events,
		topicArn:   topicArn,
		metrics:    metrics,
	}
}

// Preview returns the header, a suggested mapping per column and the first sample rows.
func (s *ImportService) Preview(r io.Reader, sample int) (*models.ImportPreview, error) {
	rows, err := ParseCSV(r)
	if err != nil {
		return nil, err
	}
	if sample <= 0 {
		sample = DefaultPreviewRows
	}
	if sample > len(rows) {
		sample = len(rows)
	}
	suggestions := SuggestMappings(Columns(rows))
	return &models.ImportPreview{
		Columns:    Columns(rows),
		Mappings:   suggestions,
		TotalRows:  len(rows),
		SampleRows: rows[:sample],
		Suggested:  MappingFromSuggestions(suggestions),
	}, nil
}

// resolveMapping falls back to the suggested mapping when the caller did not confirm one.
func resolveMapping(rows []models.RawRow, mapping models.ColumnMapping) models.ColumnMapping {
	if len(mapping) > 0 {
		return mapping
	}
	return MappingFromSuggestions(SuggestMappings(Columns(rows)))
}

// Validate parses the file and validates every row without writing anything.
func (s *ImportService) Validate(r io.Reader, mapping models.ColumnMapping) ([]models.RawRow, []models.ValidationResult, error) {
	rows, err := ParseCSV(r)
	if err != nil {
		return nil, nil, err
	}
	mapping = resolveMapping(rows, mapping)
	results := ValidateProducts(rows, mapping, func(current, total int) {
		if current == total || current%500 == 0 {
			zap.L().Debug("validating import rows", zap.Int("current", current), zap.Int("total", total))
		}
	})
	return rows, results, nil
}

// ErrorReport returns the downloadable CSV of rows that failed validation.
func (s *ImportService) ErrorReport(r io.Reader, mapping models.ColumnMapping) (string, models.ValidationSummary, error) {
	rows, results, err := s.Validate(r, mapping)
	if err != nil {
		return "", models.ValidationSummary{}, err
	}
	_, invalid := SplitResults(results)
	report, err := GenerateErrorCSV(invalid, rows)
	if err != nil {
		return "", models.ValidationSummary{}, err
	}
	return report, Summarize(results), nil
}

// Import validates the file and creates every valid row. Invalid rows are
// reported, never written. Re-importing the same file creates duplicates.
func (s *ImportService) Import(ctx context.Context, r io.Reader, opts ImportOptions) (*models.BulkImportResult, error) {
	start := time.Now()
	rows, results, err := s.Validate(r, opts.Mapping)
	if err != nil {
		return nil, err
	}
	valid, invalid := SplitResults(results)

	result := &models.BulkImportResult{
		Summary: Summarize(results),
		Invalid: invalid,
		Created: s.importer.BatchCreateProducts(ctx, valid),
	}
	if result.Invalid == nil {
		result.Invalid = []models.ValidationResult{}
	}

	if opts.RefreshCounts && len(result.Created.Success) > 0 {
		if _, err := s.categories.UpdateAllCategoryProductCounts(ctx); err != nil {
			zap.L().Error("failed to refresh category counts after import", zap.Error(err))
		} else {
			result.CountsRefreshed = true
		}
	}

	zap.L().Info("import completed",
		zap.String("job_id", opts.JobID),
		zap.Int("rows", len(rows)),
		zap.Int("invalid", len(invalid)),
		zap.Int("created", len(result.Created.Success)),
		zap.Int("failed", len(result.Created.Errors)),
		zap.Duration("took", time.Since(start)))

	s.recordMetrics(ctx, result, time.Since(start))
	s.publishCompleted(ctx, opts.JobID, result)
	return result, nil
}

func (s *ImportService) recordMetrics(ctx context.Context, result *models.BulkImportResult, took time.Duration) {
	if s.metrics == nil {
		return
	}
	dims := map[string]string{"Service": "catalog-service"}
	_ = s.metrics.RecordValue(ctx, MetricProductsImported, float64(len(result.Created.Success)), dims)
	_ = s.metrics.RecordValue(ctx, MetricImportFailures, float64(len(result.Created.Errors)), dims)
	_ = s.metrics.RecordValue(ctx, MetricImportInvalidRows, float64(result.Summary.InvalidRows), dims)
	_ = s.metrics.RecordLatency(ctx, MetricImportLatency, took, dims)
}

func (s *ImportService) publishCompleted(ctx context.Context, jobID string, result *models.BulkImportResult) {
	if s.events == nil || s.topicArn == "" {
		return
	}
	payload, err := json.Marshal(ImportCompletedEvent{
		Event:     EventImportCompleted,
		JobID:     jobID,
		TotalRows: result.Summary.TotalRows,
		Invalid:   result.Summary.InvalidRows,
		Created:   len(result.Created.Success),
		Failed:    len(result.Created.Errors),
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		zap.L().Error("failed to marshal import event", zap.Error(err))
		return
	}
	if err := s.events.Publish(ctx, s.topicArn, payload); err != nil {
		zap.L().Error("failed to publish import event", zap.Error(fmt.Errorf("topic %s: %w", s.topicArn, err)))
	}
}
