package controllers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"catalog-service/models"
	"catalog-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ImportHandler serves the bulk CSV import session: preview, validate,
// error report, import and job status.
type ImportHandler struct {
	service   ImportServiceAPI
	queue     ImportQueueAPI
	cache     *CacheManager
	validator *RequestValidator
	timeout   time.Duration
}

// NewImportHandler builds the handler. queue may be nil, in which case async imports are refused.
func NewImportHandler(s ImportServiceAPI, queue ImportQueueAPI, cache *CacheManager, v *RequestValidator) *ImportHandler {
	return &ImportHandler{
		service:   s,
		queue:     queue,
		cache:     cache,
		validator: v,
		timeout:   DefaultContextTimeout,
	}
}

// readCSV returns the bytes of the uploaded "file" field.
func (h *ImportHandler) readCSV(c *gin.Context) ([]byte, error) {
	file, err := h.validator.CSVFile(c)
	if err != nil {
		return nil, err
	}
	fh, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer fh.Close()
	return io.ReadAll(fh)
}

func (h *ImportHandler) Preview(c *gin.Context) {
	data, err := h.readCSV(c)
	if err != nil {
		respondError(c, "Failed to read import file", err)
		return
	}
	sample := services.DefaultPreviewRows
	if raw := c.Query("rows"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rows value"})
			return
		}
		if n > MaxPreviewRows {
			n = MaxPreviewRows
		}
		sample = n
	}

	preview, err := h.service.Preview(bytes.NewReader(data), sample)
	if err != nil {
		respondError(c, "Import preview failed", err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

func (h *ImportHandler) Validate(c *gin.Context) {
	data, mapping, ok := h.fileAndMapping(c)
	if !ok {
		return
	}
	_, results, err := h.service.Validate(bytes.NewReader(data), mapping)
	if err != nil {
		respondError(c, "Import validation failed", err)
		return
	}
	if results == nil {
		results = []models.ValidationResult{}
	}
	c.JSON(http.StatusOK, gin.H{
		"summary": services.Summarize(results),
		"results": results,
	})
}

// ErrorReport downloads the failed rows as CSV with Row and Errors columns prepended.
func (h *ImportHandler) ErrorReport(c *gin.Context) {
	data, mapping, ok := h.fileAndMapping(c)
	if !ok {
		return
	}
	report, summary, err := h.service.ErrorReport(bytes.NewReader(data), mapping)
	if err != nil {
		respondError(c, "Failed to build error report", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="import-errors.csv"`)
	c.Header("X-Invalid-Rows", strconv.Itoa(summary.InvalidRows))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(report))
}

// Import creates every valid row. With async=true the file is queued and a
// job id is returned for polling.
func (h *ImportHandler) Import(c *gin.Context) {
	data, mapping, ok := h.fileAndMapping(c)
	if !ok {
		return
	}
	async, err := h.validator.ParseBool(c, "async", false)
	if err != nil {
		respondError(c, "Invalid import request", err)
		return
	}
	refresh, err := h.validator.ParseBool(c, "refresh_counts", true)
	if err != nil {
		respondError(c, "Invalid import request", err)
		return
	}
	opts := services.ImportOptions{Mapping: mapping, RefreshCounts: refresh}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if async {
		if h.queue == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Async import is not available"})
			return
		}
		job, err := h.queue.Enqueue(ctx, data, opts)
		if err != nil {
			zap.L().Error("Failed to enqueue import", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue import job"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"job_id":  job.ID,
			"status":  job.Status,
			"message": "Import queued for processing",
		})
		return
	}

	result, err := h.service.Import(ctx, bytes.NewReader(data), opts)
	if err != nil {
		respondError(c, "Import failed", err)
		return
	}
	if len(result.Created.Success) > 0 {
		h.cache.Invalidate(ctx)
	}
	c.JSON(http.StatusOK, result)
}

func (h *ImportHandler) GetJobStatus(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if h.queue == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": services.ErrJobNotFound.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	job, err := h.queue.GetJob(ctx, id)
	if err != nil {
		respondError(c, "Failed to retrieve job status", err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// SuggestMapping returns the field mapping suggested for one column name.
func (h *ImportHandler) SuggestMapping(c *gin.Context) {
	column := c.Query("column")
	if strings.TrimSpace(column) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "column is required"})
		return
	}
	c.JSON(http.StatusOK, services.SuggestFieldMapping(column))
}

func (h *ImportHandler) fileAndMapping(c *gin.Context) ([]byte, models.ColumnMapping, bool) {
	data, err := h.readCSV(c)
	if err != nil {
		respondError(c, "Failed to read import file", err)
		return nil, nil, false
	}
	mapping, err := h.validator.ParseMapping(c)
	if err != nil {
		respondError(c, "Invalid mapping", err)
		return nil, nil, false
	}
	return data, mapping, true
}
