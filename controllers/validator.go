package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "catalog-service/common/errors"
	"catalog-service/models"
	"catalog-service/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	MaxPageNumber   = 1000000
	MaxUploadSize   = 50 * 1024 * 1024 // 50MB
	MaxImageSize    = 10 * 1024 * 1024 // 10MB
	MaxPreviewRows  = 50
	MaxPresignHours = 12
)

var (
	allowedCSVExtensions = map[string]bool{
		".csv": true,
		".txt": true,
	}

	allowedImageTypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/webp": true,
		"image/gif":  true,
	}
)

// ProductRequest is the JSON body for product create and update. Prices are
// only read on create.
type ProductRequest struct {
	Title           string                 `json:"title" validate:"required,max=300"`
	Description     string                 `json:"description" validate:"max=10000"`
	Brand           string                 `json:"brand" validate:"max=100"`
	CategoryID      string                 `json:"category_id" validate:"required"`
	Images          []string               `json:"images" validate:"omitempty,dive,url"`
	Specs           map[string]interface{} `json:"specs"`
	Pros            []string               `json:"pros"`
	Cons            []string               `json:"cons"`
	Slug            string                 `json:"slug" validate:"omitempty,slug"`
	MetaTitle       *string                `json:"meta_title" validate:"omitempty,max=70"`
	MetaDescription *string                `json:"meta_description" validate:"omitempty,max=160"`
	Prices          []services.PriceInput  `json:"prices" validate:"omitempty,dive"`
}

// ClickRequest is the body of a public affiliate click.
type ClickRequest struct {
	Marketplace string `json:"marketplace" validate:"required,max=100"`
}

func (r ProductRequest) toInput() services.ProductInput {
	return services.ProductInput{
		Title:           r.Title,
		Description:     r.Description,
		Brand:           r.Brand,
		CategoryID:      r.CategoryID,
		Images:          r.Images,
		Specs:           r.Specs,
		Pros:            r.Pros,
		Cons:            r.Cons,
		Slug:            r.Slug,
		MetaTitle:       r.MetaTitle,
		MetaDescription: r.MetaDescription,
	}
}

// PresignRequest asks for a direct upload URL.
type PresignRequest struct {
	Filename       string `json:"filename" validate:"required"`
	ContentType    string `json:"content_type" validate:"required,oneof=image/jpeg image/jpg image/png image/webp image/gif"`
	ExpiresSeconds int64  `json:"expires_seconds" validate:"omitempty,gte=60"`
}

// RequestValidator handles all input validation
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	if err := services.RegisterSlugRule(v); err != nil {
		panic(err)
	}
	return &RequestValidator{validate: v}
}

// BindJSON decodes the body into req and runs its validate tags.
func (rv *RequestValidator) BindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperrors.BadRequest("Invalid request body", err)
	}
	if err := rv.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			details := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				details = append(details, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
			}
			return apperrors.Validation(details)
		}
		return apperrors.BadRequest("Validation failed", err)
	}
	return nil
}

// ParsePagination reads page and perPage. perPage is capped by the service.
func (rv *RequestValidator) ParsePagination(c *gin.Context) (int, int, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 0, 0, apperrors.BadRequest("invalid page number", nil)
	}
	if page > MaxPageNumber {
		page = MaxPageNumber
	}

	perPage, err := strconv.Atoi(c.DefaultQuery("perPage", strconv.Itoa(services.DefaultPerPage)))
	if err != nil || perPage < 1 {
		return 0, 0, apperrors.BadRequest("invalid page size", nil)
	}
	return page, perPage, nil
}

// ParseBool reads an optional boolean query parameter.
func (rv *RequestValidator) ParseBool(c *gin.Context, name string, def bool) (bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		raw = strings.TrimSpace(c.PostForm(name))
	}
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperrors.BadRequest(fmt.Sprintf("invalid boolean value for '%s'", name), nil)
	}
	return v, nil
}

// ParseMapping reads the optional "mapping" form field: a JSON object of
// field name to CSV column.
func (rv *RequestValidator) ParseMapping(c *gin.Context) (models.ColumnMapping, error) {
	raw := strings.TrimSpace(c.PostForm("mapping"))
	if raw == "" {
		return nil, nil
	}
	var mapping models.ColumnMapping
	if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
		return nil, apperrors.BadRequest("invalid mapping, must be a JSON object of field to column", err)
	}
	for field := range mapping {
		if !isImportField(field) {
			return nil, apperrors.BadRequest(fmt.Sprintf("unknown mapping field %q", field), nil)
		}
	}
	return mapping, nil
}

func isImportField(field string) bool {
	switch field {
	case models.FieldTitle, models.FieldBrand, models.FieldDescription,
		models.FieldCategoryID, models.FieldImages, models.FieldSpecs:
		return true
	}
	return false
}

// CSVFile returns the uploaded "file" after checking its type and size.
func (rv *RequestValidator) CSVFile(c *gin.Context) (*multipart.FileHeader, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return nil, apperrors.BadRequest("file is required", nil)
	}
	if !rv.IsValidCSVFile(file) {
		return nil, apperrors.BadRequest("invalid file type. Only CSV files are allowed", nil)
	}
	if file.Size > MaxUploadSize {
		return nil, apperrors.BadRequest(fmt.Sprintf("file too large (max %dMB)", MaxUploadSize/(1024*1024)), nil)
	}
	return file, nil
}

// ImageFile returns the uploaded "image" after checking its type and size.
func (rv *RequestValidator) ImageFile(c *gin.Context) (*multipart.FileHeader, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, apperrors.BadRequest("image is required", nil)
	}
	if !rv.IsValidImageType(file) {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid image type for file %s. Allowed: jpeg, jpg, png, webp, gif", file.Filename), nil)
	}
	if file.Size > MaxImageSize {
		return nil, apperrors.BadRequest(fmt.Sprintf("image too large (max %dMB)", MaxImageSize/(1024*1024)), nil)
	}
	return file, nil
}

// IsValidImageType checks the declared content type, then the extension.
func (rv *RequestValidator) IsValidImageType(file *multipart.FileHeader) bool {
	if allowedImageTypes[file.Header.Get("Content-Type")] {
		return true
	}
	switch strings.ToLower(filepath.Ext(file.Filename)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return true
	}
	return false
}

func (rv *RequestValidator) IsValidCSVFile(file *multipart.FileHeader) bool {
	switch file.Header.Get("Content-Type") {
	case "text/csv", "application/csv", "text/plain":
		return true
	}
	return allowedCSVExtensions[strings.ToLower(filepath.Ext(file.Filename))]
}

// imageContentType picks the declared type, falling back to one derived from the extension.
func imageContentType(file *multipart.FileHeader) string {
	if ct := file.Header.Get("Content-Type"); allowedImageTypes[ct] {
		return ct
	}
	switch strings.ToLower(filepath.Ext(file.Filename)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
