package services

import "catalog-service/models"

// CategoryInput is the full set of writable category fields.
type CategoryInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Slug        string  `json:"slug" validate:"required,slug"`
	Description string  `json:"description" validate:"max=500"`
	Icon        string  `json:"icon"`
	ImageURL    string  `json:"image_url"`
	ParentID    *string `json:"parent_id"`
	Featured    bool    `json:"featured"`
	Order       int     `json:"order" validate:"gte=0,lte=1000"`
}

// CategoryPatch updates only the fields that are set.
type CategoryPatch struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	ImageURL    *string `json:"image_url"`
	ParentID    *string `json:"parent_id"`
	Featured    *bool   `json:"featured"`
	Order       *int    `json:"order"`
}

// ProductInput is the writable part of a product.
type ProductInput struct {
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Brand           string                 `json:"brand"`
	CategoryID      string                 `json:"category_id"`
	Images          []string               `json:"images"`
	Specs           map[string]interface{} `json:"specs"`
	Pros            []string               `json:"pros"`
	Cons            []string               `json:"cons"`
	Slug            string                 `json:"slug"`
	MetaTitle       *string                `json:"meta_title"`
	MetaDescription *string                `json:"meta_description"`
}

// SearchParams drives the paginated product listing.
type SearchParams struct {
	Query      string
	CategoryID string
	Page       int
	PerPage    int
}

type SearchResult struct {
	Products   []*models.Product `json:"products"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
}

// ImageUploadResult holds the URLs of the stored renditions.
type ImageUploadResult struct {
	Original string `json:"original"`
	Medium   string `json:"medium"`
	Small    string `json:"small"`
}
