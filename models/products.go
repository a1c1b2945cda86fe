package models

import "time"

// SEO holds the search metadata stored alongside a product.
type SEO struct {
	Slug            string  `json:"slug"`
	MetaTitle       *string `json:"meta_title"`
	MetaDescription *string `json:"meta_description"`
}

// Product is a catalog listing. CategoryID is nil once its category has been
// force-deleted without a replacement.
type Product struct {
	ID           string                 `json:"id"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	Brand        string                 `json:"brand"`
	CategoryID   *string                `json:"category_id"`
	CategoryName *string                `json:"category_name,omitempty"`
	CategorySlug *string                `json:"category_slug,omitempty"`
	Images       []string               `json:"images"`
	Specs        map[string]interface{} `json:"specs"`
	Pros         []string               `json:"pros"`
	Cons         []string               `json:"cons"`
	SEO          SEO                    `json:"seo"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}
