package models

import "time"

// Category groups products. ProductCount is a cached value that is only
// rewritten by an explicit count refresh, so it can lag behind product writes.
type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	Icon         string    `json:"icon,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	ParentID     *string   `json:"parent_id,omitempty"`
	ProductCount int       `json:"product_count"`
	Featured     bool      `json:"featured"`
	Order        int       `json:"order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
