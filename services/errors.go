package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCategoryNotFound    = errors.New("Category not found")
	ErrProductNotFound     = errors.New("Product not found")
	ErrSlugTaken           = errors.New("slug already exists")
	ErrInvalidReassignment = errors.New("invalid reassignment target")
	ErrJobNotFound         = errors.New("Job not found")
	ErrSliderNotFound      = errors.New("Slider not found")
)

// CategoryInUseError blocks a plain delete while the cached product count is positive.
type CategoryInUseError struct {
	Count int
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("Cannot delete category with %d products. Please reassign or delete products first.", e.Count)
}

// ValidationError carries every problem found in a request payload.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Errors, "; ")
}

// ErrNoAvailablePrice means no offer is both in stock and successfully fetched.
var ErrNoAvailablePrice = errors.New("No available price")
