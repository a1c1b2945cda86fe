package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"catalog-service/models"
	"catalog-service/repository"

	"go.uber.org/zap"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

type ProductService struct {
	products   repository.ProductRepo
	categories repository.CategoryRepo
	prices     repository.PriceRepo
	blobs      repository.BlobStore
	now        func() time.Time
}

func NewProductService(products repository.ProductRepo, categories repository.CategoryRepo, prices repository.PriceRepo, blobs repository.BlobStore) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		prices:     prices,
		blobs:      blobs,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *ProductService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	p, err := s.products.FindBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

// ListByCategory returns at most limit products of a category, newest first.
func (s *ProductService) ListByCategory(ctx context.Context, categoryID string, limit int) ([]*models.Product, error) {
	products, err := s.products.FindByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func (s *ProductService) CountProducts(ctx context.Context) (int, error) {
	return s.products.Count(ctx)
}

// SearchProducts filters by category and by a case-insensitive substring of
// the title, description or brand, newest first, then paginates.
func (s *ProductService) SearchProducts(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 {
		params.PerPage = DefaultPerPage
	}
	if params.PerPage > MaxPerPage {
		params.PerPage = MaxPerPage
	}

	var (
		products []*models.Product
		err      error
	)
	if params.CategoryID != "" {
		products, err = s.products.FindByCategory(ctx, params.CategoryID)
	} else {
		products, err = s.products.FindAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	if q := strings.ToLower(strings.TrimSpace(params.Query)); q != "" {
		filtered := products[:0]
		for _, p := range products {
			if strings.Contains(strings.ToLower(p.Title), q) ||
				strings.Contains(strings.ToLower(p.Description), q) ||
				strings.Contains(strings.ToLower(p.Brand), q) {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	total := len(products)
	start := (params.Page - 1) * params.PerPage
	end := start + params.PerPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return &SearchResult{
		Products:   products[start:end],
		Total:      total,
		Page:       params.Page,
		TotalPages: (total + params.PerPage - 1) / params.PerPage,
	}, nil
}

func validateProductInput(in ProductInput) error {
	var errs []string
	if strings.TrimSpace(in.Title) == "" {
		errs = append(errs, "Title is required")
	}
	if strings.TrimSpace(in.CategoryID) == "" {
		errs = append(errs, "Category is required")
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// resolveCategory looks up the category so its name and slug can be stored on the product.
func (s *ProductService) resolveCategory(ctx context.Context, id string) (*models.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &ValidationError{Errors: []string{"Category not found"}}
	}
	return c, err
}

func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}
	category, err := s.resolveCategory(ctx, strings.TrimSpace(in.CategoryID))
	if err != nil {
		return nil, err
	}

	now := s.now()
	product := &models.Product{
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Brand:        strings.TrimSpace(in.Brand),
		CategoryID:   &category.ID,
		CategoryName: &category.Name,
		CategorySlug: &category.Slug,
		Images:       nonNilStrings(in.Images),
		Specs:        nonNilSpecs(in.Specs),
		Pros:         nonNilStrings(in.Pros),
		Cons:         nonNilStrings(in.Cons),
		SEO:          seoFor(in),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	zap.L().Info("product created", zap.String("id", product.ID), zap.String("slug", product.SEO.Slug))
	return product, nil
}

// UpdateProduct replaces the writable fields of a product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}
	if _, err := s.GetProduct(ctx, id); err != nil {
		return nil, err
	}
	category, err := s.resolveCategory(ctx, strings.TrimSpace(in.CategoryID))
	if err != nil {
		return nil, err
	}

	seo := seoFor(in)
	updates := map[string]interface{}{
		"title":         strings.TrimSpace(in.Title),
		"description":   in.Description,
		"brand":         strings.TrimSpace(in.Brand),
		"category_id":   category.ID,
		"category_name": category.Name,
		"category_slug": category.Slug,
		"images":        nonNilStrings(in.Images),
		"specs":         nonNilSpecs(in.Specs),
		"pros":          nonNilStrings(in.Pros),
		"cons":          nonNilStrings(in.Cons),
		"seo": map[string]interface{}{
			"slug":             seo.Slug,
			"meta_title":       seo.MetaTitle,
			"meta_description": seo.MetaDescription,
		},
		"updated_at": s.now().Format(time.RFC3339Nano),
	}
	if err := s.products.Update(ctx, id, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes the product and its prices. Image cleanup is best effort.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if err := s.prices.DeleteByProduct(ctx, id); err != nil {
		zap.L().Warn("failed to delete product prices", zap.String("id", id), zap.Error(err))
	}
	if s.blobs != nil {
		for _, url := range product.Images {
			if err := s.blobs.Delete(ctx, url); err != nil {
				zap.L().Warn("failed to delete product image", zap.String("id", id), zap.String("url", url), zap.Error(err))
			}
		}
	}
	return nil
}

// AppendImage adds url to the end of the product's image list.
func (s *ProductService) AppendImage(ctx context.Context, id, url string) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	images := append(nonNilStrings(product.Images), url)
	err = s.products.Update(ctx, id, map[string]interface{}{
		"images":     images,
		"updated_at": s.now().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("append image: %w", err)
	}
	product.Images = images
	return product, nil
}

func seoFor(in ProductInput) models.SEO {
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = Slugify(in.Title)
	}
	return models.SEO{Slug: slug, MetaTitle: in.MetaTitle, MetaDescription: in.MetaDescription}
}
