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

// CategoryService owns category CRUD and the rules that keep products and
// categories consistent.
type CategoryService struct {
	store      repository.Store
	categories repository.CategoryRepo
	products   repository.ProductRepo
	now        func() time.Time
}

func NewCategoryService(store repository.Store, categories repository.CategoryRepo, products repository.ProductRepo) *CategoryService {
	return &CategoryService{
		store:      store,
		categories: categories,
		products:   products,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *CategoryService) timestamp() string {
	return s.now().Format(time.RFC3339Nano)
}

func (s *CategoryService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCategoryNotFound
	}
	return c, err
}

func (s *CategoryService) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	c, err := s.categories.FindBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCategoryNotFound
	}
	return c, err
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.categories.FindAll(ctx)
}

func (s *CategoryService) ListFeaturedCategories(ctx context.Context) ([]*models.Category, error) {
	return s.categories.FindFeatured(ctx)
}

// CreateCategory validates in, derives the slug from the name when it is
// empty and rejects duplicate slugs. New categories start with a zero count.
func (s *CategoryService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.ParentID != nil && *in.ParentID == "" {
		in.ParentID = nil
	}
	if strings.TrimSpace(in.Slug) == "" {
		in.Slug = GenerateCategorySlug(in.Name)
	}
	if err := ValidateCategoryData(in); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, in.Slug, ""); err != nil {
		return nil, err
	}
	if err := s.ensureParent(ctx, in.ParentID, ""); err != nil {
		return nil, err
	}

	now := s.now()
	category := &models.Category{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Icon:        in.Icon,
		ImageURL:    in.ImageURL,
		ParentID:    in.ParentID,
		Featured:    in.Featured,
		Order:       in.Order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	zap.L().Info("category created", zap.String("id", category.ID), zap.String("slug", category.Slug))
	return category, nil
}

// UpdateCategory applies patch on top of the stored category. The merged
// result is validated as a whole and the slug may not collide with another category.
func (s *CategoryService) UpdateCategory(ctx context.Context, id string, patch CategoryPatch) (*models.Category, error) {
	current, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := CategoryInput{
		Name:        current.Name,
		Slug:        current.Slug,
		Description: current.Description,
		Icon:        current.Icon,
		ImageURL:    current.ImageURL,
		ParentID:    current.ParentID,
		Featured:    current.Featured,
		Order:       current.Order,
	}
	updates := map[string]interface{}{}
	if patch.Name != nil {
		merged.Name = strings.TrimSpace(*patch.Name)
		updates["name"] = merged.Name
	}
	if patch.Slug != nil {
		merged.Slug = *patch.Slug
		updates["slug"] = merged.Slug
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
		updates["description"] = merged.Description
	}
	if patch.Icon != nil {
		merged.Icon = *patch.Icon
		updates["icon"] = merged.Icon
	}
	if patch.ImageURL != nil {
		merged.ImageURL = *patch.ImageURL
		updates["image_url"] = merged.ImageURL
	}
	if patch.ParentID != nil {
		merged.ParentID = patch.ParentID
		if *patch.ParentID == "" {
			merged.ParentID = nil
		}
		updates["parent_id"] = merged.ParentID
	}
	if patch.Featured != nil {
		merged.Featured = *patch.Featured
		updates["featured"] = merged.Featured
	}
	if patch.Order != nil {
		merged.Order = *patch.Order
		updates["order"] = merged.Order
	}

	if err := ValidateCategoryData(merged); err != nil {
		return nil, err
	}
	if patch.Slug != nil {
		if err := s.ensureSlugFree(ctx, merged.Slug, id); err != nil {
			return nil, err
		}
	}
	if patch.ParentID != nil {
		if err := s.ensureParent(ctx, merged.ParentID, id); err != nil {
			return nil, err
		}
	}

	updates["updated_at"] = s.timestamp()
	if err := s.categories.Update(ctx, id, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return s.GetCategory(ctx, id)
}

// DeleteCategory removes a category whose cached product count is zero.
// The check reads product_count, so it is only as fresh as the last refresh.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if category.ProductCount > 0 {
		return &CategoryInUseError{Count: category.ProductCount}
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("delete category: %w", err)
	}
	zap.L().Info("category deleted", zap.String("id", id))
	return nil
}

// ForceDeleteCategoryWithReassignment moves every product of the category to
// reassignTo, or detaches them when reassignTo is empty, and deletes the
// category in one atomic batch. It returns the number of products touched.
func (s *CategoryService) ForceDeleteCategoryWithReassignment(ctx context.Context, id, reassignTo string) (int, error) {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return 0, err
	}

	var target *models.Category
	if reassignTo != "" {
		if reassignTo == id {
			return 0, fmt.Errorf("%w: cannot reassign products to the category being deleted", ErrInvalidReassignment)
		}
		t, err := s.GetCategory(ctx, reassignTo)
		if errors.Is(err, ErrCategoryNotFound) {
			return 0, fmt.Errorf("%w: category %s not found", ErrInvalidReassignment, reassignTo)
		}
		if err != nil {
			return 0, err
		}
		target = t
	}

	products, err := s.products.FindByCategory(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("list category products: %w", err)
	}

	ts := s.timestamp()
	batch := s.store.Batch()
	for _, p := range products {
		if target != nil {
			batch.Update(repository.CollectionProducts, p.ID, repository.Document{
				"category_id":   target.ID,
				"category_name": target.Name,
				"category_slug": target.Slug,
				"updated_at":    ts,
			})
			continue
		}
		batch.Update(repository.CollectionProducts, p.ID, repository.Document{
			"category_id":   nil,
			"category_name": nil,
			"category_slug": nil,
			"updated_at":    ts,
		})
	}
	batch.Delete(repository.CollectionCategories, id)

	if err := batch.Commit(ctx); err != nil {
		zap.L().Error("force delete category failed", zap.String("id", id), zap.Error(err))
		return 0, fmt.Errorf("force delete category: %w", err)
	}
	zap.L().Info("category force deleted",
		zap.String("id", id),
		zap.String("reassign_to", reassignTo),
		zap.Int("products", len(products)))
	return len(products), nil
}

// UpdateCategoryProductCount recounts the products that reference id and
// overwrites the cached product_count.
func (s *CategoryService) UpdateCategoryProductCount(ctx context.Context, id string) (int, error) {
	count, err := s.products.Count(ctx, repository.Filter{Field: "category_id", Value: id})
	if err != nil {
		return 0, fmt.Errorf("count category products: %w", err)
	}
	err = s.categories.Update(ctx, id, map[string]interface{}{
		"product_count": count,
		"updated_at":    s.timestamp(),
	})
	if errors.Is(err, repository.ErrNotFound) {
		return 0, ErrCategoryNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("update product count: %w", err)
	}
	return count, nil
}

// UpdateAllCategoryProductCounts refreshes every category sequentially and
// stops at the first failure.
func (s *CategoryService) UpdateAllCategoryProductCounts(ctx context.Context) (map[string]int, error) {
	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	counts := make(map[string]int, len(categories))
	for _, c := range categories {
		n, err := s.UpdateCategoryProductCount(ctx, c.ID)
		if err != nil {
			return counts, fmt.Errorf("category %s: %w", c.ID, err)
		}
		counts[c.ID] = n
	}
	return counts, nil
}

func (s *CategoryService) ensureSlugFree(ctx context.Context, slug, selfID string) error {
	existing, err := s.categories.FindBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("check slug: %w", err)
	}
	if existing.ID != selfID {
		return fmt.Errorf("%w: category with slug %q already exists", ErrSlugTaken, slug)
	}
	return nil
}

func (s *CategoryService) ensureParent(ctx context.Context, parentID *string, selfID string) error {
	if parentID == nil || *parentID == "" {
		return nil
	}
	if *parentID == selfID {
		return &ValidationError{Errors: []string{"Category cannot be its own parent"}}
	}
	if _, err := s.GetCategory(ctx, *parentID); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return &ValidationError{Errors: []string{"Parent category not found"}}
		}
		return err
	}
	return nil
}
