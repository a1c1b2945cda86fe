package repository

import (
	"context"
	"fmt"

	"catalog-service/models"
)

// CategoryRepo defines the operations used for category management.
type CategoryRepo interface {
	FindByID(ctx context.Context, id string) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	// FindAll returns categories by ascending display order.
	FindAll(ctx context.Context) ([]*models.Category, error)
	FindFeatured(ctx context.Context) ([]*models.Category, error)
	Create(ctx context.Context, category *models.Category) (string, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type CategoryRepository struct {
	store Store
}

func NewCategoryRepository(store Store) *CategoryRepository {
	return &CategoryRepository{store: store}
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*models.Category, error) {
	doc, err := r.store.Get(ctx, CollectionCategories, id)
	if err != nil {
		return nil, err
	}
	return decodeCategory(doc)
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	found, err := r.find(ctx, Query{Filters: []Filter{{Field: "slug", Value: slug}}, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return found[0], nil
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]*models.Category, error) {
	return r.find(ctx, Query{OrderBy: "order"})
}

func (r *CategoryRepository) FindFeatured(ctx context.Context) ([]*models.Category, error) {
	return r.find(ctx, Query{Filters: []Filter{{Field: "featured", Value: true}}, OrderBy: "order"})
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) (string, error) {
	doc, err := ToDocument(category)
	if err != nil {
		return "", err
	}
	delete(doc, "id")
	id, err := r.store.Create(ctx, CollectionCategories, doc)
	if err != nil {
		return "", err
	}
	category.ID = id
	return id, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return r.store.Update(ctx, CollectionCategories, id, Document(updates))
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CollectionCategories, id)
}

func (r *CategoryRepository) find(ctx context.Context, q Query) ([]*models.Category, error) {
	docs, err := r.store.List(ctx, CollectionCategories, q)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Category, 0, len(docs))
	for _, doc := range docs {
		c, err := decodeCategory(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func decodeCategory(doc Document) (*models.Category, error) {
	var c models.Category
	if err := FromDocument(doc, &c); err != nil {
		return nil, fmt.Errorf("category %v: %w", doc["id"], err)
	}
	return &c, nil
}
