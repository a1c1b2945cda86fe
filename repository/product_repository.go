package repository

import (
	"context"
	"fmt"

	"catalog-service/models"
)

// ProductRepo defines the product persistence used by the services.
type ProductRepo interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	// FindByCategory returns the category's products, newest first.
	FindByCategory(ctx context.Context, categoryID string) ([]*models.Product, error)
	FindAll(ctx context.Context) ([]*models.Product, error)
	Count(ctx context.Context, filters ...Filter) (int, error)
	Create(ctx context.Context, product *models.Product) (string, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type ProductRepository struct {
	store Store
}

func NewProductRepository(store Store) *ProductRepository {
	return &ProductRepository{store: store}
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	doc, err := r.store.Get(ctx, CollectionProducts, id)
	if err != nil {
		return nil, err
	}
	return decodeProduct(doc)
}

func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	docs, err := r.store.List(ctx, CollectionProducts, Query{
		Filters: []Filter{{Field: "seo.slug", Value: slug}},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return decodeProduct(docs[0])
}

func (r *ProductRepository) FindByCategory(ctx context.Context, categoryID string) ([]*models.Product, error) {
	return r.find(ctx, Query{
		Filters: []Filter{{Field: "category_id", Value: categoryID}},
		OrderBy: "created_at",
		Desc:    true,
	})
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]*models.Product, error) {
	return r.find(ctx, Query{OrderBy: "created_at", Desc: true})
}

func (r *ProductRepository) Count(ctx context.Context, filters ...Filter) (int, error) {
	return r.store.Count(ctx, CollectionProducts, filters...)
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) (string, error) {
	doc, err := ToDocument(product)
	if err != nil {
		return "", err
	}
	delete(doc, "id")
	id, err := r.store.Create(ctx, CollectionProducts, doc)
	if err != nil {
		return "", err
	}
	product.ID = id
	return id, nil
}

func (r *ProductRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return r.store.Update(ctx, CollectionProducts, id, Document(updates))
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CollectionProducts, id)
}

func (r *ProductRepository) find(ctx context.Context, q Query) ([]*models.Product, error) {
	docs, err := r.store.List(ctx, CollectionProducts, q)
	if err != nil {
		return nil, err
	}
	products := make([]*models.Product, 0, len(docs))
	for _, doc := range docs {
		p, err := decodeProduct(doc)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func decodeProduct(doc Document) (*models.Product, error) {
	var p models.Product
	if err := FromDocument(doc, &p); err != nil {
		return nil, fmt.Errorf("product %v: %w", doc["id"], err)
	}
	return &p, nil
}
