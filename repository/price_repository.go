package repository

import (
	"context"
	"fmt"

	"catalog-service/models"
)

// PriceRepo stores marketplace offers. Prices are keyed by their own id and
// reference the product through product_id.
type PriceRepo interface {
	FindByProduct(ctx context.Context, productID string) ([]*models.Price, error)
	Create(ctx context.Context, price *models.Price) (string, error)
	DeleteByProduct(ctx context.Context, productID string) error
}

type PriceRepository struct {
	store Store
}

func NewPriceRepository(store Store) *PriceRepository {
	return &PriceRepository{store: store}
}

func (r *PriceRepository) FindByProduct(ctx context.Context, productID string) ([]*models.Price, error) {
	docs, err := r.store.List(ctx, CollectionPrices, Query{
		Filters: []Filter{{Field: "product_id", Value: productID}},
		OrderBy: "marketplace",
	})
	if err != nil {
		return nil, err
	}
	prices := make([]*models.Price, 0, len(docs))
	for _, doc := range docs {
		var p models.Price
		if err := FromDocument(doc, &p); err != nil {
			return nil, fmt.Errorf("price %v: %w", doc["id"], err)
		}
		prices = append(prices, &p)
	}
	return prices, nil
}

func (r *PriceRepository) Create(ctx context.Context, price *models.Price) (string, error) {
	doc, err := ToDocument(price)
	if err != nil {
		return "", err
	}
	delete(doc, "id")
	id, err := r.store.Create(ctx, CollectionPrices, doc)
	if err != nil {
		return "", err
	}
	price.ID = id
	return id, nil
}

func (r *PriceRepository) DeleteByProduct(ctx context.Context, productID string) error {
	docs, err := r.store.List(ctx, CollectionPrices, Query{Filters: []Filter{{Field: "product_id", Value: productID}}})
	if err != nil {
		return err
	}
	for _, doc := range docs {
		id, _ := doc["id"].(string)
		if err := r.store.Delete(ctx, CollectionPrices, id); err != nil {
			return fmt.Errorf("delete price %s: %w", id, err)
		}
	}
	return nil
}
