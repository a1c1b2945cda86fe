package repository

import (
	"context"
	"fmt"

	"catalog-service/models"
)

// SliderRepo stores homepage carousel entries.
type SliderRepo interface {
	FindByID(ctx context.Context, id string) (*models.Slider, error)
	// FindAll returns sliders by ascending order. activeOnly drops inactive ones.
	FindAll(ctx context.Context, activeOnly bool) ([]*models.Slider, error)
	Create(ctx context.Context, slider *models.Slider) (string, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type SliderRepository struct {
	store Store
}

func NewSliderRepository(store Store) *SliderRepository {
	return &SliderRepository{store: store}
}

func (r *SliderRepository) FindByID(ctx context.Context, id string) (*models.Slider, error) {
	doc, err := r.store.Get(ctx, CollectionSliders, id)
	if err != nil {
		return nil, err
	}
	return decodeSlider(doc)
}

func (r *SliderRepository) FindAll(ctx context.Context, activeOnly bool) ([]*models.Slider, error) {
	q := Query{OrderBy: "order"}
	if activeOnly {
		q.Filters = []Filter{{Field: "active", Value: true}}
	}
	docs, err := r.store.List(ctx, CollectionSliders, q)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Slider, 0, len(docs))
	for _, doc := range docs {
		s, err := decodeSlider(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *SliderRepository) Create(ctx context.Context, slider *models.Slider) (string, error) {
	doc, err := ToDocument(slider)
	if err != nil {
		return "", err
	}
	delete(doc, "id")
	id, err := r.store.Create(ctx, CollectionSliders, doc)
	if err != nil {
		return "", err
	}
	slider.ID = id
	return id, nil
}

func (r *SliderRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return r.store.Update(ctx, CollectionSliders, id, Document(updates))
}

func (r *SliderRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CollectionSliders, id)
}

func decodeSlider(doc Document) (*models.Slider, error) {
	var s models.Slider
	if err := FromDocument(doc, &s); err != nil {
		return nil, fmt.Errorf("slider %v: %w", doc["id"], err)
	}
	return &s, nil
}
