package repository

import (
	"context"
	"fmt"

	"catalog-service/models"
)

// AnalyticsRepo appends shopper events. Events are never updated.
type AnalyticsRepo interface {
	Create(ctx context.Context, event *models.AnalyticsEvent) (string, error)
	// List returns the newest events first. Empty filter values are ignored.
	List(ctx context.Context, productID, eventType string, limit int) ([]*models.AnalyticsEvent, error)
}

type AnalyticsRepository struct {
	store Store
}

func NewAnalyticsRepository(store Store) *AnalyticsRepository {
	return &AnalyticsRepository{store: store}
}

func (r *AnalyticsRepository) Create(ctx context.Context, event *models.AnalyticsEvent) (string, error) {
	doc, err := ToDocument(event)
	if err != nil {
		return "", err
	}
	delete(doc, "id")
	id, err := r.store.Create(ctx, CollectionAnalytics, doc)
	if err != nil {
		return "", err
	}
	event.ID = id
	return id, nil
}

func (r *AnalyticsRepository) List(ctx context.Context, productID, eventType string, limit int) ([]*models.AnalyticsEvent, error) {
	q := Query{OrderBy: "timestamp", Desc: true, Limit: limit}
	if productID != "" {
		q.Filters = append(q.Filters, Filter{Field: "product_id", Value: productID})
	}
	if eventType != "" {
		q.Filters = append(q.Filters, Filter{Field: "event_type", Value: eventType})
	}
	docs, err := r.store.List(ctx, CollectionAnalytics, q)
	if err != nil {
		return nil, err
	}
	events := make([]*models.AnalyticsEvent, 0, len(docs))
	for _, doc := range docs {
		var e models.AnalyticsEvent
		if err := FromDocument(doc, &e); err != nil {
			return nil, fmt.Errorf("analytics event %v: %w", doc["id"], err)
		}
		events = append(events, &e)
	}
	return events, nil
}
