package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"catalog-service/models"
	"catalog-service/repository"

	"go.uber.org/zap"
)

const (
	MetricAnalyticsEvents = "AnalyticsEvents"
	maxUserAgentLength    = 512
	DefaultEventLimit     = 100
	MaxEventLimit         = 1000
)

// TrackEventInput describes one shopper interaction.
type TrackEventInput struct {
	EventType   string
	ProductID   string
	Marketplace string
	UserAgent   string
}

// AnalyticsService records shopper events such as outbound affiliate clicks.
type AnalyticsService struct {
	events   repository.AnalyticsRepo
	products *ProductService
	metrics  MetricsRecorder
	now      func() time.Time
}

func NewAnalyticsService(events repository.AnalyticsRepo, products *ProductService, metrics MetricsRecorder) *AnalyticsService {
	return &AnalyticsService{
		events:   events,
		products: products,
		metrics:  metrics,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// TrackEvent stores an event against an existing product. Events start with
// conversion_tracked unset.
func (s *AnalyticsService) TrackEvent(ctx context.Context, in TrackEventInput) (*models.AnalyticsEvent, error) {
	in.EventType = strings.TrimSpace(in.EventType)
	in.Marketplace = strings.TrimSpace(in.Marketplace)
	var errs []string
	if in.EventType == "" {
		errs = append(errs, "Event type is required")
	}
	if in.Marketplace == "" {
		errs = append(errs, "Marketplace is required")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	if _, err := s.products.GetProduct(ctx, in.ProductID); err != nil {
		return nil, err
	}

	ua := in.UserAgent
	if len(ua) > maxUserAgentLength {
		ua = ua[:maxUserAgentLength]
	}
	event := &models.AnalyticsEvent{
		EventType:   in.EventType,
		ProductID:   in.ProductID,
		Marketplace: in.Marketplace,
		Timestamp:   s.now(),
		UserAgent:   ua,
	}
	if _, err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("track event: %w", err)
	}

	if s.metrics != nil {
		dims := map[string]string{"EventType": event.EventType, "Marketplace": event.Marketplace}
		if err := s.metrics.RecordValue(ctx, MetricAnalyticsEvents, 1, dims); err != nil {
			zap.L().Debug("failed to record analytics metric", zap.Error(err))
		}
	}
	return event, nil
}

func (s *AnalyticsService) TrackAffiliateClick(ctx context.Context, productID, marketplace, userAgent string) (*models.AnalyticsEvent, error) {
	return s.TrackEvent(ctx, TrackEventInput{
		EventType:   models.EventAffiliateClick,
		ProductID:   productID,
		Marketplace: marketplace,
		UserAgent:   userAgent,
	})
}

// ListEvents returns the newest events first, optionally narrowed to one
// product or event type. limit is clamped to MaxEventLimit.
func (s *AnalyticsService) ListEvents(ctx context.Context, productID, eventType string, limit int) ([]*models.AnalyticsEvent, error) {
	switch {
	case limit <= 0:
		limit = DefaultEventLimit
	case limit > MaxEventLimit:
		limit = MaxEventLimit
	}
	return s.events.List(ctx, productID, eventType, limit)
}
