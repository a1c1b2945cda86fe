package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"catalog-service/models"
	"catalog-service/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PriceInput is a marketplace offer submitted for a product.
type PriceInput struct {
	Marketplace     string             `json:"marketplace" validate:"required"`
	Price           decimal.Decimal    `json:"price"`
	Currency        string             `json:"currency" validate:"required,len=3"`
	InStock         bool               `json:"in_stock"`
	AffiliateURL    string             `json:"affiliate_url" validate:"omitempty,url"`
	DiscountPercent float64            `json:"discount_percent" validate:"gte=0,lte=100"`
	Status          models.PriceStatus `json:"status" validate:"omitempty,oneof=success pending retrying failed"`
}

type PriceService struct {
	prices   repository.PriceRepo
	products *ProductService
	now      func() time.Time
}

func NewPriceService(prices repository.PriceRepo, products *ProductService) *PriceService {
	return &PriceService{prices: prices, products: products, now: func() time.Time { return time.Now().UTC() }}
}

func (s *PriceService) AddPrice(ctx context.Context, productID string, in PriceInput) (*models.Price, error) {
	if !in.Price.IsPositive() {
		return nil, &ValidationError{Errors: []string{"Price must be greater than 0"}}
	}
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.create(ctx, productID, in)
}

// CreateProductWithPrices creates a product together with its initial offers.
// Every price is checked before anything is written, and a failed price write
// deletes the product again so no half-priced product is left behind.
func (s *PriceService) CreateProductWithPrices(ctx context.Context, in ProductInput, prices []PriceInput) (*models.Product, []*models.Price, error) {
	var errs []string
	for i, p := range prices {
		if !p.Price.IsPositive() {
			errs = append(errs, fmt.Sprintf("Price %d must be greater than 0", i+1))
		}
	}
	if len(errs) > 0 {
		return nil, nil, &ValidationError{Errors: errs}
	}

	product, err := s.products.CreateProduct(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	created := make([]*models.Price, 0, len(prices))
	for _, p := range prices {
		price, err := s.create(ctx, product.ID, p)
		if err != nil {
			if derr := s.products.DeleteProduct(ctx, product.ID); derr != nil {
				zap.L().Error("failed to roll back product after price error",
					zap.String("product_id", product.ID), zap.Error(derr))
			}
			return nil, nil, err
		}
		created = append(created, price)
	}
	return product, created, nil
}

func (s *PriceService) create(ctx context.Context, productID string, in PriceInput) (*models.Price, error) {
	status := in.Status
	if status == "" {
		status = models.PriceStatusSuccess
	}
	price := &models.Price{
		ProductID:       productID,
		Marketplace:     strings.TrimSpace(in.Marketplace),
		Price:           in.Price,
		Currency:        strings.ToUpper(in.Currency),
		InStock:         in.InStock,
		AffiliateURL:    in.AffiliateURL,
		DiscountPercent: in.DiscountPercent,
		Status:          status,
		LastUpdated:     s.now(),
	}
	if _, err := s.prices.Create(ctx, price); err != nil {
		return nil, fmt.Errorf("create price: %w", err)
	}
	return price, nil
}

func (s *PriceService) ListPrices(ctx context.Context, productID string) ([]*models.Price, error) {
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.prices.FindByProduct(ctx, productID)
}

// GetBestPrice returns the lowest available offer. Ties keep the first one listed.
func (s *PriceService) GetBestPrice(ctx context.Context, productID string) (*models.Price, error) {
	prices, err := s.ListPrices(ctx, productID)
	if err != nil {
		return nil, err
	}
	best := BestPrice(prices)
	if best == nil {
		return nil, ErrNoAvailablePrice
	}
	return best, nil
}

// BestPrice picks the cheapest price that is in stock with a successful status.
func BestPrice(prices []*models.Price) *models.Price {
	var best *models.Price
	for _, p := range prices {
		if !p.Available() {
			continue
		}
		if best == nil || p.Price.LessThan(best.Price) {
			best = p
		}
	}
	return best
}
