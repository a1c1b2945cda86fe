package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PriceStatus string

const (
	PriceStatusSuccess  PriceStatus = "success"
	PriceStatusPending  PriceStatus = "pending"
	PriceStatusRetrying PriceStatus = "retrying"
	PriceStatusFailed   PriceStatus = "failed"
)

// Price is one marketplace offer for a product.
type Price struct {
	ID                  string          `json:"id"`
	ProductID           string          `json:"product_id"`
	Marketplace         string          `json:"marketplace"`
	Price               decimal.Decimal `json:"price"`
	Currency            string          `json:"currency"`
	InStock             bool            `json:"in_stock"`
	AffiliateURL        string          `json:"affiliate_url"`
	DiscountPercent     float64         `json:"discount_percent"`
	Status              PriceStatus     `json:"status"`
	RetryCount          int             `json:"retry_count"`
	ConsecutiveFailures int             `json:"consecutive_failures"`
	LastError           *string         `json:"last_error"`
	NextRetryAt         *time.Time      `json:"next_retry_at"`
	LastUpdated         time.Time       `json:"last_updated"`
}

// Available reports whether the offer can be shown as a purchasable price.
func (p *Price) Available() bool {
	return p.InStock && p.Status == PriceStatusSuccess
}
