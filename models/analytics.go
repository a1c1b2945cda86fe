package models

import "time"

const EventAffiliateClick = "affiliate_click"

// AnalyticsEvent records a shopper interaction with a product offer.
type AnalyticsEvent struct {
	ID                string    `json:"id"`
	EventType         string    `json:"event_type"`
	ProductID         string    `json:"product_id"`
	Marketplace       string    `json:"marketplace"`
	Timestamp         time.Time `json:"timestamp"`
	UserAgent         string    `json:"user_agent"`
	ConversionTracked bool      `json:"conversion_tracked"`
}
