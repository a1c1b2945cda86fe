package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"catalog-service/models"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	service   AnalyticsServiceAPI
	validator *RequestValidator
	timeout   time.Duration
}

func NewAnalyticsController(s AnalyticsServiceAPI, v *RequestValidator) *AnalyticsController {
	return &AnalyticsController{service: s, validator: v, timeout: DefaultContextTimeout}
}

func (ctrl *AnalyticsController) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), ctrl.timeout)
}

// TrackClick records an outbound click to a marketplace offer.
func (ctrl *AnalyticsController) TrackClick(c *gin.Context) {
	var req ClickRequest
	if err := ctrl.validator.BindJSON(c, &req); err != nil {
		respondError(c, "Invalid click", err)
		return
	}

	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	event, err := ctrl.service.TrackAffiliateClick(ctx, c.Param("id"), req.Marketplace, c.Request.UserAgent())
	if err != nil {
		respondError(c, "Failed to track click", err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// ListEvents lists recent events, filtered by product_id and event_type.
func (ctrl *AnalyticsController) ListEvents(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit value"})
			return
		}
		limit = n
	}

	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	events, err := ctrl.service.ListEvents(ctx, strings.TrimSpace(c.Query("product_id")), strings.TrimSpace(c.Query("event_type")), limit)
	if err != nil {
		respondError(c, "Failed to fetch analytics events", err)
		return
	}
	if events == nil {
		events = []*models.AnalyticsEvent{}
	}
	c.JSON(http.StatusOK, events)
}
