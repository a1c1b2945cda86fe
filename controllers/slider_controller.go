package controllers

import (
	"context"
	"net/http"
	"time"

	"catalog-service/models"
	"catalog-service/services"

	"github.com/gin-gonic/gin"
)

const activeSlidersCacheKey = "sliders:active"

type SliderController struct {
	service   SliderServiceAPI
	cache     *CacheManager
	validator *RequestValidator
	timeout   time.Duration
}

func NewSliderController(s SliderServiceAPI, cache *CacheManager, v *RequestValidator) *SliderController {
	return &SliderController{service: s, cache: cache, validator: v, timeout: DefaultContextTimeout}
}

func (ctrl *SliderController) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), ctrl.timeout)
}

// GetActiveSliders serves the homepage carousel.
func (ctrl *SliderController) GetActiveSliders(c *gin.Context) {
	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	var sliders []*models.Slider
	if ctrl.cache.Get(ctx, activeSlidersCacheKey, &sliders) {
		c.JSON(http.StatusOK, sliders)
		return
	}
	sliders, err := ctrl.service.ListActiveSliders(ctx)
	if err != nil {
		respondError(c, "Failed to fetch sliders", err)
		return
	}
	if sliders == nil {
		sliders = []*models.Slider{}
	}
	ctrl.cache.SetAsync(activeSlidersCacheKey, sliders)
	c.JSON(http.StatusOK, sliders)
}

func (ctrl *SliderController) GetSliders(c *gin.Context) {
	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	sliders, err := ctrl.service.ListSliders(ctx)
	if err != nil {
		respondError(c, "Failed to fetch sliders", err)
		return
	}
	if sliders == nil {
		sliders = []*models.Slider{}
	}
	c.JSON(http.StatusOK, sliders)
}

func (ctrl *SliderController) CreateSlider(c *gin.Context) {
	var req services.SliderInput
	if err := ctrl.validator.BindJSON(c, &req); err != nil {
		respondError(c, "Invalid slider", err)
		return
	}

	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	slider, err := ctrl.service.CreateSlider(ctx, req)
	if err != nil {
		respondError(c, "Failed to create slider", err)
		return
	}
	ctrl.cache.Invalidate(ctx)
	c.JSON(http.StatusCreated, slider)
}

func (ctrl *SliderController) UpdateSlider(c *gin.Context) {
	var req services.SliderInput
	if err := ctrl.validator.BindJSON(c, &req); err != nil {
		respondError(c, "Invalid slider", err)
		return
	}

	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	slider, err := ctrl.service.UpdateSlider(ctx, c.Param("id"), req)
	if err != nil {
		respondError(c, "Failed to update slider", err)
		return
	}
	ctrl.cache.Invalidate(ctx)
	c.JSON(http.StatusOK, slider)
}

func (ctrl *SliderController) DeleteSlider(c *gin.Context) {
	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	if err := ctrl.service.DeleteSlider(ctx, c.Param("id")); err != nil {
		respondError(c, "Failed to delete slider", err)
		return
	}
	ctrl.cache.Invalidate(ctx)
	c.JSON(http.StatusOK, gin.H{"message": "Slider deleted successfully"})
}
