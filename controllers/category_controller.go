package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"catalog-service/models"
	"catalog-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CategoryController struct {
	service   CategoryServiceAPI
	cache     *CacheManager
	validator *RequestValidator
	timeout   time.Duration
}

func NewCategoryController(s CategoryServiceAPI, cache *CacheManager, v *RequestValidator) *CategoryController {
	return &CategoryController{service: s, cache: cache, validator: v, timeout: DefaultContextTimeout}
}

func (ctrl *CategoryController) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), ctrl.timeout)
}

func (ctrl *CategoryController) GetCategories(c *gin.Context) {
	ctrl.listCached(c, "categories:all", ctrl.service.ListCategories)
}

func (ctrl *CategoryController) GetFeaturedCategories(c *gin.Context) {
	ctrl.listCached(c, "categories:featured", ctrl.service.ListFeaturedCategories)
}

func (ctrl *CategoryController) listCached(c *gin.Context, key string, list func(context.Context) ([]*models.Category, error)) {
	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	var categories []*models.Category
	if ctrl.cache.Get(ctx, key, &categories) {
		c.JSON(http.StatusOK, categories)
		return
	}
	categories, err := list(ctx)
	if err != nil {
		respondError(c, "Failed to fetch categories", err)
		return
	}
	if categories == nil {
		categories = []*models.Category{}
	}
	ctrl.cache.SetAsync(key, categories)
	c.JSON(http.StatusOK, categories)
}

func (ctrl *CategoryController) GetCategory(c *gin.Context) {
	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	category, err := ctrl.service.GetCategory(ctx, c.Param("id"))
	if err != nil {
		respondError(c, "Failed to fetch category", err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (ctrl *CategoryController) GetCategoryBySlug(c *gin.Context) {
	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	category, err := ctrl.service.GetCategoryBySlug(ctx, c.Param("slug"))
	if err != nil {
		respondError(c, "Failed to fetch category", err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (ctrl *CategoryController) CreateCategory(c *gin.Context) {
	var req services.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	category, err := ctrl.service.CreateCategory(ctx, req)
	if err != nil {
		respondError(c, "Failed to create category", err)
		return
	}
	ctrl.cache.Invalidate(ctx)
	c.JSON(http.StatusCreated, category)
}

func (ctrl *CategoryController) UpdateCategory(c *gin.Context) {
	var patch services.CategoryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	category, err := ctrl.service.UpdateCategory(ctx, c.Param("id"), patch)
	if err != nil {
		respondError(c, "Failed to update category", err)
		return
	}
	ctrl.cache.Invalidate(ctx)
	c.JSON(http.StatusOK, category)
}

// DeleteCategory refuses categories that still count products unless
// force=true, in which case products are moved to reassign_to or detached.
func (ctrl *CategoryController) DeleteCategory(c *gin.Context) {
	id := c.Param("id")
	force, err := ctrl.validator.ParseBool(c, "force", false)
	if err != nil {
		respondError(c, "Invalid delete request", err)
		return
	}
	reassignTo := strings.TrimSpace(c.Query("reassign_to"))

	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	if !force {
		if reassignTo != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reassign_to requires force=true"})
			return
		}
		if err := ctrl.service.DeleteCategory(ctx, id); err != nil {
			respondError(c, "Failed to delete category", err)
			return
		}
		ctrl.cache.Invalidate(ctx)
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
		return
	}

	moved, err := ctrl.service.ForceDeleteCategoryWithReassignment(ctx, id, reassignTo)
	if err != nil {
		respondError(c, "Failed to force delete category", err)
		return
	}
	if reassignTo != "" {
		if _, err := ctrl.service.UpdateCategoryProductCount(ctx, reassignTo); err != nil {
			zap.L().Warn("Failed to refresh count of reassignment target", zap.String("id", reassignTo), zap.Error(err))
		}
	}
	ctrl.cache.Invalidate(ctx)
	c.JSON(http.StatusOK, gin.H{
		"message":           "Category deleted successfully",
		"products_affected": moved,
		"reassigned_to":     reassignTo,
	})
}

func (ctrl *CategoryController) RefreshCategoryCount(c *gin.Context) {
	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	id := c.Param("id")
	count, err := ctrl.service.UpdateCategoryProductCount(ctx, id)
	if err != nil {
		respondError(c, "Failed to refresh category count", err)
		return
	}
	ctrl.cache.Invalidate(ctx)
	c.JSON(http.StatusOK, gin.H{"id": id, "product_count": count})
}

func (ctrl *CategoryController) RefreshAllCategoryCounts(c *gin.Context) {
	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	counts, err := ctrl.service.UpdateAllCategoryProductCounts(ctx)
	if err != nil {
		respondError(c, "Failed to refresh category counts", err)
		return
	}
	ctrl.cache.Invalidate(ctx)
	c.JSON(http.StatusOK, gin.H{"counts": counts})
}
