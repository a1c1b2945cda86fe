package controllers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"catalog-service/models"
	"catalog-service/services"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	products  ProductServiceAPI
	prices    PriceServiceAPI
	images    ImageServiceAPI
	cache     *CacheManager
	validator *RequestValidator
	timeout   time.Duration
}

func NewProductController(products ProductServiceAPI, prices PriceServiceAPI, images ImageServiceAPI, cache *CacheManager, v *RequestValidator) *ProductController {
	return &ProductController{
		products:  products,
		prices:    prices,
		images:    images,
		cache:     cache,
		validator: v,
		timeout:   DefaultContextTimeout,
	}
}

func (ctrl *ProductController) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), ctrl.timeout)
}

// GetProducts lists products with optional q and categoryId filters.
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	page, perPage, err := ctrl.validator.ParsePagination(c)
	if err != nil {
		respondError(c, "Invalid pagination", err)
		return
	}
	params := services.SearchParams{
		Query:      strings.TrimSpace(c.Query("q")),
		CategoryID: strings.TrimSpace(c.Query("categoryId")),
		Page:       page,
		PerPage:    perPage,
	}

	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	key := fmt.Sprintf("products:p:%d:l:%d:c:%s:q:%s", params.Page, params.PerPage, params.CategoryID, strings.ToLower(params.Query))
	var cached services.SearchResult
	if ctrl.cache.Get(ctx, key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	result, err := ctrl.products.SearchProducts(ctx, params)
	if err != nil {
		respondError(c, "Failed to fetch products", err)
		return
	}
	ctrl.cache.SetAsync(key, result)
	c.JSON(http.StatusOK, result)
}

// GetCategoryProducts lists the newest products of one category. limit is optional.
func (ctrl *ProductController) GetCategoryProducts(c *gin.Context) {
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

	products, err := ctrl.products.ListByCategory(ctx, c.Param("id"), limit)
	if err != nil {
		respondError(c, "Failed to fetch category products", err)
		return
	}
	if products == nil {
		products = []*models.Product{}
	}
	c.JSON(http.StatusOK, products)
}

func (ctrl *ProductController) CountProducts(c *gin.Context) {
	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	count, err := ctrl.products.CountProducts(ctx)
	if err != nil {
		respondError(c, "Failed to count products", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (ctrl *ProductController) GetProduct(c *gin.Context) {
	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	product, err := ctrl.products.GetProduct(ctx, c.Param("id"))
	if err != nil {
		respondError(c, "Failed to fetch product", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (ctrl *ProductController) GetProductBySlug(c *gin.Context) {
	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	product, err := ctrl.products.GetProductBySlug(ctx, c.Param("slug"))
	if err != nil {
		respondError(c, "Failed to fetch product", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := ctrl.validator.BindJSON(c, &req); err != nil {
		respondError(c, "Invalid product", err)
		return
	}

	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	if len(req.Prices) > 0 {
		product, prices, err := ctrl.prices.CreateProductWithPrices(ctx, req.toInput(), req.Prices)
		if err != nil {
			respondError(c, "Failed to create product", err)
			return
		}
		ctrl.cache.Invalidate(ctx)
		c.JSON(http.StatusCreated, gin.H{"product": product, "prices": prices})
		return
	}

	product, err := ctrl.products.CreateProduct(ctx, req.toInput())
	if err != nil {
		respondError(c, "Failed to create product", err)
		return
	}
	ctrl.cache.Invalidate(ctx)
	c.JSON(http.StatusCreated, product)
}

func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	var req ProductRequest
	if err := ctrl.validator.BindJSON(c, &req); err != nil {
		respondError(c, "Invalid product", err)
		return
	}

	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	product, err := ctrl.products.UpdateProduct(ctx, c.Param("id"), req.toInput())
	if err != nil {
		respondError(c, "Failed to update product", err)
		return
	}
	ctrl.cache.Invalidate(ctx)
	c.JSON(http.StatusOK, product)
}

func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	if err := ctrl.products.DeleteProduct(ctx, c.Param("id")); err != nil {
		respondError(c, "Failed to delete product", err)
		return
	}
	ctrl.cache.Invalidate(ctx)
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// GetProductQuality scores a stored product.
func (ctrl *ProductController) GetProductQuality(c *gin.Context) {
	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	product, err := ctrl.products.GetProduct(ctx, c.Param("id"))
	if err != nil {
		respondError(c, "Failed to fetch product", err)
		return
	}
	c.JSON(http.StatusOK, services.CalculateQualityScore(services.QualityInputFromProduct(product)))
}

// ScoreDraft scores an unsaved product body.
func (ctrl *ProductController) ScoreDraft(c *gin.Context) {
	var in services.QualityInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, services.CalculateQualityScore(in))
}

func (ctrl *ProductController) GetPrices(c *gin.Context) {
	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	prices, err := ctrl.prices.ListPrices(ctx, c.Param("id"))
	if err != nil {
		respondError(c, "Failed to fetch prices", err)
		return
	}
	c.JSON(http.StatusOK, prices)
}

func (ctrl *ProductController) GetBestPrice(c *gin.Context) {
	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	best, err := ctrl.prices.GetBestPrice(ctx, c.Param("id"))
	if err != nil {
		respondError(c, "Failed to fetch best price", err)
		return
	}
	c.JSON(http.StatusOK, best)
}

func (ctrl *ProductController) AddPrice(c *gin.Context) {
	var req services.PriceInput
	if err := ctrl.validator.BindJSON(c, &req); err != nil {
		respondError(c, "Invalid price", err)
		return
	}

	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	price, err := ctrl.prices.AddPrice(ctx, c.Param("id"), req)
	if err != nil {
		respondError(c, "Failed to add price", err)
		return
	}
	c.JSON(http.StatusCreated, price)
}

// UploadImage accepts a multipart "image" field and stores its renditions.
func (ctrl *ProductController) UploadImage(c *gin.Context) {
	file, err := ctrl.validator.ImageFile(c)
	if err != nil {
		respondError(c, "Invalid image", err)
		return
	}
	fh, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open file"})
		return
	}
	defer fh.Close()
	data, err := io.ReadAll(fh)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}

	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	result, err := ctrl.images.UploadProductImage(ctx, c.Param("id"), file.Filename, imageContentType(file), data)
	if err != nil {
		respondError(c, "Failed to upload image", err)
		return
	}
	ctrl.cache.Invalidate(ctx)
	c.JSON(http.StatusCreated, result)
}

// PresignImage returns a URL the admin UI can PUT an image to directly.
func (ctrl *ProductController) PresignImage(c *gin.Context) {
	var req PresignRequest
	if err := ctrl.validator.BindJSON(c, &req); err != nil {
		respondError(c, "Invalid presign request", err)
		return
	}
	expires := time.Duration(req.ExpiresSeconds) * time.Second
	if limit := MaxPresignHours * time.Hour; expires > limit {
		expires = limit
	}

	ctx, cancel := ctrl.ctx(c)
	defer cancel()

	upload, err := ctrl.images.PresignProductImage(ctx, c.Param("id"), req.Filename, req.ContentType, expires)
	if err != nil {
		respondError(c, "Failed to presign upload", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"upload_url": upload.URL,
		"key":        upload.Key,
		"public_url": upload.PublicURL,
		"headers":    upload.Headers,
	})
}
