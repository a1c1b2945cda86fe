package routes

import (
	"net/http"

	"catalog-service/controllers"

	"github.com/gin-gonic/gin"
)

// Handlers groups everything the router needs.
type Handlers struct {
	Categories *controllers.CategoryController
	Products   *controllers.ProductController
	Imports    *controllers.ImportHandler
	Analytics  *controllers.AnalyticsController
	Sliders    *controllers.SliderController

	// Public is applied to the read-only catalog routes, Admin to everything under /admin.
	Public []gin.HandlerFunc
	Admin  []gin.HandlerFunc
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	public := r.Group("/", h.Public...)
	{
		public.GET("/categories", h.Categories.GetCategories)
		public.GET("/categories/featured", h.Categories.GetFeaturedCategories)
		public.GET("/categories/slug/:slug", h.Categories.GetCategoryBySlug)
		public.GET("/categories/:id", h.Categories.GetCategory)
		public.GET("/categories/:id/products", h.Products.GetCategoryProducts)

		public.GET("/products", h.Products.GetProducts)
		public.GET("/products/count", h.Products.CountProducts)
		public.GET("/products/slug/:slug", h.Products.GetProductBySlug)
		public.GET("/products/:id", h.Products.GetProduct)
		public.GET("/products/:id/prices", h.Products.GetPrices)
		public.GET("/products/:id/best-price", h.Products.GetBestPrice)
		public.POST("/products/:id/click", h.Analytics.TrackClick)

		public.GET("/sliders", h.Sliders.GetActiveSliders)
	}

	admin := r.Group("/admin", h.Admin...)
	{
		categories := admin.Group("/categories")
		categories.POST("", h.Categories.CreateCategory)
		categories.POST("/refresh-counts", h.Categories.RefreshAllCategoryCounts)
		categories.PUT("/:id", h.Categories.UpdateCategory)
		categories.DELETE("/:id", h.Categories.DeleteCategory)
		categories.POST("/:id/refresh-count", h.Categories.RefreshCategoryCount)

		products := admin.Group("/products")
		products.POST("", h.Products.CreateProduct)
		products.PUT("/:id", h.Products.UpdateProduct)
		products.DELETE("/:id", h.Products.DeleteProduct)
		products.GET("/:id/quality", h.Products.GetProductQuality)
		products.POST("/:id/images", h.Products.UploadImage)
		products.POST("/:id/images/presign", h.Products.PresignImage)
		products.POST("/:id/prices", h.Products.AddPrice)

		admin.POST("/quality", h.Products.ScoreDraft)
		admin.GET("/analytics", h.Analytics.ListEvents)

		sliders := admin.Group("/sliders")
		sliders.GET("", h.Sliders.GetSliders)
		sliders.POST("", h.Sliders.CreateSlider)
		sliders.PUT("/:id", h.Sliders.UpdateSlider)
		sliders.DELETE("/:id", h.Sliders.DeleteSlider)

		imports := admin.Group("/import")
		imports.POST("", h.Imports.Import)
		imports.POST("/preview", h.Imports.Preview)
		imports.POST("/validate", h.Imports.Validate)
		imports.POST("/errors", h.Imports.ErrorReport)
		imports.GET("/jobs/:id", h.Imports.GetJobStatus)
		imports.GET("/mapping", h.Imports.SuggestMapping)
	}
}
