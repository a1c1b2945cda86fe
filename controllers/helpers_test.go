package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"catalog-service/models"
	"catalog-service/repository"
	"catalog-service/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

func newTestRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: "localhost:0",
		Dialer: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return nil, errors.New("redis disabled in tests")
		},
		MaxRetries: -1,
	})
}

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memBlobs) Upload(_ context.Context, key, _ string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return "https://cdn.test/" + key, nil
}

func (m *memBlobs) Download(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return b, nil
}

func (m *memBlobs) Delete(_ context.Context, keyOrURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, strings.TrimPrefix(keyOrURL, "https://cdn.test/"))
	return nil
}

func (m *memBlobs) PresignUpload(_ context.Context, key, contentType string, _ time.Duration) (repository.PresignedUpload, error) {
	return repository.PresignedUpload{
		URL:       "https://signed.test/" + key,
		Key:       key,
		PublicURL: "https://cdn.test/" + key,
		Headers:   map[string]string{"Content-Type": contentType},
	}, nil
}

type fakeQueue struct {
	enqueued [][]byte
	opts     []services.ImportOptions
	jobs     map[string]*models.ImportJob
}

func (q *fakeQueue) Enqueue(_ context.Context, data []byte, opts services.ImportOptions) (*models.ImportJob, error) {
	q.enqueued = append(q.enqueued, data)
	q.opts = append(q.opts, opts)
	job := &models.ImportJob{ID: "job-1", Status: models.JobPending}
	q.jobs[job.ID] = job
	return job, nil
}

func (q *fakeQueue) GetJob(_ context.Context, id string) (*models.ImportJob, error) {
	job, ok := q.jobs[id]
	if !ok {
		return nil, services.ErrJobNotFound
	}
	return job, nil
}

type testEnv struct {
	router     *gin.Engine
	categories *services.CategoryService
	products   *services.ProductService
	prices     *services.PriceService
	queue      *fakeQueue
	blobs      *memBlobs
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	productRepo := repository.NewProductRepository(store)
	categoryRepo := repository.NewCategoryRepository(store)
	priceRepo := repository.NewPriceRepository(store)
	blobs := &memBlobs{objects: map[string][]byte{}}

	env := &testEnv{
		categories: services.NewCategoryService(store, categoryRepo, productRepo),
		queue:      &fakeQueue{jobs: map[string]*models.ImportJob{}},
		blobs:      blobs,
	}
	env.products = services.NewProductService(productRepo, categoryRepo, priceRepo, blobs)
	env.prices = services.NewPriceService(priceRepo, env.products)
	images := services.NewImageService(blobs, env.products)
	importSvc := services.NewImportService(services.NewBatchImporter(productRepo), env.categories, nil, "", nil)

	cache := NewCacheManager(newTestRedisClient())
	v := NewRequestValidator()
	cc := NewCategoryController(env.categories, cache, v)
	pc := NewProductController(env.products, env.prices, images, cache, v)
	ih := NewImportHandler(importSvc, env.queue, cache, v)
	ac := NewAnalyticsController(services.NewAnalyticsService(repository.NewAnalyticsRepository(store), env.products, nil), v)
	sc := NewSliderController(services.NewSliderService(repository.NewSliderRepository(store)), cache, v)

	r := gin.New()
	r.GET("/categories", cc.GetCategories)
	r.GET("/categories/featured", cc.GetFeaturedCategories)
	r.GET("/categories/slug/:slug", cc.GetCategoryBySlug)
	r.GET("/categories/:id", cc.GetCategory)
	r.POST("/categories", cc.CreateCategory)
	r.PUT("/categories/:id", cc.UpdateCategory)
	r.DELETE("/categories/:id", cc.DeleteCategory)
	r.POST("/categories/:id/refresh-count", cc.RefreshCategoryCount)
	r.POST("/categories-refresh", cc.RefreshAllCategoryCounts)

	r.GET("/categories/:id/products", pc.GetCategoryProducts)
	r.GET("/products", pc.GetProducts)
	r.GET("/products/count", pc.CountProducts)
	r.GET("/products/slug/:slug", pc.GetProductBySlug)
	r.GET("/products/:id", pc.GetProduct)
	r.POST("/products", pc.CreateProduct)
	r.PUT("/products/:id", pc.UpdateProduct)
	r.DELETE("/products/:id", pc.DeleteProduct)
	r.GET("/products/:id/quality", pc.GetProductQuality)
	r.POST("/quality", pc.ScoreDraft)
	r.GET("/products/:id/prices", pc.GetPrices)
	r.POST("/products/:id/prices", pc.AddPrice)
	r.GET("/products/:id/best-price", pc.GetBestPrice)
	r.POST("/products/:id/images", pc.UploadImage)
	r.POST("/products/:id/images/presign", pc.PresignImage)
	r.POST("/products/:id/click", ac.TrackClick)
	r.GET("/analytics", ac.ListEvents)

	r.GET("/sliders", sc.GetActiveSliders)
	r.GET("/sliders/all", sc.GetSliders)
	r.POST("/sliders", sc.CreateSlider)
	r.PUT("/sliders/:id", sc.UpdateSlider)
	r.DELETE("/sliders/:id", sc.DeleteSlider)

	r.POST("/import", ih.Import)
	r.POST("/import/preview", ih.Preview)
	r.POST("/import/validate", ih.Validate)
	r.POST("/import/errors", ih.ErrorReport)
	r.GET("/import/jobs/:id", ih.GetJobStatus)
	r.GET("/import/mapping", ih.SuggestMapping)

	env.router = r
	return env
}

func (e *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// upload posts a multipart form with one file part plus plain fields.
func (e *testEnv) upload(path, field, filename, contentType string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, _ := mw.CreatePart(h)
	_, _ = part.Write(content)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (e *testEnv) category(t *testing.T, name string) *models.Category {
	t.Helper()
	c, err := e.categories.CreateCategory(context.Background(), services.CategoryInput{Name: name})
	require.NoError(t, err)
	return c
}

func (e *testEnv) product(t *testing.T, title, categoryID string) *models.Product {
	t.Helper()
	p, err := e.products.CreateProduct(context.Background(), services.ProductInput{Title: title, Brand: "Acme", CategoryID: categoryID})
	require.NoError(t, err)
	return p
}
