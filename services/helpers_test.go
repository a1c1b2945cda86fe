package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"catalog-service/models"
	"catalog-service/repository"
	"catalog-service/services"
)

// --- Fake blob store ---

type fakeBlobStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	failKeys  string
	uploadErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (f *fakeBlobStore) Upload(_ context.Context, key, _ string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKeys != "" && strings.Contains(key, f.failKeys) {
		return "", f.uploadErr
	}
	f.objects[key] = data
	return "https://cdn.test/" + key, nil
}

func (f *fakeBlobStore) Download(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return b, nil
}

func (f *fakeBlobStore) Delete(_ context.Context, keyOrURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.TrimPrefix(keyOrURL, "https://cdn.test/")
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeBlobStore) PresignUpload(_ context.Context, key, _ string, _ time.Duration) (repository.PresignedUpload, error) {
	return repository.PresignedUpload{URL: "https://signed.test/" + key, Key: key, PublicURL: "https://cdn.test/" + key}, nil
}

// --- Store whose batches never commit ---

type failingBatchStore struct {
	*repository.MemoryStore
}

func (s failingBatchStore) Batch() repository.Batch { return failingBatch{} }

type failingBatch struct{}

func (failingBatch) Update(string, string, repository.Document) {}
func (failingBatch) Delete(string, string)                      {}
func (failingBatch) Commit(context.Context) error               { return errors.New("commit rejected") }

// --- Product repo that rejects selected titles ---

type flakyProductRepo struct {
	repository.ProductRepo
	failTitle string
	created   []string
}

func (r *flakyProductRepo) Create(ctx context.Context, p *models.Product) (string, error) {
	if p.Title == r.failTitle {
		return "", fmt.Errorf("write rejected for %s", p.Title)
	}
	r.created = append(r.created, p.Title)
	return r.ProductRepo.Create(ctx, p)
}

// --- Fixture ---

type fixture struct {
	store      repository.Store
	products   *repository.ProductRepository
	categories *repository.CategoryRepository
	prices     *repository.PriceRepository
	blobs      *fakeBlobStore

	categorySvc *services.CategoryService
	productSvc  *services.ProductService
	priceSvc    *services.PriceService
	imageSvc    *services.ImageService
	importer    *services.BatchImporter
	importSvc   *services.ImportService
	analytics   *services.AnalyticsService
	sliderSvc   *services.SliderService
}

func newFixture() *fixture {
	return newFixtureWithStore(repository.NewMemoryStore())
}

func newFixtureWithStore(store repository.Store) *fixture {
	f := &fixture{
		store:      store,
		products:   repository.NewProductRepository(store),
		categories: repository.NewCategoryRepository(store),
		prices:     repository.NewPriceRepository(store),
		blobs:      newFakeBlobStore(),
	}
	f.categorySvc = services.NewCategoryService(store, f.categories, f.products)
	f.productSvc = services.NewProductService(f.products, f.categories, f.prices, f.blobs)
	f.priceSvc = services.NewPriceService(f.prices, f.productSvc)
	f.imageSvc = services.NewImageService(f.blobs, f.productSvc)
	f.importer = services.NewBatchImporter(f.products)
	f.importSvc = services.NewImportService(f.importer, f.categorySvc, nil, "", nil)
	f.analytics = services.NewAnalyticsService(repository.NewAnalyticsRepository(store), f.productSvc, nil)
	f.sliderSvc = services.NewSliderService(repository.NewSliderRepository(store))
	return f
}

func (f *fixture) mustCategory(name string) *models.Category {
	c, err := f.categorySvc.CreateCategory(context.Background(), services.CategoryInput{Name: name})
	if err != nil {
		panic(err)
	}
	return c
}

func (f *fixture) mustProduct(title, categoryID string) *models.Product {
	p, err := f.productSvc.CreateProduct(context.Background(), services.ProductInput{
		Title:       title,
		Brand:       "Acme",
		Description: "A " + title,
		CategoryID:  categoryID,
	})
	if err != nil {
		panic(err)
	}
	return p
}

func row(columns []string, values ...string) models.RawRow {
	m := make(map[string]string, len(columns))
	for i, c := range columns {
		if i < len(values) {
			m[c] = values[i]
		}
	}
	return models.RawRow{Columns: columns, Values: m}
}
