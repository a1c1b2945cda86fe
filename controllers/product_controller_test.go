package controllers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"catalog-service/models"
	"catalog-service/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct(t *testing.T) {
	env := newTestEnv(t)
	cat := env.category(t, "Phones")

	w := env.do(http.MethodPost, "/products", map[string]interface{}{
		"title":       "Pixel 9 Pro",
		"brand":       "Google",
		"category_id": cat.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Product
	decode(t, w, &created)
	assert.Equal(t, "pixel-9-pro", created.SEO.Slug)
	require.NotNil(t, created.CategoryName)
	assert.Equal(t, "Phones", *created.CategoryName)

	w = env.do(http.MethodGet, "/products/slug/pixel-9-pro", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/products/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateProductValidation(t *testing.T) {
	tests := []struct {
		name        string
		body        interface{}
		wantStatus  int
		wantDetails []string
	}{
		{
			name:        "missing title and category",
			body:        map[string]interface{}{"brand": "Acme"},
			wantStatus:  http.StatusBadRequest,
			wantDetails: []string{"Title failed on 'required'", "CategoryID failed on 'required'"},
		},
		{
			name:        "bad slug",
			body:        map[string]interface{}{"title": "X", "category_id": "c", "slug": "Not A Slug"},
			wantStatus:  http.StatusBadRequest,
			wantDetails: []string{"Slug failed on 'slug'"},
		},
		{
			name:        "unknown category",
			body:        map[string]interface{}{"title": "X", "category_id": "nope"},
			wantStatus:  http.StatusBadRequest,
			wantDetails: []string{"Category not found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			w := env.do(http.MethodPost, "/products", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			var body struct {
				Details []string `json:"details"`
			}
			decode(t, w, &body)
			assert.Equal(t, tt.wantDetails, body.Details)
		})
	}
}

func TestCreateProductMalformedJSON(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodPost, "/products", "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")
}

func TestGetProducts(t *testing.T) {
	env := newTestEnv(t)
	phones := env.category(t, "Phones")
	laptops := env.category(t, "Laptops")
	env.product(t, "Pixel 9", phones.ID)
	env.product(t, "Galaxy S24", phones.ID)
	env.product(t, "ThinkPad X1", laptops.ID)

	w := env.do(http.MethodGet, "/products?perPage=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page services.SearchResult
	decode(t, w, &page)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Products, 2)

	w = env.do(http.MethodGet, "/products?categoryId="+phones.ID, nil)
	decode(t, w, &page)
	assert.Equal(t, 2, page.Total)

	w = env.do(http.MethodGet, "/products?q=thinkpad", nil)
	decode(t, w, &page)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "ThinkPad X1", page.Products[0].Title)

	w = env.do(http.MethodGet, "/products?page=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCategoryProductsAndCount(t *testing.T) {
	env := newTestEnv(t)
	phones := env.category(t, "Phones")
	env.product(t, "Pixel 9", phones.ID)
	env.product(t, "Galaxy S24", phones.ID)
	env.product(t, "Xperia 1", phones.ID)

	w := env.do(http.MethodGet, "/categories/"+phones.ID+"/products?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var products []models.Product
	decode(t, w, &products)
	assert.Len(t, products, 2)

	w = env.do(http.MethodGet, "/categories/empty/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = env.do(http.MethodGet, "/categories/"+phones.ID+"/products?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/products/count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":3}`, w.Body.String())
}

func TestDeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	cat := env.category(t, "Phones")
	p := env.product(t, "Pixel 9", cat.ID)

	w := env.do(http.MethodDelete, "/products/"+p.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/products/"+p.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Product not found"}`, w.Body.String())

	w = env.do(http.MethodDelete, "/products/"+p.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductQuality(t *testing.T) {
	env := newTestEnv(t)
	cat := env.category(t, "Phones")
	p := env.product(t, "Pixel 9", cat.ID)

	w := env.do(http.MethodGet, "/products/"+p.ID+"/quality", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var score models.QualityScore
	decode(t, w, &score)
	assert.Equal(t, score.Breakdown.Sum(), score.Total)
	assert.NotEmpty(t, score.Suggestions)

	w = env.do(http.MethodPost, "/quality", map[string]interface{}{})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &score)
	assert.Equal(t, 0, score.Total)
	assert.Equal(t, models.GradePoor, score.Grade)
}

func TestPrices(t *testing.T) {
	env := newTestEnv(t)
	cat := env.category(t, "Phones")
	p := env.product(t, "Pixel 9", cat.ID)

	w := env.do(http.MethodGet, "/products/"+p.ID+"/best-price", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"No available price"}`, w.Body.String())

	w = env.do(http.MethodPost, "/products/"+p.ID+"/prices", map[string]interface{}{
		"marketplace": "amazon", "price": "0", "currency": "USD", "in_stock": true,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/products/"+p.ID+"/prices", map[string]interface{}{
		"marketplace": "amazon", "price": "10", "currency": "US",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, offer := range []map[string]interface{}{
		{"marketplace": "amazon", "price": "499.99", "currency": "usd", "in_stock": true},
		{"marketplace": "walmart", "price": "479.50", "currency": "USD", "in_stock": true},
		{"marketplace": "ebay", "price": "399.00", "currency": "USD", "in_stock": false},
	} {
		w = env.do(http.MethodPost, "/products/"+p.ID+"/prices", offer)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = env.do(http.MethodGet, "/products/"+p.ID+"/best-price", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var best models.Price
	decode(t, w, &best)
	assert.Equal(t, "walmart", best.Marketplace)
	assert.Equal(t, "479.5", best.Price.String())

	w = env.do(http.MethodGet, "/products/"+p.ID+"/prices", nil)
	var prices []models.Price
	decode(t, w, &prices)
	assert.Len(t, prices, 3)

	w = env.do(http.MethodPost, "/products/missing/prices", map[string]interface{}{
		"marketplace": "amazon", "price": "10", "currency": "USD",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadImage(t *testing.T) {
	env := newTestEnv(t)
	cat := env.category(t, "Phones")
	p := env.product(t, "Pixel 9", cat.ID)

	w := env.upload("/products/"+p.ID+"/images", "image", "Front View.PNG", "image/png", []byte("png-bytes"), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result services.ImageUploadResult
	decode(t, w, &result)
	assert.Contains(t, result.Original, "products/"+p.ID+"/original_")
	assert.True(t, strings.HasSuffix(result.Small, "_front-view.png"))
	assert.Len(t, env.blobs.objects, 3)

	stored, err := env.products.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{result.Original}, stored.Images)

	w = env.upload("/products/"+p.ID+"/images", "image", "notes.txt", "text/plain", []byte("x"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.upload("/products/missing/images", "image", "a.jpg", "image/jpeg", []byte("x"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPresignImage(t *testing.T) {
	env := newTestEnv(t)
	cat := env.category(t, "Phones")
	p := env.product(t, "Pixel 9", cat.ID)

	w := env.do(http.MethodPost, "/products/"+p.ID+"/images/presign", map[string]interface{}{
		"filename": "back.jpg", "content_type": "image/jpeg",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		UploadURL string            `json:"upload_url"`
		Key       string            `json:"key"`
		PublicURL string            `json:"public_url"`
		Headers   map[string]string `json:"headers"`
	}
	decode(t, w, &body)
	assert.True(t, strings.HasPrefix(body.Key, "products/"+p.ID+"/original_"))
	assert.Equal(t, "https://signed.test/"+body.Key, body.UploadURL)
	assert.Equal(t, "image/jpeg", body.Headers["Content-Type"])

	w = env.do(http.MethodPost, "/products/"+p.ID+"/images/presign", map[string]interface{}{
		"filename": "back.bmp", "content_type": "image/bmp",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSlugRuleSharedByProductsAndCategories(t *testing.T) {
	for slug, want := range map[string]int{
		"pixel--9":  http.StatusCreated,
		"9":         http.StatusCreated,
		"Pixel_9":   http.StatusBadRequest,
		"pixel 9 a": http.StatusBadRequest,
	} {
		t.Run(slug, func(t *testing.T) {
			env := newTestEnv(t)
			phones := env.category(t, "Phones")

			w := env.do(http.MethodPost, "/categories", map[string]interface{}{"name": "Other", "slug": slug})
			assert.Equal(t, want, w.Code, w.Body.String())

			w = env.do(http.MethodPost, "/products", map[string]interface{}{"title": "X", "category_id": phones.ID, "slug": slug})
			assert.Equal(t, want, w.Code, w.Body.String())
		})
	}
}

func TestCreateProductWithPrices(t *testing.T) {
	env := newTestEnv(t)
	cat := env.category(t, "Phones")

	w := env.do(http.MethodPost, "/products", map[string]interface{}{
		"title": "Pixel 9", "category_id": cat.ID,
		"prices": []map[string]interface{}{
			{"marketplace": "amazon", "price": "499.99", "currency": "USD", "in_stock": true},
			{"marketplace": "walmart", "price": "479.50", "currency": "usd", "in_stock": true},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var body struct {
		Product models.Product `json:"product"`
		Prices  []models.Price `json:"prices"`
	}
	decode(t, w, &body)
	require.Len(t, body.Prices, 2)
	assert.Equal(t, body.Product.ID, body.Prices[1].ProductID)

	w = env.do(http.MethodGet, "/products/"+body.Product.ID+"/best-price", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var best models.Price
	decode(t, w, &best)
	assert.Equal(t, "walmart", best.Marketplace)
}

func TestCreateProductWithPrices_Invalid(t *testing.T) {
	env := newTestEnv(t)
	cat := env.category(t, "Phones")

	w := env.do(http.MethodPost, "/products", map[string]interface{}{
		"title": "Pixel 9", "category_id": cat.ID,
		"prices": []map[string]interface{}{{"price": "10", "currency": "USD"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Marketplace failed on 'required'")

	w = env.do(http.MethodPost, "/products", map[string]interface{}{
		"title": "Pixel 9", "category_id": cat.ID,
		"prices": []map[string]interface{}{{"marketplace": "amazon", "price": "0", "currency": "USD"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Price 1 must be greater than 0")

	w = env.do(http.MethodGet, "/products/count", nil)
	assert.JSONEq(t, `{"count":0}`, w.Body.String())
}
