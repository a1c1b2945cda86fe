package controllers

import (
	"context"
	"net/http"
	"testing"

	"catalog-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/categories", map[string]interface{}{"name": "Smart Phones & Tablets", "featured": true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Category
	decode(t, w, &created)
	assert.Equal(t, "smart-phones-tablets", created.Slug)
	assert.True(t, created.Featured)

	w = env.do(http.MethodPost, "/categories", map[string]interface{}{"name": "Smart Phones Tablets"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(http.MethodGet, "/categories/slug/smart-phones-tablets", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/categories/featured", nil)
	var featured []models.Category
	decode(t, w, &featured)
	assert.Len(t, featured, 1)
}

func TestCreateCategoryValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/categories", map[string]interface{}{"name": ""})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	decode(t, w, &body)
	assert.NotEmpty(t, body.Details)
}

func TestGetCategoryNotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/categories/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Category not found"}`, w.Body.String())
}

func TestDeleteCategory(t *testing.T) {
	tests := []struct {
		name       string
		products   int
		query      string
		wantStatus int
		wantError  string
	}{
		{
			name:       "empty category",
			wantStatus: http.StatusOK,
		},
		{
			name:       "in use",
			products:   2,
			wantStatus: http.StatusConflict,
			wantError:  "Cannot delete category with 2 products. Please reassign or delete products first.",
		},
		{
			name:       "reassign without force",
			products:   1,
			query:      "?reassign_to=other",
			wantStatus: http.StatusBadRequest,
			wantError:  "reassign_to requires force=true",
		},
		{
			name:       "bad force flag",
			query:      "?force=maybe",
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid boolean value for 'force'",
		},
		{
			name:       "force detaches products",
			products:   2,
			query:      "?force=true",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			cat := env.category(t, "Laptops")
			for i := 0; i < tt.products; i++ {
				env.product(t, "Laptop "+string(rune('A'+i)), cat.ID)
			}
			w := env.do(http.MethodPost, "/categories/"+cat.ID+"/refresh-count", nil)
			require.Equal(t, http.StatusOK, w.Code)

			w = env.do(http.MethodDelete, "/categories/"+cat.ID+tt.query, nil)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantError != "" {
				var body map[string]interface{}
				decode(t, w, &body)
				assert.Equal(t, tt.wantError, body["error"])
			}
		})
	}
}

func TestForceDeleteCategoryReassigns(t *testing.T) {
	env := newTestEnv(t)
	from := env.category(t, "Old Phones")
	to := env.category(t, "Phones")
	p1 := env.product(t, "Phone One", from.ID)
	env.product(t, "Phone Two", from.ID)

	w := env.do(http.MethodDelete, "/categories/"+from.ID+"?force=true&reassign_to="+to.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		ProductsAffected int    `json:"products_affected"`
		ReassignedTo     string `json:"reassigned_to"`
	}
	decode(t, w, &body)
	assert.Equal(t, 2, body.ProductsAffected)
	assert.Equal(t, to.ID, body.ReassignedTo)

	moved, err := env.products.GetProduct(context.Background(), p1.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.CategoryID)
	assert.Equal(t, to.ID, *moved.CategoryID)
	require.NotNil(t, moved.CategoryName)
	assert.Equal(t, "Phones", *moved.CategoryName)

	target, err := env.categories.GetCategory(context.Background(), to.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, target.ProductCount)

	w = env.do(http.MethodGet, "/categories/"+from.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestForceDeleteInvalidTarget(t *testing.T) {
	env := newTestEnv(t)
	cat := env.category(t, "Cameras")

	w := env.do(http.MethodDelete, "/categories/"+cat.ID+"?force=true&reassign_to="+cat.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodDelete, "/categories/"+cat.ID+"?force=true&reassign_to=nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodDelete, "/categories/nope?force=true", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRefreshAllCategoryCounts(t *testing.T) {
	env := newTestEnv(t)
	a := env.category(t, "Audio")
	b := env.category(t, "Video")
	env.product(t, "Speaker", a.ID)
	env.product(t, "Headphones", a.ID)

	w := env.do(http.MethodPost, "/categories-refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Counts map[string]int `json:"counts"`
	}
	decode(t, w, &body)
	assert.Equal(t, map[string]int{a.ID: 2, b.ID: 0}, body.Counts)
}

func TestUpdateCategory(t *testing.T) {
	env := newTestEnv(t)
	cat := env.category(t, "Tablets")
	env.category(t, "Phones")

	w := env.do(http.MethodPut, "/categories/"+cat.ID, map[string]interface{}{"description": "Slates"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Category
	decode(t, w, &updated)
	assert.Equal(t, "Slates", updated.Description)

	w = env.do(http.MethodPut, "/categories/"+cat.ID, map[string]interface{}{"slug": "phones"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(http.MethodPut, "/categories/missing", map[string]interface{}{"description": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
