package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"catalog-service/models"
	"catalog-service/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestMemoryStore_CreateGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	id, err := store.Create(ctx, "things", repository.Document{"name": "a", "n": 1})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	doc, err := store.Get(ctx, "things", id)
	require.NoError(t, err)
	assert.Equal(t, id, doc["id"])
	assert.Equal(t, float64(1), doc["n"])

	require.NoError(t, store.Update(ctx, "things", id, repository.Document{"name": "b"}))
	doc, _ = store.Get(ctx, "things", id)
	assert.Equal(t, "b", doc["name"])
	assert.Equal(t, float64(1), doc["n"], "update merges fields")

	require.NoError(t, store.Delete(ctx, "things", id))
	_, err = store.Get(ctx, "things", id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "things", id), repository.ErrNotFound)
	assert.ErrorIs(t, store.Update(ctx, "things", id, repository.Document{"x": 1}), repository.ErrNotFound)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	id, _ := store.Create(ctx, "things", repository.Document{"name": "a"})

	doc, _ := store.Get(ctx, "things", id)
	doc["name"] = "mutated"

	again, _ := store.Get(ctx, "things", id)
	assert.Equal(t, "a", again["name"])
}

func TestMemoryStore_ListFiltersAndOrdering(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for i, title := range []string{"first", "second", "third"} {
		cat := "c1"
		if i == 1 {
			cat = "c2"
		}
		_, err := store.Create(ctx, repository.CollectionProducts, repository.Document{
			"title":       title,
			"category_id": cat,
			"seo":         map[string]interface{}{"slug": title},
			// fractional seconds of varying width must still order chronologically
			"created_at": base.Add(time.Duration(i) * 1200 * time.Millisecond),
		})
		require.NoError(t, err)
	}
	_, err := store.Create(ctx, repository.CollectionProducts, repository.Document{"title": "orphan", "category_id": nil})
	require.NoError(t, err)

	docs, err := store.List(ctx, repository.CollectionProducts, repository.Query{
		Filters: []repository.Filter{{Field: "category_id", Value: "c1"}},
		OrderBy: "created_at",
		Desc:    true,
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "third", docs[0]["title"])
	assert.Equal(t, "first", docs[1]["title"])

	docs, _ = store.List(ctx, repository.CollectionProducts, repository.Query{
		Filters: []repository.Filter{{Field: "seo.slug", Value: "second"}},
	})
	require.Len(t, docs, 1)
	assert.Equal(t, "second", docs[0]["title"])

	docs, _ = store.List(ctx, repository.CollectionProducts, repository.Query{
		Filters: []repository.Filter{{Field: "category_id", Value: nil}},
	})
	require.Len(t, docs, 1)
	assert.Equal(t, "orphan", docs[0]["title"])

	docs, _ = store.List(ctx, repository.CollectionProducts, repository.Query{OrderBy: "title", Limit: 2})
	require.Len(t, docs, 2)
	assert.Equal(t, "first", docs[0]["title"])
	assert.Equal(t, "orphan", docs[1]["title"])

	n, err := store.Count(ctx, repository.CollectionProducts, repository.Filter{Field: "category_id", Value: "c2"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryStore_BatchCommitsAll(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	a, _ := store.Create(ctx, "things", repository.Document{"v": 1})
	b, _ := store.Create(ctx, "things", repository.Document{"v": 2})

	batch := store.Batch()
	batch.Update("things", a, repository.Document{"v": 10})
	batch.Delete("things", b)
	require.NoError(t, batch.Commit(ctx))

	doc, _ := store.Get(ctx, "things", a)
	assert.Equal(t, float64(10), doc["v"])
	_, err := store.Get(ctx, "things", b)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMemoryStore_BatchIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	a, _ := store.Create(ctx, "things", repository.Document{"v": 1})

	batch := store.Batch()
	batch.Update("things", a, repository.Document{"v": 10})
	batch.Delete("things", "missing")
	err := batch.Commit(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrNotFound))

	doc, _ := store.Get(ctx, "things", a)
	assert.Equal(t, float64(1), doc["v"], "no operation may be applied when commit fails")
}

func TestMemoryStore_BatchRejectsDoubleDelete(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	a, _ := store.Create(ctx, "things", repository.Document{"v": 1})

	batch := store.Batch()
	batch.Delete("things", a)
	batch.Update("things", a, repository.Document{"v": 2})
	assert.Error(t, batch.Commit(ctx))

	_, err := store.Get(ctx, "things", a)
	assert.NoError(t, err)
}

func TestProductRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewProductRepository(repository.NewMemoryStore())
	now := time.Now().UTC()

	p := &models.Product{
		Title:      "Galaxy S24",
		Brand:      "Samsung",
		CategoryID: strPtr("phones"),
		Images:     []string{"https://cdn/x.jpg"},
		Specs:      map[string]interface{}{"ram": "8GB"},
		Pros:       []string{"fast"},
		Cons:       []string{},
		SEO:        models.SEO{Slug: "galaxy-s24"},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	id, err := repo.Create(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)

	got, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Galaxy S24", got.Title)
	assert.Equal(t, "phones", *got.CategoryID)
	assert.Equal(t, "8GB", got.Specs["ram"])
	assert.True(t, now.Equal(got.CreatedAt))

	bySlug, err := repo.FindBySlug(ctx, "galaxy-s24")
	require.NoError(t, err)
	assert.Equal(t, id, bySlug.ID)

	_, err = repo.FindBySlug(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCategoryRepository_OrderAndFeatured(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCategoryRepository(repository.NewMemoryStore())

	_, _ = repo.Create(ctx, &models.Category{Name: "Laptops", Slug: "laptops", Order: 20})
	_, _ = repo.Create(ctx, &models.Category{Name: "Phones", Slug: "phones", Order: 5, Featured: true})
	_, _ = repo.Create(ctx, &models.Category{Name: "Audio", Slug: "audio", Order: 10, Featured: true})

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"phones", "audio", "laptops"}, []string{all[0].Slug, all[1].Slug, all[2].Slug})

	featured, err := repo.FindFeatured(ctx)
	require.NoError(t, err)
	assert.Len(t, featured, 2)

	c, err := repo.FindBySlug(ctx, "audio")
	require.NoError(t, err)
	assert.Equal(t, "Audio", c.Name)
}
