package services_test

import (
	"testing"

	"catalog-service/models"
	"catalog-service/services"

	"github.com/stretchr/testify/assert"
)

func TestSuggestFieldMapping_EverySynonymIsExact(t *testing.T) {
	synonyms := map[string][]string{
		models.FieldTitle:       {"title", "product_name", "prod_name", "name", "product_title", "item_name"},
		models.FieldBrand:       {"brand", "manufacturer", "make", "vendor", "supplier"},
		models.FieldDescription: {"description", "desc", "details", "product_description", "product_details"},
		models.FieldCategoryID:  {"category", "cat", "type", "product_type", "product_category"},
		models.FieldImages:      {"images", "image", "img", "photo", "picture", "image_url"},
		models.FieldSpecs:       {"specs", "specifications", "spec", "attributes", "features"},
	}
	for field, list := range synonyms {
		for _, s := range list {
			m := services.SuggestFieldMapping(s)
			assert.Equal(t, field, m.MappedField, s)
			assert.Equal(t, 100, m.Confidence, s)
			assert.Equal(t, s, m.ColumnName)
		}
	}
}

func TestSuggestFieldMapping_Normalization(t *testing.T) {
	cases := []struct {
		column string
		field  string
	}{
		{"Product Name", models.FieldTitle},
		{"  PRODUCT-TITLE ", models.FieldTitle},
		{"Image URL", models.FieldImages},
		{"product__category", models.FieldCategoryID},
	}
	for _, tc := range cases {
		m := services.SuggestFieldMapping(tc.column)
		assert.Equal(t, tc.field, m.MappedField, tc.column)
		assert.Equal(t, 100, m.Confidence, tc.column)
		assert.Equal(t, tc.column, m.ColumnName, "column name is kept verbatim")
	}
}

func TestSuggestFieldMapping_Fuzzy(t *testing.T) {
	// containment scores 0.85
	m := services.SuggestFieldMapping("brandnm")
	assert.Equal(t, models.FieldBrand, m.MappedField)
	assert.Equal(t, 85, m.Confidence)

	// "descripton" vs "description": one edit over 11 characters
	m = services.SuggestFieldMapping("descripton")
	assert.Equal(t, models.FieldDescription, m.MappedField)
	assert.Equal(t, 91, m.Confidence)
}

func TestSuggestFieldMapping_NoMatch(t *testing.T) {
	for _, c := range []string{"", "   ", "zzzz", "sku"} {
		m := services.SuggestFieldMapping(c)
		assert.Equal(t, "", m.MappedField, c)
		assert.Equal(t, 0, m.Confidence, c)
	}
}

func TestSuggestFieldMapping_Deterministic(t *testing.T) {
	first := services.SuggestFieldMapping("prodct nme")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, services.SuggestFieldMapping("prodct nme"))
	}
}

func TestMappingFromSuggestions_KeepsMostConfident(t *testing.T) {
	mapping := services.MappingFromSuggestions([]models.FieldMapping{
		{ColumnName: "Brand Name", MappedField: models.FieldBrand, Confidence: 85},
		{ColumnName: "Manufacturer", MappedField: models.FieldBrand, Confidence: 100},
		{ColumnName: "SKU", MappedField: "", Confidence: 0},
		{ColumnName: "Name", MappedField: models.FieldTitle, Confidence: 100},
	})
	assert.Equal(t, models.ColumnMapping{
		models.FieldBrand: "Manufacturer",
		models.FieldTitle: "Name",
	}, mapping)
}
