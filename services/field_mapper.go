package services

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"catalog-service/models"

	"github.com/agnivade/levenshtein"
)

// minSimilarity is the fuzzy match threshold; a candidate must exceed it.
const minSimilarity = 0.7

type fieldSynonyms struct {
	field    string
	synonyms []string
}

// Ordered: on equal similarity the earlier field wins.
var fieldSynonymTable = []fieldSynonyms{
	{models.FieldTitle, []string{"title", "product_name", "prod_name", "name", "product_title", "item_name"}},
	{models.FieldBrand, []string{"brand", "manufacturer", "make", "vendor", "supplier"}},
	{models.FieldDescription, []string{"description", "desc", "details", "product_description", "product_details"}},
	{models.FieldCategoryID, []string{"category", "cat", "type", "product_type", "product_category"}},
	{models.FieldImages, []string{"images", "image", "img", "photo", "picture", "image_url"}},
	{models.FieldSpecs, []string{"specs", "specifications", "spec", "attributes", "features"}},
}

var separatorRun = regexp.MustCompile(`[_\s-]+`)

func normalizeColumnName(s string) string {
	return separatorRun.ReplaceAllString(strings.TrimSpace(strings.ToLower(s)), "")
}

// SuggestFieldMapping proposes the catalog field a CSV column most likely holds.
// An exact synonym match scores 100; otherwise the most similar synonym above
// the threshold wins, and no match yields an empty field with confidence 0.
func SuggestFieldMapping(column string) models.FieldMapping {
	clean := normalizeColumnName(column)

	bestField, bestConfidence, found := "", 0, false
	for _, entry := range fieldSynonymTable {
		for _, synonym := range entry.synonyms {
			candidate := normalizeColumnName(synonym)
			if clean == candidate {
				return models.FieldMapping{ColumnName: column, MappedField: entry.field, Confidence: 100}
			}
			sim := similarity(clean, candidate)
			if sim > minSimilarity && (!found || sim*100 > float64(bestConfidence)) {
				bestField, bestConfidence, found = entry.field, int(math.Round(sim*100)), true
			}
		}
	}
	return models.FieldMapping{ColumnName: column, MappedField: bestField, Confidence: bestConfidence}
}

// SuggestMappings runs SuggestFieldMapping over every column in order.
func SuggestMappings(columns []string) []models.FieldMapping {
	out := make([]models.FieldMapping, 0, len(columns))
	for _, c := range columns {
		out = append(out, SuggestFieldMapping(c))
	}
	return out
}

// MappingFromSuggestions inverts suggestions into a field to column mapping.
// When several columns map to one field the most confident one is kept.
func MappingFromSuggestions(suggestions []models.FieldMapping) models.ColumnMapping {
	mapping := models.ColumnMapping{}
	best := map[string]int{}
	for _, s := range suggestions {
		if s.MappedField == models.FieldSkip {
			continue
		}
		if conf, ok := best[s.MappedField]; ok && conf >= s.Confidence {
			continue
		}
		mapping[s.MappedField] = s.ColumnName
		best[s.MappedField] = s.Confidence
	}
	return mapping
}

// similarity scores two normalized names in [0,1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.85
	}
	longer := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longer {
		longer = n
	}
	dist := levenshtein.ComputeDistance(a, b)
	return float64(longer-dist) / float64(longer)
}
