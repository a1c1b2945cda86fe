package services_test

import (
	"strings"
	"testing"

	"catalog-service/models"
	"catalog-service/services"

	"github.com/stretchr/testify/assert"
)

func specs(n int) map[string]interface{} {
	m := map[string]interface{}{}
	for i := 0; i < n; i++ {
		m[string(rune('a'+i))] = i
	}
	return m
}

func TestCalculateQualityScore_Empty(t *testing.T) {
	s := services.CalculateQualityScore(services.QualityInput{})
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, models.GradePoor, s.Grade)
	assert.Equal(t, []string{
		"Add a product title",
		"Add brand name",
		"Add a product description",
		"Upload product images (minimum 3 recommended)",
		"Add product specifications (minimum 3 recommended)",
		"Add pros and cons to help users compare",
	}, s.Suggestions)
}

func TestCalculateQualityScore_Perfect(t *testing.T) {
	s := services.CalculateQualityScore(services.QualityInput{
		Title:       "Galaxy S24",
		Brand:       "Samsung",
		Description: strings.Repeat("x", 200),
		Images:      []string{"1", "2", "3", "4", "5"},
		Specs:       specs(5),
		Pros:        []string{"a", "b", "c"},
		Cons:        []string{"d", "e"},
	})
	assert.Equal(t, 100, s.Total)
	assert.Equal(t, models.GradeExcellent, s.Grade)
	assert.Empty(t, s.Suggestions)
}

func TestCalculateQualityScore_Tiers(t *testing.T) {
	cases := []struct {
		name  string
		in    services.QualityInput
		get   func(models.QualityBreakdown) int
		want  int
		hint  string
	}{
		{"desc 100", services.QualityInput{Description: strings.Repeat("x", 100)}, func(b models.QualityBreakdown) int { return b.Description }, 15, "Expand description to 200+ characters for maximum score"},
		{"desc 50", services.QualityInput{Description: strings.Repeat("x", 50)}, func(b models.QualityBreakdown) int { return b.Description }, 10, "Expand description to 100+ characters"},
		{"desc short", services.QualityInput{Description: "  hi  "}, func(b models.QualityBreakdown) int { return b.Description }, 5, "Write a detailed description (100+ characters)"},
		{"desc blank", services.QualityInput{Description: "    "}, func(b models.QualityBreakdown) int { return b.Description }, 0, "Add a product description"},
		{"images 4", services.QualityInput{Images: make([]string, 4)}, func(b models.QualityBreakdown) int { return b.Images }, 25, "Add 1 more images for perfect score"},
		{"images 3", services.QualityInput{Images: make([]string, 3)}, func(b models.QualityBreakdown) int { return b.Images }, 25, "Add 2 more images for perfect score"},
		{"images 2", services.QualityInput{Images: make([]string, 2)}, func(b models.QualityBreakdown) int { return b.Images }, 15, "Add 1 more images (minimum 3 recommended)"},
		{"images 1", services.QualityInput{Images: make([]string, 1)}, func(b models.QualityBreakdown) int { return b.Images }, 10, "Add at least 2 more images"},
		{"specs 3", services.QualityInput{Specs: specs(3)}, func(b models.QualityBreakdown) int { return b.Specs }, 15, "Add 2 more specifications for perfect score"},
		{"specs 1", services.QualityInput{Specs: specs(1)}, func(b models.QualityBreakdown) int { return b.Specs }, 10, "Add 2 more specifications"},
		{"pros 2 cons 1", services.QualityInput{Pros: []string{"a", "b"}, Cons: []string{"c"}}, func(b models.QualityBreakdown) int { return b.ProsCons }, 7, "Add more pros/cons for better comparison (3+ pros, 2+ cons)"},
		{"cons only", services.QualityInput{Cons: []string{"c"}}, func(b models.QualityBreakdown) int { return b.ProsCons }, 5, "Add pros and cons for product comparison"},
		{"blank pros", services.QualityInput{Pros: []string{" ", ""}, Cons: []string{"\t"}}, func(b models.QualityBreakdown) int { return b.ProsCons }, 0, "Add pros and cons to help users compare"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := services.CalculateQualityScore(tc.in)
			assert.Equal(t, tc.want, tc.get(s.Breakdown))
			assert.Contains(t, s.Suggestions, tc.hint)
			assert.Equal(t, s.Breakdown.Sum(), s.Total)
		})
	}
}

func TestCalculateQualityScore_Grades(t *testing.T) {
	base := services.QualityInput{Title: "t", Brand: "b", Description: strings.Repeat("x", 200), Images: make([]string, 5)}
	// 10+10+20+30 = 70
	assert.Equal(t, models.GradeGood, services.CalculateQualityScore(base).Grade)

	base.Specs = specs(3) // 85
	assert.Equal(t, 85, services.CalculateQualityScore(base).Total)
	assert.Equal(t, models.GradeExcellent, services.CalculateQualityScore(base).Grade)

	fair := services.QualityInput{Title: "t", Brand: "b", Images: make([]string, 5)} // 50
	assert.Equal(t, models.GradeFair, services.CalculateQualityScore(fair).Grade)
}

func TestCalculateQualityScore_Pure(t *testing.T) {
	in := services.QualityInput{Title: "x", Pros: []string{"a"}, Specs: specs(2)}
	assert.Equal(t, services.CalculateQualityScore(in), services.CalculateQualityScore(in))
	assert.Equal(t, []string{"a"}, in.Pros)
}
