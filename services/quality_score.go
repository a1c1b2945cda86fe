package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"catalog-service/models"
)

// QualityInput is the subset of a listing the quality score looks at.
// Drafts that were never saved can be scored too.
type QualityInput struct {
	Title       string                 `json:"title"`
	Brand       string                 `json:"brand"`
	Description string                 `json:"description"`
	Images      []string               `json:"images"`
	Specs       map[string]interface{} `json:"specs"`
	Pros        []string               `json:"pros"`
	Cons        []string               `json:"cons"`
}

func QualityInputFromProduct(p *models.Product) QualityInput {
	return QualityInput{
		Title:       p.Title,
		Brand:       p.Brand,
		Description: p.Description,
		Images:      p.Images,
		Specs:       p.Specs,
		Pros:        p.Pros,
		Cons:        p.Cons,
	}
}

// CalculateQualityScore rates how complete a listing is. It is a pure
// function of its input and Total always equals the breakdown sum.
func CalculateQualityScore(p QualityInput) models.QualityScore {
	var b models.QualityBreakdown
	suggestions := []string{}
	suggest := func(s string) { suggestions = append(suggestions, s) }

	if strings.TrimSpace(p.Title) != "" {
		b.Title = 10
	} else {
		suggest("Add a product title")
	}

	if strings.TrimSpace(p.Brand) != "" {
		b.Brand = 10
	} else {
		suggest("Add brand name")
	}

	switch n := utf8.RuneCountInString(strings.TrimSpace(p.Description)); {
	case n >= 200:
		b.Description = 20
	case n >= 100:
		b.Description = 15
		suggest("Expand description to 200+ characters for maximum score")
	case n >= 50:
		b.Description = 10
		suggest("Expand description to 100+ characters")
	case n > 0:
		b.Description = 5
		suggest("Write a detailed description (100+ characters)")
	default:
		suggest("Add a product description")
	}

	switch n := len(p.Images); {
	case n >= 5:
		b.Images = 30
	case n >= 3:
		b.Images = 25
		suggest(fmt.Sprintf("Add %d more images for perfect score", 5-n))
	case n == 2:
		b.Images = 15
		suggest(fmt.Sprintf("Add %d more images (minimum 3 recommended)", 3-n))
	case n == 1:
		b.Images = 10
		suggest("Add at least 2 more images")
	default:
		suggest("Upload product images (minimum 3 recommended)")
	}

	switch n := len(p.Specs); {
	case n >= 5:
		b.Specs = 20
	case n >= 3:
		b.Specs = 15
		suggest(fmt.Sprintf("Add %d more specifications for perfect score", 5-n))
	case n >= 1:
		b.Specs = 10
		suggest(fmt.Sprintf("Add %d more specifications", 3-n))
	default:
		suggest("Add product specifications (minimum 3 recommended)")
	}

	pros, cons := countNonBlank(p.Pros), countNonBlank(p.Cons)
	switch {
	case pros >= 3 && cons >= 2:
		b.ProsCons = 10
	case pros >= 2 && cons >= 1:
		b.ProsCons = 7
		suggest("Add more pros/cons for better comparison (3+ pros, 2+ cons)")
	case pros >= 1 || cons >= 1:
		b.ProsCons = 5
		suggest("Add pros and cons for product comparison")
	default:
		suggest("Add pros and cons to help users compare")
	}

	total := b.Sum()
	return models.QualityScore{Total: total, Breakdown: b, Suggestions: suggestions, Grade: gradeFor(total)}
}

func gradeFor(total int) models.Grade {
	switch {
	case total >= 85:
		return models.GradeExcellent
	case total >= 70:
		return models.GradeGood
	case total >= 50:
		return models.GradeFair
	default:
		return models.GradePoor
	}
}

func countNonBlank(items []string) int {
	n := 0
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}
