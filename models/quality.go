package models

type Grade string

const (
	GradePoor      Grade = "poor"
	GradeFair      Grade = "fair"
	GradeGood      Grade = "good"
	GradeExcellent Grade = "excellent"
)

type QualityBreakdown struct {
	Title       int `json:"title"`
	Brand       int `json:"brand"`
	Description int `json:"description"`
	Images      int `json:"images"`
	Specs       int `json:"specs"`
	ProsCons    int `json:"proscons"`
}

// Sum adds up every component score.
func (b QualityBreakdown) Sum() int {
	return b.Title + b.Brand + b.Description + b.Images + b.Specs + b.ProsCons
}

// QualityScore is a derived completeness metric. It is never persisted.
type QualityScore struct {
	Total       int              `json:"total"`
	Breakdown   QualityBreakdown `json:"breakdown"`
	Suggestions []string         `json:"suggestions"`
	Grade       Grade            `json:"grade"`
}
