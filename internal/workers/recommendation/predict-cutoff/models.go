package predictcutoff

import (
	"college-recommender/internal/models"
	"college-recommender/internal/recommendation"
)

type Input struct {
	CollegeID  string   `json:"collegeId"`
	CourseID   string   `json:"courseId"`
	ExamType   string   `json:"examType"`
	Category   string   `json:"category"`
	Rank       *int     `json:"rank,omitempty"`
	Percentile *float64 `json:"percentile,omitempty"`
}

type Output struct {
	PredictedCutoff   recommendation.PredictedCutoff `json:"predictedCutoff"`
	HistoricalCutoffs []models.Cutoff                `json:"historicalCutoffs"`
	EffectiveRank     *int                           `json:"effectiveRank,omitempty"`
	AdmissionChance   recommendation.ChanceCategory  `json:"admissionChance,omitempty"`
	ChancePercentage  *int                           `json:"chancePercentage,omitempty"`
}
