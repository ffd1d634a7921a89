package recommendation

import (
	"context"
	"fmt"

	"college-recommender/internal/models"
)

// HistoryStore loads the cutoff history of a single college/course pair.
type HistoryStore interface {
	CutoffHistory(ctx context.Context, collegeID, courseID string, exam models.ExamType, category models.Category, minYear int) ([]models.Cutoff, error)
}

// PairQuery asks for the predicted cutoff of one college/course pair.
// Rank and percentile are optional; with either one the admission chance is
// classified as well.
type PairQuery struct {
	CollegeID  string
	CourseID   string
	ExamType   models.ExamType
	Category   models.Category
	Rank       *int
	Percentile *float64
}

func (q *PairQuery) Validate() error {
	if q.CollegeID == "" || q.CourseID == "" {
		return &ValidationError{"College and course are required"}
	}
	if q.Rank != nil && *q.Rank <= 0 {
		return &ValidationError{"Rank must be a positive integer"}
	}
	if q.Rank == nil && q.Percentile != nil && (*q.Percentile < 0 || *q.Percentile > 100) {
		return &ValidationError{"Percentile must be between 0 and 100"}
	}
	if !q.ExamType.Valid() {
		return &ValidationError{fmt.Sprintf("Unsupported exam type %q", q.ExamType)}
	}
	if !q.Category.Valid() {
		return &ValidationError{fmt.Sprintf("Unsupported category %q", q.Category)}
	}
	return nil
}

type PairPrediction struct {
	PredictedCutoff   PredictedCutoff  `json:"predictedCutoff"`
	HistoricalCutoffs []models.Cutoff  `json:"historicalCutoffs"`
	EffectiveRank     *int             `json:"effectiveRank,omitempty"`
	Chance            *AdmissionChance `json:"-"`
}

// PredictPair runs the predictor over the pair's history inside the engine's
// window. An empty history yields the zero prediction, not an error.
func (e *Engine) PredictPair(ctx context.Context, store HistoryStore, q *PairQuery) (*PairPrediction, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	history, err := store.CutoffHistory(ctx, q.CollegeID, q.CourseID, q.ExamType, q.Category, e.MinYear())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	if history == nil {
		history = []models.Cutoff{}
	}

	prediction := &PairPrediction{
		PredictedCutoff:   PredictCutoff(history),
		HistoricalCutoffs: history,
	}

	if q.Rank != nil || q.Percentile != nil {
		rank := e.EffectiveRank(&Query{ExamType: q.ExamType, Rank: q.Rank, Percentile: q.Percentile})
		chance := ClassifyChance(rank, prediction.PredictedCutoff)
		prediction.EffectiveRank = &rank
		prediction.Chance = &chance
	}
	return prediction, nil
}
