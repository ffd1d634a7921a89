package recommendation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"college-recommender/internal/models"
)

const (
	MaxResultsLimit     = 50
	DefaultHistoryYears = 3
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrStoreFailure = errors.New("store failure")
)

// ValidationError carries the message shown to the caller for a rejected
// query. It matches ErrInvalidInput under errors.Is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Store is the read side of the college catalog the engine needs: colleges
// with courses and cutoffs nested, narrowed by filter.
type Store interface {
	FindColleges(ctx context.Context, filter models.CollegeFilter) ([]models.College, error)
}

type Query struct {
	ExamType               models.ExamType      `json:"examType"`
	Rank                   *int                 `json:"rank,omitempty"`
	Percentile             *float64             `json:"percentile,omitempty"`
	Category               models.Category      `json:"category"`
	PreferredBranches      []string             `json:"preferredBranches"`
	PreferredCities        []string             `json:"preferredCities,omitempty"`
	PreferredDistricts     []string             `json:"preferredDistricts,omitempty"`
	MaxBudget              *float64             `json:"maxBudget,omitempty"`
	MinPlacementPercentage *float64             `json:"minPlacementPercentage,omitempty"`
	CollegeType            []models.CollegeType `json:"collegeType,omitempty"`
	HostelRequired         bool                 `json:"hostelRequired,omitempty"`
}

// Validate rejects queries the engine cannot score. Rank wins over
// percentile when both are set.
func (q *Query) Validate() error {
	if q.Rank == nil && q.Percentile == nil {
		return &ValidationError{"Either rank or percentile is required"}
	}
	if len(q.PreferredBranches) == 0 {
		return &ValidationError{"At least one preferred branch is required"}
	}
	if q.Rank != nil && *q.Rank <= 0 {
		return &ValidationError{"Rank must be a positive integer"}
	}
	if q.Rank == nil && (*q.Percentile < 0 || *q.Percentile > 100) {
		return &ValidationError{"Percentile must be between 0 and 100"}
	}
	if !q.ExamType.Valid() {
		return &ValidationError{fmt.Sprintf("Unsupported exam type %q", q.ExamType)}
	}
	if !q.Category.Valid() {
		return &ValidationError{fmt.Sprintf("Unsupported category %q", q.Category)}
	}
	if q.MaxBudget != nil && *q.MaxBudget <= 0 {
		return &ValidationError{"Max budget must be positive"}
	}
	return nil
}

func (q *Query) filter(minYear int) models.CollegeFilter {
	return models.CollegeFilter{
		Cities:                 q.PreferredCities,
		Districts:              q.PreferredDistricts,
		Types:                  q.CollegeType,
		MaxAnnualFee:           q.MaxBudget,
		MinPlacementPercentage: q.MinPlacementPercentage,
		HostelRequired:         q.HostelRequired,
		Branches:               q.PreferredBranches,
		ExamType:               q.ExamType,
		Category:               q.Category,
		MinYear:                minYear,
	}
}

type Result struct {
	College           models.CollegeSummary `json:"college"`
	Course            models.Course         `json:"course"`
	MatchScore        int                   `json:"matchScore"`
	AdmissionChance   ChanceCategory        `json:"admissionChance"`
	ChancePercentage  int                   `json:"chancePercentage"`
	PredictedCutoff   PredictedCutoff       `json:"predictedCutoff"`
	HistoricalCutoffs []models.Cutoff       `json:"historicalCutoffs"`
	Reasons           []string              `json:"reasons"`
	Warnings          []string              `json:"warnings"`
}

type Config struct {
	MaxResults   int
	HistoryYears int
	PoolSizes    PoolSizes
}

type Engine struct {
	store  Store
	config Config

	// Now supplies the current year for the history window.
	Now func() time.Time
}

func NewEngine(store Store, config Config) *Engine {
	if config.MaxResults <= 0 || config.MaxResults > MaxResultsLimit {
		config.MaxResults = MaxResultsLimit
	}
	if config.HistoryYears <= 0 {
		config.HistoryYears = DefaultHistoryYears
	}
	if config.PoolSizes.CET <= 0 {
		config.PoolSizes.CET = DefaultPoolSizes.CET
	}
	if config.PoolSizes.JEE <= 0 {
		config.PoolSizes.JEE = DefaultPoolSizes.JEE
	}

	return &Engine{
		store:  store,
		config: config,
		Now:    time.Now,
	}
}

// EffectiveRank is the query's rank, or its percentile converted to a rank.
func (e *Engine) EffectiveRank(q *Query) int {
	if q.Rank != nil {
		return *q.Rank
	}
	return PercentileToRank(*q.Percentile, q.ExamType, e.config.PoolSizes)
}

// MinYear is the oldest cutoff year inside the history window.
func (e *Engine) MinYear() int {
	return e.Now().Year() - e.config.HistoryYears
}

// Generate scores every college/course pair with recent cutoff history
// against the query. Results are ordered by chance tier, then match score,
// and capped at the configured maximum. A store error fails the whole call.
func (e *Engine) Generate(ctx context.Context, q *Query) ([]Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	minYear := e.MinYear()
	colleges, err := e.store.FindColleges(ctx, q.filter(minYear))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	rank := e.EffectiveRank(q)
	results := []Result{}

	for i := range colleges {
		college := &colleges[i]
		summary := college.Summary()

		for j := range college.Courses {
			course := &college.Courses[j]
			if !slices.Contains(q.PreferredBranches, course.Branch) {
				continue
			}

			history := pairHistory(college.Cutoffs, course.ID, q, minYear)
			if len(history) == 0 {
				continue
			}

			predicted := PredictCutoff(history)
			chance := ClassifyChance(rank, predicted)

			results = append(results, Result{
				College:           summary,
				Course:            *course,
				MatchScore:        MatchScore(college, course, q),
				AdmissionChance:   chance.Category,
				ChancePercentage:  chance.Percentage,
				PredictedCutoff:   predicted,
				HistoricalCutoffs: history,
				Reasons:           Reasons(college, chance),
				Warnings:          Warnings(college, rank, predicted),
			})
		}
	}

	SortResults(results)

	if len(results) > e.config.MaxResults {
		results = results[:e.config.MaxResults]
	}
	return results, nil
}

// SortResults orders by chance tier, best first, then by match score. Ties
// keep their existing order.
func SortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		oi, oj := results[i].AdmissionChance.Order(), results[j].AdmissionChance.Order()
		if oi != oj {
			return oi > oj
		}
		return results[i].MatchScore > results[j].MatchScore
	})
}

func pairHistory(cutoffs []models.Cutoff, courseID string, q *Query, minYear int) []models.Cutoff {
	history := []models.Cutoff{}
	for _, c := range cutoffs {
		if c.CourseID != courseID || c.ExamType != q.ExamType || c.Category != q.Category || c.Year < minYear {
			continue
		}
		history = append(history, c)
	}
	return history
}
