package generaterecommendations

import (
	"college-recommender/internal/models"
	"college-recommender/internal/recommendation"
)

type Input struct {
	ExamType               string   `json:"examType"`
	Rank                   *int     `json:"rank,omitempty"`
	Percentile             *float64 `json:"percentile,omitempty"`
	Category               string   `json:"category"`
	PreferredBranches      []string `json:"preferredBranches"`
	PreferredCities        []string `json:"preferredCities,omitempty"`
	PreferredDistricts     []string `json:"preferredDistricts,omitempty"`
	MaxBudget              *float64 `json:"maxBudget,omitempty"`
	MinPlacementPercentage *float64 `json:"minPlacementPercentage,omitempty"`
	CollegeType            []string `json:"collegeType,omitempty"`
	HostelRequired         bool     `json:"hostelRequired,omitempty"`
}

func (in *Input) query() *recommendation.Query {
	types := make([]models.CollegeType, 0, len(in.CollegeType))
	for _, t := range in.CollegeType {
		types = append(types, models.CollegeType(t))
	}

	return &recommendation.Query{
		ExamType:               models.ExamType(in.ExamType),
		Rank:                   in.Rank,
		Percentile:             in.Percentile,
		Category:               models.Category(in.Category),
		PreferredBranches:      in.PreferredBranches,
		PreferredCities:        in.PreferredCities,
		PreferredDistricts:     in.PreferredDistricts,
		MaxBudget:              in.MaxBudget,
		MinPlacementPercentage: in.MinPlacementPercentage,
		CollegeType:            types,
		HostelRequired:         in.HostelRequired,
	}
}

type Output struct {
	Recommendations []recommendation.Result `json:"recommendations"`
	Total           int                     `json:"total"`
}
