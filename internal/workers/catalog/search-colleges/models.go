package searchcolleges

import "college-recommender/internal/models"

const (
	SourceElasticsearch = "elasticsearch"
	SourcePostgres      = "postgres"
	SourceNone          = "none"
)

type Input struct {
	Query string `json:"query"`
	Limit *int   `json:"limit,omitempty"`
}

type Output struct {
	Colleges []models.CollegeDocument `json:"colleges"`
	Total    int                      `json:"total"`
	Source   string                   `json:"source"`
}
