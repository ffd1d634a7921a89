package models

type QueryType string

const (
	QueryTypeRecommendationCandidates QueryType = "recommendation_candidates"
	QueryTypeCutoffHistory            QueryType = "cutoff_history"
	QueryTypeCollegeByCode            QueryType = "college_by_code"
	QueryTypeCourseByBranchCode       QueryType = "course_by_branch_code"
	QueryTypeUpsertCutoff             QueryType = "upsert_cutoff"
	QueryTypeCollegeDocuments         QueryType = "college_documents"
	QueryTypeCollegeSearch            QueryType = "college_search"
)

// CollegeFilter narrows the colleges the store returns. Empty fields do not
// filter.
type CollegeFilter struct {
	Cities                 []string      `json:"cities,omitempty"`
	Districts              []string      `json:"districts,omitempty"`
	Types                  []CollegeType `json:"types,omitempty"`
	MaxAnnualFee           *float64      `json:"maxAnnualFee,omitempty"`
	MinPlacementPercentage *float64      `json:"minPlacementPercentage,omitempty"`
	HostelRequired         bool          `json:"hostelRequired,omitempty"`

	// Nested collections are restricted to these values.
	Branches []string `json:"branches"`
	ExamType ExamType `json:"examType,omitempty"`
	Category Category `json:"category,omitempty"`
	MinYear  int      `json:"minYear"`
}
