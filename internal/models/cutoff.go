package models

import (
	"errors"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type ExamType string

const (
	ExamTypeCET ExamType = "CET"
	ExamTypeJEE ExamType = "JEE"
)

func (e ExamType) Valid() bool {
	return e == ExamTypeCET || e == ExamTypeJEE
}

// Category is the admission (reservation) category a cutoff was published for.
type Category string

const (
	CategoryOpen Category = "OPEN"
	CategoryOBC  Category = "OBC"
	CategorySC   Category = "SC"
	CategoryST   Category = "ST"
	CategoryEWS  Category = "EWS"
	CategoryTFWS Category = "TFWS"
	CategoryMI   Category = "MI"
	CategoryEBC  Category = "EBC"
	CategoryNT1  Category = "NT1"
	CategoryNT2  Category = "NT2"
	CategoryNT3  Category = "NT3"
	CategoryVJ   Category = "VJ"
)

var categories = []Category{
	CategoryOpen, CategoryOBC, CategorySC, CategoryST, CategoryEWS, CategoryTFWS,
	CategoryMI, CategoryEBC, CategoryNT1, CategoryNT2, CategoryNT3, CategoryVJ,
}

func (c Category) Valid() bool {
	return slices.Contains(categories, c)
}

// Cutoff is one observed admission cutoff. Ranks and percentiles are optional
// because published rounds sometimes omit them.
type Cutoff struct {
	ID                string   `json:"id"`
	CollegeID         string   `json:"collegeId"`
	CourseID          string   `json:"courseId"`
	Year              int      `json:"year"`
	Round             int      `json:"round"`
	ExamType          ExamType `json:"examType"`
	Category          Category `json:"category"`
	OpeningRank       *int     `json:"openingRank"`
	ClosingRank       *int     `json:"closingRank"`
	OpeningPercentile *float64 `json:"openingPercentile"`
	ClosingPercentile *float64 `json:"closingPercentile"`
}

// Validate checks the ranges a stored cutoff must respect. Nil ranks and
// percentiles pass.
func (c Cutoff) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Year, validation.Required, validation.Min(2000), validation.Max(2100)),
		validation.Field(&c.Round, validation.Required, validation.Min(1)),
		validation.Field(&c.ExamType, validation.Required, validation.In(ExamTypeCET, ExamTypeJEE)),
		validation.Field(&c.Category, validation.Required, validation.By(validCategory)),
		validation.Field(&c.OpeningRank, validation.Min(1)),
		validation.Field(&c.ClosingRank, validation.Min(1)),
		validation.Field(&c.OpeningPercentile, validation.Min(0.0), validation.Max(100.0)),
		validation.Field(&c.ClosingPercentile, validation.Min(0.0), validation.Max(100.0)),
	)
}

func validCategory(value interface{}) error {
	if c, ok := value.(Category); ok && c.Valid() {
		return nil
	}
	return errors.New("must be a known category")
}
