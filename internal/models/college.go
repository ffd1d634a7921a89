package models

import "time"

type CollegeType string

const (
	CollegeTypeGovernment CollegeType = "Government"
	CollegeTypePrivate    CollegeType = "Private"
	CollegeTypeAutonomous CollegeType = "Autonomous"
	CollegeTypeAided      CollegeType = "Aided"
)

// College is a catalog row as loaded by the store. Courses and Cutoffs are
// populated only by queries that nest them.
type College struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Code            string      `json:"code"`
	Type            CollegeType `json:"type"`
	University      string      `json:"university"`
	City            string      `json:"city"`
	District        string      `json:"district"`
	Address         string      `json:"address,omitempty"`
	Pincode         string      `json:"pincode,omitempty"`
	EstablishedYear int         `json:"establishedYear,omitempty"`
	Website         string      `json:"website,omitempty"`
	Email           string      `json:"email,omitempty"`
	Phone           string      `json:"phone,omitempty"`

	NAACGrade      *string    `json:"naacGrade"`
	NAACScore      *float64   `json:"naacScore,omitempty"`
	NAACValidUntil *time.Time `json:"naacValidUntil,omitempty"`
	NBAAccredited  bool       `json:"nbaAccredited"`
	NBAPrograms    []string   `json:"nbaPrograms,omitempty"`
	NBAValidUntil  *time.Time `json:"nbaValidUntil,omitempty"`
	AICTEApproved  bool       `json:"aicteApproved"`
	AICTECode      string     `json:"aicteCode,omitempty"`
	Autonomous     bool       `json:"autonomous"`

	Facilities     []string `json:"facilities,omitempty"`
	BoysHostel     bool     `json:"boysHostel"`
	GirlsHostel    bool     `json:"girlsHostel"`
	HostelCapacity *int     `json:"hostelCapacity,omitempty"`

	TuitionFee     float64  `json:"tuitionFee"`
	DevelopmentFee *float64 `json:"developmentFee,omitempty"`
	OtherFees      *float64 `json:"otherFees,omitempty"`
	TotalAnnualFee float64  `json:"totalAnnualFee"`
	HostelFee      *float64 `json:"hostelFee,omitempty"`
	FeeCategory    string   `json:"feeCategory,omitempty"`

	PlacementYear       int      `json:"placementYear,omitempty"`
	TotalStudents       int      `json:"totalStudents,omitempty"`
	StudentsPlaced      int      `json:"studentsPlaced,omitempty"`
	PlacementPercentage float64  `json:"placementPercentage"`
	HighestPackage      float64  `json:"highestPackage"`
	AveragePackage      float64  `json:"averagePackage"`
	MedianPackage       float64  `json:"medianPackage"`
	TopRecruiters       []string `json:"topRecruiters,omitempty"`

	Courses []Course `json:"courses,omitempty"`
	Cutoffs []Cutoff `json:"cutoffs,omitempty"`
}

// Grade returns the NAAC grade or "" when the college has none.
func (c *College) Grade() string {
	if c.NAACGrade == nil {
		return ""
	}
	return *c.NAACGrade
}

type Course struct {
	ID           string `json:"id"`
	CollegeID    string `json:"collegeId"`
	Branch       string `json:"branch"`
	BranchCode   string `json:"branchCode"`
	Degree       string `json:"degree"`
	Duration     int    `json:"duration"`
	Intake       int    `json:"intake"`
	AffiliatedTo string `json:"affiliatedTo,omitempty"`
	Accredited   bool   `json:"accredited"`
}

// CollegeDocument is what the search index holds for a college.
type CollegeDocument struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Code     string      `json:"code"`
	City     string      `json:"city"`
	District string      `json:"district"`
	Type     CollegeType `json:"type"`
}

func (c *College) Document() CollegeDocument {
	return CollegeDocument{
		ID:       c.ID,
		Name:     c.Name,
		Code:     c.Code,
		City:     c.City,
		District: c.District,
		Type:     c.Type,
	}
}
