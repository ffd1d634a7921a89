package models

import "time"

// CollegeSummary is the nested, presentation-ready view of a College that
// recommendation results carry.
type CollegeSummary struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Code            string        `json:"code"`
	Type            CollegeType   `json:"type"`
	University      string        `json:"university"`
	City            string        `json:"city"`
	District        string        `json:"district"`
	Address         string        `json:"address,omitempty"`
	Pincode         string        `json:"pincode,omitempty"`
	EstablishedYear int           `json:"establishedYear,omitempty"`
	Website         string        `json:"website,omitempty"`
	Email           string        `json:"email,omitempty"`
	Phone           string        `json:"phone,omitempty"`
	Accreditation   Accreditation `json:"accreditation"`
	Facilities      []string      `json:"facilities,omitempty"`
	Hostel          Hostel        `json:"hostel"`
	Fees            FeeStructure  `json:"fees"`
	Placement       Placement     `json:"placement"`
}

type Accreditation struct {
	NAAC       *NAAC `json:"naac,omitempty"`
	NBA        NBA   `json:"nba"`
	AICTE      AICTE `json:"aicte"`
	Autonomous bool  `json:"autonomous"`
}

type NAAC struct {
	Grade      string     `json:"grade"`
	Score      *float64   `json:"score,omitempty"`
	ValidUntil *time.Time `json:"validUntil,omitempty"`
}

type NBA struct {
	Accredited bool       `json:"accredited"`
	Programs   []string   `json:"programs,omitempty"`
	ValidUntil *time.Time `json:"validUntil,omitempty"`
}

type AICTE struct {
	Approved bool   `json:"approved"`
	Code     string `json:"code,omitempty"`
}

type Hostel struct {
	Boys     bool `json:"boys"`
	Girls    bool `json:"girls"`
	Capacity *int `json:"capacity,omitempty"`
}

type FeeStructure struct {
	TuitionFee     float64  `json:"tuitionFee"`
	DevelopmentFee *float64 `json:"developmentFee,omitempty"`
	OtherFees      *float64 `json:"otherFees,omitempty"`
	TotalAnnualFee float64  `json:"totalAnnualFee"`
	HostelFee      *float64 `json:"hostelFee,omitempty"`
	Category       string   `json:"category,omitempty"`
}

type Placement struct {
	Year                int      `json:"year,omitempty"`
	TotalStudents       int      `json:"totalStudents,omitempty"`
	StudentsPlaced      int      `json:"studentsPlaced,omitempty"`
	PlacementPercentage float64  `json:"placementPercentage"`
	HighestPackage      float64  `json:"highestPackage"`
	AveragePackage      float64  `json:"averagePackage"`
	MedianPackage       float64  `json:"medianPackage"`
	TopRecruiters       []string `json:"topRecruiters,omitempty"`
}

// Summary nests the flat college columns into accreditation, hostel, fee and
// placement blocks. The NAAC block is omitted when there is no grade.
func (c *College) Summary() CollegeSummary {
	var naac *NAAC
	if c.NAACGrade != nil {
		naac = &NAAC{Grade: *c.NAACGrade, Score: c.NAACScore, ValidUntil: c.NAACValidUntil}
	}

	return CollegeSummary{
		ID:              c.ID,
		Name:            c.Name,
		Code:            c.Code,
		Type:            c.Type,
		University:      c.University,
		City:            c.City,
		District:        c.District,
		Address:         c.Address,
		Pincode:         c.Pincode,
		EstablishedYear: c.EstablishedYear,
		Website:         c.Website,
		Email:           c.Email,
		Phone:           c.Phone,
		Accreditation: Accreditation{
			NAAC:       naac,
			NBA:        NBA{Accredited: c.NBAAccredited, Programs: c.NBAPrograms, ValidUntil: c.NBAValidUntil},
			AICTE:      AICTE{Approved: c.AICTEApproved, Code: c.AICTECode},
			Autonomous: c.Autonomous,
		},
		Facilities: c.Facilities,
		Hostel:     Hostel{Boys: c.BoysHostel, Girls: c.GirlsHostel, Capacity: c.HostelCapacity},
		Fees: FeeStructure{
			TuitionFee:     c.TuitionFee,
			DevelopmentFee: c.DevelopmentFee,
			OtherFees:      c.OtherFees,
			TotalAnnualFee: c.TotalAnnualFee,
			HostelFee:      c.HostelFee,
			Category:       c.FeeCategory,
		},
		Placement: Placement{
			Year:                c.PlacementYear,
			TotalStudents:       c.TotalStudents,
			StudentsPlaced:      c.StudentsPlaced,
			PlacementPercentage: c.PlacementPercentage,
			HighestPackage:      c.HighestPackage,
			AveragePackage:      c.AveragePackage,
			MedianPackage:       c.MedianPackage,
			TopRecruiters:       c.TopRecruiters,
		},
	}
}
