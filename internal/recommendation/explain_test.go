package recommendation

import (
	"testing"

	"college-recommender/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestReasons(t *testing.T) {
	tests := []struct {
		name     string
		college  models.College
		chance   ChanceCategory
		expected []string
	}{
		{
			name: "every reason in order",
			college: models.College{
				PlacementPercentage: 85.5,
				NAACGrade:           strPtr("A+"),
				Autonomous:          true,
				AveragePackage:      7.5,
			},
			chance: ChanceSafe,
			expected: []string{
				"Your rank is well within the cutoff range",
				"Strong placement record (85.5%)",
				"Excellent NAAC A+ accreditation",
				"Autonomous college with flexible curriculum",
				"Good average package of ₹7.5 LPA",
			},
		},
		{
			name:     "likely with whole numbers",
			college:  models.College{PlacementPercentage: 80, AveragePackage: 6},
			chance:   ChanceLikely,
			expected: []string{"Good chances based on historical cutoffs", "Strong placement record (80%)", "Good average package of ₹6 LPA"},
		},
		{
			name:     "nothing applies",
			college:  models.College{PlacementPercentage: 79, NAACGrade: strPtr("B++"), AveragePackage: 5.9},
			chance:   ChanceBorderline,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Reasons(&tt.college, AdmissionChance{Category: tt.chance}))
		})
	}
}

func TestWarnings(t *testing.T) {
	tests := []struct {
		name     string
		college  models.College
		rank     int
		closing  int
		expected []string
	}{
		{
			name:    "every warning in order",
			college: models.College{PlacementPercentage: 40},
			rank:    13000,
			closing: 10000,
			expected: []string{
				"Your rank is significantly higher than predicted cutoff",
				"Below average placement statistics",
				"Limited accreditation information available",
			},
		},
		{
			name:     "rank at 120 percent of cutoff is not flagged",
			college:  models.College{PlacementPercentage: 50, NBAAccredited: true},
			rank:     12000,
			closing:  10000,
			expected: []string{},
		},
		{
			name:     "NAAC grade alone counts as accreditation",
			college:  models.College{PlacementPercentage: 70, NAACGrade: strPtr("C")},
			rank:     100,
			closing:  10000,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Warnings(&tt.college, tt.rank, PredictedCutoff{ClosingRank: tt.closing})
			assert.Equal(t, tt.expected, got)
		})
	}
}
