package recommendation

import (
	"slices"

	"college-recommender/internal/models"
)

const (
	branchPoints   = 30
	locationPoints = 20
	noBudgetPoints = 10
	maxMatchScore  = 100
)

// MatchScore sums independent branch, location, budget, placement and
// accreditation points and caps the total at 100.
func MatchScore(college *models.College, course *models.Course, q *Query) int {
	score := 0

	if slices.Contains(q.PreferredBranches, course.Branch) {
		score += branchPoints
	}

	if len(q.PreferredCities) > 0 && slices.Contains(q.PreferredCities, college.City) {
		score += locationPoints
	}

	score += budgetFit(college.TotalAnnualFee, q.MaxBudget)
	score += placementQuality(college.PlacementPercentage)
	score += accreditationQuality(college)

	return min(maxMatchScore, score)
}

func budgetFit(annualFee float64, maxBudget *float64) int {
	if maxBudget == nil || *maxBudget <= 0 {
		return noBudgetPoints
	}

	ratio := annualFee / *maxBudget
	if ratio <= 0.7 {
		return 20
	} else if ratio <= 0.9 {
		return 15
	} else if ratio <= 1.0 {
		return 10
	}
	return 0
}

func placementQuality(percentage float64) int {
	if percentage >= 90 {
		return 15
	} else if percentage >= 75 {
		return 12
	} else if percentage >= 60 {
		return 8
	}
	return 5
}

func accreditationQuality(college *models.College) int {
	switch college.Grade() {
	case "A++", "A+":
		return 15
	case "A":
		return 12
	}
	if college.NBAAccredited {
		return 10
	}
	return 5
}
