package recommendation

import (
	"fmt"
	"strconv"

	"college-recommender/internal/models"
)

const (
	reasonSafe       = "Your rank is well within the cutoff range"
	reasonLikely     = "Good chances based on historical cutoffs"
	reasonAutonomous = "Autonomous college with flexible curriculum"

	warnRankAboveCutoff = "Your rank is significantly higher than predicted cutoff"
	warnLowPlacement    = "Below average placement statistics"
	warnNoAccreditation = "Limited accreditation information available"
)

// Reasons lists why a pair is worth considering, in a fixed order. The result
// is empty, never nil, when nothing applies.
func Reasons(college *models.College, chance AdmissionChance) []string {
	reasons := []string{}

	switch chance.Category {
	case ChanceSafe:
		reasons = append(reasons, reasonSafe)
	case ChanceLikely:
		reasons = append(reasons, reasonLikely)
	}

	if college.PlacementPercentage >= 80 {
		reasons = append(reasons, fmt.Sprintf("Strong placement record (%s%%)", formatNumber(college.PlacementPercentage)))
	}

	switch grade := college.Grade(); grade {
	case "A++", "A+", "A":
		reasons = append(reasons, fmt.Sprintf("Excellent NAAC %s accreditation", grade))
	}

	if college.Autonomous {
		reasons = append(reasons, reasonAutonomous)
	}

	if college.AveragePackage >= 6 {
		reasons = append(reasons, fmt.Sprintf("Good average package of ₹%s LPA", formatNumber(college.AveragePackage)))
	}

	return reasons
}

// Warnings lists concerns about a pair, in a fixed order.
func Warnings(college *models.College, effectiveRank int, predicted PredictedCutoff) []string {
	warnings := []string{}

	if float64(effectiveRank) > float64(predicted.ClosingRank)*1.2 {
		warnings = append(warnings, warnRankAboveCutoff)
	}

	if college.PlacementPercentage < 50 {
		warnings = append(warnings, warnLowPlacement)
	}

	if college.Grade() == "" && !college.NBAAccredited {
		warnings = append(warnings, warnNoAccreditation)
	}

	return warnings
}

// formatNumber prints stored values as-is: 85 stays "85", 7.5 stays "7.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
