package recommendation

type ChanceCategory string

const (
	ChanceSafe         ChanceCategory = "Safe"
	ChanceLikely       ChanceCategory = "Likely"
	ChanceBorderline   ChanceCategory = "Borderline"
	ChanceAspirational ChanceCategory = "Aspirational"
)

// Order ranks tiers by desirability; Safe is highest.
func (c ChanceCategory) Order() int {
	switch c {
	case ChanceSafe:
		return 4
	case ChanceLikely:
		return 3
	case ChanceBorderline:
		return 2
	case ChanceAspirational:
		return 1
	}
	return 0
}

type AdmissionChance struct {
	Category   ChanceCategory `json:"category"`
	Percentage int            `json:"percentage"`
}

// noHistoryChance is returned when the prediction has no closing rank.
var noHistoryChance = AdmissionChance{Category: ChanceAspirational, Percentage: 20}

// ClassifyChance maps the ratio of the user's rank to the predicted closing
// rank onto a tier. Thresholds are inclusive upper bounds checked in order.
func ClassifyChance(effectiveRank int, predicted PredictedCutoff) AdmissionChance {
	if predicted.ClosingRank == 0 {
		return noHistoryChance
	}

	ratio := float64(effectiveRank) / float64(predicted.ClosingRank)

	var chance AdmissionChance
	if ratio <= 0.7 {
		chance = AdmissionChance{ChanceSafe, 90 + roundHalfUp((0.7-ratio)*10)}
	} else if ratio <= 0.9 {
		chance = AdmissionChance{ChanceLikely, 70 + roundHalfUp((0.9-ratio)*100)}
	} else if ratio <= 1.1 {
		chance = AdmissionChance{ChanceBorderline, 40 + roundHalfUp((1.1-ratio)*150)}
	} else {
		chance = AdmissionChance{ChanceAspirational, max(10, 40-roundHalfUp((ratio-1.1)*50))}
	}

	chance.Percentage = int(clamp(float64(chance.Percentage), 0, 100))
	return chance
}
