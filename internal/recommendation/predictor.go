package recommendation

import (
	"math"
	"sort"

	"college-recommender/internal/models"

	"gonum.org/v1/gonum/stat"
)

// openingFallbackRatio estimates the opening rank from the closing average
// when no opening ranks were published.
const openingFallbackRatio = 0.8

type PredictedCutoff struct {
	OpeningRank int `json:"openingRank"`
	ClosingRank int `json:"closingRank"`
	Confidence  int `json:"confidence"`
}

// PredictCutoff projects the next cycle's cutoff for one college/course pair
// from its recent history. The trend term is the first-minus-last closing
// rank divided by the number of closing ranks, applied to both averages.
// Histories without a closing rank yield the zero prediction.
func PredictCutoff(history []models.Cutoff) PredictedCutoff {
	if len(history) == 0 {
		return PredictedCutoff{}
	}

	sorted := make([]models.Cutoff, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Year > sorted[j].Year
	})

	closing := make([]float64, 0, len(sorted))
	opening := make([]float64, 0, len(sorted))
	for _, c := range sorted {
		if c.ClosingRank != nil {
			closing = append(closing, float64(*c.ClosingRank))
		}
		if c.OpeningRank != nil {
			opening = append(opening, float64(*c.OpeningRank))
		}
	}

	if len(closing) == 0 {
		return PredictedCutoff{}
	}

	avgClosing := stat.Mean(closing, nil)
	avgOpening := avgClosing * openingFallbackRatio
	if len(opening) > 0 {
		avgOpening = stat.Mean(opening, nil)
	}

	trend := 0.0
	if len(closing) >= 2 {
		trend = (closing[0] - closing[len(closing)-1]) / float64(len(closing))
	}

	return PredictedCutoff{
		OpeningRank: roundHalfUp(avgOpening + trend),
		ClosingRank: roundHalfUp(avgClosing + trend),
		Confidence:  confidence(closing, avgClosing),
	}
}

// confidence is 100 minus the coefficient of variation of the closing ranks,
// as a percentage clamped to [0, 100].
func confidence(closing []float64, avgClosing float64) int {
	if avgClosing == 0 {
		return 0
	}
	stdDev := math.Sqrt(stat.PopVariance(closing, nil))
	return roundHalfUp(clamp(100-(stdDev/avgClosing)*100, 0, 100))
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
