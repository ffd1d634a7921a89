package recommendation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyChance(t *testing.T) {
	tests := []struct {
		name     string
		rank     int
		closing  int
		expected AdmissionChance
	}{
		{"no usable history", 5000, 0, AdmissionChance{ChanceAspirational, 20}},
		{"well inside cutoff", 1000, 10000, AdmissionChance{ChanceSafe, 96}},
		{"safe upper bound is inclusive", 7000, 10000, AdmissionChance{ChanceSafe, 90}},
		{"likely", 5000, 6000, AdmissionChance{ChanceLikely, 77}},
		{"at the cutoff", 10000, 10000, AdmissionChance{ChanceBorderline, 55}},
		{"just outside", 15000, 10000, AdmissionChance{ChanceAspirational, 20}},
		{"far outside hits the floor", 20000, 10000, AdmissionChance{ChanceAspirational, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyChance(tt.rank, PredictedCutoff{ClosingRank: tt.closing})
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestClassifyChance_PercentageNonIncreasing(t *testing.T) {
	predicted := PredictedCutoff{ClosingRank: 100000}
	previous := 101

	for rank := 100; rank <= 300000; rank += 100 {
		chance := ClassifyChance(rank, predicted)
		assert.LessOrEqual(t, chance.Percentage, previous, "rank %d", rank)
		assert.GreaterOrEqual(t, chance.Percentage, 0)
		assert.LessOrEqual(t, chance.Percentage, 100)
		previous = chance.Percentage
	}
}

func TestChanceCategory_Order(t *testing.T) {
	assert.Greater(t, ChanceSafe.Order(), ChanceLikely.Order())
	assert.Greater(t, ChanceLikely.Order(), ChanceBorderline.Order())
	assert.Greater(t, ChanceBorderline.Order(), ChanceAspirational.Order())
	assert.Equal(t, 0, ChanceCategory("Unknown").Order())
}
