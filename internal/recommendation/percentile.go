package recommendation

import "college-recommender/internal/models"

// PoolSizes are the approximate candidate counts per exam used to turn a
// percentile into a rank. The conversion is linear and ignores the real score
// distribution, so these are tuning values rather than facts.
type PoolSizes struct {
	CET int `mapstructure:"CET" json:"CET"`
	JEE int `mapstructure:"JEE" json:"JEE"`
}

var DefaultPoolSizes = PoolSizes{
	CET: 400000,
	JEE: 1200000,
}

// For returns the pool for an exam. Anything that is not CET is sized as JEE.
func (p PoolSizes) For(exam models.ExamType) int {
	if exam == models.ExamTypeCET {
		return p.CET
	}
	return p.JEE
}

// PercentileToRank estimates a rank from a percentile. The result is never
// below 1.
func PercentileToRank(percentile float64, exam models.ExamType, pools PoolSizes) int {
	rank := roundHalfUp(float64(pools.For(exam)) * (100 - percentile) / 100)
	if rank < 1 {
		return 1
	}
	return rank
}
