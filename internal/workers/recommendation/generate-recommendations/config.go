package generaterecommendations

import (
	"time"

	"college-recommender/internal/recommendation"
)

type Config struct {
	Timeout time.Duration
	Engine  recommendation.Config

	// Now overrides the engine clock. Nil means time.Now.
	Now func() time.Time
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
		Engine: recommendation.Config{
			MaxResults:   recommendation.MaxResultsLimit,
			HistoryYears: recommendation.DefaultHistoryYears,
			PoolSizes:    recommendation.DefaultPoolSizes,
		},
	}
}
