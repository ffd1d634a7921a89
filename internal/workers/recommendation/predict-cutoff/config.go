package predictcutoff

import (
	"time"

	"college-recommender/internal/recommendation"
)

type Config struct {
	Timeout time.Duration
	Engine  recommendation.Config
	Now     func() time.Time
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		Engine: recommendation.Config{
			HistoryYears: recommendation.DefaultHistoryYears,
			PoolSizes:    recommendation.DefaultPoolSizes,
		},
	}
}
