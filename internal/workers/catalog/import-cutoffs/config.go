package importcutoffs

import "time"

type Config struct {
	Timeout time.Duration
	// MaxReportedErrors caps the per-row messages returned in the output.
	MaxReportedErrors int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:           5 * time.Minute,
		MaxReportedErrors: 50,
	}
}
