package searchcolleges

import "time"

type Config struct {
	Timeout        time.Duration
	MaxResults     int
	MinQueryLength int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        5 * time.Second,
		MaxResults:     10,
		MinQueryLength: 2,
	}
}
