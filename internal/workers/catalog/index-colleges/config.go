package indexcolleges

import "time"

type Config struct {
	Timeout   time.Duration
	BatchSize int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   2 * time.Minute,
		BatchSize: 500,
	}
}
