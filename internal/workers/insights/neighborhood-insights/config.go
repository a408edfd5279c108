// internal/workers/insights/neighborhood-insights/config.go
package neighborhoodinsights

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
