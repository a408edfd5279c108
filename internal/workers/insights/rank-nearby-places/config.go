// internal/workers/insights/rank-nearby-places/config.go
package ranknearbyplaces

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}
