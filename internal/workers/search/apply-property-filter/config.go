// internal/workers/search/apply-property-filter/config.go
package applypropertyfilter

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
