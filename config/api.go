package config

import (
	"strings"
	"time"
)

// DefaultAPIBaseURL is the local development origin used when no base URL is configured.
const DefaultAPIBaseURL = "http://localhost:5000/api/"

// APIConfig selects the back-office API origin.
type APIConfig struct {
	// BaseURL is the API origin; every endpoint path is resolved against it.
	BaseURL string `env:"RETAIL_API_BASE_URL" envDefault:"http://localhost:5000/api/"`

	// Timeout bounds a single HTTP round trip.
	Timeout time.Duration `env:"RETAIL_API_TIMEOUT" envDefault:"30s"`
}

// Sanitize falls back to the development origin and a sane timeout.
func (c *APIConfig) Sanitize() {
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	if c.BaseURL == "" {
		c.BaseURL = DefaultAPIBaseURL
	}
	if !strings.HasSuffix(c.BaseURL, "/") {
		c.BaseURL += "/"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}
