package config

import (
	"errors"
	"os"
	"time"

	"github.com/andrew-solarstorm/go-packages/common"
)

type RouteFinderConfig struct {
	// BaseURL of the remote path-finding service (POST {base}/find_route).
	BaseURL string

	// Attempts is the total request budget per quote, including the first try.
	// Default: 2
	Attempts int

	// Timeout bounds a single find_route request so an abandoned request never
	// keeps the coordinator in a pending state. Default: 10s
	Timeout time.Duration
}

func (c *RouteFinderConfig) Key() string {
	return ROUTE_FINDER_CONFIG_KEY
}

func (c *RouteFinderConfig) Load() error {
	c.BaseURL = os.Getenv("ROUTE_FINDER_URL")
	c.Attempts = common.GetEnvOrDefaultInt("ROUTE_FINDER_ATTEMPTS", 2)
	c.Timeout = time.Duration(common.GetEnvOrDefaultInt("ROUTE_FINDER_TIMEOUT_MS", 10_000)) * time.Millisecond
	return nil
}

func (c *RouteFinderConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("invalid route finder config: ROUTE_FINDER_URL is required")
	}
	if c.Attempts < 1 {
		return errors.New("invalid route finder config: attempts must be >= 1")
	}
	return nil
}
