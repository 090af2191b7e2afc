package xapi

import (
	"golang.org/x/time/rate"

	"flocks/internal/config"
)

// newWindowLimiter translates the configured request window (N requests per
// WindowSeconds) into a token-bucket limiter whose burst equals the window
// capacity, so a fresh window can be spent immediately and further requests
// block until tokens refill.
func newWindowLimiter(rc config.RateConfig) *rate.Limiter {
	reqs := rc.RequestsPerWindow
	if reqs <= 0 {
		reqs = 15
	}
	window := rc.WindowSeconds
	if window <= 0 {
		window = 900
	}
	perSecond := float64(reqs) / float64(window)
	return rate.NewLimiter(rate.Limit(perSecond), reqs)
}
