package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts failed Redis commands by command name.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "workshophub_redis_errors_total",
	Help: "Total number of Redis command errors",
}, []string{"command"})

// RateLimited counts requests rejected by the rate limiter.
var RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "workshophub_rate_limited_total",
	Help: "Total number of requests rejected by rate limiting",
}, []string{"resource"})

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process-wide HTTP metrics collector. fiberprometheus
// registers its collectors globally, so later calls reuse the first instance.
func InitMetrics(service string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(service)
	})
	return prom
}

// MetricsMiddleware records request counts and latencies, skipping the scrape
// endpoint and health probes.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isProbePath(c.Path()) {
			return c.Next()
		}
		return p.Middleware(c)
	}
}
