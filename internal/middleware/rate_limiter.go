package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/fajrglobal/clinic-api/pkg/httputil"
)

type RateLimiterConfig struct {
	Rate  rate.Limit
	Burst int
	// IdleTTL is how long a client's limiter is kept after its last request.
	IdleTTL time.Duration
}

// RateLimiter applies a token bucket per client IP.
type RateLimiter struct {
	config  RateLimiterConfig
	mu      sync.Mutex
	clients *cache.Cache
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{
		config:  config,
		clients: cache.New(config.IdleTTL, config.IdleTTL),
	}
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.clients.Get(ip)
	if !ok {
		limiter = rate.NewLimiter(rl.config.Rate, rl.config.Burst)
	}
	// Setting again pushes the expiry out to IdleTTL from now.
	rl.clients.SetDefault(ip, limiter)
	return limiter.(*rate.Limiter)
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, httputil.ErrorBody{
				Detail: "rate limit exceeded",
				Code:   http.StatusTooManyRequests,
			})
			return
		}
		c.Next()
	}
}
