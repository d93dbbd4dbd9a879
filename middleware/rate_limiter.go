package middleware

import (
	"net/http"
	"sync"
	"time"

	"classfinder/models"

	"github.com/gin-gonic/gin"
	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long a client's limiter survives without requests.
const limiterIdleTTL = 3 * time.Minute

// rateLimiterStore holds the rate limiter of every recently seen client IP.
type rateLimiterStore struct {
	limiters   *ttlcache.Cache[string, *rate.Limiter]
	mu         sync.Mutex
	perMin     int
	sweepEvery time.Duration
	lastSweep  time.Time
}

func newRateLimiterStore(perMin int, idle time.Duration) *rateLimiterStore {
	if perMin <= 0 {
		perMin = 60
	}
	return &rateLimiterStore{
		limiters:   ttlcache.New[string, *rate.Limiter](ttlcache.WithTTL[string, *rate.Limiter](idle)),
		perMin:     perMin,
		sweepEvery: time.Minute,
		lastSweep:  time.Now(),
	}
}

// getLimiter returns the rate limiter for a given IP, creating one if it doesn't exist.
// Each lookup extends the entry's TTL, so only idle clients are dropped.
func (s *rateLimiterStore) getLimiter(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.lastSweep) >= s.sweepEvery {
		s.limiters.DeleteExpired()
		s.lastSweep = time.Now()
	}
	if item := s.limiters.Get(ip); item != nil {
		return item.Value()
	}
	// perMin requests per minute, bursting up to a quarter of that.
	burst := s.perMin / 4
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMin)), burst)
	s.limiters.Set(ip, limiter, ttlcache.DefaultTTL)
	return limiter
}

// RateLimitMiddleware limits requests per IP address. Every query fans out
// to one portal request per building, so the API is throttled per client.
func RateLimitMiddleware(perMin int) gin.HandlerFunc {
	store := newRateLimiterStore(perMin, limiterIdleTTL)
	return func(c *gin.Context) {
		ip := getClientIP(c)
		if !store.getLimiter(ip).Allow() {
			zap.L().Warn("Rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{Detail: "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}
