package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// sweepInterval bounds how often expired client entries are dropped, so IPs
// that never come back do not accumulate.
const sweepInterval = 5 * time.Minute

// fixedWindow counts hits per client IP in fixed windows. Each limiter owns
// its own table; the login limiter and the API limiter never share counts.
type fixedWindow struct {
	name   string
	limit  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	hits      map[string]*windowCount
	lastSweep time.Time
}

type windowCount struct {
	count int
	end   time.Time
}

func newFixedWindow(name string, limit int, window time.Duration) *fixedWindow {
	return &fixedWindow{
		name:      name,
		limit:     limit,
		window:    window,
		now:       time.Now,
		hits:      make(map[string]*windowCount),
		lastSweep: time.Now(),
	}
}

// allow records a hit for key. It reports whether the hit is within the limit
// and, when it is not, how long until the window resets.
func (w *fixedWindow) allow(key string) (bool, time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if now.Sub(w.lastSweep) >= sweepInterval {
		w.sweep(now)
	}

	e, ok := w.hits[key]
	if !ok || !now.Before(e.end) {
		e = &windowCount{end: now.Add(w.window)}
		w.hits[key] = e
	}
	e.count++
	if e.count > w.limit {
		return false, e.end.Sub(now)
	}
	return true, 0
}

// sweep must be called with mu held.
func (w *fixedWindow) sweep(now time.Time) {
	purged := 0
	for key, e := range w.hits {
		if !now.Before(e.end) {
			delete(w.hits, key)
			purged++
		}
	}
	w.lastSweep = now
	if purged > 0 {
		log.Debug().
			Str("limiter", w.name).
			Int("purged", purged).
			Int("remaining", len(w.hits)).
			Msg("rate limiter entries purged")
	}
}

func (w *fixedWindow) handler(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := w.allow(c.ClientIP())
		if !ok {
			secs := int(math.Ceil(wait.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			log.Warn().
				Str("request_id", c.GetString(RequestIDKey)).
				Str("limiter", w.name).
				Str("client_ip", c.ClientIP()).
				Msg("rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(message))
			return
		}
		c.Next()
	}
}

func passThrough(c *gin.Context) { c.Next() }

// LoginRateLimiter caps PIN login attempts per client IP per minute
// (LOGIN_ATTEMPTS_PER_MINUTE). A non-positive limit disables it.
func LoginRateLimiter(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return passThrough
	}
	return newFixedWindow("pin_login", perMinute, time.Minute).
		handler("Too many PIN attempts, try again in a minute")
}

// RateLimiter caps requests per client IP per window (RATE_LIMIT_PER_MINUTE
// in the router). A non-positive limit disables it.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		return passThrough
	}
	return newFixedWindow("api", limit, window).
		handler("Too many requests, try again shortly")
}
