package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"stockhub/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window limiter ─────────────────────────────────────────────────────

// window tracks the requests of one client IP within the current window.
type window struct {
	count int
	end   time.Time
}

// limiter counts requests per client IP in fixed windows.
type limiter struct {
	mu      sync.Mutex
	limit   int
	length  time.Duration
	clients map[string]*window
}

func newLimiter(limit int, length time.Duration) *limiter {
	l := &limiter{limit: limit, length: length, clients: make(map[string]*window)}
	registry.add(l)
	return l
}

// allow records one request from ip and reports whether it fits the window,
// together with the end of that window.
func (l *limiter) allow(ip string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.clients[ip]
	if !ok || now.After(w.end) {
		w = &window{end: now.Add(l.length)}
		l.clients[ip] = w
	}
	w.count++
	return w.count <= l.limit, w.end
}

// purge drops windows that ended before now and returns how many were dropped.
func (l *limiter) purge(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for ip, w := range l.clients {
		if now.After(w.end) {
			delete(l.clients, ip)
			n++
		}
	}
	return n
}

func (l *limiter) handler(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		ok, end := l.allow(c.ClientIP(), now)
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(end.Sub(now).Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newLimiter(20, time.Minute).handler("too many login attempts, try again in a minute")
}

// RateLimiter limits every client IP to limit requests per window.
func RateLimiter(limit int, length time.Duration) gin.HandlerFunc {
	return newLimiter(limit, length).handler("too many requests, try again shortly")
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Periodically removes expired windows so IPs that never return do not
// accumulate.

const purgeInterval = 5 * time.Minute

type limiterRegistry struct {
	mu       sync.Mutex
	limiters []*limiter
	started  bool
}

var registry limiterRegistry

func (r *limiterRegistry) add(l *limiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limiters = append(r.limiters, l)
	if !r.started {
		r.started = true
		go r.run()
	}
}

func (r *limiterRegistry) run() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for now := range ticker.C {
		r.mu.Lock()
		limiters := append([]*limiter(nil), r.limiters...)
		r.mu.Unlock()

		purged := 0
		for _, l := range limiters {
			purged += l.purge(now)
		}
		if purged > 0 {
			log.Debug().Int("entries_purged", purged).Msg("rate limiter windows purged")
		}
	}
}
