package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// IPごとのトークンバケット
type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	ttl      time.Duration
}

type limiterEntry struct {
	l        *rate.Limiter
	lastSeen time.Time
}

func (s *ipLimiter) allow(ip string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.limiters[ip]
	if !ok {
		e = &limiterEntry{l: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[ip] = e
	}
	e.lastSeen = now

	// しばらく来ていないIPは捨てる
	if len(s.limiters) > 1024 {
		for k, v := range s.limiters {
			if now.Sub(v.lastSeen) > s.ttl {
				delete(s.limiters, k)
			}
		}
	}
	return e.l.AllowN(now, 1)
}

// RateLimit は1分あたりperMinuteリクエストまで。超えたら429
func RateLimit(perMinute int) echo.MiddlewareFunc {
	if perMinute <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	s := &ipLimiter{
		limiters: map[string]*limiterEntry{},
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		ttl:      10 * time.Minute,
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !s.allow(c.RealIP(), time.Now()) {
				return c.JSON(http.StatusTooManyRequests, errorJSON("too many requests"))
			}
			return next(c)
		}
	}
}
