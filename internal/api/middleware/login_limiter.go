package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"managerh.io/managerh/internal/observability"
	apperrors "managerh.io/managerh/internal/pkg/errors"
)

// LoginLimiterConfig bounds login attempts per client IP.
type LoginLimiterConfig struct {
	// PerMinute is the sustained attempt rate.
	PerMinute int
	// Burst is the number of attempts allowed at once.
	Burst int
	// IdleTTL drops limiters of clients not seen for this long.
	IdleTTL time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LoginLimiter throttles credential checks per client IP.
type LoginLimiter struct {
	cfg     LoginLimiterConfig
	mu      sync.Mutex
	clients map[string]*clientLimiter
	now     func() time.Time
	sweptAt time.Time
}

// NewLoginLimiter creates a LoginLimiter. Zero fields take defaults
// of 10 per minute, burst 5 and 10 minutes idle TTL.
func NewLoginLimiter(cfg LoginLimiterConfig) *LoginLimiter {
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	return &LoginLimiter{
		cfg:     cfg,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

// Allow reports whether key may attempt a login now.
func (l *LoginLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.sweptAt) > l.cfg.IdleTTL {
		for k, cl := range l.clients {
			if now.Sub(cl.lastSeen) > l.cfg.IdleTTL {
				delete(l.clients, k)
			}
		}
		l.sweptAt = now
	}

	cl, ok := l.clients[key]
	if !ok {
		every := time.Minute / time.Duration(l.cfg.PerMinute)
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Every(every), l.cfg.Burst)}
		l.clients[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// Middleware rejects over-limit clients with RATE_LIMITED.
func (l *LoginLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			observability.ObserveAuthAttempt(observability.AuthResultLimited)
			c.Header("Retry-After", "60")
			Abort(c, apperrors.TooManyRequests(apperrors.CodeRateLimited, "too many login attempts, try again later"))
			return
		}
		c.Next()
	}
}
