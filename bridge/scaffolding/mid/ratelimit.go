package mid

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jrazmi/helix/bridge/scaffolding/errs"
	"github.com/jrazmi/helix/infrastructure/web"
)

// RateLimitConfig bounds the request rate of each client address.
type RateLimitConfig struct {
	RequestsPerSecond float64       `env:"RATE_LIMIT_RPS" default:"50"`
	Burst             int           `env:"RATE_LIMIT_BURST" default:"100"`
	IdleTTL           time.Duration `env:"RATE_LIMIT_IDLE_TTL" default:"10m"`
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client address.
type RateLimiter struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	clients map[string]*client
	now     func() time.Time
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 50
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 100
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{
		cfg:     cfg,
		clients: make(map[string]*client),
		now:     time.Now,
	}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	c, ok := rl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now

	// Sweep on the way in; the map is bounded by active clients.
	for k, other := range rl.clients {
		if now.Sub(other.lastSeen) > rl.cfg.IdleTTL {
			delete(rl.clients, k)
		}
	}

	return c.limiter.AllowN(now, 1)
}

// RateLimit rejects requests beyond the client's budget with 429.
func RateLimit(rl *RateLimiter) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			if !rl.allow(clientKey(r)) {
				return errs.Newf(errs.ResourceExhausted, "rate limit exceeded")
			}
			return next(ctx, r)
		}
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
