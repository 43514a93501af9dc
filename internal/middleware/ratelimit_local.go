package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// LocalRateLimiter keeps one token bucket per client in process memory.
// It is used when Redis is unreachable at startup.
type LocalRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*localClient
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

type localClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalRateLimiter allows config.RequestsPerWindow requests per
// config.Window per client, refilled evenly.
func NewLocalRateLimiter(config RateLimitConfig) *LocalRateLimiter {
	limit := rate.Limit(float64(config.RequestsPerWindow) / config.Window.Seconds())
	return &LocalRateLimiter{
		clients: make(map[string]*localClient),
		limit:   limit,
		burst:   config.RequestsPerWindow,
		idleTTL: 3 * config.Window,
		now:     time.Now,
	}
}

func (l *LocalRateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, c := range l.clients {
		if now.Sub(c.lastSeen) > l.idleTTL {
			delete(l.clients, k)
		}
	}

	c, ok := l.clients[key]
	if !ok {
		c = &localClient{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

// LocalRateLimitMiddleware rejects requests beyond the per-client budget with 429
func LocalRateLimitMiddleware(limiter *LocalRateLimiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := clientIdentifier(r)
			l := limiter.limiter(clientID)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.burst))

			reservation := l.Reserve()
			if delay := reservation.Delay(); delay > 0 {
				reservation.Cancel()

				logger.Warn("Rate limit exceeded",
					zap.String("client_id", clientID),
					zap.Int("limit", limiter.burst),
				)

				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				RespondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(l.Tokens())))
			next.ServeHTTP(w, r)
		})
	}
}
