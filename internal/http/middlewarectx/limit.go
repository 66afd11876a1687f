package middlewarectx

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/http/response"
)

// limiterIdleTTL — через сколько простоя лимитер клиента забывается.
const limiterIdleTTL = 3 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiters хранит отдельный лимитер на каждый адрес клиента.
type clientLimiters struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	clients   map[string]*clientLimiter
	lastSweep time.Time
	now       func() time.Time
}

func newClientLimiters(limit float64, burst int) *clientLimiters {
	return &clientLimiters{
		limit:   rate.Limit(limit),
		burst:   burst,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

func (c *clientLimiters) allow(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.lastSweep) > limiterIdleTTL {
		for k, cl := range c.clients {
			if now.Sub(cl.lastSeen) > limiterIdleTTL {
				delete(c.clients, k)
			}
		}
		c.lastSweep = now
	}

	cl, ok := c.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.clients[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// clientKey возвращает IP из RemoteAddr. За прокси RemoteAddr
// подставляет middleware.RealIP.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware ограничивает частоту запросов с одного IP:
// limit запросов в секунду с всплеском burst. Сверх лимита отдаёт 429.
func RateLimitMiddleware(log *slog.Logger, limit float64, burst int) func(http.Handler) http.Handler {
	limiters := newClientLimiters(limit, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			if !limiters.allow(key) {
				log.Warn("too many requests", slog.String("path", r.URL.Path), slog.String("client", key))
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
