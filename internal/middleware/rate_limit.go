package middleware

import (
	"context"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync"
	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/router"
	"github.com/wtfpad/backend/pkg/xcontext"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter *rate.Limiter

	mutex    sync.Mutex
	lastSeen time.Time
}

// RateLimiter allows limit requests per window for each client IP.
type RateLimiter struct {
	limit  int
	window time.Duration

	clients *xsync.MapOf[string, *clientLimiter]

	sweepMutex sync.Mutex
	lastSweep  time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}

	return &RateLimiter{
		limit:     limit,
		window:    window,
		clients:   xsync.NewMapOf[*clientLimiter](),
		lastSweep: time.Now(),
	}
}

func (l *RateLimiter) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		ip := clientIP(ctx)
		if !l.Allow(ip, time.Now()) {
			xcontext.Logger(ctx).Debugf("Rate limit exceeded by %s", ip)
			return ctx, errorx.New(errorx.TooManyRequests, "Rate limit exceeded")
		}

		return ctx, nil
	}
}

func (l *RateLimiter) Allow(client string, now time.Time) bool {
	l.sweep(now)

	c, _ := l.clients.LoadOrCompute(client, func() *clientLimiter {
		every := rate.Every(l.window / time.Duration(l.limit))
		return &clientLimiter{limiter: rate.NewLimiter(every, l.limit)}
	})

	c.mutex.Lock()
	c.lastSeen = now
	c.mutex.Unlock()

	return c.limiter.AllowN(now, 1)
}

// sweep forgets clients idle for a whole window, at most once per window.
func (l *RateLimiter) sweep(now time.Time) {
	l.sweepMutex.Lock()
	if now.Sub(l.lastSweep) < l.window {
		l.sweepMutex.Unlock()
		return
	}
	l.lastSweep = now
	l.sweepMutex.Unlock()

	l.clients.Range(func(key string, c *clientLimiter) bool {
		c.mutex.Lock()
		idle := now.Sub(c.lastSeen) >= l.window
		c.mutex.Unlock()

		if idle {
			l.clients.Delete(key)
		}
		return true
	})
}

func (l *RateLimiter) size() int {
	return l.clients.Size()
}

func clientIP(ctx context.Context) string {
	req := xcontext.HTTPRequest(ctx)

	if forwarded := req.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if ip := strings.TrimSpace(req.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		if req.RemoteAddr == "" {
			return "unknown"
		}
		return req.RemoteAddr
	}

	return host
}
