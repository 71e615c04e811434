package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// limiter counts requests per client IP inside fixed windows. Donation
// creation is the only rate-limited route; the window resets rather than
// slides, which is enough to blunt card-testing bursts.
type limiter struct {
	mu      sync.Mutex
	limit   int
	per     time.Duration
	windows map[string]*window
}

type window struct {
	hits  int
	reset time.Time
}

// RateLimit rejects clients that exceed limit requests within each period.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	l := &limiter{limit: limit, per: per, windows: make(map[string]*window)}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if retry, ok := l.allow(clientIPForRateLimit(r)); !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (l *limiter) allow(ip string) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	win, ok := l.windows[ip]
	if !ok || now.After(win.reset) {
		win = &window{reset: now.Add(l.per)}
		l.windows[ip] = win
	}
	if win.hits >= l.limit {
		return time.Until(win.reset), false
	}
	win.hits++
	return 0, true
}

// clientIPForRateLimit trusts the first parseable X-Forwarded-For entry,
// falling back to RemoteAddr. Stricter than ClientIP: an unparseable
// forwarded value must not let a client dodge the bucket.
func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip != "" && net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && net.ParseIP(host) != nil {
		return host
	}
	return r.RemoteAddr
}
