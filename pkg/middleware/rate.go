// Package middleware holds the HTTP middleware mounted by the kernel.
package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/crowdfork/crowdfork/pkg/response"
)

// maxBuckets forces an early sweep of expired buckets.
const maxBuckets = 100_000

// bucket is a fixed-window request count for one client.
type bucket struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

func (b *bucket) allow(max int, window time.Duration, now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.After(b.resetAt) {
		b.count = 0
		b.resetAt = now.Add(window)
	}

	b.count++
	return b.count <= max
}

type limiter struct {
	max    int
	window time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	swept   time.Time
}

func (l *limiter) get(key string, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Expired buckets are evicted once per window, or sooner when the map
	// is full.
	if now.Sub(l.swept) > l.window || len(l.buckets) >= maxBuckets {
		for k, b := range l.buckets {
			b.mu.Lock()
			expired := now.After(b.resetAt)
			b.mu.Unlock()
			if expired {
				delete(l.buckets, k)
			}
		}
		l.swept = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{resetAt: now.Add(l.window)}
		l.buckets[key] = b
	}
	return b
}

// RateLimit allows each client IP max requests per window and answers
// 429 beyond that.
//
//	r.Use(middleware.RateLimit(config.RateLimitPerMinute(), time.Minute))
func RateLimit(max int, window time.Duration) func(http.Handler) http.Handler {
	l := &limiter{max: max, window: window, buckets: map[string]*bucket{}}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			if !l.get(clientIP(r), now).allow(l.max, l.window, now) {
				response.Detail(w, http.StatusTooManyRequests, "rate_limited", "Too Many Requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var (
	proxiesMu sync.RWMutex
	proxies   []netip.Prefix
)

// TrustProxies sets the peers whose X-Forwarded-For header is believed.
// Entries are addresses or CIDR ranges; an empty list trusts nobody.
func TrustProxies(entries []string) error {
	parsed := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.Contains(e, "/") {
			addr, err := netip.ParseAddr(e)
			if err != nil {
				return fmt.Errorf("middleware: trusted proxy %q: %w", e, err)
			}
			parsed = append(parsed, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(e)
		if err != nil {
			return fmt.Errorf("middleware: trusted proxy %q: %w", e, err)
		}
		parsed = append(parsed, prefix.Masked())
	}

	proxiesMu.Lock()
	proxies = parsed
	proxiesMu.Unlock()
	return nil
}

func trustedProxy(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	proxiesMu.RLock()
	defer proxiesMu.RUnlock()
	for _, p := range proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// clientIP is the peer address. Behind a trusted proxy it is the nearest
// X-Forwarded-For hop that is not itself a trusted proxy.
func clientIP(r *http.Request) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		peer = host
	}

	fwd := r.Header.Get("X-Forwarded-For")
	if fwd == "" || !trustedProxy(peer) {
		return peer
	}

	hops := strings.Split(fwd, ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !trustedProxy(hop) || i == 0 {
			return hop
		}
	}
	return peer
}
