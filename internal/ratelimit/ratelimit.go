// Package ratelimit is an optional per-source-IP token-bucket admission
// gate, pared down to what a stateless authoritative answerer actually
// needs: no upstream exemption list tied to a resolver, just a bucket per
// client. Once per cleanup interval the whole bucket table is discarded,
// busy and idle clients alike, so every client then starts again with a
// full bucket.
package ratelimit

import (
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter buckets queries per source IP.
type Limiter struct {
	mu          sync.Mutex
	perIP       map[string]*rate.Limiter
	limit       rate.Limit
	burst       int
	cleanupEvery time.Duration
	lastCleanup time.Time
}

// Config holds the token-bucket parameters applied to every new client.
type Config struct {
	QueriesPerSecond float64
	Burst            int
	CleanupInterval  time.Duration
}

// DefaultConfig is generous enough not to bite ordinary resolvers, tight
// enough to blunt a single-source flood.
func DefaultConfig() Config {
	return Config{
		QueriesPerSecond: 100,
		Burst:            200,
		CleanupInterval:  5 * time.Minute,
	}
}

// New returns a Limiter with the given configuration.
func New(cfg Config) *Limiter {
	return &Limiter{
		perIP:        make(map[string]*rate.Limiter),
		limit:        rate.Limit(cfg.QueriesPerSecond),
		burst:        cfg.Burst,
		cleanupEvery: cfg.CleanupInterval,
		lastCleanup:  time.Now(),
	}
}

// Allow reports whether a query from ip may proceed, consuming one token
// from its bucket if so.
func (l *Limiter) Allow(ip net.IP) bool {
	key := ip.String()

	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.lastCleanup) > l.cleanupEvery {
		l.perIP = make(map[string]*rate.Limiter)
		l.lastCleanup = time.Now()
	}

	lim, ok := l.perIP[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.perIP[key] = lim
	}
	return lim.Allow()
}

// Tracked returns the number of distinct source IPs currently holding a
// bucket.
func (l *Limiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.perIP)
}
