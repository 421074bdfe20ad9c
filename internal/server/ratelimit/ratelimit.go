// Package ratelimit limits API requests per client and route tier using
// golang.org/x/time/rate token buckets.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Decision is the outcome of a single Allow call. Limit is zero for unlimited requests.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

type client struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one bucket per client and tier.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

// NewLimiter creates a limiter. A nil config uses DefaultConfig.
func NewLimiter(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Limiter{
		cfg:     *cfg,
		now:     time.Now,
		clients: make(map[string]*client),
	}
}

// Allow spends one token from the client's bucket for the request's tier.
func (l *Limiter) Allow(clientID, method, path string) Decision {
	if !l.cfg.Enabled {
		return Decision{Allowed: true}
	}
	tier, ok := Classify(method, path)
	if !ok {
		return Decision{Allowed: true}
	}
	quota, ok := l.cfg.Quotas[tier]
	if !ok || quota.Limit <= 0 {
		return Decision{Allowed: true}
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	key := string(tier) + "|" + clientID
	c, ok := l.clients[key]
	if !ok {
		c = &client{bucket: rate.NewLimiter(quota.rate(), quota.burst())}
		l.clients[key] = c
	}
	c.lastSeen = now

	allowed := c.bucket.AllowN(now, 1)
	tokens := c.bucket.TokensAt(now)

	d := Decision{
		Allowed:   allowed,
		Limit:     quota.Limit,
		Remaining: max(int(tokens), 0),
		ResetTime: now.Add(quota.refillTime(float64(quota.burst()) - tokens)),
	}
	if !allowed {
		d.RetryAfter = quota.refillTime(1 - tokens)
	}
	return d
}

// sweep drops idle buckets at most once per IdleTTL. Callers hold l.mu.
func (l *Limiter) sweep(now time.Time) {
	if l.cfg.IdleTTL <= 0 || now.Sub(l.lastSweep) < l.cfg.IdleTTL {
		return
	}
	for key, c := range l.clients {
		if now.Sub(c.lastSeen) >= l.cfg.IdleTTL {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

func (q Quota) rate() rate.Limit {
	if q.Window <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(q.Limit) / q.Window.Seconds())
}

func (q Quota) burst() int {
	if q.Burst > 0 {
		return q.Burst
	}
	return q.Limit
}

// refillTime is how long the bucket needs to regain the given number of tokens.
func (q Quota) refillTime(tokens float64) time.Duration {
	r := q.rate()
	if tokens <= 0 || r == rate.Inf {
		return 0
	}
	return time.Duration(tokens / float64(r) * float64(time.Second))
}
