package auth

import (
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"cocreate/pkg/store"
)

const (
	defaultMaxLimiters = 10000
	limiterIdleTTL     = 10 * time.Minute
)

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// limiterPool holds one token bucket per caller key. It never grows past
// max entries: idle entries are swept first, then the least recently used.
type limiterPool struct {
	mu  sync.Mutex
	m   map[string]*limiterEntry
	cfg SecConfig
	max int
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := now()
	if p.m == nil {
		p.m = make(map[string]*limiterEntry)
	}
	if e, ok := p.m[key]; ok {
		e.lastSeen = t
		return e.lim
	}
	p.evict(t)
	rps := p.cfg.RPS
	if rps <= 0 {
		rps = 20
	}
	burst := p.cfg.Burst
	if burst <= 0 {
		burst = 40
	}
	l := rate.NewLimiter(rate.Limit(rps), burst)
	p.m[key] = &limiterEntry{lim: l, lastSeen: t}
	return l
}

// evict makes room for one more entry. Caller holds p.mu.
func (p *limiterPool) evict(t time.Time) {
	limit := p.max
	if limit <= 0 {
		limit = defaultMaxLimiters
	}
	if len(p.m) < limit {
		return
	}
	for k, e := range p.m {
		if t.Sub(e.lastSeen) > limiterIdleTTL {
			delete(p.m, k)
		}
	}
	for len(p.m) >= limit {
		var oldest string
		var oldestAt time.Time
		for k, e := range p.m {
			if oldest == "" || e.lastSeen.Before(oldestAt) {
				oldest, oldestAt = k, e.lastSeen
			}
		}
		delete(p.m, oldest)
	}
}

func (p *limiterPool) Allow(key string) bool {
	return p.get(key).Allow()
}

func (p *limiterPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.m)
}

// rateKey buckets live sessions by user and everything else, including
// unknown or expired tokens, by client IP.
func rateKey(token, ip string) string {
	if token != "" {
		if s, err := store.GetSession(token, now()); err == nil {
			return "user:" + strconv.FormatInt(s.UserID, 10)
		}
	}
	return "ip:" + ip
}
