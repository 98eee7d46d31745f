package api

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// A Throttle limits how often each actor may post status updates.
type Throttle struct {
	limit rate.Limit
	burst int
	idle  time.Duration

	mu       sync.Mutex
	limiters map[int64]*actorLimiter
	now      func() time.Time
}

type actorLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewThrottle returns a Throttle allowing perMinute posts per actor with
// bursts of up to burst posts.
func NewThrottle(perMinute, burst int) *Throttle {
	return &Throttle{
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		idle:     10 * time.Minute,
		limiters: make(map[int64]*actorLimiter),
		now:      time.Now,
	}
}

// Allow reports whether actor may post now and consumes a token if so.
func (t *Throttle) Allow(actor int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	l, ok := t.limiters[actor]
	if !ok {
		l = &actorLimiter{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.limiters[actor] = l
	}
	l.lastSeen = now
	return l.limiter.AllowN(now, 1)
}

// Prune drops limiters of actors idle for longer than the idle period and
// returns how many were dropped.
func (t *Throttle) Prune() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	n := 0
	for actor, l := range t.limiters {
		if now.Sub(l.lastSeen) > t.idle {
			delete(t.limiters, actor)
			n++
		}
	}
	return n
}

// RetryAfter returns the number of seconds until a token is refilled.
func (t *Throttle) RetryAfter() int {
	if t.limit <= 0 {
		return 60
	}
	return max(1, int(math.Ceil(1/float64(t.limit))))
}
