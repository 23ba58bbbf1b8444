package auth

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle is a set of token buckets keyed by caller, shared by every
// workspace so that opening a new workspace does not reset the budget.
type Throttle struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func NewThrottle(perSecond float64, burst int) *Throttle {
	return &Throttle{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Allow spends one token from the bucket of key. A nil Throttle allows
// everything.
func (t *Throttle) Allow(key string) bool {
	if t == nil {
		return true
	}
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := t.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(t.limit, t.burst)}
		t.buckets[key] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

// Prune forgets buckets unused for longer than idle and reports how many
// were dropped.
func (t *Throttle) Prune(idle time.Duration) int {
	if t == nil {
		return 0
	}
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for k, b := range t.buckets {
		if now.Sub(b.seen) > idle {
			delete(t.buckets, k)
			n++
		}
	}
	return n
}

func (t *Throttle) Len() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buckets)
}

// AddrKey and EmailKey name the buckets for a remote address and an account.
func AddrKey(addr string) string { return "addr:" + addr }

func EmailKey(email string) string {
	return "email:" + strings.ToLower(strings.TrimSpace(email))
}
