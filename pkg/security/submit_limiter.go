package security

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SubmitLimiter throttles application submissions per applicant key (email).
// Each key gets its own token bucket refilled at perMinute tokens per minute.
type SubmitLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
	now      func() time.Time
}

// NewSubmitLimiter creates a per-applicant limiter.
// Default: 3 submissions per minute, burst of 1.
func NewSubmitLimiter(perMinute int) *SubmitLimiter {
	if perMinute <= 0 {
		perMinute = 3
	}
	return &SubmitLimiter{
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    1,
		limiters: make(map[string]*rate.Limiter),
		now:      time.Now,
	}
}

// Reservation is a token taken from an applicant's bucket
type Reservation struct {
	r  *rate.Reservation
	at time.Time
}

// Cancel returns the token, e.g. when the submission never reached the backend.
// It is a no-op on a nil Reservation.
func (res *Reservation) Cancel() {
	if res == nil {
		return
	}
	// rate only refunds when cancelled at or before the reservation time
	res.r.CancelAt(res.at)
}

// Reserve takes a token for key. When the bucket is empty it returns nil and
// the time until the next token, without consuming anything.
func (l *SubmitLimiter) Reserve(key string) (*Reservation, time.Duration) {
	limiter := l.limiterFor(normalizeKey(key))

	now := l.now()
	r := limiter.ReserveN(now, 1)
	if !r.OK() {
		return nil, 0
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return nil, delay
	}
	return &Reservation{r: r, at: now}, 0
}

func (l *SubmitLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	return limiter
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
