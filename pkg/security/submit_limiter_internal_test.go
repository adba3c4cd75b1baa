package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitLimiter(t *testing.T) {
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewSubmitLimiter(2) // one token every 30s
	l.now = func() time.Time { return current }

	t.Run("Should allow the first submission", func(t *testing.T) {
		res, wait := l.Reserve("jo@x.com")
		assert.NotNil(t, res)
		assert.Zero(t, wait)
	})

	t.Run("Should throttle the same applicant regardless of case", func(t *testing.T) {
		res, wait := l.Reserve(" JO@x.com ")
		assert.Nil(t, res)
		assert.InDelta(t, float64(30*time.Second), float64(wait), float64(time.Second))
	})

	t.Run("Should not throttle other applicants", func(t *testing.T) {
		res, _ := l.Reserve("al@x.com")
		assert.NotNil(t, res)
	})

	t.Run("Should allow again once a token is refilled", func(t *testing.T) {
		current = current.Add(31 * time.Second)
		res, _ := l.Reserve("jo@x.com")
		assert.NotNil(t, res)
	})
}

func TestSubmitLimiterCancelRefundsToken(t *testing.T) {
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewSubmitLimiter(3)
	l.now = func() time.Time { return current }

	res, _ := l.Reserve("jo@x.com")
	require.NotNil(t, res)

	// Delivery failed a few seconds later
	current = current.Add(2 * time.Second)
	res.Cancel()

	again, wait := l.Reserve("jo@x.com")
	assert.NotNil(t, again)
	assert.Zero(t, wait)

	throttled, _ := l.Reserve("jo@x.com")
	assert.Nil(t, throttled, "refund must not grant more than the burst")
}

func TestReservationCancelNil(t *testing.T) {
	var res *Reservation
	assert.NotPanics(t, res.Cancel)
}

func TestNewSubmitLimiterDefaults(t *testing.T) {
	l := NewSubmitLimiter(0)
	assert.InDelta(t, 3.0/60.0, float64(l.limit), 1e-9)
	assert.Equal(t, 1, l.burst)
}
