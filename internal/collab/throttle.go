package collab

import (
	"time"

	"golang.org/x/time/rate"
)

// cursorInterval is the minimum spacing between outbound cursor broadcasts.
const cursorInterval = 50 * time.Millisecond

// CursorThrottler bounds the rate of outbound cursor broadcasts. It is a
// leaky bucket of size one: a sample inside the 50ms window is dropped, not
// queued, so the final position of a burst is not guaranteed to go out.
type CursorThrottler struct {
	limiter *rate.Limiter
}

func NewCursorThrottler() *CursorThrottler {
	return &CursorThrottler{limiter: rate.NewLimiter(rate.Every(cursorInterval), 1)}
}

// Allow reports whether a sample arriving now may be broadcast.
func (t *CursorThrottler) Allow() bool {
	return t.limiter.Allow()
}

// AllowAt is Allow with an explicit sample time. Times must be
// non-decreasing across calls.
func (t *CursorThrottler) AllowAt(at time.Time) bool {
	return t.limiter.AllowN(at, 1)
}
