package throttle

import (
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Limiter bounds how often a session may attempt an action. Allow returns
// zero when the attempt may proceed (the attempt itself then counts toward
// the window) and the remaining wait time when the caller is throttled.
type Limiter interface {
	Allow(sessionID, action string) time.Duration
}

// ThrottledError reports a rejected attempt and how long the caller must
// wait before retrying
type ThrottledError struct {
	Action string
	Wait   time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("action %q throttled, retry in %s", e.Action, e.Wait)
}

// WindowLimiter is a sliding-window limiter: at most `passes` attempts per
// session+action key within `interval`. Attempt timestamps live in an
// expiring cache so idle sessions are evicted without bookkeeping.
type WindowLimiter struct {
	passes   int
	interval time.Duration
	window   *cache.Cache
	now      func() time.Time
	mu       sync.Mutex
}

// NewWindowLimiter creates a sliding-window limiter allowing `passes`
// attempts per `interval`
func NewWindowLimiter(passes int, interval time.Duration) *WindowLimiter {
	return &WindowLimiter{
		passes: passes,
		// Entries must outlive the window they participate in; the
		// janitor only reclaims keys idle past that.
		window:   cache.New(interval, 2*interval),
		interval: interval,
		now:      time.Now,
	}
}

// Allow records an attempt for the session+action key and returns zero, or
// returns the remaining wait when the window is already full
func (l *WindowLimiter) Allow(sessionID, action string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := sessionID + ":" + action
	now := l.now()
	cutoff := now.Add(-l.interval)

	var attempts []time.Time
	if cached, found := l.window.Get(key); found {
		for _, t := range cached.([]time.Time) {
			if t.After(cutoff) {
				attempts = append(attempts, t)
			}
		}
	}

	if len(attempts) >= l.passes {
		// Window full: open again when the oldest in-window attempt ages out
		wait := attempts[0].Add(l.interval).Sub(now)
		l.window.Set(key, attempts, l.interval)
		return wait
	}

	attempts = append(attempts, now)
	l.window.Set(key, attempts, l.interval)
	return 0
}
