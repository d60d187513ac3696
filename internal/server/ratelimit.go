package server

import (
	"sync"
	"time"

	"github.com/lawnchairsociety/dungeonadventure/internal/config"
)

// LoadLimiter locks out IPs that keep asking for save ids that do not exist.
// Each repeated lockout doubles, up to the configured maximum.
type LoadLimiter struct {
	mu           sync.Mutex
	attempts     map[string]*loadAttempts
	maxAttempts  int
	lockout      time.Duration
	maxLockout   time.Duration
	now          func() time.Time
	stopCleanup  chan struct{}
	stopOnce     sync.Once
	cleanupEvery time.Duration
}

type loadAttempts struct {
	failures    int
	lockedUntil time.Time
	lockouts    int
}

// NewLoadLimiter creates a limiter and starts its cleanup goroutine. Zero
// settings fall back to 5 attempts, 30s and 300s.
func NewLoadLimiter(cfg config.RateLimitConfig) *LoadLimiter {
	l := &LoadLimiter{
		attempts:     make(map[string]*loadAttempts),
		maxAttempts:  cfg.MaxAttempts,
		lockout:      time.Duration(cfg.LockoutSeconds) * time.Second,
		maxLockout:   time.Duration(cfg.MaxLockoutSeconds) * time.Second,
		now:          time.Now,
		stopCleanup:  make(chan struct{}),
		cleanupEvery: 5 * time.Minute,
	}
	if l.maxAttempts <= 0 {
		l.maxAttempts = 5
	}
	if l.lockout <= 0 {
		l.lockout = 30 * time.Second
	}
	if l.maxLockout < l.lockout {
		l.maxLockout = 10 * l.lockout
	}

	go l.cleanupLoop()
	return l
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (l *LoadLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCleanup) })
}

// Locked reports whether ip is locked out and for how much longer.
func (l *LoadLimiter) Locked(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.attempts[ip]
	if !ok {
		return false, 0
	}
	if now := l.now(); now.Before(a.lockedUntil) {
		return true, a.lockedUntil.Sub(now)
	}
	return false, 0
}

// RecordFailure counts a failed load. It reports whether ip is now locked out.
func (l *LoadLimiter) RecordFailure(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.attempts[ip]
	if !ok {
		a = &loadAttempts{}
		l.attempts[ip] = a
	}

	now := l.now()
	if now.Before(a.lockedUntil) {
		return true, a.lockedUntil.Sub(now)
	}

	a.failures++
	if a.failures < l.maxAttempts {
		return false, 0
	}

	a.lockouts++
	d := l.lockout
	for i := 1; i < a.lockouts && d < l.maxLockout; i++ {
		d *= 2
	}
	if d > l.maxLockout {
		d = l.maxLockout
	}
	a.lockedUntil = now.Add(d)
	a.failures = 0
	return true, d
}

// RecordSuccess forgets the failures of ip.
func (l *LoadLimiter) RecordSuccess(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, ip)
}

// Failures returns the failures counted toward the next lockout.
func (l *LoadLimiter) Failures(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if a, ok := l.attempts[ip]; ok {
		return a.failures
	}
	return 0
}

func (l *LoadLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCleanup:
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

// cleanup drops entries unlocked for ten minutes with no pending failures.
func (l *LoadLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-10 * time.Minute)
	for ip, a := range l.attempts {
		if a.lockedUntil.Before(cutoff) && a.failures == 0 {
			delete(l.attempts, ip)
		}
	}
}
