package services

import (
	"sync"
	"time"
)

const (
	DefaultLoginMaxAttempts = 5
	DefaultLoginCooldown    = 5 * time.Minute
)

type LoginThrottleConfig struct {
	Cooldown    time.Duration
	MaxAttempts int
	Now         func() time.Time
}

type loginAttempts struct {
	failures     int
	firstFailure time.Time
	lockedUntil  time.Time
}

// stale reports whether the entry no longer affects sign-in at now.
func (a *loginAttempts) stale(now time.Time, window time.Duration) bool {
	if !a.lockedUntil.IsZero() {
		return !now.Before(a.lockedUntil)
	}

	return !now.Before(a.firstFailure.Add(window))
}

/*
LoginThrottle counts consecutive sign-in failures per key. After
MaxAttempts failures inside one cooldown window the key is locked until
the cooldown elapses, then the counter starts over. Failures older than
the window are forgotten.
*/
type LoginThrottle struct {
	cooldown    time.Duration
	maxAttempts int
	now         func() time.Time

	mu       sync.Mutex
	attempts map[string]*loginAttempts
}

func NewLoginThrottle(config LoginThrottleConfig) *LoginThrottle {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultLoginMaxAttempts
	}

	if config.Cooldown <= 0 {
		config.Cooldown = DefaultLoginCooldown
	}

	if config.Now == nil {
		config.Now = time.Now
	}

	return &LoginThrottle{
		cooldown:    config.Cooldown,
		maxAttempts: config.MaxAttempts,
		now:         config.Now,
		attempts:    map[string]*loginAttempts{},
	}
}

// Locked reports whether key is locked and for how much longer.
func (t *LoginThrottle) Locked(key string) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.attempts[key]

	if !ok || a.lockedUntil.IsZero() {
		return false, 0
	}

	now := t.now()

	if !now.Before(a.lockedUntil) {
		delete(t.attempts, key)
		return false, 0
	}

	return true, a.lockedUntil.Sub(now)
}

/*
RecordFailure counts one failed attempt and returns the running count.
locked is true when this failure triggered the lock.
*/
func (t *LoginThrottle) RecordFailure(key string) (failures int, locked bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	a, ok := t.attempts[key]

	if !ok || a.stale(now, t.cooldown) {
		a = &loginAttempts{firstFailure: now}
		t.attempts[key] = a
	}

	a.failures++

	if a.failures >= t.maxAttempts {
		a.lockedUntil = now.Add(t.cooldown)
		return a.failures, true
	}

	return a.failures, false
}

func (t *LoginThrottle) RecordSuccess(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.attempts, key)
}

// Prune forgets every key whose failures or lock have expired.
func (t *LoginThrottle) Prune() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	removed := 0

	for key, a := range t.attempts {
		if a.stale(now, t.cooldown) {
			delete(t.attempts, key)
			removed++
		}
	}

	return removed
}

func (t *LoginThrottle) MaxAttempts() int {
	return t.maxAttempts
}
