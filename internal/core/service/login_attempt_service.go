package service

import (
	"hash/fnv"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sunbooking/booking-system/internal/core/ports"
)

const (
	// MaxLoginAttempts is the number of failures that locks a source out.
	MaxLoginAttempts = 5
	// LockoutDuration is the length of the failure window and of the lockout.
	LockoutDuration = 15 * time.Minute

	attemptShards = 32
)

type attemptRecord struct {
	count       int
	windowStart time.Time
}

type attemptShard struct {
	mu      sync.Mutex
	records map[string]attemptRecord
}

// LoginAttemptService counts failed logins per source key with a fixed window
// that resets once it has expired. Records live in a striped map: every
// read-modify-write on a key happens under its shard's lock.
type LoginAttemptService struct {
	shards      [attemptShards]attemptShard
	maxAttempts int
	lockout     time.Duration
	now         func() time.Time
	log         zerolog.Logger
	onLockout   func(sourceKey string)
}

var _ ports.LoginAttemptTracker = (*LoginAttemptService)(nil)

// NewLoginAttemptService returns a tracker using MaxLoginAttempts and
// LockoutDuration.
func NewLoginAttemptService(log zerolog.Logger) *LoginAttemptService {
	s := &LoginAttemptService{
		maxAttempts: MaxLoginAttempts,
		lockout:     LockoutDuration,
		now:         time.Now,
		log:         log,
	}
	for i := range s.shards {
		s.shards[i].records = make(map[string]attemptRecord)
	}
	return s
}

// OnLockout registers fn to run whenever a source reaches the attempt limit.
// It must be set before the tracker is shared.
func (s *LoginAttemptService) OnLockout(fn func(sourceKey string)) {
	s.onLockout = fn
}

// shard maps a source key deterministically to one lock stripe.
func (s *LoginAttemptService) shard(key string) *attemptShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &s.shards[h.Sum32()%attemptShards]
}

func (s *LoginAttemptService) expired(r attemptRecord, now time.Time) bool {
	return now.Sub(r.windowStart) > s.lockout
}

// RecordFailure counts one failed login for sourceKey. A missing or expired
// record starts a new window with count 1. The failure that reaches the limit
// re-anchors the window, so the lockout lasts a full LockoutDuration from it.
func (s *LoginAttemptService) RecordFailure(sourceKey string) {
	now := s.now()
	sh := s.shard(sourceKey)

	sh.mu.Lock()
	r, ok := sh.records[sourceKey]
	if !ok || s.expired(r, now) {
		r = attemptRecord{count: 1, windowStart: now}
	} else {
		r.count++
	}
	if r.count == s.maxAttempts {
		r.windowStart = now
	}
	sh.records[sourceKey] = r
	sh.mu.Unlock()

	if r.count == s.maxAttempts {
		s.log.Warn().
			Str("source", sourceKey).
			Dur("lockout", s.lockout).
			Msg("login source locked out")
		if s.onLockout != nil {
			s.onLockout(sourceKey)
		}
	}
}

// IsBlocked reports whether sourceKey has reached the limit within an
// unexpired window. An expired record is evicted.
func (s *LoginAttemptService) IsBlocked(sourceKey string) bool {
	now := s.now()
	sh := s.shard(sourceKey)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	r, ok := sh.records[sourceKey]
	if !ok {
		return false
	}
	if s.expired(r, now) {
		delete(sh.records, sourceKey)
		return false
	}
	return r.count >= s.maxAttempts
}

// RemainingAttempts returns how many failures sourceKey may still make.
func (s *LoginAttemptService) RemainingAttempts(sourceKey string) int {
	now := s.now()
	sh := s.shard(sourceKey)

	sh.mu.Lock()
	r, ok := sh.records[sourceKey]
	sh.mu.Unlock()

	if !ok || s.expired(r, now) {
		return s.maxAttempts
	}
	return max(0, s.maxAttempts-r.count)
}

// RemainingLockoutMinutes returns the lockout time left, rounded up to whole
// minutes, or 0 when sourceKey is not blocked.
func (s *LoginAttemptService) RemainingLockoutMinutes(sourceKey string) int {
	now := s.now()
	sh := s.shard(sourceKey)

	sh.mu.Lock()
	r, ok := sh.records[sourceKey]
	sh.mu.Unlock()

	if !ok || s.expired(r, now) || r.count < s.maxAttempts {
		return 0
	}
	remaining := s.lockout - now.Sub(r.windowStart)
	return max(1, int(math.Ceil(remaining.Minutes())))
}

// Reset forgets sourceKey. Resetting an unknown key is a no-op.
func (s *LoginAttemptService) Reset(sourceKey string) {
	sh := s.shard(sourceKey)

	sh.mu.Lock()
	_, existed := sh.records[sourceKey]
	delete(sh.records, sourceKey)
	sh.mu.Unlock()

	if existed {
		s.log.Debug().Str("source", sourceKey).Msg("reset failed login attempts")
	}
}

// Sweep drops every expired record and returns how many were removed.
func (s *LoginAttemptService) Sweep() int {
	now := s.now()
	removed := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for key, r := range sh.records {
			if s.expired(r, now) {
				delete(sh.records, key)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Statistics returns a point-in-time summary for monitoring. Shards are read
// one at a time, so the totals are not a global snapshot.
func (s *LoginAttemptService) Statistics() ports.AttemptStatistics {
	now := s.now()
	stats := ports.AttemptStatistics{
		MaxAttempts:            s.maxAttempts,
		LockoutDurationMinutes: int(s.lockout / time.Minute),
	}
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		stats.TotalTrackedSources += len(sh.records)
		for _, r := range sh.records {
			if r.count >= s.maxAttempts && !s.expired(r, now) {
				stats.CurrentlyBlocked++
			}
		}
		sh.mu.Unlock()
	}
	return stats
}
