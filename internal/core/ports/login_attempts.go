package ports

// AttemptStatistics is a snapshot of the login attempt tracker.
type AttemptStatistics struct {
	TotalTrackedSources    int `json:"total_tracked_sources"`
	CurrentlyBlocked       int `json:"currently_blocked"`
	MaxAttempts            int `json:"max_attempts"`
	LockoutDurationMinutes int `json:"lockout_duration_minutes"`
}

// LoginAttemptTracker throttles login attempts per source key.
type LoginAttemptTracker interface {
	RecordFailure(sourceKey string)
	IsBlocked(sourceKey string) bool
	RemainingAttempts(sourceKey string) int
	RemainingLockoutMinutes(sourceKey string) int
	Reset(sourceKey string)
	Statistics() AttemptStatistics
}
