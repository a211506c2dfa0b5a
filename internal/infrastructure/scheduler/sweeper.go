// Package scheduler runs the periodic maintenance jobs of the back office.
package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/sunbooking/booking-system/internal/api/metrics"
	"github.com/sunbooking/booking-system/internal/core/ports"
)

// Sweepable is a login attempt tracker that can drop its expired records.
type Sweepable interface {
	Sweep() int
	Statistics() ports.AttemptStatistics
}

// AttemptSweeper removes expired login attempt records on a cron schedule and
// refreshes the tracker gauges after every run. Lookups already evict lazily;
// the sweep only bounds memory for sources that never come back.
type AttemptSweeper struct {
	cron    *cron.Cron
	tracker Sweepable
	log     zerolog.Logger
}

// NewAttemptSweeper schedules the sweep with a cron expression such as "@every 5m".
func NewAttemptSweeper(schedule string, tracker Sweepable, log zerolog.Logger) (*AttemptSweeper, error) {
	s := &AttemptSweeper{
		cron:    cron.New(),
		tracker: tracker,
		log:     log,
	}
	if _, err := s.cron.AddFunc(schedule, s.RunOnce); err != nil {
		return nil, fmt.Errorf("schedule attempt sweep %q: %w", schedule, err)
	}
	return s, nil
}

func (s *AttemptSweeper) Start() {
	s.cron.Start()
	s.log.Info().Msg("attempt sweeper started")
}

// Stop prevents further runs and waits for a running sweep to finish.
func (s *AttemptSweeper) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("attempt sweeper stopped")
}

// RunOnce sweeps the tracker and publishes its statistics.
func (s *AttemptSweeper) RunOnce() {
	removed := s.tracker.Sweep()
	metrics.SweptSourcesTotal.Add(float64(removed))

	stats := s.tracker.Statistics()
	metrics.TrackedSources.WithLabelValues("tracked").Set(float64(stats.TotalTrackedSources))
	metrics.TrackedSources.WithLabelValues("blocked").Set(float64(stats.CurrentlyBlocked))

	if removed > 0 {
		s.log.Debug().Int("removed", removed).Int("tracked", stats.TotalTrackedSources).Msg("swept expired login attempts")
	}
}
