package scheduler

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"

	"github.com/sunbooking/booking-system/internal/api/metrics"
	"github.com/sunbooking/booking-system/internal/core/ports"
)

type fakeTracker struct {
	sweeps int
	stats  ports.AttemptStatistics
}

func (f *fakeTracker) Sweep() int {
	f.sweeps++
	return 3
}

func (f *fakeTracker) Statistics() ports.AttemptStatistics { return f.stats }

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		t.Fatalf("read metric: %v", err)
	}
	if out.Gauge != nil {
		return out.Gauge.GetValue()
	}
	return out.Counter.GetValue()
}

func TestAttemptSweeper_RunOnce(t *testing.T) {
	tracker := &fakeTracker{stats: ports.AttemptStatistics{TotalTrackedSources: 7, CurrentlyBlocked: 2}}
	s, err := NewAttemptSweeper("@every 5m", tracker, zerolog.Nop())
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}

	before := value(t, metrics.SweptSourcesTotal)
	s.RunOnce()

	if tracker.sweeps != 1 {
		t.Fatalf("expected one sweep, got %d", tracker.sweeps)
	}
	if got := value(t, metrics.SweptSourcesTotal) - before; got != 3 {
		t.Fatalf("expected swept counter +3, got %v", got)
	}
	if got := value(t, metrics.TrackedSources.WithLabelValues("tracked")); got != 7 {
		t.Fatalf("expected tracked gauge 7, got %v", got)
	}
	if got := value(t, metrics.TrackedSources.WithLabelValues("blocked")); got != 2 {
		t.Fatalf("expected blocked gauge 2, got %v", got)
	}
}

func TestAttemptSweeper_InvalidSchedule(t *testing.T) {
	if _, err := NewAttemptSweeper("every now and then", &fakeTracker{}, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for invalid cron expression")
	}
}

func TestAttemptSweeper_StartStop(t *testing.T) {
	s, err := NewAttemptSweeper("@every 1h", &fakeTracker{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}
	s.Start()
	s.Stop()
}
