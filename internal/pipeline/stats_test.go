package pipeline

import (
	"reflect"
	"testing"

	"github.com/hanshuaikang/pingwatch-go/internal/probe"
)

func statsTarget() probe.Target {
	return probe.Target{Name: "example.com", Addr: "192.0.2.1"}
}

func TestWindowEvictionScenario(t *testing.T) {
	// capacity 3, events [Success(10), Success(20), Timeout, Success(5)]
	agg := NewAggregator([]probe.Target{statsTarget()}, 3)

	events := []probe.Outcome{
		{Target: statsTarget(), Rtt: 10},
		{Target: statsTarget(), Rtt: 20},
		{Target: statsTarget(), Timeout: true},
		{Target: statsTarget(), Rtt: 5},
	}

	var last Snapshot
	for _, event := range events {
		snapshot, ok := agg.Apply(event)
		if !ok {
			t.Fatalf("expected known target for %+v", event)
		}
		last = snapshot
	}

	if !reflect.DeepEqual(last.Rtts, []float64{20, TimeoutSentinel, 5}) {
		t.Fatalf("unexpected window: %v", last.Rtts)
	}
	if last.Evicted != 1 {
		t.Fatalf("expected 1 eviction, got %d", last.Evicted)
	}
	if last.MinRtt != 10 {
		t.Fatalf("min must survive eviction, got %v", last.MinRtt)
	}
	if last.MaxRtt != 20 {
		t.Fatalf("max must survive eviction, got %v", last.MaxRtt)
	}
	if last.Received != 3 || last.Timeouts != 1 {
		t.Fatalf("unexpected counters: received=%d timeouts=%d", last.Received, last.Timeouts)
	}
	if last.Last != 5 {
		t.Fatalf("unexpected last sample: %v", last.Last)
	}
}

func TestFreshTargetIsAllZero(t *testing.T) {
	// capacity 200, 0 events
	fresh := newTargetStats(statsTarget())
	if len(fresh.Rtts) != 0 || fresh.MinRtt != 0 || fresh.MaxRtt != 0 || fresh.Last != 0 {
		t.Fatalf("fresh stats must be zero valued: %+v", fresh)
	}
	if AverageRtt(fresh.Rtts) != 0 {
		t.Fatalf("empty window average must be 0")
	}
	if LossPercent(fresh.Timeouts, fresh.Received) != 0 {
		t.Fatalf("no-sample loss must be 0")
	}
}

func TestTimeoutNeverTouchesExtrema(t *testing.T) {
	stats := newTargetStats(statsTarget())
	for i := 0; i < 5; i++ {
		stats.applyTimeout(10)
	}
	if stats.MinRtt != 0 || stats.MaxRtt != 0 {
		t.Fatalf("timeouts must not move extrema: min=%v max=%v", stats.MinRtt, stats.MaxRtt)
	}
	if stats.Last != TimeoutSentinel {
		t.Fatalf("expected sentinel last sample, got %v", stats.Last)
	}

	stats.applySuccess(8, 10)
	if stats.MinRtt != 8 || stats.MaxRtt != 8 {
		t.Fatalf("first success must set both extrema, got min=%v max=%v", stats.MinRtt, stats.MaxRtt)
	}
}

func TestMinIgnoresUnsetSentinel(t *testing.T) {
	stats := newTargetStats(statsTarget())
	stats.applySuccess(50, 10)
	stats.applySuccess(60, 10)
	if stats.MinRtt != 50 {
		t.Fatalf("higher sample must not lower the min, got %v", stats.MinRtt)
	}
	stats.applySuccess(50, 10)
	if stats.MinRtt != 50 {
		t.Fatalf("equal sample must not change the min, got %v", stats.MinRtt)
	}
	stats.applySuccess(49.5, 10)
	if stats.MinRtt != 49.5 {
		t.Fatalf("strictly lower sample must update the min, got %v", stats.MinRtt)
	}
}

func TestSnapshotWindowIsDetached(t *testing.T) {
	agg := NewAggregator([]probe.Target{statsTarget()}, 10)
	snapshot, _ := agg.Apply(probe.Outcome{Target: statsTarget(), Rtt: 10})
	snapshot.Rtts[0] = 999

	next, _ := agg.Apply(probe.Outcome{Target: statsTarget(), Rtt: 20})
	if next.Rtts[0] != 10 {
		t.Fatalf("consumer mutation leaked into aggregator state: %v", next.Rtts)
	}
}
