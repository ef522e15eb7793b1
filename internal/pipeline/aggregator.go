package pipeline

import (
	"context"

	"github.com/hanshuaikang/pingwatch-go/internal/probe"
)

// Aggregator is the sole mutator of per-target statistics. It consumes probe
// outcomes serially, so stats updates need no locking; snapshots cross the
// goroutine boundary as value copies.
type Aggregator struct {
	stats      map[string]*TargetStats
	windowSize int
}

// NewAggregator builds the statistics map from the resolved target set. The
// map keys are fixed for the run; the aggregator never discovers targets
// dynamically.
func NewAggregator(targets []probe.Target, windowSize int) *Aggregator {
	stats := make(map[string]*TargetStats, len(targets))
	for _, target := range targets {
		stats[target.Key()] = newTargetStats(target)
	}
	return &Aggregator{stats: stats, windowSize: windowSize}
}

// Apply folds one outcome into the owning target's statistics and returns
// the resulting snapshot. Outcomes for unknown targets are dropped.
func (a *Aggregator) Apply(outcome probe.Outcome) (Snapshot, bool) {
	stats, ok := a.stats[outcome.Target.Key()]
	if !ok {
		return Snapshot{}, false
	}
	if outcome.Timeout {
		stats.applyTimeout(a.windowSize)
	} else {
		stats.applySuccess(outcome.Rtt, a.windowSize)
	}
	return stats.snapshot(), true
}

// Run consumes the event bus until it is closed or the context is
// cancelled, publishing one snapshot per applied event. The update bus is
// closed on exit so downstream consumers see a terminal signal. A consumer
// that stopped receiving is observed through ctx and ends the loop cleanly.
func (a *Aggregator) Run(ctx context.Context, events <-chan probe.Outcome, updates chan<- Snapshot) {
	defer close(updates)

	for {
		select {
		case <-ctx.Done():
			return
		case outcome, ok := <-events:
			if !ok {
				return
			}
			snapshot, known := a.Apply(outcome)
			if !known {
				continue
			}
			select {
			case updates <- snapshot:
			case <-ctx.Done():
				return
			}
		}
	}
}
