// Package pipeline implements the telemetry core: probe outcomes flow from
// the workers over an unbuffered event bus into a single aggregator goroutine
// that owns all per-target statistics, and immutable snapshots flow out to
// the consumer over an update bus. The unbuffered channels are the
// backpressure valve: a slow consumer throttles probing instead of queueing.
package pipeline

import (
	"github.com/hanshuaikang/pingwatch-go/internal/probe"
)

// TimeoutSentinel marks a timeout slot inside the sample window. Timeouts
// occupy window slots just like successes.
const TimeoutSentinel = -1.0

// TargetStats is the aggregator-owned state for one target. The sample
// window is bounded; the min/max extrema and the received/timeout counters
// cover the whole run, not just the window.
type TargetStats struct {
	Target   probe.Target
	Rtts     []float64
	Last     float64 // most recent sample; 0 means none yet
	MinRtt   float64 // lowest successful RTT ever; 0 means no success yet
	MaxRtt   float64 // highest successful RTT ever
	Received int     // successful samples ever, unwindowed
	Timeouts int     // timeouts ever, unwindowed
	Evicted  int     // samples pushed out of the window
}

// Snapshot is an immutable value copy of one target's statistics, taken at
// the moment of update. Ownership transfers to whichever consumer receives
// it; the window slice is never shared with the aggregator.
type Snapshot struct {
	Target   probe.Target
	Rtts     []float64
	Last     float64
	MinRtt   float64
	MaxRtt   float64
	Received int
	Timeouts int
	Evicted  int
}

func newTargetStats(target probe.Target) *TargetStats {
	return &TargetStats{Target: target}
}

func (s *TargetStats) applySuccess(rtt float64, capacity int) {
	s.Received++
	s.Last = rtt
	s.Rtts = append(s.Rtts, rtt)

	if s.MinRtt == 0 || rtt < s.MinRtt {
		s.MinRtt = rtt
	}
	if rtt > s.MaxRtt {
		s.MaxRtt = rtt
	}

	s.evict(capacity)
}

func (s *TargetStats) applyTimeout(capacity int) {
	s.Rtts = append(s.Rtts, TimeoutSentinel)
	s.Last = TimeoutSentinel
	s.Timeouts++

	s.evict(capacity)
}

func (s *TargetStats) evict(capacity int) {
	if capacity <= 0 || len(s.Rtts) <= capacity {
		return
	}
	copy(s.Rtts, s.Rtts[1:])
	s.Rtts = s.Rtts[:capacity]
	s.Evicted++
}

func (s *TargetStats) snapshot() Snapshot {
	return Snapshot{
		Target:   s.Target,
		Rtts:     append([]float64(nil), s.Rtts...),
		Last:     s.Last,
		MinRtt:   s.MinRtt,
		MaxRtt:   s.MaxRtt,
		Received: s.Received,
		Timeouts: s.Timeouts,
		Evicted:  s.Evicted,
	}
}
