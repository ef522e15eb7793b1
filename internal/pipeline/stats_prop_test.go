package pipeline

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/hanshuaikang/pingwatch-go/internal/probe"
)

func genOutcomes(target probe.Target) gopter.Gen {
	return gen.SliceOf(gen.OneGenOf(
		gen.Float64Range(0.01, 500).Map(func(rtt float64) probe.Outcome {
			return probe.Outcome{Target: target, Rtt: rtt}
		}),
		gen.Const(probe.Outcome{Target: target, Timeout: true}),
	))
}

func TestPropertyWindowBound(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 100
	props := gopter.NewProperties(params)

	target := probe.Target{Name: "test", Addr: "192.0.2.1"}

	props.Property("window length and eviction count track event count", prop.ForAll(
		func(outcomes []probe.Outcome, capacity int) bool {
			agg := NewAggregator([]probe.Target{target}, capacity)
			for _, outcome := range outcomes {
				agg.Apply(outcome)
			}

			snapshot, ok := agg.Apply(probe.Outcome{Target: target, Timeout: true})
			if !ok {
				return false
			}
			n := len(outcomes) + 1

			wantLen := n
			if wantLen > capacity {
				wantLen = capacity
			}
			wantEvicted := n - capacity
			if wantEvicted < 0 {
				wantEvicted = 0
			}
			return len(snapshot.Rtts) == wantLen && snapshot.Evicted == wantEvicted
		},
		genOutcomes(target),
		gen.IntRange(1, 20),
	))

	props.Property("counters are monotonic and cover the window", prop.ForAll(
		func(outcomes []probe.Outcome) bool {
			agg := NewAggregator([]probe.Target{target}, 5)
			prevReceived, prevTimeouts := 0, 0
			for _, outcome := range outcomes {
				snapshot, ok := agg.Apply(outcome)
				if !ok {
					return false
				}
				if snapshot.Received < prevReceived || snapshot.Timeouts < prevTimeouts {
					return false
				}
				if snapshot.Received+snapshot.Timeouts < len(snapshot.Rtts) {
					return false
				}
				prevReceived, prevTimeouts = snapshot.Received, snapshot.Timeouts
			}
			return true
		},
		genOutcomes(target),
	))

	props.Property("extrema only ever move on success events", prop.ForAll(
		func(outcomes []probe.Outcome) bool {
			agg := NewAggregator([]probe.Target{target}, 5)
			prevMin, prevMax := 0.0, 0.0
			for _, outcome := range outcomes {
				snapshot, ok := agg.Apply(outcome)
				if !ok {
					return false
				}
				if outcome.Timeout {
					if snapshot.MinRtt != prevMin || snapshot.MaxRtt != prevMax {
						return false
					}
				} else {
					if snapshot.MaxRtt < outcome.Rtt {
						return false
					}
					if snapshot.MinRtt == 0 || (prevMin != 0 && snapshot.MinRtt > prevMin) {
						return false
					}
				}
				prevMin, prevMax = snapshot.MinRtt, snapshot.MaxRtt
			}
			return true
		},
		genOutcomes(target),
	))

	props.Property("loss depends only on final counts, not event order", prop.ForAll(
		func(outcomes []probe.Outcome) bool {
			forward := NewAggregator([]probe.Target{target}, 5)
			backward := NewAggregator([]probe.Target{target}, 5)

			var timeouts, received int
			for _, outcome := range outcomes {
				forward.Apply(outcome)
				if outcome.Timeout {
					timeouts++
				} else {
					received++
				}
			}
			for i := len(outcomes) - 1; i >= 0; i-- {
				backward.Apply(outcomes[i])
			}

			want := LossPercent(timeouts, received)
			for _, agg := range []*Aggregator{forward, backward} {
				stats := agg.stats[target.Key()]
				if LossPercent(stats.Timeouts, stats.Received) != want {
					return false
				}
			}
			return true
		},
		genOutcomes(target),
	))

	props.TestingRun(t)
}
