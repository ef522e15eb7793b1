package probe

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/hanshuaikang/pingwatch-go/internal/errlog"
)

const defaultInterval = 500 * time.Millisecond

// Worker owns one target's probing cadence. It runs the prober at a fixed
// interval and emits one Outcome per completed cycle onto the event bus.
// Transport-level probe failures go to the shared error log instead of the
// bus; they consume a cycle but never carry target state.
type Worker struct {
	Target   Target
	Prober   Prober
	Interval time.Duration
	Timeout  time.Duration
	Count    int // probes to send; 0 means unbounded
	Errors   *errlog.Log
}

// Run blocks until the probe count is exhausted, the context is cancelled,
// or the event bus receiver is gone. All three are normal stops. A worker
// without a prober cannot start and returns an error immediately.
func (w *Worker) Run(ctx context.Context, events chan<- Outcome) error {
	if w.Prober == nil {
		return errors.New("worker has no prober")
	}

	interval := w.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	timeout := w.Timeout
	if timeout <= 0 {
		timeout = interval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sent := 0
	for {
		if w.Count > 0 && sent >= w.Count {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		result := w.probeOnce(ctx, timeout)
		if ctx.Err() != nil {
			return nil
		}
		sent++

		var outcome Outcome
		switch {
		case result.Success:
			outcome = Outcome{Target: w.Target, Rtt: roundRtt(result.RTT)}
		case result.Timeout:
			outcome = Outcome{Target: w.Target, Timeout: true}
		default:
			if w.Errors != nil && result.Error != nil {
				w.Errors.Append("host(%s) probe err: %v", w.Target.Addr, result.Error)
			}
			continue
		}

		select {
		case events <- outcome:
		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Worker) probeOnce(ctx context.Context, timeout time.Duration) Result {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return w.Prober.Ping(probeCtx, w.Target.Addr, timeout)
}

func roundRtt(rtt time.Duration) float64 {
	ms := float64(rtt) / float64(time.Millisecond)
	return math.Round(ms*100) / 100
}
