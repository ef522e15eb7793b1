package exporter

import (
	"context"
	"sync"
	"time"

	"github.com/hanshuaikang/pingwatch-go/internal/log"
	"github.com/hanshuaikang/pingwatch-go/internal/probe"
)

// RunWorkers probes every target at the given interval, recording each
// outcome directly into the recorder, and blocks until the context is
// cancelled and all workers have drained.
func RunWorkers(ctx context.Context, targets []probe.Target, prober probe.Prober, interval time.Duration, recorder Recorder, logger *log.Logger) {
	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		go func(target probe.Target) {
			defer wg.Done()
			runLoop(ctx, target, prober, interval, recorder, logger)
		}(target)
	}
	wg.Wait()
}

func runLoop(ctx context.Context, target probe.Target, prober probe.Prober, interval time.Duration, recorder Recorder, logger *log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		probeCtx, cancel := context.WithTimeout(ctx, interval)
		result := prober.Ping(probeCtx, target.Addr, interval)
		cancel()
		if ctx.Err() != nil {
			return
		}

		switch {
		case result.Success:
			recorder.RecordSuccess(target.Name, target.Addr, float64(result.RTT)/float64(time.Millisecond))
		case result.Timeout:
			recorder.RecordTimeout(target.Name, target.Addr)
		default:
			recorder.RecordError(target.Name, target.Addr)
			if logger != nil && result.Error != nil {
				logger.Warn("probe failed", map[string]interface{}{
					"target":  target.Name,
					"address": target.Addr,
					"error":   result.Error.Error(),
				})
			}
		}
	}
}
