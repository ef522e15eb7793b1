// Package app wires the pipeline together: resolved targets feed one probe
// worker each, all workers share the event bus into the aggregator, and the
// aggregator feeds the dashboard consumer over the update bus.
package app

import (
	"context"
	"sync"

	"github.com/hanshuaikang/pingwatch-go/internal/config"
	"github.com/hanshuaikang/pingwatch-go/internal/errlog"
	"github.com/hanshuaikang/pingwatch-go/internal/log"
	"github.com/hanshuaikang/pingwatch-go/internal/pipeline"
	"github.com/hanshuaikang/pingwatch-go/internal/probe"
	"github.com/hanshuaikang/pingwatch-go/internal/resolve"
	"github.com/hanshuaikang/pingwatch-go/internal/sink"
	"github.com/hanshuaikang/pingwatch-go/internal/ui"
)

// ResolveTargets turns the user-supplied names into (name, address) probe
// targets. With a single name and multiple > 0, up to multiple addresses of
// that name are probed. Any resolution failure aborts the whole run.
func ResolveTargets(ctx context.Context, r resolve.Resolver, names []string, forceIPv6 bool, multiple int) ([]probe.Target, error) {
	if len(names) == 1 && multiple > 0 {
		addrs, err := resolve.Multiple(ctx, r, names[0], forceIPv6, multiple)
		if err != nil {
			return nil, err
		}
		targets := make([]probe.Target, 0, len(addrs))
		for _, addr := range addrs {
			targets = append(targets, probe.Target{Name: names[0], Addr: addr})
		}
		return targets, nil
	}

	targets := make([]probe.Target, 0, len(names))
	for _, name := range names {
		addr, err := resolve.First(ctx, r, name, forceIPv6)
		if err != nil {
			return nil, err
		}
		targets = append(targets, probe.Target{Name: name, Addr: addr})
	}
	return targets, nil
}

// RunInteractive runs the dashboard mode until the user quits, a signal
// arrives, or every worker exhausts its probe count.
func RunInteractive(ctx context.Context, opts config.Options, resolver resolve.Resolver, prober probe.Prober, logger *log.Logger) error {
	targets, err := ResolveTargets(ctx, resolver, opts.Targets, opts.ForceIPv6, opts.Multiple)
	if err != nil {
		return err
	}

	errs := errlog.New(0)

	var out *sink.FileSink
	if opts.OutputPath != "" {
		out, err = sink.Open(opts.OutputPath, errs)
		if err != nil {
			// The sink is an optional consumer; a failed open is surfaced
			// on the dashboard, not fatal.
			errs.Append("%v", err)
			out = nil
		}
	}
	if out != nil {
		defer out.Close()
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	events := make(chan probe.Outcome)
	updates := make(chan pipeline.Snapshot)

	var workers sync.WaitGroup
	for _, target := range targets {
		worker := &probe.Worker{
			Target:   target,
			Prober:   prober,
			Interval: opts.Interval,
			Count:    opts.Count,
			Errors:   errs,
		}
		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := worker.Run(runCtx, events); err != nil {
				logger.LogProbeInitFailure(worker.Target.Name, worker.Target.Addr, err)
			}
		}()
	}

	// Once every producer is done, closing the event bus tells the
	// aggregator the stream is over.
	go func() {
		workers.Wait()
		close(events)
	}()

	aggregator := pipeline.NewAggregator(targets, opts.View.WindowSize())
	aggDone := make(chan struct{})
	go func() {
		defer close(aggDone)
		aggregator.Run(runCtx, events, updates)
	}()

	dashboard := ui.New(opts.View, targets, errs, out)
	uiErr := dashboard.Run(runCtx, stop, updates)

	// Teardown in reverse of startup: stop producers, drain the pipeline,
	// then release the sink (deferred above).
	stop()
	workers.Wait()
	<-aggDone

	if uiErr != nil {
		logger.LogError("ui", uiErr, nil)
		return uiErr
	}
	return nil
}
