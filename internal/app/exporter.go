package app

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/hanshuaikang/pingwatch-go/internal/config"
	"github.com/hanshuaikang/pingwatch-go/internal/exporter"
	"github.com/hanshuaikang/pingwatch-go/internal/log"
	"github.com/hanshuaikang/pingwatch-go/internal/probe"
	"github.com/hanshuaikang/pingwatch-go/internal/resolve"
)

// RunExporter runs the Prometheus exporter mode: workers record outcomes
// straight into the metrics registry served on /metrics. It returns when
// the context is cancelled, a quit key is pressed, or the server fails.
// A bind failure is fatal; serving is this mode's entire purpose.
func RunExporter(ctx context.Context, opts config.ExporterOptions, resolver resolve.Resolver, prober probe.Prober, logger *log.Logger) error {
	targets, err := ResolveTargets(ctx, resolver, opts.Targets, false, 0)
	if err != nil {
		return err
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	restoreTerm, err := watchQuitKeys(stop)
	if err != nil {
		logger.LogError("exporter", err, nil)
	}
	defer restoreTerm()

	addr := fmt.Sprintf("0.0.0.0:%d", opts.Port)
	printBanner(targets, opts)

	// One registry per run; workers record into it concurrently.
	metrics := exporter.NewMetrics()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- exporter.Serve(runCtx, addr, metrics)
		stop()
	}()

	exporter.RunWorkers(runCtx, targets, prober, opts.Interval, metrics, logger)

	return <-serveErr
}

func printBanner(targets []probe.Target, opts config.ExporterOptions) {
	fmt.Printf("pingwatch exporter started\n")
	fmt.Printf("  targets : %d host(s)\n", len(targets))
	for i, target := range targets {
		if i == 5 {
			fmt.Printf("          : ... (%d more)\n", len(targets)-5)
			break
		}
		fmt.Printf("          : %s (%s)\n", target.Name, target.Addr)
	}
	fmt.Printf("  interval: %s\n", opts.Interval)
	fmt.Printf("  metrics : http://0.0.0.0:%d/metrics\n", opts.Port)
	fmt.Printf("  actions : press q or Ctrl+C to stop\n")
}

// watchQuitKeys puts stdin into raw mode and stops the run on q, Esc or
// Ctrl+C. Outside a terminal it does nothing. The returned func restores
// the terminal state.
func watchQuitKeys(stop context.CancelFunc) (restore func(), err error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, nil
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return func() {}, err
	}

	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n == 1 {
				switch buf[0] {
				case 'q', 0x1b, 0x03: // q, Esc, Ctrl+C
					stop()
					return
				}
			}
		}
	}()

	return func() { _ = term.Restore(fd, oldState) }, nil
}
