package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hanshuaikang/pingwatch-go/internal/app"
	"github.com/hanshuaikang/pingwatch-go/internal/config"
	"github.com/hanshuaikang/pingwatch-go/internal/log"
	"github.com/hanshuaikang/pingwatch-go/internal/probe"
	"github.com/hanshuaikang/pingwatch-go/internal/resolve"
)

const version = "0.1.0"

func newRootCmd() *cobra.Command {
	var (
		count       int
		intervalSec int
		forceIPv6   bool
		multiple    int
		view        string
		outputPath  string
		targetsFile string
	)

	rootCmd := &cobra.Command{
		Use:           "pingwatch [flags] <target>...",
		Short:         "pingwatch probes hosts and renders live latency statistics in the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := config.Options{
				Targets:    args,
				Count:      count,
				Interval:   time.Duration(intervalSec) * time.Second,
				ForceIPv6:  forceIPv6,
				Multiple:   multiple,
				View:       config.ViewMode(view),
				OutputPath: outputPath,
			}
			if view != "" && !opts.View.Valid() {
				return fmt.Errorf("unknown view mode: %s", view)
			}
			if targetsFile != "" {
				fromFile, err := config.LoadTargetsFile(targetsFile)
				if err != nil {
					return err
				}
				opts.Targets = append(opts.Targets, fromFile...)
			}
			opts.Normalize()
			if err := opts.Validate(); err != nil {
				return err
			}
			return runInteractive(cmd, opts)
		},
	}

	rootCmd.Flags().IntVarP(&count, "count", "c", 0, "probes per target, 0 means unbounded")
	rootCmd.Flags().IntVarP(&intervalSec, "interval", "i", 0, "seconds between probes per target")
	rootCmd.Flags().BoolVarP(&forceIPv6, "force-ipv6", "6", false, "resolve and probe IPv6 addresses")
	rootCmd.Flags().IntVarP(&multiple, "multiple", "m", 0, "probe up to N resolved addresses of a single target")
	rootCmd.Flags().StringVarP(&view, "view", "v", string(config.ViewGraph), "dashboard view: graph, table, point or sparkline")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "append one line per update to this file")
	rootCmd.Flags().StringVarP(&targetsFile, "targets-file", "f", "", "read additional targets from a file, one per line")

	rootCmd.AddCommand(newExporterCmd())
	return rootCmd
}

func newExporterCmd() *cobra.Command {
	var (
		intervalSec int
		port        int
	)

	exporterCmd := &cobra.Command{
		Use:          "exporter [flags] <target>...",
		Short:        "serve probe results as Prometheus metrics instead of the dashboard",
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := config.ExporterOptions{
				Targets:  args,
				Interval: time.Duration(intervalSec) * time.Second,
				Port:     port,
			}
			opts.Normalize()
			if err := opts.Validate(); err != nil {
				return err
			}
			return runExporter(cmd, opts)
		},
	}

	exporterCmd.Flags().IntVarP(&intervalSec, "interval", "i", 1, "seconds between probes per target")
	exporterCmd.Flags().IntVarP(&port, "port", "p", 9090, "metrics HTTP port")
	return exporterCmd
}

func runInteractive(cmd *cobra.Command, opts config.Options) error {
	logger := newLogger()
	prober, err := probe.NewDefaultProber()
	if err != nil {
		return fmt.Errorf("initialize prober: %w", err)
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.RunInteractive(ctx, opts, resolve.NewNetResolver(), prober, logger)
}

func runExporter(cmd *cobra.Command, opts config.ExporterOptions) error {
	logger := newLogger()
	prober, err := probe.NewDefaultProber()
	if err != nil {
		return fmt.Errorf("initialize prober: %w", err)
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.RunExporter(ctx, opts, resolve.NewNetResolver(), prober, logger)
}

func newLogger() *log.Logger {
	logger := log.NewLogger(log.ParseLevel(os.Getenv("PINGWATCH_LOG_LEVEL")))
	logger.SetOutput(os.Stderr)
	return logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
