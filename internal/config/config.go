package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

// ViewMode selects the dashboard layout.
type ViewMode string

const (
	ViewGraph     ViewMode = "graph"
	ViewTable     ViewMode = "table"
	ViewPoint     ViewMode = "point"
	ViewSparkline ViewMode = "sparkline"
)

const (
	// DefaultInterval is applied when the probe interval is left at 0.
	DefaultInterval = 500 * time.Millisecond

	// Window capacities are a startup-time presentation choice: plotted
	// views keep a long history, summary views only the recent tail.
	plotWindowSize    = 200
	summaryWindowSize = 10
)

// Options holds the fully parsed run parameters for the interactive mode.
type Options struct {
	Targets    []string
	Count      int
	Interval   time.Duration
	ForceIPv6  bool
	Multiple   int
	View       ViewMode
	OutputPath string
}

// ExporterOptions holds the run parameters for the exporter mode.
type ExporterOptions struct {
	Targets  []string
	Interval time.Duration
	Port     int
}

// Valid reports whether the mode is one of the known views.
func (v ViewMode) Valid() bool {
	switch v {
	case ViewGraph, ViewTable, ViewPoint, ViewSparkline:
		return true
	}
	return false
}

// WindowSize returns the per-target sample window capacity for the mode.
func (v ViewMode) WindowSize() int {
	if v == ViewPoint || v == ViewSparkline {
		return plotWindowSize
	}
	return summaryWindowSize
}

// Normalize applies defaults and deduplicates targets in place.
func (o *Options) Normalize() {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Count < 0 {
		o.Count = 0
	}
	if !o.View.Valid() {
		o.View = ViewGraph
	}
	o.Targets = DedupeTargets(o.Targets)
}

// Validate reports option combinations that cannot start a run.
func (o *Options) Validate() error {
	if len(o.Targets) == 0 {
		return fmt.Errorf("at least one target is required")
	}
	if o.Multiple > 0 && len(o.Targets) > 1 {
		return fmt.Errorf("--multiple works with exactly one target")
	}
	if o.OutputPath != "" {
		if _, err := os.Stat(o.OutputPath); err == nil {
			return fmt.Errorf("output file already exists: %s", o.OutputPath)
		}
	}
	return nil
}

// Normalize applies defaults and deduplicates targets in place.
func (o *ExporterOptions) Normalize() {
	if o.Interval <= 0 {
		o.Interval = time.Second
	}
	if o.Port <= 0 {
		o.Port = 9090
	}
	o.Targets = DedupeTargets(o.Targets)
}

// Validate reports option combinations that cannot start the exporter.
func (o *ExporterOptions) Validate() error {
	if len(o.Targets) == 0 {
		return fmt.Errorf("at least one target is required")
	}
	if o.Port > 65535 {
		return fmt.Errorf("invalid port: %d", o.Port)
	}
	return nil
}

// DedupeTargets removes duplicates while preserving first-seen order.
func DedupeTargets(targets []string) []string {
	seen := make(map[string]struct{}, len(targets))
	result := make([]string, 0, len(targets))
	for _, target := range targets {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		result = append(result, target)
	}
	return result
}

// LoadTargetsFile reads one target per line, skipping blanks and '#' comments.
func LoadTargetsFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open targets file: %w", err)
	}
	defer file.Close()

	var targets []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// Allow trailing comments after the target token.
		if idx := strings.Index(line, "#"); idx > 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if line != "" {
			targets = append(targets, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read targets file: %w", err)
	}
	return targets, nil
}
