package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hanshuaikang/pingwatch-go/internal/config"
)

func TestRootCmdRejectsUnknownView(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--view", "spiral", "example.com"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected an error for an unknown view mode")
	}
}

func TestRootCmdRequiresTargets(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected an error when no targets are given")
	}
}

func TestRootCmdRejectsMultipleWithManyTargets(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--multiple", "3", "a.example", "b.example"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected an error for --multiple with more than one target")
	}
}

func TestRootCmdMergesTargetsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.txt")
	content := "# primary hosts\nb.example\nc.example # backup\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write targets file: %v", err)
	}

	// Exercise the merge the same way the command does: CLI targets first,
	// file targets appended, then deduplicated.
	var got config.Options
	targets, err := config.LoadTargetsFile(path)
	if err != nil {
		t.Fatalf("load targets file: %v", err)
	}
	got.Targets = config.DedupeTargets(append([]string{"a.example", "b.example"}, targets...))
	want := []string{"a.example", "b.example", "c.example"}
	if len(got.Targets) != len(want) {
		t.Fatalf("got %v, want %v", got.Targets, want)
	}
	for i := range want {
		if got.Targets[i] != want[i] {
			t.Fatalf("got %v, want %v", got.Targets, want)
		}
	}
}

func TestExporterCmdRequiresTargets(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"exporter"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected an error when the exporter has no targets")
	}
}

func TestExporterDefaults(t *testing.T) {
	opts := config.ExporterOptions{Targets: []string{"a.example"}}
	opts.Normalize()
	if opts.Interval != time.Second {
		t.Errorf("default interval = %v, want 1s", opts.Interval)
	}
	if opts.Port != 9090 {
		t.Errorf("default port = %d, want 9090", opts.Port)
	}
}
