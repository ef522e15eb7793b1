// Package sink writes probe updates to an append-only output file, one line
// per snapshot: "<target> <address> <latency>".
package sink

import (
	"fmt"
	"io"
	"os"

	"github.com/hanshuaikang/pingwatch-go/internal/errlog"
	"github.com/hanshuaikang/pingwatch-go/internal/pipeline"
)

// FileSink appends one formatted line per snapshot update. Write failures
// are reported to the error log; they never stop the pipeline.
type FileSink struct {
	w    io.WriteCloser
	errs *errlog.Log
}

// Open creates the output file. The caller has already verified the path
// does not exist; O_EXCL guards against races with other processes.
func Open(path string, errs *errlog.Log) (*FileSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return &FileSink{w: file, errs: errs}, nil
}

// NewWriter wraps an already-open writable resource.
func NewWriter(w io.WriteCloser, errs *errlog.Log) *FileSink {
	return &FileSink{w: w, errs: errs}
}

// Write appends the line for one snapshot.
func (s *FileSink) Write(snapshot pipeline.Snapshot) {
	if _, err := fmt.Fprintf(s.w, "%s %s %s\n",
		snapshot.Target.Name, snapshot.Target.Addr, FormatLatency(snapshot.Last)); err != nil {
		if s.errs != nil {
			s.errs.Append("failed to write to output file: %v", err)
		}
	}
}

// Close releases the underlying file.
func (s *FileSink) Close() error {
	return s.w.Close()
}

// FormatLatency renders a sample value for the line protocol.
func FormatLatency(sample float64) string {
	if sample == pipeline.TimeoutSentinel {
		return "timeout"
	}
	return fmt.Sprintf("%.2fms", sample)
}
