package probe

import (
	"context"
	"time"
)

// Target is one probed endpoint: the name the user asked for plus the single
// address it resolved to. The pair is fixed for the lifetime of a run.
type Target struct {
	Name string
	Addr string
}

// Key uniquely identifies a target within a run.
func (t Target) Key() string {
	return t.Name + "_" + t.Addr
}

// Outcome is the result of one completed probe cycle. Timeout outcomes carry
// no RTT; probe-level transport errors never become outcomes at all.
type Outcome struct {
	Target  Target
	Rtt     float64 // round trip in milliseconds
	Timeout bool
}

// Result captures a single probe attempt as seen by a Prober.
type Result struct {
	RTT     time.Duration
	Success bool
	Timeout bool
	Error   error
}

// Prober sends a single probe and returns the result.
type Prober interface {
	Ping(ctx context.Context, addr string, timeout time.Duration) Result
}
