package probe

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

type stubProber struct {
	result Result
	calls  int
}

func (p *stubProber) Ping(_ context.Context, _ string, _ time.Duration) Result {
	p.calls++
	return p.result
}

func TestFallbackUsedOnPermissionError(t *testing.T) {
	primary := &stubProber{result: Result{Error: os.ErrPermission}}
	secondary := &stubProber{result: Result{Success: true, RTT: 4 * time.Millisecond}}
	prober := NewFallbackProber(primary, secondary)

	result := prober.Ping(context.Background(), "192.0.2.1", time.Second)
	if !result.Success {
		t.Fatalf("expected fallback success, got %+v", result)
	}
	if secondary.calls != 1 {
		t.Fatalf("expected secondary to be used once, got %d", secondary.calls)
	}
}

func TestFallbackNotUsedOnTimeout(t *testing.T) {
	primary := &stubProber{result: Result{Timeout: true, Error: errors.New("probe timeout")}}
	secondary := &stubProber{result: Result{Success: true}}
	prober := NewFallbackProber(primary, secondary)

	result := prober.Ping(context.Background(), "192.0.2.1", time.Second)
	if !result.Timeout {
		t.Fatalf("expected timeout to pass through, got %+v", result)
	}
	if secondary.calls != 0 {
		t.Fatalf("timeout must not trigger the fallback")
	}
}

func TestFallbackNotUsedOnSuccess(t *testing.T) {
	primary := &stubProber{result: Result{Success: true, RTT: time.Millisecond}}
	secondary := &stubProber{result: Result{Success: true}}
	prober := NewFallbackProber(primary, secondary)

	prober.Ping(context.Background(), "192.0.2.1", time.Second)
	if primary.calls != 1 || secondary.calls != 0 {
		t.Fatalf("expected primary only, got primary=%d secondary=%d", primary.calls, secondary.calls)
	}
}

func TestTargetKey(t *testing.T) {
	target := Target{Name: "example.com", Addr: "192.0.2.1"}
	if target.Key() != "example.com_192.0.2.1" {
		t.Fatalf("unexpected key: %s", target.Key())
	}
}
