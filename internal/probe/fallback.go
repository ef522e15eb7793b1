package probe

import (
	"context"
	"errors"
	"os"
	"strings"
	"syscall"
	"time"
)

// FallbackProber delegates to primary, then secondary when permission errors occur.
type FallbackProber struct {
	primary   Prober
	secondary Prober
}

// NewFallbackProber wraps primary with a secondary fallback.
func NewFallbackProber(primary, secondary Prober) *FallbackProber {
	return &FallbackProber{primary: primary, secondary: secondary}
}

// Ping uses the primary prober and falls back on permission-related errors.
func (p *FallbackProber) Ping(ctx context.Context, addr string, timeout time.Duration) Result {
	result := p.primary.Ping(ctx, addr, timeout)
	if result.Success || result.Timeout || !isPermissionError(result.Error) {
		return result
	}
	return p.secondary.Ping(ctx, addr, timeout)
}

// NewDefaultProber builds the standard chain: raw-socket ICMP with an
// external ping fallback for unprivileged environments.
func NewDefaultProber() (Prober, error) {
	icmpProber, err := NewICMPProber()
	if err != nil {
		return nil, err
	}
	return NewFallbackProber(icmpProber, NewExternalProber()), nil
}

func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EPERM) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "operation not permitted") || strings.Contains(msg, "permission denied")
}
