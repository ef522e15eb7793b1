package probe

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func TestParseRTT(t *testing.T) {
	cases := []struct {
		name   string
		output string
		want   time.Duration
	}{
		{
			name:   "linux format",
			output: "64 bytes from 192.0.2.1: icmp_seq=1 ttl=57 time=12.3 ms",
			want:   time.Duration(12.3 * float64(time.Millisecond)),
		},
		{
			name:   "integer rtt",
			output: "64 bytes from 192.0.2.1: icmp_seq=1 ttl=57 time=3 ms",
			want:   3 * time.Millisecond,
		},
		{
			name:   "no match",
			output: "Request timeout for icmp_seq 0",
			want:   0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseRTT([]byte(tc.output)); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestPingArgsIncludeSingleCount(t *testing.T) {
	args := pingArgs("192.0.2.1", time.Second)
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-c 1") {
		t.Fatalf("expected single-probe args, got %v", args)
	}
	if args[len(args)-1] != "192.0.2.1" {
		t.Fatalf("expected address last, got %v", args)
	}
}

func TestIsPermissionError(t *testing.T) {
	if isPermissionError(nil) {
		t.Fatalf("nil must not be a permission error")
	}
	if !isPermissionError(os.ErrPermission) {
		t.Fatalf("os.ErrPermission must match")
	}
	if !isPermissionError(errors.New("listen ip4:icmp : socket: operation not permitted")) {
		t.Fatalf("raw socket EPERM message must match")
	}
	if isPermissionError(errors.New("no route to host")) {
		t.Fatalf("unrelated error must not match")
	}
}
