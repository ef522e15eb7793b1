package resolve

import (
	"context"
	"fmt"
	"net"
)

// Resolver turns a hostname into an ordered list of addresses. Resolution
// happens once at startup; targets are never re-resolved during a run.
type Resolver interface {
	Resolve(ctx context.Context, host string, forceIPv6 bool) ([]string, error)
}

// NetResolver resolves hosts through the standard library resolver.
type NetResolver struct {
	resolver *net.Resolver
}

// NewNetResolver returns a resolver backed by net.DefaultResolver.
func NewNetResolver() *NetResolver {
	return &NetResolver{resolver: net.DefaultResolver}
}

// Resolve returns the addresses for host matching the requested family.
func (r *NetResolver) Resolve(ctx context.Context, host string, forceIPv6 bool) ([]string, error) {
	ips, err := r.resolver.LookupIP(ctx, "ip", host)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve host %s: %w", host, err)
	}
	filtered := FilterFamily(ips, forceIPv6)
	if len(filtered) == 0 {
		return nil, fmt.Errorf("could not resolve host: %s", host)
	}
	return filtered, nil
}

// First resolves host and returns its first matching address.
func First(ctx context.Context, r Resolver, host string, forceIPv6 bool) (string, error) {
	addrs, err := r.Resolve(ctx, host, forceIPv6)
	if err != nil {
		return "", err
	}
	return addrs[0], nil
}

// Multiple resolves host and returns up to max matching addresses.
func Multiple(ctx context.Context, r Resolver, host string, forceIPv6 bool, max int) ([]string, error) {
	addrs, err := r.Resolve(ctx, host, forceIPv6)
	if err != nil {
		return nil, err
	}
	if max > 0 && len(addrs) > max {
		addrs = addrs[:max]
	}
	return addrs, nil
}

// FilterFamily keeps IPv6 addresses when forceIPv6 is set, IPv4 otherwise,
// preserving the resolver's order.
func FilterFamily(ips []net.IP, forceIPv6 bool) []string {
	result := make([]string, 0, len(ips))
	for _, ip := range ips {
		isV4 := ip.To4() != nil
		if forceIPv6 == isV4 {
			continue
		}
		result = append(result, ip.String())
	}
	return result
}
