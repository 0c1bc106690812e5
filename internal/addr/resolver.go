// Package addr maps client source addresses to the hostname the gateway
// should advertise back to them.
package addr

import (
	"context"
	"fmt"
	"net"
	"net/netip"
)

// Table holds the two advertised endpoints, external and local. Hostnames are
// resolved once at startup; the table is immutable afterwards and safe for
// concurrent reads without locking.
type Table struct {
	externalHostname string
	localHostname    string
	externalAddr     netip.Addr
	localAddr        netip.Addr
}

// NewTable resolves both configured hostnames. A hostname that cannot be
// resolved prevents the service from starting.
func NewTable(ctx context.Context, externalHostname, localHostname string) (*Table, error) {
	external, err := resolveHost(ctx, externalHostname)
	if err != nil {
		return nil, fmt.Errorf("could not resolve external address %q: %w", externalHostname, err)
	}

	local, err := resolveHost(ctx, localHostname)
	if err != nil {
		return nil, fmt.Errorf("could not resolve local address %q: %w", localHostname, err)
	}

	return &Table{
		externalHostname: externalHostname,
		localHostname:    localHostname,
		externalAddr:     external,
		localAddr:        local,
	}, nil
}

func resolveHost(ctx context.Context, host string) (netip.Addr, error) {
	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip4", host)
	if err != nil {
		return netip.Addr{}, err
	}
	if len(addrs) == 0 {
		return netip.Addr{}, fmt.Errorf("no addresses for %q", host)
	}
	return addrs[0].Unmap(), nil
}

// HostnameForClient selects which hostname to report to a client connecting
// from the given address: a client on one of the advertised addresses gets
// that entry's hostname, loopback clients get the local one, everyone else
// gets the external one.
func (t *Table) HostnameForClient(client netip.Addr) string {
	client = client.Unmap()

	switch client {
	case t.externalAddr:
		return t.externalHostname
	case t.localAddr:
		return t.localHostname
	}

	if client.IsLoopback() {
		return t.localHostname
	}
	return t.externalHostname
}
