package wirehttp

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"time"

	"github.com/adamwoolhether/wirehttp/conn"
)

// Resolver resolves a hostname to a single address. The default uses
// net.DefaultResolver; embedded targets inject their own.
type Resolver interface {
	Resolve(ctx context.Context, host string) (netip.Addr, error)
}

// Dialer establishes the raw byte-stream transport to addr.
type Dialer interface {
	Dial(ctx context.Context, addr netip.AddrPort) (conn.Stream, error)
}

type netResolver struct {
	r *net.Resolver
}

func (nr netResolver) Resolve(ctx context.Context, host string) (netip.Addr, error) {
	addrs, err := nr.r.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return netip.Addr{}, err
	}
	if len(addrs) == 0 {
		return netip.Addr{}, errors.New("no addresses found")
	}

	return addrs[0].Unmap(), nil
}

type netDialer struct {
	d *net.Dialer
}

func (nd netDialer) Dial(ctx context.Context, addr netip.AddrPort) (conn.Stream, error) {
	c, err := nd.d.DialContext(ctx, "tcp", addr.String())
	if err != nil {
		return nil, err
	}

	return c, nil
}

func defaultDialer() Dialer {
	return netDialer{d: &net.Dialer{Timeout: 5 * time.Second}}
}

func defaultResolver() Resolver {
	return netResolver{r: net.DefaultResolver}
}
