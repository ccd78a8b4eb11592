package wirehttp

import (
	"context"
	"fmt"
	"log/slog"
	"net/netip"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/wirehttp/conn"
	"github.com/adamwoolhether/wirehttp/throttle"
	"github.com/adamwoolhether/wirehttp/wire"
)

// Client resolves, connects, and optionally secures connections, then
// hands out request and resource handles over them. It holds no
// connection state of its own; every handle owns its connection.
type Client struct {
	resolver   Resolver
	dialer     Dialer
	tls        *TLSConfig
	handshaker Handshaker
	gate       *throttle.Gate
	logger     *slog.Logger
	tracer     trace.Tracer
}

// Build creates a Client with the given options. Name resolution and
// dialing default to the net package; a no-op tracer and the default
// slog logger are used unless overridden.
func Build(optFns ...Option) (*Client, error) {
	client := &Client{
		resolver:   defaultResolver(),
		dialer:     defaultDialer(),
		handshaker: stdHandshaker{},
		logger:     slog.Default(),
		tracer:     noop.NewTracerProvider().Tracer("wirehttp"),
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	if opts.resolver != nil {
		client.resolver = opts.resolver
	}
	if opts.dialer != nil {
		client.dialer = opts.dialer
	}
	if opts.handshaker != nil {
		client.handshaker = opts.handshaker
	}
	if opts.logger != nil {
		client.logger = opts.logger
	}
	if opts.tracer != nil {
		client.tracer = opts.tracer
	}

	if opts.tls != nil {
		if err := Validate(opts.tls); err != nil {
			return nil, fmt.Errorf("validating tls config: %w", err)
		}
		client.tls = opts.tls
	}

	if opts.throttle != nil {
		if err := Validate(opts.throttle); err != nil {
			return nil, fmt.Errorf("validating throttle config: %w", err)
		}
		gate, err := throttle.New(opts.throttle.RPS, opts.throttle.Burst, func() *slog.Logger { return client.logger })
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		client.gate = gate
	}

	return client, nil
}

// Request parses rawURL, connects (negotiating TLS when the scheme
// requires it), and returns a single-use request handle pre-populated
// with the method, path, and host.
func (c *Client) Request(ctx context.Context, method wire.Method, rawURL string) (*RequestHandle, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}

	cn, err := c.connect(ctx, u)
	if err != nil {
		return nil, err
	}

	return &RequestHandle{
		client: c,
		conn:   cn,
		req:    wire.NewRequest(method, u.RequestURI()).WithHost(u.Host),
	}, nil
}

// Resource performs the same connection setup as Request but retains
// the URL's path as a base path prepended to every request issued
// through the returned scope. Requests on a resource execute strictly
// sequentially over its one connection.
func (c *Client) Resource(ctx context.Context, rawURL string) (*Resource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}

	cn, err := c.connect(ctx, u)
	if err != nil {
		return nil, err
	}

	return &Resource{
		client:   c,
		conn:     cn,
		host:     u.Host,
		basePath: u.Path,
	}, nil
}

// connect resolves the host, dials the transport, and upgrades to TLS
// for https URLs. Plaintext connections borrow the TLS write buffer
// for transmit coalescing when a TLS config is present, mirroring the
// buffering a TLS session performs internally.
func (c *Client) connect(ctx context.Context, u *url.URL) (*conn.Conn, error) {
	https := u.Scheme == "https"
	if u.Scheme != "http" && !https {
		return nil, fmt.Errorf("%q: %w", u.Scheme, ErrSchemeNotSupported)
	}
	if https && c.tls == nil {
		return nil, fmt.Errorf("%q: %w", u.String(), ErrTLSNotConfigured)
	}

	host := u.Hostname()
	port, err := urlPort(u)
	if err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "wirehttp.connect", trace.WithAttributes(
		attribute.String("scheme", u.Scheme),
		attribute.String("host", host),
		attribute.Int("port", port),
	))
	defer span.End()

	addr, err := c.resolver.Resolve(ctx, host)
	if err != nil {
		return nil, &ResolveError{Host: host, Err: err}
	}

	addrPort := netip.AddrPortFrom(addr, uint16(port))
	stream, err := c.dialer.Dial(ctx, addrPort)
	if err != nil {
		return nil, &ConnectError{Addr: addrPort.String(), Err: err}
	}

	id := uuid.New().String()
	span.SetAttributes(attribute.String("conn_id", id))

	if https {
		session, err := c.handshaker.Handshake(ctx, stream, host, c.tls, c.tls.nextRNG())
		if err != nil {
			closeStream(stream)
			return nil, &TLSError{Host: host, Err: err}
		}
		c.logger.Debug("connection established", "conn_id", id, "host", host, "port", port, "tls", true)

		return conn.NewTLS(session), nil
	}

	cn := conn.New(stream)
	if c.tls != nil {
		cn = cn.Buffered(c.tls.WriteBuf)
	}
	c.logger.Debug("connection established", "conn_id", id, "host", host, "port", port, "tls", false)

	return cn, nil
}

// send drives one request/response cycle over cn: throttle gate,
// serialize, parse. The request's bytes are fully written before the
// response is read; the engine never pipelines.
func (c *Client) send(ctx context.Context, cn *conn.Conn, req *wire.Request, rxBuf []byte) (*wire.Response, error) {
	if err := c.gate.Wait(ctx); err != nil {
		return nil, err
	}

	_, span := c.tracer.Start(ctx, "wirehttp.send", trace.WithAttributes(
		attribute.String("method", req.Method.String()),
	))
	defer span.End()

	if err := req.Write(cn); err != nil {
		return nil, fmt.Errorf("writing request: %w", err)
	}

	resp, err := wire.ReadResponse(cn, req.Method, rxBuf)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	span.SetAttributes(attribute.Int("status_code", resp.StatusCode))

	return resp, nil
}

func urlPort(u *url.URL) (int, error) {
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return 0, fmt.Errorf("invalid port %q in url", p)
		}
		return port, nil
	}

	if u.Scheme == "https" {
		return 443, nil
	}

	return 80, nil
}

func closeStream(s conn.Stream) {
	_ = conn.New(s).Close()
}
