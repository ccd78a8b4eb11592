// Package wirehttp is an HTTP/1.1 client protocol engine for
// constrained targets. It serializes requests and parses responses
// over an abstract byte-stream transport using only caller-supplied
// buffers, with plaintext, write-buffered, and TLS connections unified
// behind one connection type.
//
// # Building a Client
//
// Use [Build] with functional options:
//
//	c, err := wirehttp.Build(
//		wirehttp.WithLogger(logger),
//		wirehttp.WithThrottle(10, 2),
//	)
//
// # One-off Requests
//
// [Client.Request] connects and returns a single-use handle. The
// receive buffer must be sized to hold at least the status line and
// all response headers; the body streams through the same buffer's
// remainder:
//
//	h, err := c.Request(ctx, wire.GET, "http://example.com/")
//	resp, err := h.Send(ctx, rxBuf)
//	n, err := resp.Body().Read(buf)
//
// # Scoped Resources
//
// [Client.Resource] keeps one connection and a base path for multiple
// sequential requests:
//
//	res, err := c.Resource(ctx, "http://example.com/api")
//	resp, err := res.Get("/users").Send(ctx, rxBuf)
//
// Each response body must be drained before the next request on the
// same resource; a partially read body leaves the connection inside
// the previous response's framing.
//
// # TLS
//
// https URLs require opting in via [WithTLS]. The configuration seeds
// deterministic handshake randomness and lends scratch buffers to the
// session; pre-shared-key verification needs a custom [Handshaker].
package wirehttp
