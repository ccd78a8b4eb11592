package wirehttp

import (
	"context"

	"github.com/adamwoolhether/wirehttp/conn"
	"github.com/adamwoolhether/wirehttp/wire"
)

// RequestHandle is a single-use sender for one request over one
// connection. Send consumes the pending request; a second Send fails
// with ErrAlreadySent rather than writing to the transport again.
type RequestHandle struct {
	client *Client
	conn   *conn.Conn
	req    *wire.Request
}

// Buffered converts the handle's connection into its write-buffered
// form using txBuf. Already-buffered and TLS connections pass through
// unchanged.
func (h *RequestHandle) Buffered(txBuf []byte) *RequestHandle {
	h.conn = h.conn.Buffered(txBuf)
	return h
}

// Header appends a request header.
func (h *RequestHandle) Header(name, value string) *RequestHandle {
	h.pending().WithHeader(name, value)
	return h
}

// Path replaces the request path taken from the URL.
func (h *RequestHandle) Path(path string) *RequestHandle {
	h.pending().WithPath(path)
	return h
}

// Host overrides the Host header taken from the URL.
func (h *RequestHandle) Host(host string) *RequestHandle {
	h.pending().WithHost(host)
	return h
}

// ContentType sets the Content-Type header.
func (h *RequestHandle) ContentType(ct wire.ContentType) *RequestHandle {
	h.pending().WithContentType(ct)
	return h
}

// BasicAuth sets Authorization: Basic credentials.
func (h *RequestHandle) BasicAuth(username, password string) *RequestHandle {
	h.pending().WithBasicAuth(username, password)
	return h
}

// Body attaches the request payload.
func (h *RequestHandle) Body(body wire.Body) *RequestHandle {
	h.pending().WithBody(body)
	return h
}

// Send writes the request and parses the response headers into rxBuf,
// which must be sized to hold at least the status line and all response
// headers. The returned response's body reader is bound to this
// handle's connection and to rxBuf.
func (h *RequestHandle) Send(ctx context.Context, rxBuf []byte) (*wire.Response, error) {
	if h.req == nil {
		return nil, ErrAlreadySent
	}
	req := h.req
	h.req = nil

	return h.client.send(ctx, h.conn, req, rxBuf)
}

// Close releases the underlying connection.
func (h *RequestHandle) Close() error {
	return h.conn.Close()
}

// pending returns the unconsumed request. Builder calls after Send
// have nothing to mutate and modify a throwaway request instead; the
// send itself reports ErrAlreadySent.
func (h *RequestHandle) pending() *wire.Request {
	if h.req == nil {
		return &wire.Request{}
	}

	return h.req
}

// Resource is a scoped endpoint: one connection and one base path
// reused across multiple sequential requests. Issuing a new request
// before the prior response body is fully drained leaves the
// connection positioned inside that body and corrupts later parsing;
// draining is the caller's contract.
type Resource struct {
	client   *Client
	conn     *conn.Conn
	host     string
	basePath string
}

// Buffered converts the resource's connection into its write-buffered
// form using txBuf. Already-buffered and TLS connections pass through
// unchanged.
func (r *Resource) Buffered(txBuf []byte) *Resource {
	r.conn = r.conn.Buffered(txBuf)
	return r
}

// Request creates a scoped request; path is relative to the resource's
// base path.
func (r *Resource) Request(method wire.Method, path string) *ResourceRequest {
	return &ResourceRequest{
		res: r,
		req: wire.NewRequest(method, path).WithHost(r.host),
	}
}

// Get creates a scoped GET request.
func (r *Resource) Get(path string) *ResourceRequest {
	return r.Request(wire.GET, path)
}

// Post creates a scoped POST request.
func (r *Resource) Post(path string) *ResourceRequest {
	return r.Request(wire.POST, path)
}

// Put creates a scoped PUT request.
func (r *Resource) Put(path string) *ResourceRequest {
	return r.Request(wire.PUT, path)
}

// Delete creates a scoped DELETE request.
func (r *Resource) Delete(path string) *ResourceRequest {
	return r.Request(wire.DELETE, path)
}

// Head creates a scoped HEAD request.
func (r *Resource) Head(path string) *ResourceRequest {
	return r.Request(wire.HEAD, path)
}

// Close releases the underlying connection.
func (r *Resource) Close() error {
	return r.conn.Close()
}

// ResourceRequest is a single-use builder for one request through a
// resource scope.
type ResourceRequest struct {
	res *Resource
	req *wire.Request
}

// Header appends a request header.
func (rr *ResourceRequest) Header(name, value string) *ResourceRequest {
	rr.pending().WithHeader(name, value)
	return rr
}

// ContentType sets the Content-Type header.
func (rr *ResourceRequest) ContentType(ct wire.ContentType) *ResourceRequest {
	rr.pending().WithContentType(ct)
	return rr
}

// BasicAuth sets Authorization: Basic credentials.
func (rr *ResourceRequest) BasicAuth(username, password string) *ResourceRequest {
	rr.pending().WithBasicAuth(username, password)
	return rr
}

// Body attaches the request payload.
func (rr *ResourceRequest) Body(body wire.Body) *ResourceRequest {
	rr.pending().WithBody(body)
	return rr
}

// Send writes the request with the resource's base path prepended and
// parses the response headers into rxBuf. A second Send on the same
// builder fails with ErrAlreadySent.
func (rr *ResourceRequest) Send(ctx context.Context, rxBuf []byte) (*wire.Response, error) {
	if rr.req == nil {
		return nil, ErrAlreadySent
	}
	req := rr.req
	rr.req = nil
	req.BasePath = rr.res.basePath

	return rr.res.client.send(ctx, rr.res.conn, req, rxBuf)
}

func (rr *ResourceRequest) pending() *wire.Request {
	if rr.req == nil {
		return &wire.Request{}
	}

	return rr.req
}
