// Package conn unifies plaintext, write-buffered, and TLS-secured byte
// streams behind a single connection type with read, write, and flush
// operations. The protocol layers above it never need to know which
// form is active.
package conn

import (
	"errors"
	"fmt"
	"io"
)

// Stream is the byte-level capability a Conn is built over. A net.Conn
// satisfies it, as does an established TLS session.
type Stream interface {
	io.Reader
	io.Writer
}

// Flusher is implemented by Streams that buffer writes internally,
// such as a TLS session coalescing records.
type Flusher interface {
	Flush() error
}

// Kind identifies which transport form a Conn is in.
type Kind uint8

const (
	// Plain forwards directly to the raw transport.
	Plain Kind = iota
	// PlainBuffered coalesces writes into a caller-supplied buffer
	// before they reach the raw transport.
	PlainBuffered
	// TLS forwards through an established TLS session.
	TLS
)

func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case PlainBuffered:
		return "plain-buffered"
	case TLS:
		return "tls"
	default:
		return "unknown"
	}
}

// Conn owns exactly one underlying transport. It is moved, not shared:
// a single caller drives one Conn at a time, and a request's bytes must
// be fully written before its response is read.
type Conn struct {
	kind   Kind
	stream Stream
	tx     *txBuffer // PlainBuffered only
}

// New wraps a raw transport in a plain Conn.
func New(s Stream) *Conn {
	return &Conn{kind: Plain, stream: s}
}

// NewTLS wraps an established TLS session. No additional write
// buffering is layered on top; the session buffers records itself.
func NewTLS(session Stream) *Conn {
	return &Conn{kind: TLS, stream: session}
}

// Kind reports the active transport form.
func (c *Conn) Kind() Kind {
	return c.kind
}

// Buffered converts a plain Conn into a buffered one that coalesces
// small writes into buf, flushing when buf fills or Flush is called.
// Buffered and TLS connections pass through unchanged since they
// already buffer internally. An empty buf leaves the Conn as-is.
func (c *Conn) Buffered(buf []byte) *Conn {
	if c.kind != Plain || len(buf) == 0 {
		return c
	}

	return &Conn{
		kind:   PlainBuffered,
		stream: c.stream,
		tx:     &txBuffer{dst: c.stream, buf: buf},
	}
}

// Read reads available bytes into p. Reads always pass through to the
// underlying transport untouched; io.EOF is returned unwrapped so body
// framing can interpret end-of-stream.
func (c *Conn) Read(p []byte) (int, error) {
	n, err := c.stream.Read(p)
	return n, classify("read", err)
}

// Write writes p, coalescing into the transmit buffer when the Conn is
// in its buffered form.
func (c *Conn) Write(p []byte) (int, error) {
	if c.kind == PlainBuffered {
		n, err := c.tx.write(p)
		return n, classify("write", err)
	}

	n, err := c.stream.Write(p)
	return n, classify("write", err)
}

// Flush pushes any buffered bytes to the transport. Plain connections
// have nothing to flush; TLS sessions flush when they support it.
func (c *Conn) Flush() error {
	if c.kind == PlainBuffered {
		return classify("flush", c.tx.flush())
	}

	if f, ok := c.stream.(Flusher); ok {
		return classify("flush", f.Flush())
	}

	return nil
}

// Close releases the underlying transport when it supports closing.
func (c *Conn) Close() error {
	if cl, ok := c.stream.(io.Closer); ok {
		return classify("close", cl.Close())
	}

	return nil
}

// OpError is the shared classification for transport-level failures,
// regardless of which Conn form produced them.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// classify normalizes an underlying error into an OpError. io.EOF
// passes through untouched: it is a framing signal, not a failure.
func classify(op string, err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		return err
	}

	return &OpError{Op: op, Err: err}
}
