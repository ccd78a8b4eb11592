package wire

import "io"

// Body is a request payload. Len reports the payload size in bytes,
// which selects Content-Length framing, or -1 to declare chunked
// transfer coding. The payload streams itself through Read; it is
// consumed at most once.
type Body interface {
	io.Reader
	Len() int
}

// Bytes wraps a byte slice as a fixed-length body.
func Bytes(p []byte) Body {
	return &bytesBody{p: p}
}

type bytesBody struct {
	p   []byte
	off int
}

func (b *bytesBody) Len() int {
	return len(b.p)
}

func (b *bytesBody) Read(p []byte) (int, error) {
	if b.off >= len(b.p) {
		return 0, io.EOF
	}

	n := copy(p, b.p[b.off:])
	b.off += n

	return n, nil
}

// Chunked wraps a reader of unknown length as a body sent with chunked
// transfer coding. Each fragment read from r becomes one chunk on the
// wire; io.EOF terminates the body with the zero-length chunk.
func Chunked(r io.Reader) Body {
	return chunkedBody{r: r}
}

type chunkedBody struct {
	r io.Reader
}

func (chunkedBody) Len() int {
	return -1
}

func (b chunkedBody) Read(p []byte) (int, error) {
	return b.r.Read(p)
}
