package wire

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/adamwoolhether/wirehttp/conn"
)

var crlfcrlf = []byte("\r\n\r\n")

// framing is the rule deciding where the response body ends.
type framing uint8

const (
	framingNone framing = iota
	framingFixed
	framingChunked
	framingToClose
)

// Response is a parsed status line and header block. Header names and
// values are views into the receive buffer given to [ReadResponse];
// the body is read lazily from the same connection and buffer remainder.
type Response struct {
	StatusCode int

	reason  []byte
	headers Headers

	framing       framing
	contentLength int64

	c      *conn.Conn
	prefix []byte // body bytes that arrived with the header block
	body   *BodyReader
}

// ReadResponse consumes bytes from c until a complete status line and
// header block have been read into rxBuf, then classifies the body
// framing for the given request method. rxBuf must be large enough to
// hold the entire header block including its blank-line terminator;
// otherwise ErrBufferTooSmall is returned.
func ReadResponse(c *conn.Conn, method Method, rxBuf []byte) (*Response, error) {
	if len(rxBuf) == 0 {
		return nil, ErrBufferTooSmall
	}

	filled, headerEnd, err := fillHeaderBlock(c, rxBuf)
	if err != nil {
		return nil, err
	}

	r := &Response{
		c:      c,
		prefix: rxBuf[headerEnd:filled],
	}

	block := rxBuf[:headerEnd-len(crlfcrlf)]
	statusLine, rest := cutLine(block)
	if err := r.parseStatusLine(statusLine); err != nil {
		return nil, err
	}
	if err := r.parseHeaders(rest); err != nil {
		return nil, err
	}
	if err := r.decideFraming(method); err != nil {
		return nil, err
	}

	return r, nil
}

// fillHeaderBlock reads from c into rxBuf until the CRLFCRLF header
// terminator appears, returning the total bytes filled and the offset
// just past the terminator.
func fillHeaderBlock(c *conn.Conn, rxBuf []byte) (filled, headerEnd int, err error) {
	var scanned int
	for {
		if i := bytes.Index(rxBuf[scanned:filled], crlfcrlf); i >= 0 {
			return filled, scanned + i + len(crlfcrlf), nil
		}
		// The terminator may straddle the next read.
		if filled > len(crlfcrlf)-1 {
			scanned = filled - (len(crlfcrlf) - 1)
		}

		if filled == len(rxBuf) {
			return 0, 0, ErrBufferTooSmall
		}

		n, rerr := c.Read(rxBuf[filled:])
		filled += n
		if rerr != nil {
			// The final read may still have completed the block.
			if i := bytes.Index(rxBuf[scanned:filled], crlfcrlf); i >= 0 {
				return filled, scanned + i + len(crlfcrlf), nil
			}
			if rerr == io.EOF {
				return 0, 0, fmt.Errorf("reading response headers: %w", io.ErrUnexpectedEOF)
			}
			return 0, 0, rerr
		}
	}
}

// parseStatusLine expects "HTTP/1.x <3-digit code> <reason>".
func (r *Response) parseStatusLine(line []byte) error {
	proto, rest, ok := bytes.Cut(line, []byte(" "))
	if !ok || !bytes.HasPrefix(proto, []byte("HTTP/1.")) {
		return fmt.Errorf("%w: %q", ErrMalformedStatus, line)
	}

	if len(rest) < 3 {
		return fmt.Errorf("%w: %q", ErrMalformedStatus, line)
	}
	var code int
	for i := 0; i < 3; i++ {
		d := rest[i]
		if d < '0' || d > '9' {
			return fmt.Errorf("%w: %q", ErrMalformedStatus, line)
		}
		code = code*10 + int(d-'0')
	}
	if len(rest) > 3 && rest[3] != ' ' {
		return fmt.Errorf("%w: %q", ErrMalformedStatus, line)
	}

	r.StatusCode = code
	if len(rest) > 4 {
		r.reason = rest[4:]
	}

	return nil
}

// parseHeaders splits each line on the first colon and trims
// surrounding whitespace, keeping views into the receive buffer.
func (r *Response) parseHeaders(block []byte) error {
	for len(block) > 0 {
		var line []byte
		line, block = cutLine(block)
		if len(line) == 0 {
			continue
		}

		name, value, ok := bytes.Cut(line, []byte(":"))
		if !ok {
			return fmt.Errorf("%w: %q", ErrMalformedHeader, line)
		}

		r.headers = append(r.headers, Header{
			Name:  bytes.TrimSpace(name),
			Value: bytes.TrimSpace(value),
		})
	}

	return nil
}

// decideFraming applies the body framing rules: bodiless responses
// first, then chunked transfer coding, then Content-Length, and
// read-to-close as the fallback.
func (r *Response) decideFraming(method Method) error {
	if method == HEAD || r.StatusCode/100 == 1 || r.StatusCode == 204 || r.StatusCode == 304 {
		r.framing = framingNone
		r.contentLength = -1
		r.prefix = nil
		return nil
	}

	if te, ok := r.headers.get("Transfer-Encoding"); ok && containsToken(te, "chunked") {
		r.framing = framingChunked
		r.contentLength = -1
		return nil
	}

	if cl, ok := r.headers.get("Content-Length"); ok {
		n, err := strconv.ParseInt(string(cl), 10, 64)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: content-length %q", ErrMalformedHeader, cl)
		}
		r.framing = framingFixed
		r.contentLength = n
		if int64(len(r.prefix)) > n {
			r.prefix = r.prefix[:n]
		}
		return nil
	}

	r.framing = framingToClose
	r.contentLength = -1

	return nil
}

// Reason returns the status line's reason phrase.
func (r *Response) Reason() string {
	return string(r.reason)
}

// Headers returns the parsed header block in wire order.
func (r *Response) Headers() Headers {
	return r.headers
}

// Header looks up a header value by name, case-insensitively.
func (r *Response) Header(name string) (string, bool) {
	return r.headers.Get(name)
}

// ContentLength returns the declared body length, or -1 when the body
// is chunked, read-to-close, or absent.
func (r *Response) ContentLength() int64 {
	if r.framing == framingFixed {
		return r.contentLength
	}

	return -1
}

// Body returns the response body reader. The reader is single-pass and
// bound to the connection and receive buffer the response was parsed
// from; repeated calls return the same reader.
func (r *Response) Body() *BodyReader {
	if r.body == nil {
		r.body = newBodyReader(r.c, r.prefix, r.framing, r.contentLength)
	}

	return r.body
}

// cutLine splits block at the first CRLF.
func cutLine(block []byte) (line, rest []byte) {
	if i := bytes.Index(block, []byte("\r\n")); i >= 0 {
		return block[:i], block[i+2:]
	}

	return block, nil
}

// containsToken reports whether the comma-separated header value
// contains token, case-insensitively.
func containsToken(value []byte, token string) bool {
	for len(value) > 0 {
		var part []byte
		if i := bytes.IndexByte(value, ','); i >= 0 {
			part, value = value[:i], value[i+1:]
		} else {
			part, value = value, nil
		}
		if equalFold(bytes.TrimSpace(part), token) {
			return true
		}
	}

	return false
}
