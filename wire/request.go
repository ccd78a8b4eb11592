package wire

import (
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/adamwoolhether/wirehttp/conn"
)

// Request is a buildable HTTP/1.1 request. The With* setters chain;
// Write renders the finished request onto a connection exactly once.
//
// BasePath, when set by a resource scope, is prepended to Path with
// exactly one separating slash.
type Request struct {
	Method   Method
	Path     string
	BasePath string
	Host     string

	headers     [][2]string
	contentType *ContentType
	authUser    string
	authPass    string
	hasAuth     bool
	body        Body
}

// NewRequest creates a request for the given method and path.
func NewRequest(method Method, path string) *Request {
	return &Request{Method: method, Path: path}
}

// WithHeader appends a header emitted verbatim in declaration order.
func (r *Request) WithHeader(name, value string) *Request {
	r.headers = append(r.headers, [2]string{name, value})
	return r
}

// WithHost sets the Host header, emitted independently of user headers.
func (r *Request) WithHost(host string) *Request {
	r.Host = host
	return r
}

// WithPath replaces the request path.
func (r *Request) WithPath(path string) *Request {
	r.Path = path
	return r
}

// WithContentType sets the Content-Type header.
func (r *Request) WithContentType(ct ContentType) *Request {
	r.contentType = &ct
	return r
}

// WithBasicAuth sets Authorization: Basic credentials.
func (r *Request) WithBasicAuth(username, password string) *Request {
	r.authUser = username
	r.authPass = password
	r.hasAuth = true
	return r
}

// WithBody attaches the request payload. The body's Len decides the
// framing: a non-negative length is sent with Content-Length, -1 with
// chunked transfer coding.
func (r *Request) WithBody(body Body) *Request {
	r.body = body
	return r
}

// Write renders the request onto c: request line, headers, blank line,
// then the framed body, followed by a flush. Any transport failure is
// propagated and leaves the connection at an undefined position.
func (r *Request) Write(c *conn.Conn) error {
	if err := r.writeRequestLine(c); err != nil {
		return err
	}
	if err := r.writeHeaders(c); err != nil {
		return err
	}
	if err := r.writeBody(c); err != nil {
		return err
	}

	return c.Flush()
}

func (r *Request) writeRequestLine(c *conn.Conn) error {
	if err := writeString(c, r.Method.String()); err != nil {
		return err
	}
	if err := writeString(c, " "); err != nil {
		return err
	}
	if err := r.writePath(c); err != nil {
		return err
	}

	return writeString(c, " HTTP/1.1\r\n")
}

// writePath emits BasePath joined to Path with a single slash,
// collapsing a duplicate separator when both supply one.
func (r *Request) writePath(c *conn.Conn) error {
	base := strings.TrimSuffix(r.BasePath, "/")
	path := r.Path

	if base == "" && path == "" {
		return writeString(c, "/")
	}

	if base != "" {
		if err := writeString(c, base); err != nil {
			return err
		}
	}
	if !strings.HasPrefix(path, "/") {
		if err := writeString(c, "/"); err != nil {
			return err
		}
	}

	return writeString(c, path)
}

func (r *Request) writeHeaders(c *conn.Conn) error {
	if r.Host != "" {
		if err := writeHeader(c, "Host", r.Host); err != nil {
			return err
		}
	}

	for _, h := range r.headers {
		if err := writeHeader(c, h[0], h[1]); err != nil {
			return err
		}
	}

	if r.contentType != nil {
		if err := writeHeader(c, "Content-Type", r.contentType.String()); err != nil {
			return err
		}
	}

	if r.hasAuth {
		creds := base64.StdEncoding.EncodeToString([]byte(r.authUser + ":" + r.authPass))
		if err := writeHeader(c, "Authorization", "Basic "+creds); err != nil {
			return err
		}
	}

	if r.body != nil {
		if n := r.body.Len(); n >= 0 {
			if err := writeHeader(c, "Content-Length", strconv.Itoa(n)); err != nil {
				return err
			}
		} else {
			if err := writeHeader(c, "Transfer-Encoding", "chunked"); err != nil {
				return err
			}
		}
	}

	return writeString(c, "\r\n")
}

func (r *Request) writeBody(c *conn.Conn) error {
	if r.body == nil {
		return nil
	}

	if n := r.body.Len(); n >= 0 {
		return r.writeFixedBody(c, n)
	}

	return r.writeChunkedBody(c)
}

// writeFixedBody streams exactly n payload bytes. A body that runs dry
// early would desynchronize the connection's framing, so it is an error.
func (r *Request) writeFixedBody(c *conn.Conn, n int) error {
	var buf [512]byte
	var sent int
	for sent < n {
		want := n - sent
		if want > len(buf) {
			want = len(buf)
		}

		read, err := r.body.Read(buf[:want])
		if read > 0 {
			if _, werr := c.Write(buf[:read]); werr != nil {
				return werr
			}
			sent += read
		}
		if err == io.EOF {
			if sent < n {
				return fmt.Errorf("%w: declared %d, streamed %d", ErrBodyLength, n, sent)
			}
			break
		}
		if err != nil {
			return fmt.Errorf("reading request body: %w", err)
		}
	}

	return nil
}

// writeChunkedBody wraps each fragment read from the body in
// <hex-size>CRLF<data>CRLF framing and terminates with the zero chunk.
func (r *Request) writeChunkedBody(c *conn.Conn) error {
	var buf [512]byte
	var size [18]byte // max hex digits of a chunk size plus CRLF
	for {
		n, err := r.body.Read(buf[:])
		if n > 0 {
			line := strconv.AppendUint(size[:0], uint64(n), 16)
			line = append(line, '\r', '\n')
			if _, werr := c.Write(line); werr != nil {
				return werr
			}
			if _, werr := c.Write(buf[:n]); werr != nil {
				return werr
			}
			if err := writeString(c, "\r\n"); err != nil {
				return err
			}
		}
		if err == io.EOF {
			return writeString(c, "0\r\n\r\n")
		}
		if err != nil {
			return fmt.Errorf("reading request body: %w", err)
		}
	}
}

func writeString(c *conn.Conn, s string) error {
	_, err := io.WriteString(c, s)
	return err
}

func writeHeader(c *conn.Conn, name, value string) error {
	if err := writeString(c, name); err != nil {
		return err
	}
	if err := writeString(c, ": "); err != nil {
		return err
	}
	if err := writeString(c, value); err != nil {
		return err
	}

	return writeString(c, "\r\n")
}
