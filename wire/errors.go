package wire

import "errors"

var (
	// ErrBufferTooSmall is returned when the status line and header
	// block do not fit in the caller's receive buffer.
	ErrBufferTooSmall = errors.New("receive buffer too small for response headers")
	// ErrMalformedStatus is returned when the status line cannot be
	// parsed as HTTP/1.x with a three-digit status code.
	ErrMalformedStatus = errors.New("malformed status line")
	// ErrMalformedHeader is returned for a header line with no colon
	// or an unparsable Content-Length value.
	ErrMalformedHeader = errors.New("malformed header")
	// ErrChunkFraming is returned for an invalid chunk-size line or a
	// missing chunk-terminating CRLF. The connection is left at an
	// undefined position and must be discarded.
	ErrChunkFraming = errors.New("invalid chunked framing")
	// ErrBodyLength is returned when a fixed-length request body
	// yields fewer bytes than it declared.
	ErrBodyLength = errors.New("request body shorter than declared length")
)
