package wire

import (
	"fmt"
	"io"

	"github.com/adamwoolhether/wirehttp/conn"
)

// BodyReader streams a response body from its connection, applying the
// framing rule decided at parse time. It is single-pass and not
// restartable. Once the terminal state is reached, further reads
// return io.EOF without touching the transport or decoder. Any framing
// or transport error is sticky and leaves the connection at an
// undefined position.
//
// A fully drained fixed or chunked body leaves the connection
// positioned at the start of the next response; a read-to-close body
// precludes reusing the connection.
type BodyReader struct {
	src  source
	mode framing

	remaining int64 // fixed framing

	chunkState     chunkState
	chunkRemaining int64

	done bool
	err  error
}

type chunkState uint8

const (
	chunkSize chunkState = iota
	chunkData
)

func newBodyReader(c *conn.Conn, prefix []byte, mode framing, contentLength int64) *BodyReader {
	r := &BodyReader{
		src:  source{prefix: prefix, c: c},
		mode: mode,
	}
	if mode == framingNone {
		r.done = true
	}
	if mode == framingFixed {
		r.remaining = contentLength
	}

	return r
}

func (r *BodyReader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.done {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	switch r.mode {
	case framingFixed:
		return r.readFixed(p)
	case framingChunked:
		return r.readChunked(p)
	default:
		return r.readToClose(p)
	}
}

// readFixed returns up to min(len(p), remaining) bytes and decrements
// the remaining count; at zero it reports end-of-stream without
// touching the transport.
func (r *BodyReader) readFixed(p []byte) (int, error) {
	if r.remaining == 0 {
		r.done = true
		return 0, io.EOF
	}

	if int64(len(p)) > r.remaining {
		p = p[:r.remaining]
	}

	n, err := r.src.Read(p)
	r.remaining -= int64(n)
	if r.remaining == 0 {
		r.done = true
	}
	if err == io.EOF {
		if r.remaining > 0 {
			return n, r.fail(fmt.Errorf("reading response body: %w", io.ErrUnexpectedEOF))
		}
		err = nil
	}
	if err != nil {
		return n, r.fail(err)
	}

	return n, nil
}

// readToClose forwards reads to the transport; end-of-stream is the
// end of the body, not an error.
func (r *BodyReader) readToClose(p []byte) (int, error) {
	n, err := r.src.Read(p)
	if err == io.EOF {
		r.done = true
		return n, io.EOF
	}
	if err != nil {
		return n, r.fail(err)
	}

	return n, nil
}

func (r *BodyReader) readChunked(p []byte) (int, error) {
	for {
		switch r.chunkState {
		case chunkSize:
			size, err := r.readChunkSizeLine()
			if err != nil {
				return 0, r.fail(err)
			}
			if size == 0 {
				if err := r.discardTrailers(); err != nil {
					return 0, r.fail(err)
				}
				r.done = true
				return 0, io.EOF
			}
			r.chunkRemaining = size
			r.chunkState = chunkData

		case chunkData:
			if int64(len(p)) > r.chunkRemaining {
				p = p[:r.chunkRemaining]
			}
			n, err := r.src.Read(p)
			r.chunkRemaining -= int64(n)
			if err == io.EOF {
				return n, r.fail(fmt.Errorf("%w: connection closed mid-chunk", ErrChunkFraming))
			}
			if err != nil {
				return n, r.fail(err)
			}
			if r.chunkRemaining == 0 {
				if err := r.expectCRLF(); err != nil {
					return n, r.fail(err)
				}
				r.chunkState = chunkSize
			}
			return n, nil
		}
	}
}

// readChunkSizeLine parses a hex chunk-size line, discarding any chunk
// extension after a semicolon.
func (r *BodyReader) readChunkSizeLine() (int64, error) {
	var size int64
	var digits int
	var inExt bool
	for {
		b, err := r.src.ReadByte()
		if err != nil {
			return 0, err
		}

		switch {
		case b == '\r':
			b, err = r.src.ReadByte()
			if err != nil {
				return 0, err
			}
			if b != '\n' {
				return 0, fmt.Errorf("%w: chunk size line missing LF", ErrChunkFraming)
			}
			if digits == 0 {
				return 0, fmt.Errorf("%w: empty chunk size", ErrChunkFraming)
			}
			return size, nil
		case b == ';':
			inExt = true
		case inExt:
			// Chunk extensions are discarded.
		case '0' <= b && b <= '9':
			size = size<<4 | int64(b-'0')
			digits++
		case 'a' <= b && b <= 'f':
			size = size<<4 | int64(b-'a'+10)
			digits++
		case 'A' <= b && b <= 'F':
			size = size<<4 | int64(b-'A'+10)
			digits++
		default:
			return 0, fmt.Errorf("%w: invalid chunk size byte %q", ErrChunkFraming, b)
		}

		if digits > 15 {
			return 0, fmt.Errorf("%w: chunk size overflow", ErrChunkFraming)
		}
	}
}

// discardTrailers consumes trailer header lines after the zero chunk
// up to and including the blank terminating line.
func (r *BodyReader) discardTrailers() error {
	for {
		empty := true
		for {
			b, err := r.src.ReadByte()
			if err != nil {
				return err
			}
			if b == '\r' {
				b, err = r.src.ReadByte()
				if err != nil {
					return err
				}
				if b != '\n' {
					return fmt.Errorf("%w: trailer line missing LF", ErrChunkFraming)
				}
				break
			}
			empty = false
		}
		if empty {
			return nil
		}
	}
}

// expectCRLF consumes the mandatory CRLF terminating a chunk's data.
func (r *BodyReader) expectCRLF() error {
	cr, err := r.src.ReadByte()
	if err != nil {
		return err
	}
	lf, err := r.src.ReadByte()
	if err != nil {
		return err
	}
	if cr != '\r' || lf != '\n' {
		return fmt.Errorf("%w: chunk data not terminated by CRLF", ErrChunkFraming)
	}

	return nil
}

// fail records err as the reader's sticky error.
func (r *BodyReader) fail(err error) error {
	r.err = err
	return err
}

// source drains the body bytes that arrived in the receive buffer with
// the header block before touching the connection again.
type source struct {
	prefix []byte
	c      *conn.Conn
}

func (s *source) Read(p []byte) (int, error) {
	if len(s.prefix) > 0 {
		n := copy(p, s.prefix)
		s.prefix = s.prefix[n:]
		return n, nil
	}

	return s.c.Read(p)
}

// ReadByte reads a single framing byte. Data reads stay bulk; only
// chunk-size lines, trailers, and CRLF terminators come through here.
func (s *source) ReadByte() (byte, error) {
	if len(s.prefix) > 0 {
		b := s.prefix[0]
		s.prefix = s.prefix[1:]
		return b, nil
	}

	var one [1]byte
	for {
		n, err := s.c.Read(one[:])
		if n == 1 {
			return one[0], nil
		}
		if err == io.EOF {
			return 0, fmt.Errorf("%w: connection closed inside chunk framing", ErrChunkFraming)
		}
		if err != nil {
			return 0, err
		}
	}
}
