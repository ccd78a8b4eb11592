package wire_test

import (
	"bytes"
	"io"
)

// stream is an in-memory transport: writes are captured for
// inspection, reads serve a scripted reply. chunk caps how many bytes
// each Read returns, exercising arbitrary read fragmentation.
type stream struct {
	wrote bytes.Buffer
	reply []byte
	pos   int
	chunk int
}

func (s *stream) Read(p []byte) (int, error) {
	if s.pos >= len(s.reply) {
		return 0, io.EOF
	}

	n := len(p)
	if s.chunk > 0 && n > s.chunk {
		n = s.chunk
	}
	if rest := len(s.reply) - s.pos; n > rest {
		n = rest
	}

	copy(p, s.reply[s.pos:s.pos+n])
	s.pos += n

	return n, nil
}

func (s *stream) Write(p []byte) (int, error) {
	return s.wrote.Write(p)
}

// fragments yields one scripted fragment per Read call, for driving
// chunked request bodies.
type fragments struct {
	parts [][]byte
}

func (f *fragments) Read(p []byte) (int, error) {
	if len(f.parts) == 0 {
		return 0, io.EOF
	}

	part := f.parts[0]
	f.parts = f.parts[1:]
	n := copy(p, part)

	return n, nil
}
