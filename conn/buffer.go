package conn

// txBuffer coalesces writes into a caller-supplied buffer so that
// request serialization, which issues many small writes, does not cost
// one transport operation per header. The buffer is borrowed for the
// lifetime of the Conn; the caller must not touch it in the meantime.
type txBuffer struct {
	dst Stream
	buf []byte
	n   int
}

// write appends p to the buffer, flushing to the transport whenever
// the buffer fills.
func (b *txBuffer) write(p []byte) (int, error) {
	var written int
	for len(p) > 0 {
		if b.n == len(b.buf) {
			if err := b.flush(); err != nil {
				return written, err
			}
		}

		n := copy(b.buf[b.n:], p)
		b.n += n
		written += n
		p = p[n:]
	}

	return written, nil
}

// flush writes all buffered bytes to the transport. On a partial
// failure the unwritten remainder is kept so the framing position of
// the stream stays consistent with what the caller believes was sent.
func (b *txBuffer) flush() error {
	var off int
	for off < b.n {
		n, err := b.dst.Write(b.buf[off:b.n])
		off += n
		if err != nil {
			b.n = copy(b.buf, b.buf[off:b.n])
			return err
		}
	}

	b.n = 0

	return nil
}
