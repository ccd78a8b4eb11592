package wirehttp

import (
	"context"
	"crypto/tls"
	"encoding/binary"
	"errors"
	"io"
	"math/rand/v2"
	"net"
	"time"

	"github.com/adamwoolhether/wirehttp/conn"
)

// TLSConfig seeds handshake randomness and lends scratch buffers to
// the TLS session for the lifetime of each secured connection. The
// seed is consumed and replaced on every handshake, so successive
// connections use distinct pseudo-random streams without an external
// entropy source. On plaintext connections the write buffer doubles as
// the transmit coalescing buffer.
type TLSConfig struct {
	Seed     uint64
	ReadBuf  []byte `validate:"min=1"`
	WriteBuf []byte `validate:"min=1"`
	Verify   TLSVerify
}

// NewTLSConfig assembles a TLSConfig from its parts.
func NewTLSConfig(seed uint64, readBuf, writeBuf []byte, verify TLSVerify) *TLSConfig {
	return &TLSConfig{Seed: seed, ReadBuf: readBuf, WriteBuf: writeBuf, Verify: verify}
}

// nextRNG derives the handshake's pseudo-random stream from the seed
// and advances the seed for the next handshake.
func (t *TLSConfig) nextRNG() *rand.ChaCha8 {
	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:8], t.Seed)
	rng := rand.NewChaCha8(seed)
	t.Seed = rng.Uint64()

	return rng
}

// TLSVerify selects how the remote peer is verified during the
// handshake: not at all, or with a pre-shared key.
type TLSVerify struct {
	identity []byte
	psk      []byte
}

// TLSVerifyNone skips verification of the remote host.
func TLSVerifyNone() TLSVerify {
	return TLSVerify{}
}

// TLSVerifyPSK verifies the peer with a pre-shared identity and key.
func TLSVerifyPSK(identity, psk []byte) TLSVerify {
	return TLSVerify{identity: identity, psk: psk}
}

// PSK returns the pre-shared identity and key, or ok=false when the
// verify mode is none.
func (v TLSVerify) PSK() (identity, psk []byte, ok bool) {
	return v.identity, v.psk, len(v.psk) > 0
}

// Handshaker upgrades an established transport to a TLS session. The
// engine decides when a handshake happens; the session itself is an
// injected collaborator. rng is the deterministic pseudo-random stream
// derived from the client's TLS seed.
type Handshaker interface {
	Handshake(ctx context.Context, raw conn.Stream, serverName string, cfg *TLSConfig, rng *rand.ChaCha8) (conn.Stream, error)
}

// stdHandshaker drives crypto/tls over the raw stream. It implements
// the none verify mode only; pre-shared keys have no crypto/tls API
// and require injecting a Handshaker via WithHandshaker.
type stdHandshaker struct{}

func (stdHandshaker) Handshake(ctx context.Context, raw conn.Stream, serverName string, cfg *TLSConfig, rng *rand.ChaCha8) (conn.Stream, error) {
	if _, _, ok := cfg.Verify.PSK(); ok {
		return nil, errors.New("pre-shared key verification requires a custom handshaker")
	}

	nc, ok := raw.(net.Conn)
	if !ok {
		nc = streamConn{Stream: raw}
	}

	session := tls.Client(nc, &tls.Config{
		ServerName:         serverName,
		InsecureSkipVerify: true, // verify mode is none
		Rand:               rngReader{rng: rng},
	})
	if err := session.HandshakeContext(ctx); err != nil {
		return nil, err
	}

	return session, nil
}

// rngReader adapts the deterministic ChaCha8 stream to the io.Reader
// crypto/tls expects for handshake randomness.
type rngReader struct {
	rng *rand.ChaCha8
}

func (r rngReader) Read(p []byte) (int, error) {
	var word [8]byte
	for i := 0; i < len(p); i += 8 {
		binary.LittleEndian.PutUint64(word[:], r.rng.Uint64())
		copy(p[i:], word[:])
	}

	return len(p), nil
}

// streamConn adapts a bare Stream to the net.Conn crypto/tls requires.
// Deadlines are not supported by the abstract transport and are no-ops.
type streamConn struct {
	conn.Stream
}

func (s streamConn) Close() error {
	if c, ok := s.Stream.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (streamConn) LocalAddr() net.Addr                { return streamAddr{} }
func (streamConn) RemoteAddr() net.Addr               { return streamAddr{} }
func (streamConn) SetDeadline(t time.Time) error      { return nil }
func (streamConn) SetReadDeadline(t time.Time) error  { return nil }
func (streamConn) SetWriteDeadline(t time.Time) error { return nil }

type streamAddr struct{}

func (streamAddr) Network() string { return "stream" }
func (streamAddr) String() string  { return "stream" }
