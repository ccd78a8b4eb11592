package wirehttp

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadySent is returned when Send is invoked a second time on
	// a handle whose request has been consumed.
	ErrAlreadySent = errors.New("request already sent")
	// ErrSchemeNotSupported is returned for URL schemes other than
	// http and https.
	ErrSchemeNotSupported = errors.New("url scheme not supported")
	// ErrTLSNotConfigured is returned for an https URL when the client
	// was built without a TLS configuration. TLS is opt-in per client,
	// never inferred.
	ErrTLSNotConfigured = errors.New("tls not configured")
)

// ResolveError is a name-resolution failure. No bytes were sent, so
// the operation is safe to retry.
type ResolveError struct {
	Host string
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolving %s: %v", e.Host, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// ConnectError is a transport-establishment failure. No bytes were
// sent, so the operation is safe to retry.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connecting to %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// TLSError is a handshake failure. The connection is discarded before
// any request bytes are written, so the operation is safe to retry.
type TLSError struct {
	Host string
	Err  error
}

func (e *TLSError) Error() string {
	return fmt.Sprintf("tls handshake with %s: %v", e.Host, e.Err)
}

func (e *TLSError) Unwrap() error {
	return e.Err
}

// RetrySafe reports whether err occurred before any request bytes were
// written, meaning a fresh connection can safely retry the operation.
// Errors surfacing from send or body reads poison the connection's
// framing state; the connection must be discarded, and whether to retry
// is the caller's call.
func RetrySafe(err error) bool {
	var (
		rerr *ResolveError
		cerr *ConnectError
		terr *TLSError
	)
	if errors.As(err, &rerr) || errors.As(err, &cerr) || errors.As(err, &terr) {
		return true
	}

	return errors.Is(err, ErrSchemeNotSupported) || errors.Is(err, ErrTLSNotConfigured)
}
