package wirehttp

import (
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/wirehttp/throttle"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error

type options struct {
	resolver   Resolver
	dialer     Dialer
	handshaker Handshaker
	tls        *TLSConfig
	throttle   *throttle.Config
	logger     *slog.Logger
	tracer     trace.Tracer
}

// WithResolver replaces the default net-based name resolver.
func WithResolver(r Resolver) Option {
	return func(o *options) error {
		if r == nil {
			return errors.New("resolver must not be nil")
		}
		o.resolver = r
		return nil
	}
}

// WithDialer replaces the default net-based transport dialer.
func WithDialer(d Dialer) Option {
	return func(o *options) error {
		if d == nil {
			return errors.New("dialer must not be nil")
		}
		o.dialer = d
		return nil
	}
}

// WithTLS opts the client into https support with the given
// configuration. Without it, https URLs fail with ErrTLSNotConfigured
// before any connection is attempted.
func WithTLS(cfg *TLSConfig) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("tls config must not be nil")
		}
		o.tls = cfg
		return nil
	}
}

// WithHandshaker replaces the crypto/tls-based handshaker, allowing an
// embedded TLS session implementation (required for PSK verification).
func WithHandshaker(h Handshaker) Option {
	return func(o *options) error {
		if h == nil {
			return errors.New("handshaker must not be nil")
		}
		o.handshaker = h
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting of sends with the
// given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(o *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		o.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithTracer injects an OpenTelemetry tracer; the default is a no-op.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		o.tracer = tracer
		return nil
	}
}
