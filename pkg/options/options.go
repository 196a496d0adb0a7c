package options

import (
	"context"
	"log/slog"

	"github.com/fxamacker/cbor/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-ctap/vkapi/pkg/vkx"
)

// RetryPolicy decides whether a failed capture is retried by the engine.
type RetryPolicy func(code vkx.Result) bool

// NoRetry declines every retry offered by the engine.
func NoRetry(vkx.Result) bool { return false }

type Options struct {
	Logger      *slog.Logger
	EncMode     cbor.EncMode
	Context     context.Context
	Registerer  prometheus.Registerer
	RetryPolicy RetryPolicy
	Address     string
}

type Option func(*Options)

func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

func WithEncMode(encMode cbor.EncMode) Option {
	return func(opts *Options) {
		opts.EncMode = encMode
	}
}

func WithContext(ctx context.Context) Option {
	return func(opts *Options) {
		opts.Context = ctx
	}
}

// WithRegisterer registers driver metrics with reg. Without it metrics are
// collected but not exported.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(opts *Options) {
		opts.Registerer = reg
	}
}

func WithRetryPolicy(policy RetryPolicy) Option {
	return func(opts *Options) {
		opts.RetryPolicy = policy
	}
}

// WithAddress sets the socket path or pipe name of an engine proxy.
func WithAddress(address string) Option {
	return func(opts *Options) {
		opts.Address = address
	}
}

func NewOptions(opts ...Option) *Options {
	encMode, _ := cbor.CTAP2EncOptions().EncMode()
	oo := &Options{
		Logger:      slog.Default(),
		EncMode:     encMode,
		Context:     context.Background(),
		RetryPolicy: NoRetry,
	}

	for _, opt := range opts {
		opt(oo)
	}

	return oo
}
