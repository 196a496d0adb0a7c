package vkproxy

import (
	"context"
	"net"

	"github.com/Microsoft/go-winio"

	"github.com/go-ctap/vkapi/pkg/options"
)

func address(oo *options.Options) string {
	if oo.Address != "" {
		return oo.Address
	}
	return NamedPipePath
}

// Dial connects to a proxy daemon on its named pipe.
func Dial(ctx context.Context, opts ...options.Option) (*Client, error) {
	oo := options.NewOptions(opts...)

	conn, err := winio.DialPipeContext(ctx, address(oo))
	if err != nil {
		return nil, err
	}
	return NewClient(conn, opts...), nil
}

// Listen opens the daemon's named pipe.
func Listen(_ context.Context, opts ...options.Option) (net.Listener, error) {
	oo := options.NewOptions(opts...)
	return winio.ListenPipe(address(oo), nil)
}
