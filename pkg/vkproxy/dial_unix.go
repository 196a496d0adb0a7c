//go:build !windows

package vkproxy

import (
	"context"
	"net"
	"os"
	"path/filepath"

	"github.com/go-ctap/vkapi/pkg/options"
)

func address(oo *options.Options) string {
	if oo.Address != "" {
		return oo.Address
	}
	return SocketPath
}

// Dial connects to a proxy daemon on its unix socket.
func Dial(ctx context.Context, opts ...options.Option) (*Client, error) {
	oo := options.NewOptions(opts...)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", address(oo))
	if err != nil {
		return nil, err
	}
	return NewClient(conn, opts...), nil
}

// Listen opens the daemon's unix socket, replacing a stale one.
func Listen(ctx context.Context, opts ...options.Option) (net.Listener, error) {
	oo := options.NewOptions(opts...)
	addr := address(oo)

	if err := os.MkdirAll(filepath.Dir(addr), 0o755); err != nil {
		return nil, err
	}
	if err := os.Remove(addr); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	var lc net.ListenConfig
	return lc.Listen(ctx, "unix", addr)
}
