//go:build !windows && !vkapi_cgo

package dynload

import "github.com/go-ctap/vkapi/pkg/vkx"

const DefaultLibrary = "vkapi.so"

// Load always fails: build with the vkapi_cgo tag to bind the vendor
// library.
func Load(string) (vkx.Engine, error) {
	return nil, ErrNotSupported
}
