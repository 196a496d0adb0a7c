// Package dynload binds the vendor engine library at runtime. The library
// keeps a single set of callbacks per process, so every Engine returned by
// Load shares them and the last SetCallbacks wins.
package dynload

import (
	"errors"
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/go-ctap/vkapi/pkg/vkx"
)

var (
	ErrNotSupported   = errors.New("dynload: vendor engine binding not available in this build")
	ErrMissingSymbols = errors.New("dynload: vendor library lacks required symbols")
)

type receiver struct {
	cb vkx.Callbacks
}

var current atomic.Pointer[receiver]

func register(cb vkx.Callbacks) {
	current.Store(&receiver{cb: cb})
}

func callbacks() vkx.Callbacks {
	if r := current.Load(); r != nil {
		return r.cb
	}
	return nil
}

func retryFlag(retry bool) int32 {
	if retry {
		return 1
	}
	return 0
}

func dispatchStatus(status int) {
	if cb := callbacks(); cb != nil {
		cb.OnStatus(vkx.Status(status))
	}
}

func dispatchProgress(stage int) {
	if cb := callbacks(); cb != nil {
		cb.OnEnrollProgress(stage)
	}
}

func dispatchError(code int) int32 {
	if cb := callbacks(); cb != nil {
		return retryFlag(cb.OnError(vkx.Result(code)))
	}
	return 0
}

// borrow views n bytes at p owned by the vendor library. A nil pointer or
// a non-positive length yields an empty slice.
func borrow(p *byte, n int) []byte {
	if p == nil || n <= 0 {
		return nil
	}
	return unsafe.Slice(p, n)
}

// imageSize is width*height, or 0 when either is negative or the product
// overflows.
func imageSize(width, height int) int {
	if width <= 0 || height <= 0 || width > math.MaxInt32/height {
		return 0
	}
	return width * height
}

// dispatchTemplate hands out buf without copying; it is only valid for the
// duration of the call.
func dispatchTemplate(buf []byte) int32 {
	if cb := callbacks(); cb != nil {
		return retryFlag(cb.OnTemplate(buf))
	}
	return 0
}

func dispatchImage(width, height int, img []byte, quality int) int32 {
	if cb := callbacks(); cb != nil {
		return retryFlag(cb.OnImage(width, height, img, quality))
	}
	return 0
}
