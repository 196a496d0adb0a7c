package device

import (
	"context"
	"iter"

	cgofreehid "github.com/go-ctap/hid"
)

// Enumerate yields every HID device reported by the SetupAPI. It stops
// early when ctx is done.
func Enumerate(ctx context.Context) iter.Seq2[*cgofreehid.DeviceInfo, error] {
	return func(yield func(*cgofreehid.DeviceInfo, error) bool) {
		for devInfo, err := range cgofreehid.Enumerate() {
			if err != nil {
				yield(nil, newErrorMessage(ErrEnumeration, err.Error()))
				return
			}
			if ctx.Err() != nil {
				yield(nil, ctx.Err())
				return
			}
			if !yield(devInfo, nil) {
				return
			}
		}
	}
}
