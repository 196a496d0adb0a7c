//go:build !windows

package device

import (
	"context"
	"errors"
	"iter"

	ghid "github.com/go-ctap/hid"
	"github.com/sstallion/go-hid"
)

// Enumerate yields every HID device hidapi reports. It stops early when ctx
// is done.
func Enumerate(ctx context.Context) iter.Seq2[*ghid.DeviceInfo, error] {
	return func(yield func(*ghid.DeviceInfo, error) bool) {
		breakErr := errors.New("break")

		if err := hid.Enumerate(hid.VendorIDAny, hid.ProductIDAny, func(info *hid.DeviceInfo) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !yield(&ghid.DeviceInfo{
				Path:         info.Path,
				VendorID:     info.VendorID,
				ProductID:    info.ProductID,
				SerialNbr:    info.SerialNbr,
				ReleaseNbr:   info.ReleaseNbr,
				MfrStr:       info.MfrStr,
				ProductStr:   info.ProductStr,
				UsagePage:    info.UsagePage,
				Usage:        info.Usage,
				InterfaceNbr: info.InterfaceNbr,
			}, nil) {
				return breakErr
			}

			return nil
		}); err != nil && !errors.Is(err, breakErr) {
			yield(nil, newErrorMessage(ErrEnumeration, err.Error()))
			return
		}
	}
}
