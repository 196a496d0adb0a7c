// Package device discovers attached fingerprint sensors by matching HID
// devices against a driver's USB ID table.
package device

import (
	"context"
	"iter"

	ghid "github.com/go-ctap/hid"
	"github.com/samber/lo"

	"github.com/go-ctap/vkapi/pkg/fprint"
)

// Sensors returns a device for every attached sensor info supports, one per
// USB path. The device type is the ID table's driver data.
func Sensors(ctx context.Context, info fprint.DriverInfo) ([]*fprint.Device, error) {
	devs, err := match(Enumerate(ctx), info)
	if err != nil {
		return nil, err
	}
	if len(devs) == 0 {
		return nil, ErrNoSensor
	}
	return devs, nil
}

func match(seq iter.Seq2[*ghid.DeviceInfo, error], info fprint.DriverInfo) ([]*fprint.Device, error) {
	devs := make([]*fprint.Device, 0)
	for devInfo, err := range seq {
		if err != nil {
			return nil, err
		}

		id, ok := info.Lookup(devInfo.VendorID, devInfo.ProductID)
		if !ok {
			continue
		}
		devs = append(devs, &fprint.Device{
			ID:         devInfo.Path,
			Driver:     info,
			DeviceType: uint32(id.DriverData),
		})
	}

	// A sensor exposing several interfaces is reported once per interface.
	return lo.UniqBy(devs, func(d *fprint.Device) string { return d.ID }), nil
}
