package fprint

import (
	"errors"
	"slices"

	"github.com/fxamacker/cbor/v2"
)

var ErrIncompatiblePrint = errors.New("fprint: print data belongs to another driver or device type")

// PrintData is a template captured by a driver. It owns its bytes: the
// buffer handed over by a capture engine is copied on construction.
type PrintData struct {
	DriverID   uint16 `cbor:"1,keyasint"`
	DeviceType uint32 `cbor:"2,keyasint"`
	Data       []byte `cbor:"3,keyasint"`
}

// NewPrintData copies template into a print bound to dev's driver.
func NewPrintData(dev *Device, template []byte) *PrintData {
	return &PrintData{
		DriverID:   dev.Driver.ID,
		DeviceType: dev.DeviceType,
		Data:       slices.Clone(template),
	}
}

// CompatibleWith reports whether the print can be verified on dev.
func (p *PrintData) CompatibleWith(dev *Device) bool {
	return p.DriverID == dev.Driver.ID && p.DeviceType == dev.DeviceType
}

func (p *PrintData) MarshalBinary() ([]byte, error) {
	encMode, err := cbor.CTAP2EncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	type plain PrintData
	return encMode.Marshal((*plain)(p))
}

func (p *PrintData) UnmarshalBinary(data []byte) error {
	type plain PrintData
	return cbor.Unmarshal(data, (*plain)(p))
}
