// Package fprint holds the framework side of the driver contract: devices,
// print data, result codes and the completion notifications a driver emits.
package fprint

import (
	"strconv"

	"github.com/samber/lo"
)

type ScanType int

const (
	ScanTypePress ScanType = iota
	ScanTypeSwipe
)

func (t ScanType) String() string {
	switch t {
	case ScanTypePress:
		return "press"
	case ScanTypeSwipe:
		return "swipe"
	default:
		return "ScanType(" + strconv.Itoa(int(t)) + ")"
	}
}

// USBID identifies a supported sensor by its USB vendor and product IDs.
type USBID struct {
	Vendor     uint16
	Product    uint16
	DriverData uint64
}

// DriverInfo is the static description of a driver.
type DriverInfo struct {
	ID       uint16
	Name     string
	FullName string
	IDTable  []USBID
	ScanType ScanType
}

// Supports reports whether the driver handles the sensor with the given IDs.
func (i DriverInfo) Supports(vendor, product uint16) bool {
	return lo.ContainsBy(i.IDTable, func(id USBID) bool {
		return id.Vendor == vendor && id.Product == product
	})
}

// Lookup returns the ID table entry for the sensor.
func (i DriverInfo) Lookup(vendor, product uint16) (USBID, bool) {
	return lo.Find(i.IDTable, func(id USBID) bool {
		return id.Vendor == vendor && id.Product == product
	})
}

// Device is a sensor instance as seen by the framework.
type Device struct {
	// ID names the sensor, usually its hidraw path.
	ID         string
	Driver     DriverInfo
	DeviceType uint32

	// NrEnrollStages is set by the driver when the device is opened.
	NrEnrollStages int

	// VerifyData is the enrolled print a verification compares against.
	VerifyData *PrintData
}

type EnrollResult int

const (
	EnrollComplete EnrollResult = iota + 1
	EnrollFail
	EnrollPass

	EnrollRetry EnrollResult = iota + 97
	EnrollRetryTooShort
	EnrollRetryCenterFinger
	EnrollRetryRemoveFinger
)

func (r EnrollResult) String() string {
	switch r {
	case EnrollComplete:
		return "enroll-complete"
	case EnrollFail:
		return "enroll-fail"
	case EnrollPass:
		return "enroll-pass"
	case EnrollRetry:
		return "enroll-retry"
	case EnrollRetryTooShort:
		return "enroll-retry-too-short"
	case EnrollRetryCenterFinger:
		return "enroll-retry-center-finger"
	case EnrollRetryRemoveFinger:
		return "enroll-retry-remove-finger"
	default:
		return "EnrollResult(" + strconv.Itoa(int(r)) + ")"
	}
}

type VerifyResult int

const (
	VerifyNoMatch VerifyResult = iota
	VerifyMatch

	VerifyRetry VerifyResult = iota + 98
	VerifyRetryTooShort
	VerifyRetryCenterFinger
	VerifyRetryRemoveFinger
)

func (r VerifyResult) String() string {
	switch r {
	case VerifyNoMatch:
		return "verify-no-match"
	case VerifyMatch:
		return "verify-match"
	case VerifyRetry:
		return "verify-retry-scan"
	case VerifyRetryTooShort:
		return "verify-swipe-too-short"
	case VerifyRetryCenterFinger:
		return "verify-finger-not-centered"
	case VerifyRetryRemoveFinger:
		return "verify-remove-finger"
	default:
		return "VerifyResult(" + strconv.Itoa(int(r)) + ")"
	}
}

type Finger int

const (
	LeftThumb Finger = iota + 1
	LeftIndex
	LeftMiddle
	LeftRing
	LeftLittle
	RightThumb
	RightIndex
	RightMiddle
	RightRing
	RightLittle
)

var fingerNames = []string{
	"left-thumb", "left-index", "left-middle", "left-ring", "left-little",
	"right-thumb", "right-index", "right-middle", "right-ring", "right-little",
}

func (f Finger) String() string {
	if f < LeftThumb || f > RightLittle {
		return "Finger(" + strconv.Itoa(int(f)) + ")"
	}
	return fingerNames[f-1]
}

// ParseFinger is the inverse of Finger.String.
func ParseFinger(s string) (Finger, bool) {
	i := lo.IndexOf(fingerNames, s)
	if i < 0 {
		return 0, false
	}
	return Finger(i + 1), true
}
