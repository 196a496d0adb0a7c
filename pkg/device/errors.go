package device

import (
	"errors"
)

var (
	ErrNoSensor    = errors.New("device: no supported sensor attached")
	ErrEnumeration = errors.New("device: cannot enumerate HID devices")
)

type ErrorWithMessage struct {
	Message string
	Err     error
}

func newErrorMessage(err error, msg string) *ErrorWithMessage {
	return &ErrorWithMessage{
		Message: msg,
		Err:     err,
	}
}

func (m *ErrorWithMessage) Error() string {
	if m.Message != "" {
		return m.Err.Error() + " (" + m.Message + ")"
	}
	return m.Err.Error()
}

func (m *ErrorWithMessage) Unwrap() error {
	return m.Err
}
