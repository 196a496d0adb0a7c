package driver

import (
	"errors"
)

var (
	// ErrConnectionFailed is returned by Open when the engine does not
	// report a successful connection.
	ErrConnectionFailed = errors.New("driver: engine connection failed")
	// ErrAlreadyActive rejects a start while another operation is running.
	ErrAlreadyActive = errors.New("driver: operation already active")
	// ErrOperationFailed is delivered through the terminal notification of
	// an operation the engine reported as failed.
	ErrOperationFailed = errors.New("driver: operation failed")
	// ErrUnroutedEvent marks callbacks arriving without an active operation.
	// It is logged, never returned.
	ErrUnroutedEvent   = errors.New("driver: event without active operation")
	ErrNotOpen         = errors.New("driver: device not open")
	ErrAlreadyOpen     = errors.New("driver: device already open")
	ErrDeviceMismatch  = errors.New("driver: device is not the one bound to the engine")
	ErrNoEnrolledPrint = errors.New("driver: no enrolled print to verify against")
	ErrCaptureFailed   = errors.New("driver: capture could not be started")
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
