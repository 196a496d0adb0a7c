//go:generate mockgen -source=engine.go -destination=mocks/engine_mock.go -package=mocks Engine,Callbacks

// Package vkx describes the capture and matching engine shipped by the
// sensor vendor. The engine is reachable only through a handful of global
// commands and a fixed set of callbacks carrying no caller context.
package vkx

import "errors"

var (
	ErrNotBound = errors.New("vkx: engine entry point not bound")
	ErrNoEngine = errors.New("vkx: no engine")
)

// Engine is the command surface of the vendor engine. Commands other than
// Connect and Compare are fire-and-forget: their outcome is delivered later
// through Callbacks, possibly on a goroutine owned by the engine.
//
// A non-nil error means the command could not be issued at all.
type Engine interface {
	// SetCallbacks registers the receivers for every callback channel.
	// Registering replaces any previous receivers.
	SetCallbacks(cb Callbacks) error

	// Connect opens the sensor. Success is reported as VKX_RESULT_SUCCESS.
	Connect() (Result, error)
	Disconnect() error
	Abort() error

	CaptureVerifyTemplate() error
	CaptureEnrollTemplate() error

	// Compare matches a probe against an enrolled template and returns
	// VKX_RESULT_MATCHED on a match together with the engine's score.
	Compare(enrolled, probe []byte) (Result, int, error)
}

// Callbacks receives the asynchronous events of the engine. Byte slices
// passed to the callbacks are owned by the engine and only valid until the
// callback returns.
type Callbacks interface {
	OnStatus(status Status)
	// OnError reports a failure. Returning true asks the engine to retry.
	OnError(code Result) (retry bool)
	OnEnrollProgress(stage int)
	// OnTemplate delivers a captured enroll template or verify probe.
	OnTemplate(template []byte) (retry bool)
	OnImage(width, height int, img []byte, quality int) (retry bool)
}
