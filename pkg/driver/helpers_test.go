package driver

import (
	"io"
	"log/slog"
	"sync"

	"github.com/go-ctap/vkapi/pkg/fprint"
	"github.com/go-ctap/vkapi/pkg/vkx"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeEngine records commands and exposes the registered callbacks so tests
// can play the vendor's thread.
type fakeEngine struct {
	mu            sync.Mutex
	cb            vkx.Callbacks
	calls         []string
	connectResult vkx.Result
	connectErr    error
	captureErr    error
	compareResult vkx.Result
	compareErr    error
	compared      [][2][]byte
	onCapture     func(cb vkx.Callbacks)
	onCompare     func()
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		connectResult: vkx.VKX_RESULT_SUCCESS,
		compareResult: vkx.VKX_RESULT_MATCHED,
	}
}

func (e *fakeEngine) record(name string) {
	e.mu.Lock()
	e.calls = append(e.calls, name)
	e.mu.Unlock()
}

func (e *fakeEngine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

func (e *fakeEngine) callbacks() vkx.Callbacks {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cb
}

func (e *fakeEngine) SetCallbacks(cb vkx.Callbacks) error {
	e.mu.Lock()
	e.cb = cb
	e.mu.Unlock()
	e.record("set_callbacks")
	return nil
}

func (e *fakeEngine) Connect() (vkx.Result, error) {
	e.record("connect")
	return e.connectResult, e.connectErr
}

func (e *fakeEngine) Disconnect() error {
	e.record("disconnect")
	return nil
}

func (e *fakeEngine) Abort() error {
	e.record("abort")
	return nil
}

func (e *fakeEngine) capture(name string) error {
	e.record(name)
	if e.captureErr != nil {
		return e.captureErr
	}
	if e.onCapture != nil {
		e.onCapture(e.cb)
	}
	return nil
}

func (e *fakeEngine) CaptureVerifyTemplate() error { return e.capture("capture_verify") }
func (e *fakeEngine) CaptureEnrollTemplate() error { return e.capture("capture_enroll") }

func (e *fakeEngine) Compare(enrolled, probe []byte) (vkx.Result, int, error) {
	e.record("compare")
	if e.onCompare != nil {
		e.onCompare()
	}
	e.mu.Lock()
	e.compared = append(e.compared, [2][]byte{enrolled, probe})
	e.mu.Unlock()
	return e.compareResult, 42, e.compareErr
}

type note struct {
	name   string
	dev    *fprint.Device
	enroll fprint.EnrollResult
	verify fprint.VerifyResult
	print  *fprint.PrintData
	err    error
}

// recorder is a Notifier keeping every notification in order.
type recorder struct {
	mu    sync.Mutex
	notes []note
}

func (r *recorder) add(n note) {
	r.mu.Lock()
	r.notes = append(r.notes, n)
	r.mu.Unlock()
}

func (r *recorder) all() []note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]note(nil), r.notes...)
}

func (r *recorder) names() []string {
	var names []string
	for _, n := range r.all() {
		names = append(names, n.name)
	}
	return names
}

func (r *recorder) OpenComplete(dev *fprint.Device, err error) {
	r.add(note{name: "open-complete", dev: dev, err: err})
}

func (r *recorder) CloseComplete(dev *fprint.Device) {
	r.add(note{name: "close-complete", dev: dev})
}

func (r *recorder) EnrollStarted(dev *fprint.Device, err error) {
	r.add(note{name: "enroll-started", dev: dev, err: err})
}

func (r *recorder) EnrollStageCompleted(dev *fprint.Device, result fprint.EnrollResult, print *fprint.PrintData, err error) {
	r.add(note{name: result.String(), dev: dev, enroll: result, print: print, err: err})
}

func (r *recorder) EnrollStopped(dev *fprint.Device) {
	r.add(note{name: "enroll-stopped", dev: dev})
}

func (r *recorder) VerifyStarted(dev *fprint.Device, err error) {
	r.add(note{name: "verify-started", dev: dev, err: err})
}

func (r *recorder) VerifyResultReported(dev *fprint.Device, result fprint.VerifyResult, err error) {
	r.add(note{name: result.String(), dev: dev, verify: result, err: err})
}

func (r *recorder) VerifyStopped(dev *fprint.Device) {
	r.add(note{name: "verify-stopped", dev: dev})
}

func testEnv(engine vkx.Engine, registry *Registry) *env {
	return &env{
		engine:   engine,
		registry: registry,
		logger:   discardLogger,
	}
}
