package driver

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/go-ctap/vkapi/pkg/fprint"
	"github.com/go-ctap/vkapi/pkg/metrics"
	"github.com/go-ctap/vkapi/pkg/vkx"
)

type Kind int

const (
	KindEnroll Kind = iota + 1
	KindVerify
)

func (k Kind) String() string {
	switch k {
	case KindEnroll:
		return "enroll"
	case KindVerify:
		return "verify"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

type State int32

const (
	StateInit State = iota
	StateCapturing
	StateCompleted
	StateFailed
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateCapturing:
		return "capturing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateStopped:
		return "stopped"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// Terminal reports whether no further transitions can occur from s.
func (s State) Terminal() bool {
	return s >= StateCompleted
}

// env is what an operation needs from its owner.
type env struct {
	engine   vkx.Engine
	registry *Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Operation sequences a single enroll or verify capture:
// Init -> Capturing -> Completed | Failed | Stopped.
//
// Transitions run with the owner's lock held and queue their notifications
// on an outbox delivered once the lock is released.
type Operation struct {
	id       uuid.UUID
	kind     Kind
	state    atomic.Int32
	device   *fprint.Device
	enrolled *fprint.PrintData
	stage    atomic.Int32
	begun    bool
	started  time.Time

	env    *env
	logger *slog.Logger
}

func newOperation(kind Kind, dev *fprint.Device, e *env) *Operation {
	op := &Operation{
		id:     uuid.New(),
		kind:   kind,
		device: dev,
		env:    e,
	}
	op.logger = e.logger.With("op", kind.String(), "op_id", op.id.String())
	if kind == KindVerify {
		op.enrolled = dev.VerifyData
	}
	return op
}

func (o *Operation) ID() uuid.UUID          { return o.id }
func (o *Operation) Kind() Kind             { return o.kind }
func (o *Operation) Device() *fprint.Device { return o.device }
func (o *Operation) State() State           { return State(o.state.Load()) }

// Stage returns the highest enrollment stage reported by the engine.
func (o *Operation) Stage() int { return int(o.stage.Load()) }

// start moves the operation to Capturing and issues the capture command.
// A command that cannot be issued fails the operation without notifying.
func (o *Operation) start() error {
	if o.State() != StateInit {
		return nil
	}
	o.state.Store(int32(StateCapturing))
	o.started = time.Now()

	var err error
	switch o.kind {
	case KindEnroll:
		err = o.env.engine.CaptureEnrollTemplate()
	case KindVerify:
		err = o.env.engine.CaptureVerifyTemplate()
	}
	if err != nil {
		o.logger.Error("cannot start capture", "err", err)
		o.finish(StateFailed, nil, nil)
		return fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}

	o.logger.Debug("capture started")
	return nil
}

// begin handles STATUS_OPERATION_BEGIN: the sensor is ready for a finger.
func (o *Operation) begin(out *outbox) {
	if o.State() != StateCapturing || o.begun {
		return
	}
	o.begun = true

	dev := o.device
	switch o.kind {
	case KindEnroll:
		out.add(func(n fprint.Notifier) { n.EnrollStarted(dev, nil) })
	case KindVerify:
		out.add(func(n fprint.Notifier) { n.VerifyStarted(dev, nil) })
	}
}

// progress handles an enrollment stage report. Stages below the device's
// stage count emit an intermediate pass; completion waits for the template.
func (o *Operation) progress(stage int, out *outbox) {
	if o.kind != KindEnroll || o.State() != StateCapturing {
		return
	}
	if int32(stage) > o.stage.Load() {
		o.stage.Store(int32(stage))
	}

	if stage >= o.device.NrEnrollStages {
		o.logger.Debug("enroll stage at threshold, waiting for template", "stage", stage)
		return
	}

	dev := o.device
	out.add(func(n fprint.Notifier) { n.EnrollStageCompleted(dev, fprint.EnrollPass, nil, nil) })
}

// template handles a captured template. For enrollment it is the final
// print; for verification it is the probe compared against the enrolled one.
func (o *Operation) template(data []byte, out *outbox) {
	if o.State() != StateCapturing {
		return
	}

	dev := o.device
	switch o.kind {
	case KindEnroll:
		pd := fprint.NewPrintData(dev, data)
		o.logger.Debug("enroll template captured", "size", len(data), "stage", o.Stage())
		o.finish(StateCompleted, out, func(n fprint.Notifier) {
			n.EnrollStageCompleted(dev, fprint.EnrollComplete, pd, nil)
		})
	case KindVerify:
		r, score, err := o.env.engine.Compare(o.enrolled.Data, data)
		if err != nil {
			o.fail(newErrorMessage(ErrOperationFailed, "compare: "+err.Error()), out)
			return
		}

		result := fprint.VerifyNoMatch
		if r == vkx.VKX_RESULT_MATCHED {
			result = fprint.VerifyMatch
		}
		o.logger.Debug("verify compared", "result", r.String(), "score", score)
		o.finish(StateCompleted, out, func(n fprint.Notifier) {
			n.VerifyResultReported(dev, result, nil)
		})
	}
}

// fail moves the operation to Failed. Enrollment reports EnrollFail,
// verification reports no match; both carry err.
func (o *Operation) fail(err error, out *outbox) {
	dev := o.device
	switch o.kind {
	case KindEnroll:
		o.finish(StateFailed, out, func(n fprint.Notifier) {
			n.EnrollStageCompleted(dev, fprint.EnrollFail, nil, err)
		})
	case KindVerify:
		o.finish(StateFailed, out, func(n fprint.Notifier) {
			n.VerifyResultReported(dev, fprint.VerifyNoMatch, err)
		})
	}
}

// stop aborts the capture and moves the operation to Stopped. The abort is
// issued before the operation leaves the registry.
func (o *Operation) stop(out *outbox) bool {
	if o.State().Terminal() {
		return false
	}

	if err := o.env.engine.Abort(); err != nil {
		o.logger.Warn("abort failed", "err", err)
	}

	dev := o.device
	switch o.kind {
	case KindEnroll:
		return o.finish(StateStopped, out, func(n fprint.Notifier) { n.EnrollStopped(dev) })
	default:
		return o.finish(StateStopped, out, func(n fprint.Notifier) { n.VerifyStopped(dev) })
	}
}

// terminate ends an operation torn down with its device. Nothing is
// notified and the registry has already been cleared by the caller.
func (o *Operation) terminate() {
	if o.State().Terminal() {
		return
	}
	o.state.Store(int32(StateStopped))
	o.observe(StateStopped)
	o.logger.Debug("operation terminated by close")
}

// finish performs the exit action of every terminal transition: deregister
// once, then queue the completion notification. It reports false if the
// operation had already terminated.
func (o *Operation) finish(state State, out *outbox, notify func(fprint.Notifier)) bool {
	if o.State().Terminal() {
		return false
	}
	o.state.Store(int32(state))
	if o.env.registry.IsActive(o) {
		o.env.registry.Complete(o.kind)
	}
	o.observe(state)
	o.logger.Debug("operation finished", "state", state.String())

	if out != nil && notify != nil {
		out.add(notify)
	}
	return true
}

func (o *Operation) observe(state State) {
	if o.env.metrics != nil {
		o.env.metrics.ObserveFinished(o.kind.String(), state.String(), o.started)
	}
}

// outbox collects notifications while the owner's lock is held.
type outbox struct {
	pending []func(fprint.Notifier)
}

func (o *outbox) add(fn func(fprint.Notifier)) {
	o.pending = append(o.pending, fn)
}

func (o *outbox) flush(n fprint.Notifier) {
	if n == nil {
		return
	}
	for _, fn := range o.pending {
		fn(n)
	}
	o.pending = nil
}
