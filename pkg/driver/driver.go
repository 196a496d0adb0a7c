// Package driver implements the vkapi fingerprint driver: it sequences
// open, enroll and verify on top of the vendor engine and routes the
// engine's context-free callbacks to the one operation that can own them.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-ctap/vkapi/pkg/fprint"
	"github.com/go-ctap/vkapi/pkg/metrics"
	"github.com/go-ctap/vkapi/pkg/options"
	"github.com/go-ctap/vkapi/pkg/vkx"
)

// EnrollStages is the number of stages an enrollment reports.
const EnrollStages = 3

// Info describes the driver to the framework.
var Info = fprint.DriverInfo{
	ID:       1,
	Name:     "vkapi",
	FullName: "VKAPI",
	IDTable: []fprint.USBID{
		{Vendor: 0x1c7a, Product: 0x0603}, // Egistech
	},
	ScanType: fprint.ScanTypeSwipe,
}

// Driver bridges the framework's open/close/start/stop calls onto the
// engine. All registry and operation state is mutated under one lock;
// engine callbacks reach it only through the Router and an event loop that
// applies them in arrival order. Notifications are delivered after the lock
// is released, so a Notifier may call back into the Driver.
//
// The event loop runs until the context given with options.WithContext is
// done.
type Driver struct {
	mu       sync.Mutex
	engine   vkx.Engine
	notifier fprint.Notifier
	registry *Registry
	router   *Router
	queue    *queue
	env      *env
	logger   *slog.Logger
	metrics  *metrics.Metrics
	done     chan struct{}
}

var _ fprint.Driver = (*Driver)(nil)

// New creates a driver on top of engine reporting to notifier.
func New(engine vkx.Engine, notifier fprint.Notifier, opts ...options.Option) (*Driver, error) {
	if engine == nil {
		return nil, vkx.ErrNoEngine
	}
	oo := options.NewOptions(opts...)

	logger := oo.Logger.With("component", Info.Name)
	m := metrics.New(oo.Registerer)
	registry := NewRegistry()
	q := newQueue()

	d := &Driver{
		engine:   engine,
		notifier: notifier,
		registry: registry,
		queue:    q,
		logger:   logger,
		metrics:  m,
		done:     make(chan struct{}),
	}
	d.env = &env{
		engine:   engine,
		registry: registry,
		logger:   logger,
		metrics:  m,
	}
	d.router = newRouter(registry, q.push, oo.RetryPolicy, logger.With("component", "router"), m)

	go d.run(oo.Context)

	return d, nil
}

func (d *Driver) Info() fprint.DriverInfo {
	return Info
}

// Registry exposes the session registry for inspection.
func (d *Driver) Registry() *Registry {
	return d.registry
}

// Router returns the callback receiver registered with the engine.
func (d *Driver) Router() *Router {
	return d.router
}

// Done is closed when the event loop has stopped.
func (d *Driver) Done() <-chan struct{} {
	return d.done
}

// Open registers the callbacks and connects the engine. A connection the
// engine does not report as successful fails with ErrConnectionFailed.
func (d *Driver) Open(dev *fprint.Device) error {
	var out outbox
	defer func() { out.flush(d.notifier) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.registry.Device().IsPresent() {
		return ErrAlreadyOpen
	}

	if err := d.engine.SetCallbacks(d.router); err != nil {
		return fmt.Errorf("driver: cannot register callbacks: %w", err)
	}

	r, err := d.engine.Connect()
	d.logger.Debug("vkx_connect", "result", r.String())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	if r != vkx.VKX_RESULT_SUCCESS {
		return newErrorMessage(ErrConnectionFailed, "vkx_connect returned "+r.String())
	}

	dev.NrEnrollStages = EnrollStages
	if err := d.registry.Bind(dev); err != nil {
		return err
	}

	d.logger.Info("device opened", "device", dev.ID)
	out.add(func(n fprint.Notifier) { n.OpenComplete(dev, nil) })
	return nil
}

// Close disconnects the engine and clears the registry unconditionally,
// even while an operation is in flight; such an operation ends Stopped
// without a notification of its own. Closing with nothing open or with
// another device than the bound one is logged and tears down all the same.
func (d *Driver) Close(dev *fprint.Device) error {
	var out outbox
	defer func() { out.flush(d.notifier) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	switch bound, ok := d.registry.Device().Get(); {
	case !ok:
		d.logger.Warn("close without open device", "device", dev.ID)
	case bound != dev:
		d.logger.Warn("close for a device other than the bound one", "device", dev.ID, "bound", bound.ID)
	}

	err := d.engine.Disconnect()
	if err != nil {
		d.logger.Warn("vkx_dis_connect failed", "err", err)
	}

	for _, op := range d.registry.Reset() {
		op.terminate()
	}

	d.logger.Info("device closed", "device", dev.ID)
	out.add(func(n fprint.Notifier) { n.CloseComplete(dev) })

	if err != nil {
		return fmt.Errorf("driver: disconnect: %w", err)
	}
	return nil
}

func (d *Driver) EnrollStart(dev *fprint.Device) error {
	return d.start(KindEnroll, dev)
}

func (d *Driver) VerifyStart(dev *fprint.Device) error {
	if dev.VerifyData == nil {
		return ErrNoEnrolledPrint
	}
	if !dev.VerifyData.CompatibleWith(dev) {
		return newErrorMessage(ErrDeviceMismatch, fprint.ErrIncompatiblePrint.Error())
	}
	return d.start(KindVerify, dev)
}

func (d *Driver) start(kind Kind, dev *fprint.Device) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	op := newOperation(kind, dev, d.env)
	if err := d.registry.Begin(op); err != nil {
		return err
	}
	d.metrics.IncrementStarted(kind.String())

	return op.start()
}

// EnrollStop stops the active enrollment. Without one it does nothing: a
// stop racing a natural completion is expected.
func (d *Driver) EnrollStop(dev *fprint.Device) error {
	return d.stop(KindEnroll, dev)
}

// VerifyStop stops the active verification, see EnrollStop.
func (d *Driver) VerifyStop(dev *fprint.Device) error {
	return d.stop(KindVerify, dev)
}

func (d *Driver) stop(kind Kind, dev *fprint.Device) error {
	var out outbox
	defer func() { out.flush(d.notifier) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	if bound, ok := d.registry.Device().Get(); ok && bound != dev {
		return ErrDeviceMismatch
	}

	op, ok := d.registry.Active(kind).Get()
	if !ok {
		d.logger.Debug("stop without active operation", "op", kind.String())
		return nil
	}
	op.stop(&out)
	return nil
}

// Sync blocks until every callback received before the call was applied
// and its notifications delivered.
func (d *Driver) Sync(ctx context.Context) error {
	done := make(chan struct{})
	d.queue.push(event{kind: eventBarrier, done: done})

	select {
	case <-done:
		return nil
	case <-d.done:
		return errors.New("driver: event loop stopped")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Driver) run(ctx context.Context) {
	defer close(d.done)
	for {
		ev, ok := d.queue.pop(ctx)
		if !ok {
			return
		}
		d.apply(ev)
	}
}

// apply runs one routed event against its operation.
func (d *Driver) apply(ev event) {
	if ev.kind == eventBarrier {
		close(ev.done)
		return
	}

	var out outbox
	d.mu.Lock()
	if !d.registry.IsActive(ev.op) {
		d.mu.Unlock()
		d.logger.Debug("discarding stale callback", "event", ev.kind.String(), "op_id", ev.op.id.String(), "err", ErrUnroutedEvent)
		d.metrics.IncrementUnrouted(ev.kind.String())
		return
	}

	switch ev.kind {
	case eventBegin:
		ev.op.begin(&out)
	case eventProgress:
		ev.op.progress(ev.stage, &out)
	case eventTemplate:
		ev.op.template(ev.data, &out)
	case eventError:
		ev.op.fail(newErrorMessage(ErrOperationFailed, ev.code.String()), &out)
	}
	d.mu.Unlock()

	out.flush(d.notifier)
}
