// Package sugar wraps the asynchronous driver into blocking, cancellable
// enroll and verify calls.
package sugar

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/samber/mo"

	"github.com/go-ctap/vkapi/pkg/device"
	"github.com/go-ctap/vkapi/pkg/driver"
	"github.com/go-ctap/vkapi/pkg/fprint"
	"github.com/go-ctap/vkapi/pkg/options"
	"github.com/go-ctap/vkapi/pkg/vkx"
)

var (
	ErrBusy = errors.New("sugar: another operation is waiting on this session")
	// ErrStopped is returned by a wait whose driver event loop ended.
	ErrStopped = errors.New("sugar: driver stopped")
)

type outcome struct {
	print *fprint.PrintData
	match bool
}

// waiter receives the terminal notification of one operation.
type waiter struct {
	onStage func(stage int)
	stage   int
	once    sync.Once
	result  chan mo.Either[outcome, error]
}

func newWaiter(onStage func(int)) *waiter {
	return &waiter{
		onStage: onStage,
		result:  make(chan mo.Either[outcome, error], 1),
	}
}

func (w *waiter) resolve(o outcome, err error) {
	w.once.Do(func() {
		if err != nil {
			w.result <- mo.Right[outcome, error](err)
			return
		}
		w.result <- mo.Left[outcome, error](o)
	})
}

// Session owns a driver bound to one sensor.
type Session struct {
	drv    *driver.Driver
	dev    *fprint.Device
	cancel context.CancelFunc

	mu      sync.Mutex
	current *waiter
}

// Open creates a driver over engine and opens dev with it.
func Open(engine vkx.Engine, dev *fprint.Device, opts ...options.Option) (*Session, error) {
	oo := options.NewOptions(opts...)
	ctx, cancel := context.WithCancel(oo.Context)

	s := &Session{dev: dev, cancel: cancel}
	drv, err := driver.New(engine, s.notifier(), append(slices.Clone(opts), options.WithContext(ctx))...)
	if err != nil {
		cancel()
		return nil, err
	}
	s.drv = drv

	if err := drv.Open(dev); err != nil {
		cancel()
		<-drv.Done()
		return nil, err
	}
	return s, nil
}

// OpenFirst opens the first attached sensor the driver supports.
func OpenFirst(ctx context.Context, engine vkx.Engine, opts ...options.Option) (*Session, error) {
	devs, err := device.Sensors(ctx, driver.Info)
	if err != nil {
		return nil, err
	}
	return Open(engine, devs[0], opts...)
}

func (s *Session) Device() *fprint.Device {
	return s.dev
}

// Close closes the device and stops the driver.
func (s *Session) Close() error {
	err := s.drv.Close(s.dev)
	s.cancel()
	<-s.drv.Done()
	return err
}

func (s *Session) waiter() *waiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Session) begin(w *waiter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		return ErrBusy
	}
	s.current = w
	return nil
}

func (s *Session) end() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

func (s *Session) notifier() fprint.Notifier {
	return fprint.NotifierFuncs{
		OnEnrollStageCompleted: func(_ *fprint.Device, result fprint.EnrollResult, pd *fprint.PrintData, err error) {
			w := s.waiter()
			if w == nil {
				return
			}
			switch result {
			case fprint.EnrollPass:
				w.stage++
				if w.onStage != nil {
					w.onStage(w.stage)
				}
			case fprint.EnrollComplete:
				w.resolve(outcome{print: pd}, nil)
			case fprint.EnrollFail:
				w.resolve(outcome{}, err)
			}
		},
		OnEnrollStopped: func(*fprint.Device) {
			if w := s.waiter(); w != nil {
				w.resolve(outcome{}, context.Canceled)
			}
		},
		OnVerifyResultReported: func(_ *fprint.Device, result fprint.VerifyResult, err error) {
			if w := s.waiter(); w != nil {
				w.resolve(outcome{match: result == fprint.VerifyMatch}, err)
			}
		},
		OnVerifyStopped: func(*fprint.Device) {
			if w := s.waiter(); w != nil {
				w.resolve(outcome{}, context.Canceled)
			}
		},
		// Close ends an in-flight operation without a notification of its own.
		OnCloseComplete: func(*fprint.Device) {
			if w := s.waiter(); w != nil {
				w.resolve(outcome{}, driver.ErrNotOpen)
			}
		},
	}
}

// wait blocks until the operation ends. Cancelling ctx stops the operation
// and waits for the driver to confirm it. A closed device or a stopped event
// loop also ends the wait.
func (s *Session) wait(ctx context.Context, w *waiter, stop func(*fprint.Device) error) (outcome, error) {
	select {
	case res := <-w.result:
		return unwrap(res)
	case <-s.drv.Done():
		return s.abandon(w, stop)
	case <-ctx.Done():
	}

	if err := stop(s.dev); err != nil {
		return outcome{}, err
	}

	var res mo.Either[outcome, error]
	select {
	case res = <-w.result:
	case <-s.drv.Done():
		return s.abandon(w, stop)
	}
	o, err := unwrap(res)
	if errors.Is(err, context.Canceled) {
		return outcome{}, ctx.Err()
	}
	// The operation finished before the stop reached it.
	return o, err
}

// abandon ends a wait after the event loop stopped. A result that raced the
// shutdown is still returned.
func (s *Session) abandon(w *waiter, stop func(*fprint.Device) error) (outcome, error) {
	select {
	case res := <-w.result:
		return unwrap(res)
	default:
	}
	_ = stop(s.dev)
	return outcome{}, ErrStopped
}

func unwrap(res mo.Either[outcome, error]) (outcome, error) {
	if err, ok := res.Right(); ok {
		return outcome{}, err
	}
	return res.MustLeft(), nil
}

// Enroll captures a new print. onStage, if set, is called after every
// intermediate stage with the number of stages passed so far.
func (s *Session) Enroll(ctx context.Context, onStage func(stage int)) (*fprint.PrintData, error) {
	w := newWaiter(onStage)
	if err := s.begin(w); err != nil {
		return nil, err
	}
	defer s.end()

	if err := s.drv.EnrollStart(s.dev); err != nil {
		return nil, err
	}

	o, err := s.wait(ctx, w, s.drv.EnrollStop)
	if err != nil {
		return nil, err
	}
	return o.print, nil
}

// Verify captures a probe and reports whether it matches pd.
func (s *Session) Verify(ctx context.Context, pd *fprint.PrintData) (bool, error) {
	w := newWaiter(nil)
	if err := s.begin(w); err != nil {
		return false, err
	}
	defer s.end()

	s.dev.VerifyData = pd
	if err := s.drv.VerifyStart(s.dev); err != nil {
		return false, err
	}

	o, err := s.wait(ctx, w, s.drv.VerifyStop)
	if err != nil {
		return false, err
	}
	return o.match, nil
}
