// Package sim provides an in-memory stand-in for the vendor engine. It
// reports sensor activity from its own goroutine, the way the vendor's
// worker thread does, and matches templates byte for byte.
package sim

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/go-ctap/vkapi/pkg/vkx"
)

var ErrBusy = errors.New("sim: capture already running")

// DefaultTemplate is the finger presented when none was set with Present.
var DefaultTemplate = []byte("sim-finger-0001")

type Option func(*Engine)

// WithDelay sets the pause between two sensor events. The default is zero.
func WithDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.delay = d
	}
}

// WithConnectResult makes Connect report r.
func WithConnectResult(r vkx.Result) Option {
	return func(e *Engine) {
		e.connectResult = r
	}
}

// WithStages sets how many progress reports an enrollment capture emits.
func WithStages(n int) Option {
	return func(e *Engine) {
		e.stages = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// Engine implements vkx.Engine without hardware.
type Engine struct {
	mu            sync.Mutex
	cb            vkx.Callbacks
	connected     bool
	connectResult vkx.Result
	stages        int
	delay         time.Duration
	finger        []byte
	failures      []vkx.Result
	cancel        context.CancelFunc
	done          chan struct{}

	// buf is handed to OnTemplate and wiped afterwards.
	buf []byte

	logger *slog.Logger
}

var _ vkx.Engine = (*Engine)(nil)

func New(opts ...Option) *Engine {
	e := &Engine{
		connectResult: vkx.VKX_RESULT_SUCCESS,
		stages:        3,
		finger:        slices.Clone(DefaultTemplate),
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "sim")
	return e
}

// Present sets the template the sensor reads on following captures.
func (e *Engine) Present(template []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.finger = slices.Clone(template)
}

// Inject makes the next capture report code through OnError instead of
// delivering a template. Codes queue up in order.
func (e *Engine) Inject(code vkx.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures = append(e.failures, code)
}

// Running reports whether a capture is in progress.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancel != nil
}

func (e *Engine) SetCallbacks(cb vkx.Callbacks) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cb = cb
	return nil
}

func (e *Engine) Connect() (vkx.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cb == nil {
		return vkx.VKX_RESULT_FAIL, vkx.ErrNotBound
	}
	e.connected = e.connectResult == vkx.VKX_RESULT_SUCCESS
	e.logger.Debug("connect", "result", e.connectResult.String())
	return e.connectResult, nil
}

func (e *Engine) Disconnect() error {
	e.halt()

	e.mu.Lock()
	e.connected = false
	cb := e.cb
	e.mu.Unlock()

	if cb != nil {
		cb.OnStatus(vkx.STATUS_SENSOR_CLOSE)
	}
	return nil
}

// Abort stops the running capture and returns once its goroutine exited.
func (e *Engine) Abort() error {
	if !e.halt() {
		return nil
	}

	e.mu.Lock()
	cb := e.cb
	e.mu.Unlock()
	if cb != nil {
		cb.OnStatus(vkx.STATUS_USER_ABORT)
	}
	return nil
}

func (e *Engine) halt() bool {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel()
	<-done
	return true
}

func (e *Engine) CaptureVerifyTemplate() error {
	return e.capture(vkx.OP_TYPE_VERIFY)
}

func (e *Engine) CaptureEnrollTemplate() error {
	return e.capture(vkx.OP_TYPE_ENROLL)
}

func (e *Engine) Compare(enrolled, probe []byte) (vkx.Result, int, error) {
	if bytes.Equal(enrolled, probe) {
		return vkx.VKX_RESULT_MATCHED, 100, nil
	}
	return vkx.VKX_RESULT_NOT_MATCHED, 0, nil
}

func (e *Engine) capture(op vkx.OperationType) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cb == nil {
		return vkx.ErrNotBound
	}
	if e.cancel != nil {
		return ErrBusy
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})

	go e.run(ctx, op, e.cb, e.connected, e.done)
	return nil
}

func (e *Engine) run(ctx context.Context, op vkx.OperationType, cb vkx.Callbacks, connected bool, done chan struct{}) {
	defer func() {
		e.mu.Lock()
		e.cancel()
		e.cancel = nil
		e.done = nil
		e.mu.Unlock()
		close(done)
	}()

	logger := e.logger.With("op", op.String())
	logger.Debug("capture started")

	if !connected {
		cb.OnError(vkx.VKX_RESULT_NOT_CONNECTED)
		return
	}

	for {
		if !e.wait(ctx) {
			return
		}
		cb.OnStatus(vkx.STATUS_SENSOR_OPEN)
		cb.OnStatus(vkx.STATUS_OPERATION_BEGIN)

		if code, ok := e.nextFailure(); ok {
			if !e.wait(ctx) {
				return
			}
			if cb.OnError(code) {
				logger.Debug("retrying capture", "code", code.String())
				continue
			}
			return
		}

		if op == vkx.OP_TYPE_ENROLL {
			for stage := 1; stage <= e.stages; stage++ {
				if !e.wait(ctx) {
					return
				}
				cb.OnStatus(vkx.STATUS_FINGER_DETECTED)
				cb.OnEnrollProgress(stage)
			}
		} else {
			if !e.wait(ctx) {
				return
			}
			cb.OnStatus(vkx.STATUS_FINGER_DETECTED)
		}

		if !e.wait(ctx) {
			return
		}
		cb.OnStatus(vkx.STATUS_IMAGE_READY)
		if e.deliver(cb) {
			continue
		}
		cb.OnStatus(vkx.STATUS_OPERATION_END)
		return
	}
}

// deliver passes the template through a buffer the engine owns and wipes it
// afterwards.
func (e *Engine) deliver(cb vkx.Callbacks) bool {
	e.mu.Lock()
	e.buf = append(e.buf[:0], e.finger...)
	buf := e.buf
	e.mu.Unlock()

	retry := cb.OnTemplate(buf)
	clear(buf)
	return retry
}

func (e *Engine) nextFailure() (vkx.Result, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.failures) == 0 {
		return 0, false
	}
	code := e.failures[0]
	e.failures = e.failures[1:]
	return code, true
}

func (e *Engine) wait(ctx context.Context) bool {
	if e.delay <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(e.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
