package driver

import (
	"log/slog"
	"slices"

	"github.com/samber/lo"

	"github.com/go-ctap/vkapi/pkg/metrics"
	"github.com/go-ctap/vkapi/pkg/options"
	"github.com/go-ctap/vkapi/pkg/vkx"
)

// fatalErrors lists the error codes that end the operation they target.
var fatalErrors = []vkx.Result{
	vkx.VKX_RESULT_NOT_CONNECTED,
	vkx.VKX_RESULT_ENROLL_FAIL,
	vkx.VKX_RESULT_ENROLL_DUPLICATED,
}

// Router is the only receiver registered with the engine. The engine gives
// no hint which operation a callback belongs to, so each event goes to the
// active enrollment first, then to the active verification, and is dropped
// when neither exists.
//
// Router never transitions an operation itself: it copies what must be
// copied, answers retry requests and hands the event to its sink.
type Router struct {
	registry *Registry
	sink     func(event)
	retry    options.RetryPolicy
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

var _ vkx.Callbacks = (*Router)(nil)

func newRouter(registry *Registry, sink func(event), retry options.RetryPolicy, logger *slog.Logger, m *metrics.Metrics) *Router {
	if retry == nil {
		retry = options.NoRetry
	}
	return &Router{
		registry: registry,
		sink:     sink,
		retry:    retry,
		logger:   logger,
		metrics:  m,
	}
}

// target returns the operation an anonymous callback is routed to.
func (r *Router) target() (*Operation, bool) {
	if op, ok := r.registry.Active(KindEnroll).Get(); ok {
		return op, true
	}
	return r.registry.Active(KindVerify).Get()
}

func (r *Router) unrouted(kind eventKind, args ...any) {
	r.logger.Debug("discarding callback", append([]any{"event", kind.String(), "err", ErrUnroutedEvent}, args...)...)
	if r.metrics != nil {
		r.metrics.IncrementUnrouted(kind.String())
	}
}

func (r *Router) OnStatus(status vkx.Status) {
	r.logger.Debug(status.String())
	if status != vkx.STATUS_OPERATION_BEGIN {
		return
	}

	op, ok := r.target()
	if !ok {
		r.unrouted(eventBegin)
		return
	}
	r.sink(event{kind: eventBegin, op: op})
}

func (r *Router) OnError(code vkx.Result) bool {
	r.logger.Debug(code.String())
	if r.metrics != nil {
		r.metrics.IncrementEngineError(code.String())
	}

	if r.retry(code) {
		r.logger.Info("engine retrying after error", "code", code.String())
		return true
	}

	if !lo.Contains(fatalErrors, code) {
		return false
	}

	op, ok := r.target()
	if !ok {
		r.unrouted(eventError, "code", code.String())
		return false
	}
	if op.kind != KindEnroll && code != vkx.VKX_RESULT_NOT_CONNECTED {
		r.logger.Debug("enroll error during verification", "code", code.String())
		return false
	}

	r.sink(event{kind: eventError, op: op, code: code})
	return false
}

func (r *Router) OnEnrollProgress(stage int) {
	op, ok := r.registry.Active(KindEnroll).Get()
	if !ok {
		r.unrouted(eventProgress, "stage", stage)
		return
	}
	r.sink(event{kind: eventProgress, op: op, stage: stage})
}

// OnTemplate copies the template before returning; the engine reuses the
// buffer once the callback is done.
func (r *Router) OnTemplate(template []byte) bool {
	op, ok := r.target()
	if !ok {
		r.unrouted(eventTemplate, "size", len(template))
		return false
	}
	r.sink(event{kind: eventTemplate, op: op, data: slices.Clone(template)})
	return false
}

func (r *Router) OnImage(width, height int, _ []byte, quality int) bool {
	r.logger.Debug("image callback ignored", "width", width, "height", height, "quality", quality)
	return false
}
