package driver

import (
	"sync/atomic"

	"github.com/samber/mo"

	"github.com/go-ctap/vkapi/pkg/fprint"
)

// Registry tracks the device bound to the engine connection and the one
// enroll and one verify operation that may be running on it.
//
// Reads through Active, IsActive and Device are safe from any goroutine.
// Bind, Begin, Complete and Reset must only be called by the registry's
// owner while it holds its lock.
type Registry struct {
	device atomic.Pointer[fprint.Device]
	enroll atomic.Pointer[Operation]
	verify atomic.Pointer[Operation]
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) slot(kind Kind) *atomic.Pointer[Operation] {
	if kind == KindEnroll {
		return &r.enroll
	}
	return &r.verify
}

// Bind records dev as the device owning the engine connection.
func (r *Registry) Bind(dev *fprint.Device) error {
	if !r.device.CompareAndSwap(nil, dev) {
		return ErrAlreadyOpen
	}
	return nil
}

// Device returns the bound device, if any.
func (r *Registry) Device() mo.Option[*fprint.Device] {
	if dev := r.device.Load(); dev != nil {
		return mo.Some(dev)
	}
	return mo.None[*fprint.Device]()
}

// Begin registers op in the slot of its kind. It fails with ErrAlreadyActive
// when an operation of either kind is already registered, since enrollment
// and verification share the sensor.
func (r *Registry) Begin(op *Operation) error {
	dev := r.device.Load()
	if dev == nil {
		return ErrNotOpen
	}
	if op.device != dev {
		return ErrDeviceMismatch
	}

	if active := r.slot(op.kind).Load(); active != nil {
		return newErrorMessage(ErrAlreadyActive, active.kind.String()+" "+active.id.String()+" in progress")
	}
	other := KindVerify
	if op.kind == KindVerify {
		other = KindEnroll
	}
	if active := r.slot(other).Load(); active != nil {
		return newErrorMessage(ErrAlreadyActive, active.kind.String()+" "+active.id.String()+" in progress")
	}

	r.slot(op.kind).Store(op)
	return nil
}

// Complete clears the slot of kind. It reports whether an operation was
// removed; clearing an empty slot is a no-op.
func (r *Registry) Complete(kind Kind) bool {
	return r.slot(kind).Swap(nil) != nil
}

// Active returns the operation registered for kind.
func (r *Registry) Active(kind Kind) mo.Option[*Operation] {
	if op := r.slot(kind).Load(); op != nil {
		return mo.Some(op)
	}
	return mo.None[*Operation]()
}

// IsActive reports whether op is still the registered operation of its kind.
func (r *Registry) IsActive(op *Operation) bool {
	return op != nil && r.slot(op.kind).Load() == op
}

// Reset unbinds the device and clears both slots, returning the operations
// that were still registered.
func (r *Registry) Reset() []*Operation {
	var inflight []*Operation
	for _, kind := range []Kind{KindEnroll, KindVerify} {
		if op := r.slot(kind).Swap(nil); op != nil {
			inflight = append(inflight, op)
		}
	}
	r.device.Store(nil)
	return inflight
}
