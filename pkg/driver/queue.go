package driver

import (
	"context"
	"sync"

	"github.com/go-ctap/vkapi/pkg/vkx"
)

type eventKind int

const (
	eventBegin eventKind = iota + 1
	eventProgress
	eventTemplate
	eventError
	eventBarrier
)

func (k eventKind) String() string {
	switch k {
	case eventBegin:
		return "begin"
	case eventProgress:
		return "progress"
	case eventTemplate:
		return "template"
	case eventError:
		return "error"
	case eventBarrier:
		return "barrier"
	default:
		return "unknown"
	}
}

// event is a vendor callback bound to the operation it was routed to.
type event struct {
	kind  eventKind
	op    *Operation
	stage int
	data  []byte
	code  vkx.Result
	done  chan struct{}
}

// queue is an unbounded FIFO. Pushing never blocks so the engine's thread
// is never held up by the event loop.
type queue struct {
	mu     sync.Mutex
	items  []event
	signal chan struct{}
}

func newQueue() *queue {
	return &queue{signal: make(chan struct{}, 1)}
}

func (q *queue) push(ev event) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// pop blocks until an event is available or ctx is done.
func (q *queue) pop(ctx context.Context) (event, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			ev := q.items[0]
			q.items[0] = event{}
			q.items = q.items[1:]
			q.mu.Unlock()
			return ev, true
		}
		q.mu.Unlock()

		select {
		case <-q.signal:
		case <-ctx.Done():
			return event{}, false
		}
	}
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
