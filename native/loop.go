package native

import (
	"strconv"

	"github.com/wippyai/qtbridge/errors"
	"go.uber.org/zap"
)

// Post queues fn to run on the event loop goroutine during the next
// ProcessEvents call. It is safe to call from any goroutine.
func (rt *Runtime) Post(fn func()) error {
	rt.queueMu.Lock()
	defer rt.queueMu.Unlock()
	if rt.closed {
		return errors.Closed(errors.PhaseRuntime, "runtime")
	}
	rt.queue = append(rt.queue, fn)
	return nil
}

// ProcessEvents runs the callbacks posted so far, then delivers pending
// update requests, at most one per object, in the order they were first
// requested. Work queued while processing waits for the next call. It
// returns the number of callbacks and updates delivered.
func (rt *Runtime) ProcessEvents() int {
	rt.queueMu.Lock()
	queue := rt.queue
	rt.queue = nil
	rt.queueMu.Unlock()

	n := 0
	for _, fn := range queue {
		fn()
		n++
	}

	rt.queueMu.Lock()
	pending := rt.pending
	rt.pending = nil
	for _, h := range pending {
		delete(rt.queued, h)
	}
	rt.queueMu.Unlock()

	for _, h := range pending {
		obj, ok := rt.objects.get(h)
		if !ok {
			Logger().Debug("dropped update for destroyed object", zap.Uint64("handle", uint64(h)))
			continue
		}
		if hook := obj.class.decl.Hooks.Updated; hook != nil {
			if err := rt.View(h, func(r Ref) error {
				hook(r)
				return nil
			}); err != nil {
				continue
			}
		}
		rt.notify(Event{Type: EventUpdated, Handle: h, TypeName: obj.class.decl.Type, Property: -1})
		n++
	}
	return n
}

// Pending reports whether callbacks or updates are waiting.
func (rt *Runtime) Pending() bool {
	rt.queueMu.Lock()
	defer rt.queueMu.Unlock()
	return len(rt.queue) > 0 || len(rt.pending) > 0
}

// requestUpdate records an update for h. Requests for an object that
// already has one pending are coalesced.
func (rt *Runtime) requestUpdate(h Handle) bool {
	typeName, live := rt.TypeOf(h)
	if !live {
		Logger().Debug("refused update for destroyed object", zap.Uint64("handle", uint64(h)))
		return false
	}

	rt.queueMu.Lock()
	if rt.closed || rt.queued[h] {
		rt.queueMu.Unlock()
		return false
	}
	rt.queued[h] = true
	rt.pending = append(rt.pending, h)
	rt.queueMu.Unlock()

	rt.notify(Event{Type: EventUpdateRequested, Handle: h, TypeName: typeName, Property: -1})
	return true
}

func handleName(h Handle) string {
	return "#" + strconv.FormatUint(uint64(h), 10)
}
