package native

import (
	"context"
	"reflect"
	"sync"

	"github.com/wippyai/qtbridge/errors"
	"github.com/wippyai/qtbridge/heap"
	"go.uber.org/zap"
)

// Option configures a Runtime.
type Option func(*options)

type options struct {
	heap      []heap.Option
	quietInit bool
	observers []Observer
}

// WithHeap passes options through to the native heap.
func WithHeap(opts ...heap.Option) Option {
	return func(o *options) { o.heap = append(o.heap, opts...) }
}

// WithInitNotifications controls whether property writes made by a
// type's Initialise hook fire change notifications. They are suppressed by
// default.
func WithInitNotifications(enabled bool) Option {
	return func(o *options) { o.quietInit = !enabled }
}

// WithObserver subscribes o before any object exists.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

// Runtime is the native object system: a heap, a handle table of live
// objects, declared types and an event queue.
//
// Object access (Enter, View, Construct, Destroy, ProcessEvents) belongs to
// the goroutine driving the runtime's event loop. Post and
// UpdateRequester.Request are safe from any goroutine.
type Runtime struct {
	heap    *heap.Heap
	objects *table
	classes map[string]*class
	order   []string

	quietInit bool

	observers []subscription
	nextSub   uint64
	obsMu     sync.RWMutex

	queueMu sync.Mutex
	queue   []func()
	pending []Handle
	queued  map[Handle]bool
	closed  bool
}

// New creates a runtime with its own native heap.
func New(ctx context.Context, opts ...Option) (*Runtime, error) {
	o := options{quietInit: true}
	for _, opt := range opts {
		opt(&o)
	}

	h, err := heap.New(ctx, o.heap...)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		heap:      h,
		objects:   newTable(),
		classes:   make(map[string]*class),
		quietInit: o.quietInit,
		queued:    make(map[Handle]bool),
	}
	for _, obs := range o.observers {
		rt.Subscribe(obs)
	}
	return rt, nil
}

// Heap returns the native heap.
func (rt *Runtime) Heap() *heap.Heap {
	return rt.heap
}

// Declare registers a type. The declaration is validated and copied.
func (rt *Runtime) Declare(decl Declaration) error {
	if err := decl.Validate(); err != nil {
		return err
	}
	if _, exists := rt.classes[decl.Type]; exists {
		return errors.InvalidInput(errors.PhaseDeclare, "type "+decl.Type+" already declared")
	}
	decl.Properties = append([]PropertyDecl(nil), decl.Properties...)
	rt.classes[decl.Type] = &class{decl: decl, info: decl.Layout()}
	rt.order = append(rt.order, decl.Type)

	Logger().Debug("declared type",
		zap.String("type", decl.Type),
		zap.String("abi", decl.Version),
		zap.Int("properties", len(decl.Properties)))
	return nil
}

// Lookup returns a declared type.
func (rt *Runtime) Lookup(typeName string) (*Declaration, bool) {
	c, ok := rt.classes[typeName]
	if !ok {
		return nil, false
	}
	return &c.decl, true
}

// Types returns declared type names in declaration order.
func (rt *Runtime) Types() []string {
	return append([]string(nil), rt.order...)
}

// Construct creates an object of a declared type. Storage is zeroed, which
// is a valid empty value for every native type. The companion is attached,
// then Initialise runs with the object pinned. The handle is returned only
// once initialisation succeeded.
func (rt *Runtime) Construct(typeName string) (Handle, error) {
	if rt.isClosed() {
		return 0, errors.Closed(errors.PhaseLifecycle, "runtime")
	}
	c, ok := rt.classes[typeName]
	if !ok {
		return 0, errors.NotFound(errors.PhaseLifecycle, "type", typeName)
	}

	size := c.info.Size
	if size == 0 {
		size = 1
	}
	addr, err := rt.heap.Alloc(size, c.info.Align)
	if err != nil {
		return 0, err
	}

	obj := &object{rt: rt, class: c, addr: addr}
	obj.handle = rt.objects.insert(obj)

	if c.decl.Hooks.Attach != nil {
		obj.companion = c.decl.Hooks.Attach()
	}

	if init := c.decl.Hooks.Initialise; init != nil {
		obj.quiet = rt.quietInit
		err := rt.pinned(obj, init)
		obj.quiet = false
		if err != nil {
			rt.release(obj)
			return 0, errors.New(errors.PhaseLifecycle, errors.KindInvalidData).
				Path(typeName).
				Detail("initialise failed").
				Cause(err).
				Build()
		}
	}

	Logger().Debug("constructed object",
		zap.String("type", typeName),
		zap.Uint64("handle", uint64(obj.handle)))
	rt.notify(Event{Type: EventCreated, Handle: obj.handle, TypeName: typeName, Property: -1})
	return obj.handle, nil
}

// Destroy drops every property value, frees the object's storage and
// releases its handle. It fails while a callback holds the object.
func (rt *Runtime) Destroy(h Handle) error {
	obj, ok := rt.objects.get(h)
	if !ok {
		return errors.NotFound(errors.PhaseLifecycle, "object", handleName(h))
	}
	if obj.pins > 0 {
		return errors.New(errors.PhaseLifecycle, errors.KindOutstandingPin).
			Path(obj.class.decl.Type).
			Value(obj.pins).
			Detail("object %d is in use by %d callback(s)", h, obj.pins).
			Build()
	}
	typeName := obj.class.decl.Type
	rt.release(obj)

	Logger().Debug("destroyed object",
		zap.String("type", typeName),
		zap.Uint64("handle", uint64(h)))
	rt.notify(Event{Type: EventDestroyed, Handle: h, TypeName: typeName, Property: -1})
	return nil
}

func (rt *Runtime) release(obj *object) {
	for i, p := range obj.class.decl.Properties {
		p.Ops.Drop(obj.slot(i))
	}
	size := obj.class.info.Size
	if size == 0 {
		size = 1
	}
	rt.heap.Free(obj.addr, size, obj.class.info.Align)
	rt.objects.remove(obj.handle)
	if d, ok := obj.companion.(Dropper); ok {
		d.Drop()
	}
	obj.dead = true
	obj.companion = nil
}

// Enter runs fn with the exclusive pinned reference to the object. It is
// the start of a native to managed callback. Entering an object that is
// already pinned violates the access discipline and panics.
func (rt *Runtime) Enter(h Handle, fn func(Pinned) error) error {
	obj, ok := rt.objects.get(h)
	if !ok {
		return errors.NotFound(errors.PhaseRuntime, "object", handleName(h))
	}
	return rt.pinned(obj, fn)
}

func (rt *Runtime) pinned(obj *object, fn func(Pinned) error) error {
	if obj.exclusive {
		panic(errors.ContractViolation(errors.PhaseRuntime,
			"second exclusive reference to "+obj.class.decl.Type+" "+handleName(obj.handle)))
	}
	obj.exclusive = true
	obj.pins++
	defer func() {
		obj.pins--
		obj.exclusive = false
	}()
	return fn(Pinned{obj: obj})
}

// View runs fn with a shared reference to the object.
func (rt *Runtime) View(h Handle, fn func(Ref) error) error {
	obj, ok := rt.objects.get(h)
	if !ok {
		return errors.NotFound(errors.PhaseRuntime, "object", handleName(h))
	}
	if obj.exclusive {
		panic(errors.ContractViolation(errors.PhaseRuntime,
			"shared reference to "+obj.class.decl.Type+" "+handleName(h)+" while it is pinned"))
	}
	obj.pins++
	defer func() { obj.pins-- }()
	return fn(Ref{obj: obj})
}

// Len returns the number of live objects.
func (rt *Runtime) Len() int {
	return rt.objects.len()
}

// Objects returns the live handles in ascending order.
func (rt *Runtime) Objects() []Handle {
	return rt.objects.handles()
}

// TypeOf returns the declared type name of a live object.
func (rt *Runtime) TypeOf(h Handle) (string, bool) {
	obj, ok := rt.objects.get(h)
	if !ok {
		return "", false
	}
	return obj.class.decl.Type, true
}

// Subscribe adds an observer for lifecycle events. The returned function
// removes exactly this subscription and works for every observer,
// including an ObserverFunc.
func (rt *Runtime) Subscribe(o Observer) (cancel func()) {
	if o == nil {
		return func() {}
	}
	rt.obsMu.Lock()
	defer rt.obsMu.Unlock()
	rt.nextSub++
	id := rt.nextSub
	rt.observers = append(rt.observers, subscription{id: id, obs: o})
	return func() { rt.removeObserver(func(s subscription) bool { return s.id == id }) }
}

// Unsubscribe removes the first subscription of o. Observers whose dynamic
// type is not comparable, such as ObserverFunc, are never matched; use the
// function returned by Subscribe for those.
func (rt *Runtime) Unsubscribe(o Observer) {
	if o == nil || !reflect.TypeOf(o).Comparable() {
		return
	}
	rt.removeObserver(func(s subscription) bool {
		return reflect.TypeOf(s.obs).Comparable() && s.obs == o
	})
}

func (rt *Runtime) removeObserver(match func(subscription) bool) {
	rt.obsMu.Lock()
	defer rt.obsMu.Unlock()
	for i, s := range rt.observers {
		if match(s) {
			rt.observers = append(rt.observers[:i:i], rt.observers[i+1:]...)
			return
		}
	}
}

func (rt *Runtime) notify(e Event) {
	rt.obsMu.RLock()
	observers := rt.observers
	rt.obsMu.RUnlock()
	for _, s := range observers {
		s.obs.OnObjectEvent(e)
	}
}

// Close destroys every remaining object and releases the heap.
func (rt *Runtime) Close(ctx context.Context) error {
	rt.queueMu.Lock()
	if rt.closed {
		rt.queueMu.Unlock()
		return nil
	}
	rt.closed = true
	rt.queue = nil
	rt.pending = nil
	rt.queueMu.Unlock()

	for _, h := range rt.objects.handles() {
		if obj, ok := rt.objects.get(h); ok {
			rt.release(obj)
		}
	}
	return rt.heap.Close(ctx)
}

func (rt *Runtime) isClosed() bool {
	rt.queueMu.Lock()
	defer rt.queueMu.Unlock()
	return rt.closed
}
