package native

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wippyai/qtbridge/errors"
	"github.com/wippyai/qtbridge/qtypes"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnObjectEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func newTestRuntime(t *testing.T, opts ...Option) *Runtime {
	t.Helper()
	ctx := context.Background()
	rt, err := New(ctx, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close(ctx) })
	return rt
}

func declare(t *testing.T, rt *Runtime, decl Declaration) {
	t.Helper()
	if err := rt.Declare(decl); err != nil {
		t.Fatalf("Declare failed: %v", err)
	}
}

// setInt writes v through the native setter of property index.
func setInt(t *testing.T, cpp Pinned, index int, v int32) {
	t.Helper()
	src, err := qtypes.Alloc(cpp.Memory(), qtypes.Int32)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	defer qtypes.Release(src, qtypes.Int32)
	if err := qtypes.Int32.Construct(src, v); err != nil {
		t.Fatalf("Construct failed: %v", err)
	}
	if err := cpp.Set(index, src); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
}

func TestRuntime_ConstructZeroed(t *testing.T) {
	rt := newTestRuntime(t)
	declare(t, rt, testDeclaration())

	h, err := rt.Construct("MyObject")
	if err != nil {
		t.Fatalf("Construct failed: %v", err)
	}
	if h == 0 {
		t.Fatal("Construct returned handle 0")
	}

	err = rt.View(h, func(r Ref) error {
		n, ok := qtypes.Int32.Read(r.Slot(0))
		if !ok || n != 0 {
			t.Errorf("number = %d, %v", n, ok)
		}
		s, ok := qtypes.String.Read(r.Slot(1))
		if !ok || s != "" {
			t.Errorf("string = %q, %v", s, ok)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
}

func TestRuntime_ConstructUnknownType(t *testing.T) {
	rt := newTestRuntime(t)

	_, err := rt.Construct("Nope")
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLifecycle, Kind: errors.KindNotFound}) {
		t.Errorf("Construct = %v, want not_found", err)
	}
}

func TestRuntime_DeclareTwice(t *testing.T) {
	rt := newTestRuntime(t)
	declare(t, rt, testDeclaration())

	if err := rt.Declare(testDeclaration()); err == nil {
		t.Error("expected error declaring a type twice")
	}
	if diff := cmp.Diff([]string{"MyObject"}, rt.Types()); diff != "" {
		t.Errorf("Types mismatch (-want +got):\n%s", diff)
	}
}

func TestPinned_SetNotifies(t *testing.T) {
	rt := newTestRuntime(t)
	decl := testDeclaration()
	var changed []int
	decl.Hooks.Changed = func(cpp Pinned, property int) {
		changed = append(changed, property)
	}
	declare(t, rt, decl)

	h, err := rt.Construct("MyObject")
	if err != nil {
		t.Fatalf("Construct failed: %v", err)
	}

	err = rt.Enter(h, func(cpp Pinned) error {
		setInt(t, cpp, 0, 5)
		setInt(t, cpp, 0, 5)
		setInt(t, cpp, 0, 6)
		return nil
	})
	if err != nil {
		t.Fatalf("Enter failed: %v", err)
	}

	if diff := cmp.Diff([]int{0, 0}, changed); diff != "" {
		t.Errorf("changed mismatch (-want +got):\n%s", diff)
	}
}

func TestPinned_ReentrantSet(t *testing.T) {
	rt := newTestRuntime(t)
	decl := testDeclaration()
	decl.Properties = append(decl.Properties, PropertyDecl{Name: "mirror", Ops: qtypes.Int32})
	var order []int
	decl.Hooks.Changed = func(cpp Pinned, property int) {
		order = append(order, property)
		if property == 0 {
			n, _ := qtypes.Int32.Read(cpp.Slot(0))
			setInt(t, cpp.AsMut(), 2, n*2)
		}
	}
	declare(t, rt, decl)

	h, _ := rt.Construct("MyObject")
	_ = rt.Enter(h, func(cpp Pinned) error {
		setInt(t, cpp, 0, 21)
		got, _ := qtypes.Int32.Read(cpp.AsRef().Slot(2))
		if got != 42 {
			t.Errorf("mirror = %d, want 42", got)
		}
		return nil
	})

	if diff := cmp.Diff([]int{0, 2}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestRuntime_InitNotifications(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want int
	}{
		{"suppressed_by_default", nil, 0},
		{"enabled", []Option{WithInitNotifications(true)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := newTestRuntime(t, tt.opts...)
			decl := testDeclaration()
			count := 0
			decl.Hooks.Changed = func(Pinned, int) { count++ }
			decl.Hooks.Initialise = func(cpp Pinned) error {
				setInt(t, cpp, 0, 1)
				return nil
			}
			declare(t, rt, decl)

			h, err := rt.Construct("MyObject")
			if err != nil {
				t.Fatalf("Construct failed: %v", err)
			}
			if count != tt.want {
				t.Errorf("notifications during init = %d, want %d", count, tt.want)
			}

			_ = rt.Enter(h, func(cpp Pinned) error {
				setInt(t, cpp, 0, 2)
				return nil
			})
			if count != tt.want+1 {
				t.Errorf("notifications after init = %d, want %d", count, tt.want+1)
			}
		})
	}
}

func TestRuntime_InitialiseFailure(t *testing.T) {
	rt := newTestRuntime(t)
	decl := testDeclaration()
	decl.Hooks.Initialise = func(Pinned) error {
		return errors.InvalidInput(errors.PhaseLifecycle, "boom")
	}
	declare(t, rt, decl)

	live := rt.Heap().Stats().Live
	if _, err := rt.Construct("MyObject"); err == nil {
		t.Fatal("expected Construct to fail")
	}
	if rt.Len() != 0 {
		t.Errorf("Len = %d, want 0", rt.Len())
	}
	if rt.Heap().Stats().Live != live {
		t.Errorf("Live = %d, want %d", rt.Heap().Stats().Live, live)
	}
}

type dropCompanion struct{ dropped bool }

func (d *dropCompanion) Drop() { d.dropped = true }

func TestRuntime_Destroy(t *testing.T) {
	rt := newTestRuntime(t)
	decl := testDeclaration()
	comp := &dropCompanion{}
	decl.Hooks.Attach = func() any { return comp }
	declare(t, rt, decl)

	live := rt.Heap().Stats().Live
	h, _ := rt.Construct("MyObject")
	_ = rt.Enter(h, func(cpp Pinned) error {
		src, _ := qtypes.Alloc(cpp.Memory(), qtypes.String)
		defer qtypes.Release(src, qtypes.String)
		_ = qtypes.String.Construct(src, "needs a buffer")
		return cpp.Set(1, src)
	})

	if err := rt.Destroy(h); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}
	if !comp.dropped {
		t.Error("companion not dropped")
	}
	if rt.Heap().Stats().Live != live {
		t.Errorf("Live = %d, want %d", rt.Heap().Stats().Live, live)
	}
	if err := rt.Destroy(h); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLifecycle, Kind: errors.KindNotFound}) {
		t.Errorf("second Destroy = %v, want not_found", err)
	}
}

func TestRuntime_DestroyWhilePinned(t *testing.T) {
	rt := newTestRuntime(t)
	declare(t, rt, testDeclaration())
	h, _ := rt.Construct("MyObject")

	err := rt.Enter(h, func(Pinned) error {
		return rt.Destroy(h)
	})
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLifecycle, Kind: errors.KindOutstandingPin}) {
		t.Errorf("Destroy inside Enter = %v, want outstanding_pin", err)
	}
	if err := rt.Destroy(h); err != nil {
		t.Errorf("Destroy after Enter failed: %v", err)
	}
}

func TestRuntime_DoubleEnterPanics(t *testing.T) {
	rt := newTestRuntime(t)
	declare(t, rt, testDeclaration())
	h, _ := rt.Construct("MyObject")

	defer func() {
		r := recover()
		err, ok := r.(*errors.Error)
		if !ok || err.Kind != errors.KindContractViolation {
			t.Errorf("recover = %v, want contract violation", r)
		}
	}()
	_ = rt.Enter(h, func(Pinned) error {
		return rt.Enter(h, func(Pinned) error { return nil })
	})
}

func TestRuntime_HandleReuse(t *testing.T) {
	rt := newTestRuntime(t)
	declare(t, rt, testDeclaration())

	h1, _ := rt.Construct("MyObject")
	h2, _ := rt.Construct("MyObject")
	if h1 == h2 {
		t.Fatal("handles collide")
	}
	_ = rt.Destroy(h1)
	h3, _ := rt.Construct("MyObject")
	if h3 == h1 {
		t.Fatalf("handle %d of destroyed object handed out again", h1)
	}
	if h3.slot() != h1.slot() {
		t.Errorf("slot = %d, want reused %d", h3.slot(), h1.slot())
	}
	if diff := cmp.Diff([]Handle{h3, h2}, rt.Objects()); diff != "" {
		t.Errorf("Objects mismatch (-want +got):\n%s", diff)
	}

	if _, ok := rt.TypeOf(h1); ok {
		t.Error("stale handle resolves to the slot's new object")
	}
	if err := rt.Destroy(h1); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLifecycle, Kind: errors.KindNotFound}) {
		t.Errorf("Destroy(stale) = %v, want not_found", err)
	}
	if err := rt.Enter(h1, func(Pinned) error { return nil }); err == nil {
		t.Error("Enter(stale) succeeded")
	}
	if rt.Len() != 2 {
		t.Errorf("Len = %d, want 2", rt.Len())
	}
}

func TestRuntime_ObserverEvents(t *testing.T) {
	rec := &recorder{}
	rt := newTestRuntime(t, WithObserver(rec))
	declare(t, rt, testDeclaration())

	h, _ := rt.Construct("MyObject")
	_ = rt.Enter(h, func(cpp Pinned) error {
		setInt(t, cpp, 0, 3)
		cpp.UpdateRequester().Request()
		return nil
	})
	rt.ProcessEvents()
	_ = rt.Destroy(h)

	want := []EventType{EventCreated, EventChanged, EventUpdateRequested, EventUpdated, EventDestroyed}
	if diff := cmp.Diff(want, rec.types()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	rt.Unsubscribe(rec)
	_, _ = rt.Construct("MyObject")
	if len(rec.types()) != len(want) {
		t.Error("observer still notified after Unsubscribe")
	}
}

func TestRuntime_SubscribeFunc(t *testing.T) {
	rt := newTestRuntime(t)
	declare(t, rt, testDeclaration())

	var mu sync.Mutex
	var seen []EventType
	fn := ObserverFunc(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, e.Type)
	})
	cancel := rt.Subscribe(fn)
	rec := &recorder{}
	rt.Subscribe(rec)

	// Func observers cannot be compared, so Unsubscribe leaves them alone.
	rt.Unsubscribe(fn)
	rt.Unsubscribe(ObserverFunc(func(Event) {}))

	_, _ = rt.Construct("MyObject")
	if len(seen) != 1 {
		t.Fatalf("func observer saw %d events, want 1", len(seen))
	}

	cancel()
	cancel()
	_, _ = rt.Construct("MyObject")
	if len(seen) != 1 {
		t.Errorf("func observer saw %d events after cancel, want 1", len(seen))
	}
	if got := len(rec.types()); got != 2 {
		t.Errorf("other observer saw %d events, want 2", got)
	}
}

func TestRuntime_CloseRejectsWork(t *testing.T) {
	ctx := context.Background()
	rt, err := New(ctx)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	declare(t, rt, testDeclaration())
	_, _ = rt.Construct("MyObject")

	if err := rt.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if rt.Len() != 0 {
		t.Errorf("Len after Close = %d", rt.Len())
	}
	if _, err := rt.Construct("MyObject"); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLifecycle, Kind: errors.KindClosed}) {
		t.Errorf("Construct after Close = %v", err)
	}
	if err := rt.Post(func() {}); err == nil {
		t.Error("Post after Close succeeded")
	}
	if err := rt.Close(ctx); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
