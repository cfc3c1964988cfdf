// Package qtbridge connects Go code to a native object model built from
// shared, non-relocatable, mutably aliased objects in the style of a GUI
// toolkit.
//
// Native objects live in native memory and are only reached through handles.
// Go code sees them through short-lived wrappers, converts native value types
// to Go values and back, and receives property change notifications through
// a companion object paired with each native instance.
//
// # Architecture Overview
//
//	qtbridge/            Root package with the Memory and Allocator interfaces
//	├── heap/            wazero linear memory used as the native heap
//	├── layout/          Native type layouts described with wit types
//	├── qtypes/          Value conversion contract (QString, QVariant, QColor, QPointF, QSizeF)
//	├── native/          Native object runtime: declarations, handles, refs, event loop
//	├── bridge/          Wrapper, snapshot schema, change dispatch, lifecycle
//	├── bindings/        Bound object types built on bridge
//	├── config/          YAML configuration for tools
//	├── errors/          Structured error types
//	└── cmd/qtinspect/   Inspector CLI and TUI
//
// # Quick Start
//
//	rt, err := native.New(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	obj, err := myobject.New(rt)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = rt.Enter(obj.Handle(), func(cpp native.Pinned) error {
//	    w := myobject.NewWrapper(cpp)
//	    return w.SetString("Updated string value")
//	})
//
// # Access Discipline
//
// A Pinned reference is the exclusive, non-relocating capability to mutate a
// native object. At most one exists per object at a time; it is handed to
// Go code at the start of a native callback and must not outlive it. A Ref is
// a shared read-only view. Neither is guarded by a lock: all access to one
// object happens on the goroutine running that object's event loop.
//
// # Conversion Results
//
// Conversions that can fail to represent a native value in Go return a
// second boolean result. Operations that fail for other reasons (memory
// access, allocation, an undeclared variant case) return *errors.Error.
// Contract violations such as dispatching to an object with no companion
// panic.
package qtbridge
