// Package native is the native object system the bridge talks to.
//
// Objects live in a wazero-backed heap at fixed addresses and are reached
// through a Handle. A Declaration names the type, its ABI version and its
// ordered properties; the storage of an object is a record with one field per
// property, laid out from the property wit types.
//
// Access follows the pinned reference discipline:
//
//	rt.Enter(h, func(cpp native.Pinned) error {
//	    return cpp.Set(0, src) // compares, assigns in place, notifies
//	})
//
// Enter hands out the single exclusive Pinned reference for the duration of a
// callback; View hands out a shared Ref. Neither takes a lock. Both must be
// called on the goroutine that drives the runtime's event loop, which is the
// goroutine calling ProcessEvents.
//
// Change notifications are synchronous: a Set that changes a value calls the
// declaration's Changed hook before it returns. Update requests are
// asynchronous: UpdateRequester.Request may be called from any goroutine and
// is delivered, coalesced per object, by the next ProcessEvents.
package native
