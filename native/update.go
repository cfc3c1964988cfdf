package native

// UpdateRequester schedules a native-side refresh of one object. It refers
// to the object by handle only, so it may outlive the callback it was
// obtained in and even the object itself. Requests for a destroyed object
// are refused, and a request still pending when the object is destroyed is
// dropped, even if another object has taken its table slot.
type UpdateRequester struct {
	rt     *Runtime
	handle Handle
}

// Handle returns the object the requester refers to.
func (u *UpdateRequester) Handle() Handle {
	return u.handle
}

// Request schedules the refresh and returns immediately. It is safe to call
// from any goroutine. It reports false when the request was coalesced with
// one already pending, the object was destroyed or the runtime is closed.
func (u *UpdateRequester) Request() bool {
	if u == nil || u.rt == nil {
		return false
	}
	return u.rt.requestUpdate(u.handle)
}
