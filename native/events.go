package native

// Handle is an opaque reference to a native object in a runtime. The low
// 32 bits select a table slot and the high 32 bits its generation, so a
// handle stops resolving once its object is destroyed, even after the slot
// is reused. Handle 0 is reserved and always invalid.
type Handle uint64

// EventType identifies an object lifecycle notification.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDestroyed
	EventChanged
	EventUpdateRequested
	EventUpdated
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventDestroyed:
		return "destroyed"
	case EventChanged:
		return "changed"
	case EventUpdateRequested:
		return "update-requested"
	case EventUpdated:
		return "updated"
	}
	return "unknown"
}

// Event describes one lifecycle notification. Property is the changed
// property index for EventChanged and -1 otherwise.
type Event struct {
	Type     EventType
	Handle   Handle
	TypeName string
	Property int
}

// Observer receives notifications about object lifecycle events.
// Observers run synchronously on the goroutine that caused the event.
type Observer interface {
	OnObjectEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// OnObjectEvent calls f(e).
func (f ObserverFunc) OnObjectEvent(e Event) { f(e) }

type subscription struct {
	obs Observer
	id  uint64
}

// Dropper is optionally implemented by companions that need cleanup when
// their native object is destroyed.
type Dropper interface {
	Drop()
}
