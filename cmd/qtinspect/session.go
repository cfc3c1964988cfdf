package main

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/wippyai/qtbridge/bindings/myobject"
	"github.com/wippyai/qtbridge/bindings/styledobject"
	"github.com/wippyai/qtbridge/bridge"
	"github.com/wippyai/qtbridge/config"
	"github.com/wippyai/qtbridge/errors"
	"github.com/wippyai/qtbridge/native"
)

// targets are the bound types the inspector can construct.
var targets = map[string]func(*native.Runtime) (native.Handle, error){
	"myobject": func(rt *native.Runtime) (native.Handle, error) {
		obj, err := myobject.New(rt)
		if err != nil {
			return 0, err
		}
		return obj.Handle(), nil
	},
	"styledobject": func(rt *native.Runtime) (native.Handle, error) {
		obj, err := styledobject.New(rt)
		if err != nil {
			return 0, err
		}
		return obj.Handle(), nil
	},
}

func targetNames() []string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// session is one runtime with one constructed object.
type session struct {
	rt     *native.Runtime
	handle native.Handle
	decl   *native.Declaration
	events *eventLog
}

func openSession(ctx context.Context, res *config.Resolved, target string) (*session, error) {
	construct, ok := targets[target]
	if !ok {
		return nil, errors.NotFound(errors.PhaseConfig, "type", target)
	}

	events := newEventLog(200)
	opts := append(res.RuntimeOptions(), native.WithObserver(events))
	rt, err := native.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create runtime: %w", err)
	}

	h, err := construct(rt)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("construct %s: %w", target, err)
	}
	typeName, _ := rt.TypeOf(h)
	decl, _ := rt.Lookup(typeName)
	events.name(decl)

	return &session{rt: rt, handle: h, decl: decl, events: events}, nil
}

func (s *session) close(ctx context.Context) error {
	return s.rt.Close(ctx)
}

// set writes one property through the native setter path.
func (s *session) set(name, text string) error {
	index, ok := s.decl.Index(name)
	if !ok {
		return errors.NotFound(errors.PhaseAssign, "property", name)
	}
	ops := s.decl.Properties[index].Ops
	return s.rt.Enter(s.handle, func(cpp native.Pinned) error {
		return setProperty(bridge.NewWrapper(cpp), index, ops, text)
	})
}

// values renders every property in declaration order.
func (s *session) values() []string {
	out := make([]string, len(s.decl.Properties))
	_ = s.rt.View(s.handle, func(r native.Ref) error {
		for i, p := range s.decl.Properties {
			out[i] = formatProperty(r, i, p.Ops)
		}
		return nil
	})
	return out
}

func (s *session) requester() *native.UpdateRequester {
	var u *native.UpdateRequester
	_ = s.rt.View(s.handle, func(r native.Ref) error {
		u = r.UpdateRequester()
		return nil
	})
	return u
}

// eventLog records runtime events. It is written from the event loop and
// from the update ticker, so it is locked.
type eventLog struct {
	mu      sync.Mutex
	limit   int
	entries []string
	updates int
	decls   map[string][]string
}

func newEventLog(limit int) *eventLog {
	return &eventLog{limit: limit, decls: make(map[string][]string)}
}

// name records property names so events can be rendered without touching
// the runtime from the observer.
func (l *eventLog) name(decl *native.Declaration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, len(decl.Properties))
	for i, p := range decl.Properties {
		names[i] = p.Name
	}
	l.decls[decl.Type] = names
}

func (l *eventLog) OnObjectEvent(e native.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := fmt.Sprintf("%s #%d %s", e.TypeName, e.Handle, e.Type)
	if e.Type == native.EventChanged {
		if names := l.decls[e.TypeName]; e.Property >= 0 && e.Property < len(names) {
			line += " " + names[e.Property]
		} else {
			line += fmt.Sprintf(" [%d]", e.Property)
		}
	}
	if e.Type == native.EventUpdated {
		l.updates++
	}
	l.entries = append(l.entries, line)
	if len(l.entries) > l.limit {
		l.entries = l.entries[len(l.entries)-l.limit:]
	}
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

func (l *eventLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	l.updates = 0
}

func (l *eventLog) updateCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.updates
}
