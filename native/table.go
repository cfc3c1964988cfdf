package native

import (
	"sync"
)

// table maps handles to live objects. Freed slots are reused; each reuse
// bumps the slot's generation, so a handle to a destroyed object never
// resolves to the object that took its slot.
type table struct {
	entries  []entry
	freeList []uint32
	mu       sync.RWMutex
}

type entry struct {
	obj   *object
	gen   uint32
	valid bool
}

func newTable() *table {
	return &table{
		entries:  make([]entry, 0, 64),
		freeList: make([]uint32, 0, 16),
	}
}

func makeHandle(slot, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(slot))
}

func (h Handle) slot() uint32 { return uint32(h) }
func (h Handle) gen() uint32  { return uint32(h >> 32) }

func (t *table) insert(obj *object) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.freeList) > 0 {
		slot := t.freeList[len(t.freeList)-1]
		t.freeList = t.freeList[:len(t.freeList)-1]
		e := &t.entries[slot-1]
		e.obj = obj
		e.gen++
		e.valid = true
		return makeHandle(slot, e.gen)
	}

	t.entries = append(t.entries, entry{obj: obj, valid: true})
	return makeHandle(uint32(len(t.entries)), 0)
}

// lookup returns the entry for h if it is live and of the same generation.
// The caller holds t.mu.
func (t *table) lookup(h Handle) *entry {
	slot := h.slot()
	if slot == 0 || int(slot) > len(t.entries) {
		return nil
	}
	e := &t.entries[slot-1]
	if !e.valid || e.gen != h.gen() {
		return nil
	}
	return e
}

func (t *table) get(h Handle) (*object, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e := t.lookup(h)
	if e == nil {
		return nil, false
	}
	return e.obj, true
}

func (t *table) remove(h Handle) (*object, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.lookup(h)
	if e == nil {
		return nil, false
	}

	obj := e.obj
	e.valid = false
	e.obj = nil
	t.freeList = append(t.freeList, h.slot())
	return obj, true
}

func (t *table) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count := 0
	for _, e := range t.entries {
		if e.valid {
			count++
		}
	}
	return count
}

// handles returns the live handles in slot order.
func (t *table) handles() []Handle {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Handle
	for i, e := range t.entries {
		if e.valid {
			out = append(out, makeHandle(uint32(i+1), e.gen))
		}
	}
	return out
}
