package identity

import (
	"reflect"
	"sync"

	"reflect-cloner/faults"
)

// Allocate returns a fresh copy shell for an original that has none yet.
type Allocate func() (reflect.Value, error)

// Table is the identity map contract the walker relies on.
type Table interface {
	// Get returns the copy registered for original. Values without an
	// identity are returned unchanged with ok set.
	Get(original reflect.Value) (copy reflect.Value, ok bool)
	// Put registers copy for original. Putting the same pair twice is a
	// no-op; mapping an original to a second copy fails.
	Put(original, copy reflect.Value) error
	// Claim returns the copy already registered for original, or allocates
	// and registers one. claimed is true when this call allocated it, in
	// which case the caller is responsible for filling the copy.
	Claim(original reflect.Value, alloc Allocate) (copy reflect.Value, claimed bool, err error)
	// Len returns the number of registered originals.
	Len() int
}

// Map is the single writer Table used by sequential sessions.
type Map struct {
	entries map[Key]reflect.Value
}

// New returns an empty Map.
func New() *Map {
	return &Map{entries: make(map[Key]reflect.Value)}
}

func (m *Map) Get(original reflect.Value) (reflect.Value, bool) {
	k, ok := KeyOf(original)
	if !ok {
		return original, true
	}

	cp, ok := m.entries[k]

	return cp, ok
}

func (m *Map) Put(original, cp reflect.Value) error {
	k, ok := KeyOf(original)
	if !ok {
		return nil
	}

	if have, exists := m.entries[k]; exists {
		if same(have, cp) {
			return nil
		}

		return &faults.DuplicateMappingError{Type: original.Type()}
	}

	m.entries[k] = cp

	return nil
}

func (m *Map) Claim(original reflect.Value, alloc Allocate) (reflect.Value, bool, error) {
	k, ok := KeyOf(original)
	if !ok {
		return original, false, nil
	}

	if cp, exists := m.entries[k]; exists {
		return cp, false, nil
	}

	cp, err := alloc()
	if err != nil {
		return reflect.Value{}, false, err
	}

	m.entries[k] = cp

	return cp, true, nil
}

func (m *Map) Len() int {
	return len(m.entries)
}

// Concurrent is a Table safe for use by the parallel walker.
type Concurrent struct {
	mu sync.Mutex
	m  Map
}

// NewConcurrent returns an empty Concurrent table.
func NewConcurrent() *Concurrent {
	return &Concurrent{m: Map{entries: make(map[Key]reflect.Value)}}
}

func (c *Concurrent) Get(original reflect.Value) (reflect.Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.m.Get(original)
}

func (c *Concurrent) Put(original, cp reflect.Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.m.Put(original, cp)
}

// Claim holds the lock across alloc, so exactly one caller allocates the copy
// of any original.
func (c *Concurrent) Claim(original reflect.Value, alloc Allocate) (reflect.Value, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.m.Claim(original, alloc)
}

func (c *Concurrent) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.m.Len()
}

func same(a, b reflect.Value) bool {
	ka, okA := KeyOf(a)
	kb, okB := KeyOf(b)

	if okA != okB {
		return false
	}

	if !okA {
		return a.IsValid() == b.IsValid() && (!a.IsValid() || a.Type() == b.Type())
	}

	return ka == kb
}
