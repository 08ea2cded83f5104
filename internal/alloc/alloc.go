// Package alloc creates blank instances of arbitrary types without running
// constructor logic.
package alloc

import (
	"reflect"

	"reflect-cloner/faults"
	"reflect-cloner/internal/access"
	"reflect-cloner/internal/common"
)

// Factory returns a blank instance used in place of the zero value, for types
// whose zero value is not a valid empty instance. The result must have the
// registered type.
type Factory func() reflect.Value

// Allocator makes copy shells. It is safe for concurrent use once built.
type Allocator struct {
	capability access.Capability
	factories  map[reflect.Type]Factory
}

// New returns an allocator consulting c and the given factories.
func New(c access.Capability, factories map[reflect.Type]Factory) *Allocator {
	if c == nil {
		c = access.Default()
	}

	return &Allocator{capability: c, factories: factories}
}

// New returns an addressable blank value of t.
func (a *Allocator) New(t reflect.Type) (reflect.Value, error) {
	if err := a.check(t); err != nil {
		return reflect.Value{}, err
	}

	if f, ok := a.factories[t]; ok {
		v := f()
		if !v.IsValid() || v.Type() != t {
			return reflect.Value{}, &faults.UninstantiableTypeError{Type: t, Reason: "factory returned a value of another type"}
		}

		return access.Addressable(v), nil
	}

	return reflect.New(t).Elem(), nil
}

// NewPointer returns a new *elem pointing at a blank elem.
func (a *Allocator) NewPointer(elem reflect.Type) (reflect.Value, error) {
	v, err := a.New(elem)
	if err != nil {
		return reflect.Value{}, err
	}

	if _, ok := a.factories[elem]; !ok {
		// reflect.New(t).Elem() is already backed by its own allocation.
		return v.Addr(), nil
	}

	p := reflect.New(elem)
	p.Elem().Set(v)

	return p, nil
}

// MakeSlice returns a slice of type t with the given length and capacity.
func (a *Allocator) MakeSlice(t reflect.Type, length, capacity int) (reflect.Value, error) {
	if err := a.check(t); err != nil {
		return reflect.Value{}, err
	}

	if t.Kind() != reflect.Slice {
		return reflect.Value{}, &faults.UninstantiableTypeError{Type: t, Reason: "not a slice type"}
	}

	if !common.IsInRange(0, length, capacity) {
		return reflect.Value{}, &faults.UninstantiableTypeError{Type: t, Reason: "invalid length or capacity"}
	}

	return reflect.MakeSlice(t, length, capacity), nil
}

// MakeMap returns an empty map of type t sized for size entries.
func (a *Allocator) MakeMap(t reflect.Type, size int) (reflect.Value, error) {
	if err := a.check(t); err != nil {
		return reflect.Value{}, err
	}

	if t.Kind() != reflect.Map {
		return reflect.Value{}, &faults.UninstantiableTypeError{Type: t, Reason: "not a map type"}
	}

	if _, ok := a.factories[t]; ok {
		return a.New(t)
	}

	return reflect.MakeMapWithSize(t, max(size, 0)), nil
}

func (a *Allocator) check(t reflect.Type) error {
	if t == nil {
		return &faults.UninstantiableTypeError{Reason: "no concrete type"}
	}

	if t.Kind() == reflect.Interface {
		return &faults.UninstantiableTypeError{Type: t, Reason: "interface type without a concrete value"}
	}

	if !a.capability.CanAllocate(t) {
		return &faults.UninstantiableTypeError{Type: t, Reason: "refused by " + a.capability.Name() + " capability"}
	}

	return nil
}
