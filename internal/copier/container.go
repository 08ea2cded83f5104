package copier

import (
	"fmt"
	"iter"
	"reflect"
	"sync"

	"reflect-cloner/internal/access"
)

// Container copies a collection type the walker cannot traverse on its own.
//
// For pointer and map container types the walker calls Empty, registers the
// result as the copy of src and then calls Fill, so elements referring back
// to the container resolve to the registered copy. For other types Fill is
// called directly on the zero value in place.
type Container interface {
	Type() reflect.Type
	Empty(src reflect.Value) (reflect.Value, error)
	// Fill adds copies of the entries of src to dst in src's iteration order.
	Fill(dst, src reflect.Value, ctx Context) error
}

// Sequence adapts an ordered container type C holding elements of type E. C
// must be a pointer or map type; add mutates the container it is given.
func Sequence[C any, E any](all func(C) iter.Seq[E], empty func() C, add func(C, E)) Container {
	if all == nil || empty == nil || add == nil {
		panic("sequence adapter functions cannot be nil")
	}

	return &sequence[C, E]{typ: referenceType[C](), all: all, empty: empty, add: add}
}

// Mapping adapts a keyed container type C. C must be a pointer or map type;
// put mutates the container it is given.
func Mapping[C any, K any, V any](all func(C) iter.Seq2[K, V], empty func() C, put func(C, K, V)) Container {
	if all == nil || empty == nil || put == nil {
		panic("mapping adapter functions cannot be nil")
	}

	return &mapping[C, K, V]{typ: referenceType[C](), all: all, empty: empty, put: put}
}

func referenceType[C any]() reflect.Type {
	t := reflect.TypeFor[C]()
	if t.Kind() != reflect.Ptr && t.Kind() != reflect.Map {
		panic(fmt.Sprintf("container type %s must be a pointer or a map", t))
	}

	return t
}

type sequence[C any, E any] struct {
	typ   reflect.Type
	all   func(C) iter.Seq[E]
	empty func() C
	add   func(C, E)
}

func (s *sequence[C, E]) Type() reflect.Type { return s.typ }

func (s *sequence[C, E]) Empty(reflect.Value) (reflect.Value, error) {
	return reflect.ValueOf(s.empty()), nil
}

func (s *sequence[C, E]) Fill(dst, src reflect.Value, ctx Context) error {
	target := as[C](dst)

	for e := range s.all(as[C](src)) {
		ce, err := Copy(ctx, e)
		if err != nil {
			return err
		}

		s.add(target, ce)
	}

	return nil
}

type mapping[C any, K any, V any] struct {
	typ   reflect.Type
	all   func(C) iter.Seq2[K, V]
	empty func() C
	put   func(C, K, V)
}

func (m *mapping[C, K, V]) Type() reflect.Type { return m.typ }

func (m *mapping[C, K, V]) Empty(reflect.Value) (reflect.Value, error) {
	return reflect.ValueOf(m.empty()), nil
}

func (m *mapping[C, K, V]) Fill(dst, src reflect.Value, ctx Context) error {
	target := as[C](dst)

	for k, v := range m.all(as[C](src)) {
		ck, err := Copy(ctx, k)
		if err != nil {
			return err
		}

		cv, err := Copy(ctx, v)
		if err != nil {
			return err
		}

		m.put(target, ck, cv)
	}

	return nil
}

var syncMapType = reflect.TypeFor[sync.Map]()

// syncMap copies sync.Map values in place.
type syncMap struct{}

func (syncMap) Type() reflect.Type { return syncMapType }

func (syncMap) Empty(reflect.Value) (reflect.Value, error) {
	return reflect.New(syncMapType).Elem(), nil
}

func (syncMap) Fill(dst, src reflect.Value, ctx Context) error {
	in := access.Addressable(src).Addr().Interface().(*sync.Map)
	out := dst.Addr().Interface().(*sync.Map)

	var err error

	in.Range(func(k, v any) bool {
		var ck, cv any

		if ck, err = Copy(ctx, k); err != nil {
			return false
		}

		if cv, err = Copy(ctx, v); err != nil {
			return false
		}

		out.Store(ck, cv)

		return true
	})

	return err
}
