package copier

import (
	"errors"
	"reflect"
	"runtime"
	"strings"

	"reflect-cloner/faults"
)

var (
	ErrNotAFunction = errors.New("provided copier is not a function")
	ErrNotACopier   = errors.New("provided function is not a recognizable copier")
	ErrNilCopier    = errors.New("copier function cannot be nil")
)

// Context gives custom strategies access to the running clone session.
type Context interface {
	// CopyValue deep copies v within the session, so references already
	// copied elsewhere in the graph resolve to the same copy. In breadth first
	// and parallel sessions the result may still be filled after CopyValue
	// returns; it is complete once the session ends.
	CopyValue(v reflect.Value) (reflect.Value, error)
}

// Copy is the typed form of Context.CopyValue.
func Copy[T any](ctx Context, v T) (T, error) {
	cv, err := ctx.CopyValue(reflect.ValueOf(&v).Elem())
	if err != nil {
		var zero T
		return zero, err
	}

	return as[T](cv), nil
}

// Copier produces the copy of values of exactly one type.
//
// The result is registered as the copy of src only after Copy returns, so a
// copier of a reference type must not copy, through ctx, a graph that leads
// back to src itself.
type Copier interface {
	Type() reflect.Type
	Copy(src reflect.Value, ctx Context) (reflect.Value, error)
}

// Func returns a Copier backed by a typed function.
func Func[T any](fn func(T, Context) (T, error)) Copier {
	if fn == nil {
		panic(ErrNilCopier)
	}

	c, err := ParseFunc(fn)
	if err != nil {
		panic(err)
	}

	return c
}

type funcCopier struct {
	typ     reflect.Type
	fn      reflect.Value
	name    string
	withCtx bool
	hasErr  bool
}

var (
	contextType = reflect.TypeOf((*Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// ParseFunc inspects fn and returns a Copier calling it.
//
// Supports signatures:
//   - func(src T) (dst T)
//   - func(src T) (dst T, error)
//   - func(src T, ctx copier.Context) (dst T, error)
func ParseFunc(fn any) (Copier, error) {
	fnVal := reflect.ValueOf(fn)
	if !fnVal.IsValid() || fnVal.Kind() != reflect.Func {
		return nil, ErrNotAFunction
	}

	if fnVal.IsNil() {
		return nil, ErrNilCopier
	}

	fnType := fnVal.Type()
	if fnType.NumIn() == 0 || fnType.NumIn() > 2 || fnType.NumOut() == 0 || fnType.NumOut() > 2 {
		return nil, ErrNotACopier
	}

	typ := fnType.In(0)
	if fnType.Out(0) != typ {
		return nil, ErrNotACopier
	}

	c := &funcCopier{typ: typ, fn: fnVal, name: funcName(fnVal)}

	if fnType.NumIn() == 2 {
		if fnType.In(1) != contextType || fnType.NumOut() != 2 {
			return nil, ErrNotACopier
		}

		c.withCtx = true
	}

	if fnType.NumOut() == 2 {
		if !fnType.Out(1).Implements(errorType) {
			return nil, ErrNotACopier
		}

		c.hasErr = true
	}

	return c, nil
}

func (c *funcCopier) Type() reflect.Type { return c.typ }

func (c *funcCopier) String() string { return c.name }

func (c *funcCopier) Copy(src reflect.Value, ctx Context) (reflect.Value, error) {
	in := []reflect.Value{src}
	if c.withCtx {
		in = append(in, reflect.ValueOf(&ctx).Elem())
	}

	out := c.fn.Call(in)

	if c.hasErr {
		if err := asError(out[1]); err != nil {
			return reflect.Value{}, &faults.CopierError{Type: c.typ, Err: err}
		}
	}

	return out[0], nil
}

func asError(v reflect.Value) error {
	switch v.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	}

	return v.Interface().(error)
}

// funcName returns "alias.Name" for a named function.
func funcName(fn reflect.Value) string {
	f := runtime.FuncForPC(fn.Pointer())
	if f == nil {
		return fn.Type().String()
	}

	name := f.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}

	return name
}

func as[T any](v reflect.Value) T {
	var out T
	if v.IsValid() {
		reflect.ValueOf(&out).Elem().Set(v)
	}

	return out
}
