package copier

import (
	"reflect"

	"reflect-cloner/faults"
	"reflect-cloner/internal/common"
)

// Self is implemented by types that copy themselves. CloneWith is used for
// values of T unless a copier is registered for T.
type Self[T any] interface {
	CloneWith(ctx Context) (T, error)
}

const selfMethod = "CloneWith"

// selfCopier calls the CloneWith method of the copied value.
type selfCopier struct {
	typ   reflect.Type
	index int
}

// selfCopierOf returns the Copier of a type implementing Self of itself.
func selfCopierOf(t reflect.Type) (Copier, bool) {
	if t.Kind() == reflect.Interface {
		return nil, false
	}

	m, ok := t.MethodByName(selfMethod)
	if !ok {
		return nil, false
	}

	// m.Type includes the receiver
	mt := m.Type
	if mt.NumIn() != 2 || mt.In(1) != contextType || mt.NumOut() != 2 || mt.Out(0) != t || mt.Out(1) != errorType {
		return nil, false
	}

	return &selfCopier{typ: t, index: m.Index}, true
}

func (c *selfCopier) Type() reflect.Type { return c.typ }

func (c *selfCopier) String() string { return "(" + common.TypeName(c.typ) + ")." + selfMethod }

func (c *selfCopier) Copy(src reflect.Value, ctx Context) (reflect.Value, error) {
	out := src.Method(c.index).Call([]reflect.Value{reflect.ValueOf(&ctx).Elem()})

	if err := asError(out[1]); err != nil {
		return reflect.Value{}, &faults.CopierError{Type: c.typ, Err: err}
	}

	return out[0], nil
}
