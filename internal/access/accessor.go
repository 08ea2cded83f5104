package access

import "reflect"

// Field describes one storage slot of a struct type.
type Field struct {
	// Declaring is the struct type declaring the field. Fields promoted from
	// an embedded struct are not listed; the embedded struct is itself a
	// field and its own fields are listed under its own type.
	Declaring  reflect.Type
	Index      int
	Name       string
	Type       reflect.Type
	Tag        reflect.StructTag
	Exported   bool
	Embedded   bool
	Accessible bool
}

// Accessor performs field reads and writes through a Capability.
type Accessor struct {
	capability Capability
}

// New returns an accessor backed by c, or by Default when c is nil.
func New(c Capability) *Accessor {
	if c == nil {
		c = Default()
	}

	return &Accessor{capability: c}
}

// Capability returns the backing capability.
func (a *Accessor) Capability() Capability {
	return a.capability
}

// Fields lists every field of struct type t in declaration order.
func (a *Accessor) Fields(t reflect.Type) []Field {
	fields := make([]Field, t.NumField())

	for i := range fields {
		sf := t.Field(i)
		fields[i] = Field{
			Declaring:  t,
			Index:      i,
			Name:       sf.Name,
			Type:       sf.Type,
			Tag:        sf.Tag,
			Exported:   sf.IsExported(),
			Embedded:   sf.Anonymous,
			Accessible: a.capability.CanAccess(t, sf),
		}
	}

	return fields
}

// View returns f of the addressable struct v as a value that can be read,
// set and used as the source of Set calls even when f is unexported.
func (a *Accessor) View(v reflect.Value, f Field) reflect.Value {
	return a.capability.Open(v, f.Index)
}

// Read returns the value of f in the addressable struct v.
func (a *Accessor) Read(v reflect.Value, f Field) reflect.Value {
	return a.View(v, f)
}

// Write stores x into f of the addressable struct v.
func (a *Accessor) Write(v reflect.Value, f Field, x reflect.Value) {
	a.View(v, f).Set(x)
}

// Addressable returns v itself when it is addressable, otherwise an
// addressable copy of it. v must not have been obtained through an
// unexported field.
func Addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}

	tmp := reflect.New(v.Type()).Elem()
	tmp.Set(v)

	return tmp
}
