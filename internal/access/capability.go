package access

import (
	"reflect"
	"strings"
	"unsafe"
)

// Capability is the runtime permission required to copy values without the
// cooperation of their types.
type Capability interface {
	// Name identifies the capability in logs.
	Name() string
	// CanAccess reports whether field f declared by struct type declaring can
	// be both read and written.
	CanAccess(declaring reflect.Type, f reflect.StructField) bool
	// CanAllocate reports whether a blank t can be created without running
	// any constructor logic.
	CanAllocate(t reflect.Type) bool
	// Open returns a readable, settable view of field i of the addressable
	// struct value v. Callers check CanAccess first.
	Open(v reflect.Value, i int) reflect.Value
}

// Unsafe accesses unexported fields by address.
type Unsafe struct{}

func (Unsafe) Name() string { return "unsafe" }

func (Unsafe) CanAccess(declaring reflect.Type, f reflect.StructField) bool {
	return f.IsExported() || !isRuntimePackage(declaring.PkgPath())
}

func (Unsafe) CanAllocate(t reflect.Type) bool { return canAllocate(t) }

func (Unsafe) Open(v reflect.Value, i int) reflect.Value {
	fv := v.Field(i)
	if fv.CanSet() {
		return fv
	}

	return reflect.NewAt(fv.Type(), unsafe.Pointer(fv.UnsafeAddr())).Elem()
}

// Exported accesses exported fields only.
type Exported struct{}

func (Exported) Name() string { return "exported" }

func (Exported) CanAccess(_ reflect.Type, f reflect.StructField) bool { return f.IsExported() }

func (Exported) CanAllocate(t reflect.Type) bool { return canAllocate(t) }

func (Exported) Open(v reflect.Value, i int) reflect.Value { return v.Field(i) }

func canAllocate(t reflect.Type) bool {
	return t != nil && t.Kind() != reflect.Interface && t.Kind() != reflect.Invalid
}

// isRuntimePackage reports whether pkgPath belongs to the Go runtime
// internals whose private state must not be duplicated.
func isRuntimePackage(pkgPath string) bool {
	switch pkgPath {
	case "runtime", "reflect", "unsafe":
		return true
	}

	return strings.HasPrefix(pkgPath, "runtime/") || strings.HasPrefix(pkgPath, "internal/")
}
