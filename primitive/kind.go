package primitive

import (
	"reflect"
	"time"
)

//go:generate go tool stringer -type=KindEnum -output=kind_string.go

// KindEnum classifies the types whose values are immutable by convention.
// Copying such a value is the same as sharing it.
type KindEnum int

const (
	_ KindEnum = iota // skip zero value, use it as a default (not immutable) value for KindEnum

	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindUintptr
	KindFloat32
	KindFloat64
	KindComplex64
	KindComplex128
	KindBool
	KindString
	KindTime
	KindDuration
	KindPrimitiveEnum // named type over any scalar kind
	KindRuntime       // chan, func, unsafe.Pointer: runtime handles shared by reference

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

// FromReflectType returns the immutable kind of rtype, or zero when values of
// rtype must be traversed to be copied.
func FromReflectType(rtype reflect.Type) KindEnum {
	if rtype == nil {
		return 0
	}

	switch rtype {
	case timeType:
		return KindTime
	case durationType:
		return KindDuration
	}

	var kind KindEnum

	switch rtype.Kind() {
	default:
		return 0
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return KindRuntime
	case reflect.Int:
		kind = KindInt
	case reflect.Int8:
		kind = KindInt8
	case reflect.Int16:
		kind = KindInt16
	case reflect.Int32:
		kind = KindInt32
	case reflect.Int64:
		kind = KindInt64
	case reflect.Uint:
		kind = KindUint
	case reflect.Uint8:
		kind = KindUint8
	case reflect.Uint16:
		kind = KindUint16
	case reflect.Uint32:
		kind = KindUint32
	case reflect.Uint64:
		kind = KindUint64
	case reflect.Uintptr:
		kind = KindUintptr
	case reflect.Float32:
		kind = KindFloat32
	case reflect.Float64:
		kind = KindFloat64
	case reflect.Complex64:
		kind = KindComplex64
	case reflect.Complex128:
		kind = KindComplex128
	case reflect.Bool:
		kind = KindBool
	case reflect.String:
		kind = KindString
	}

	// check if true primitive type or a primitive enum type
	if rtype.PkgPath() != "" {
		return KindPrimitiveEnum
	}

	return kind
}

// IsImmutable reports whether values of rtype can be shared instead of copied.
func IsImmutable(rtype reflect.Type) bool {
	return FromReflectType(rtype) != 0
}
