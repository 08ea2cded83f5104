package common

import (
	"reflect"
	"strconv"
)

// TypeName renders t the way policy files and error messages refer to it:
// named types are qualified by their package alias ("testmodel.Order"),
// composite types are spelled out ("[]*testmodel.Order").
func TypeName(t reflect.Type) string {
	return typeName(t, PkgAlias)
}

// QualifiedName is TypeName with full import paths ("reflect-cloner/internal/testmodel.Order").
func QualifiedName(t reflect.Type) string {
	return typeName(t, func(pkgPath string) string { return pkgPath })
}

func typeName(t reflect.Type, qualifier func(string) string) string {
	if t == nil {
		return "<nil>"
	}

	if t.Name() != "" {
		if t.PkgPath() == "" {
			return t.String()
		}

		return qualifier(t.PkgPath()) + "." + t.Name()
	}

	switch t.Kind() {
	case reflect.Ptr:
		return "*" + typeName(t.Elem(), qualifier)
	case reflect.Slice:
		return "[]" + typeName(t.Elem(), qualifier)
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + typeName(t.Elem(), qualifier)
	case reflect.Map:
		return "map[" + typeName(t.Key(), qualifier) + "]" + typeName(t.Elem(), qualifier)
	case reflect.Chan:
		return "chan " + typeName(t.Elem(), qualifier)
	default:
		return t.String()
	}
}
