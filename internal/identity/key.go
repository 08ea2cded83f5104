package identity

import "reflect"

// Key identifies a reference instance.
type Key struct {
	Type reflect.Type
	Addr uintptr
	Cap  int
}

// KeyOf returns the key of v and false when v has no identity.
func KeyOf(v reflect.Value) (Key, bool) {
	if !v.IsValid() {
		return Key{}, false
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Map:
		if v.IsNil() {
			return Key{}, false
		}

		return Key{Type: v.Type(), Addr: v.Pointer()}, true

	case reflect.Slice:
		if v.IsNil() {
			return Key{}, false
		}

		return Key{Type: v.Type(), Addr: v.Pointer(), Cap: v.Cap()}, true

	default:
		return Key{}, false
	}
}
