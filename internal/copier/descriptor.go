package copier

import (
	"reflect"
	"sync"

	"reflect-cloner/internal/access"
	"reflect-cloner/policy"
)

// Descriptor is the resolved copy plan of one type. Descriptors are shared by
// every session of a registry and must not be modified.
type Descriptor struct {
	Type reflect.Type
	Kind Kind
	// Action is the type level action, Default when no type rule applies.
	Action policy.Action
	// Plain types hold no references and no field rules anywhere inside
	// their value, so assignment is a complete copy.
	Plain bool
	// Fields lists every struct field in declaration order.
	Fields []Field

	Copier    Copier
	Container Container

	blocked  []string
	warnOnce sync.Once
}

// Field is a struct field together with its field level action. Fields the
// capability cannot reach carry Skip.
type Field struct {
	access.Field
	Action policy.Action
}

// Effective returns the action applied to a value of d's type reached with
// the field level action override.
func (d *Descriptor) Effective(override policy.Action) policy.Action {
	if override != policy.Default {
		return override
	}

	if d.Action != policy.Default {
		return d.Action
	}

	return policy.Copy
}
