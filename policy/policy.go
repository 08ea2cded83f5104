package policy

import (
	"reflect"
	"sort"
	"unsafe"

	"github.com/pkg/errors"

	"reflect-cloner/faults"
	"reflect-cloner/internal/common"
)

// TagName is the struct tag key holding a field's action.
const TagName = "clone"

// Marker is implemented by types that declare their own type level action,
// the way an annotation on the type declaration would. ClonePolicy is called
// on a blank value whose embedded pointers are allocated, and must not
// depend on any other state of the receiver. A panic in ClonePolicy is
// reported as an error of the type's resolution.
type Marker interface {
	ClonePolicy() Action
}

// FieldRef identifies a struct field for field level resolution.
type FieldRef struct {
	// Declaring is the struct type that declares the field.
	Declaring reflect.Type
	Name      string
	Type      reflect.Type
	Tag       reflect.StructTag
	Exported  bool
}

// TypePredicate selects types for a TypeFunc rule.
type TypePredicate func(reflect.Type) bool

// FieldPredicate selects fields for a FieldFunc rule.
type FieldPredicate func(FieldRef) bool

type fieldKey struct {
	declaring reflect.Type
	name      string
}

type typeRule struct {
	match  TypePredicate
	action Action
}

type fieldRule struct {
	match  FieldPredicate
	action Action
}

// Policy is an immutable decision table. The zero value is not usable; build
// one with NewBuilder or use Standard.
type Policy struct {
	types      map[reflect.Type]Action
	fields     map[fieldKey]Action
	typeFuncs  []typeRule
	fieldFuncs []fieldRule
	defaults   map[reflect.Type]Action
	ignoreTags bool
}

var standard = NewBuilder().MustBuild()

// Standard returns the policy with no rules besides the process-wide defaults.
func Standard() *Policy {
	return standard
}

var markerType = reflect.TypeOf((*Marker)(nil)).Elem()

// TypeAction resolves the type level action for values of t.
func (p *Policy) TypeAction(t reflect.Type) (Action, error) {
	var found actionSet

	if a, ok := p.types[t]; ok {
		found.add(a)
	}

	for _, r := range p.typeFuncs {
		if r.match(t) {
			found.add(r.action)
		}
	}

	marked, err := markerAction(t)
	if err != nil {
		return Default, err
	}

	found.add(marked)

	if found.conflicting() {
		return Default, &faults.PolicyConflictError{Type: t, Actions: found.names()}
	}

	if a, ok := found.single(); ok {
		return a, nil
	}

	return p.defaults[t], nil
}

// DefaultAction returns the process-wide default action for t, if t has one
// in this policy.
func (p *Policy) DefaultAction(t reflect.Type) (Action, bool) {
	a, ok := p.defaults[t]
	return a, ok
}

// FieldAction resolves the field level action for f. Default means no field
// level rule applies and the value's type level action decides.
func (p *Policy) FieldAction(f FieldRef) (Action, error) {
	var found actionSet

	if a, ok := p.fields[fieldKey{declaring: f.Declaring, name: f.Name}]; ok {
		found.add(a)
	}

	for _, r := range p.fieldFuncs {
		if r.match(f) {
			found.add(r.action)
		}
	}

	if !p.ignoreTags {
		a, err := TagAction(f.Tag)
		if err != nil {
			return Default, errors.Wrapf(err, "field %s.%s", common.TypeName(f.Declaring), f.Name)
		}

		found.add(a)
	}

	if found.conflicting() {
		return Default, &faults.PolicyConflictError{Type: f.Declaring, Field: f.Name, Actions: found.names()}
	}

	a, _ := found.single()

	return a, nil
}

// markerAction calls ClonePolicy on a blank receiver of t. Embedded pointers
// of the receiver are allocated, so a method promoted from an embedded type
// runs on a blank value of that type instead of a nil one.
func markerAction(t reflect.Type) (a Action, err error) {
	if t.Kind() == reflect.Interface || !t.Implements(markerType) {
		return Default, nil
	}

	defer func() {
		if r := recover(); r != nil {
			a, err = Default, errors.Errorf("%s.ClonePolicy panicked: %v", common.TypeName(t), r)
		}
	}()

	var v reflect.Value
	if t.Kind() == reflect.Ptr {
		v = reflect.New(t.Elem())
		fillEmbedded(v.Elem(), map[reflect.Type]bool{t.Elem(): true})
	} else {
		v = reflect.New(t).Elem()
		fillEmbedded(v, map[reflect.Type]bool{t: true})
	}

	return v.Interface().(Marker).ClonePolicy(), nil
}

// fillEmbedded points the nil embedded pointers of the addressable v, and of
// its embedded structs, at blank values.
func fillEmbedded(v reflect.Value, seen map[reflect.Type]bool) {
	if v.Kind() != reflect.Struct {
		return
	}

	for i := range v.NumField() {
		sf := v.Type().Field(i)
		if !sf.Anonymous {
			continue
		}

		// unexported embeds still promote their methods
		f := reflect.NewAt(sf.Type, unsafe.Pointer(v.Field(i).UnsafeAddr())).Elem()

		switch {
		case sf.Type.Kind() == reflect.Struct:
			fillEmbedded(f, seen)
		case sf.Type.Kind() == reflect.Ptr && !seen[sf.Type.Elem()]:
			seen[sf.Type.Elem()] = true
			f.Set(reflect.New(sf.Type.Elem()))
			fillEmbedded(f.Elem(), seen)
		}
	}
}

// actionSet collects the distinct non-default actions of matching rules.
type actionSet struct {
	actions []Action
}

func (s *actionSet) add(a Action) {
	if a == Default {
		return
	}

	for _, have := range s.actions {
		if have == a {
			return
		}
	}

	s.actions = append(s.actions, a)
}

func (s *actionSet) conflicting() bool { return len(s.actions) > 1 }

func (s *actionSet) single() (Action, bool) {
	if len(s.actions) == 1 {
		return s.actions[0], true
	}

	return Default, false
}

func (s *actionSet) names() []string {
	sorted := append([]Action(nil), s.actions...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	out := make([]string, len(sorted))
	for i, a := range sorted {
		out[i] = a.String()
	}

	return out
}
