package policy

import (
	"maps"
	"reflect"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"reflect-cloner/internal/common"
	"reflect-cloner/internal/match"
)

// Builder accumulates rules for a Policy. Builder methods return the builder
// so calls can be chained; configuration mistakes are collected and reported
// by Build.
type Builder struct {
	p    Policy
	errs *multierror.Error
}

// NewBuilder returns a builder preloaded with the process-wide defaults.
func NewBuilder() *Builder {
	return &Builder{
		p: Policy{
			types:    make(map[reflect.Type]Action),
			fields:   make(map[fieldKey]Action),
			defaults: Defaults(),
		},
	}
}

// Type sets the action for values of exactly type t.
func (b *Builder) Type(t reflect.Type, a Action) *Builder {
	if t == nil {
		b.fail(errors.New("type rule for nil type"))
		return b
	}

	if have, ok := b.p.types[t]; ok && have != a {
		b.fail(errors.Errorf("type %s already has action %s, cannot set %s", common.TypeName(t), have, a))
		return b
	}

	b.p.types[t] = a

	return b
}

// Field sets the action for the field named name declared by struct type t.
func (b *Builder) Field(t reflect.Type, name string, a Action) *Builder {
	if t == nil || t.Kind() != reflect.Struct {
		b.fail(errors.Errorf("field rule %q needs a struct type, got %s", name, common.TypeName(t)))
		return b
	}

	if !hasField(t, name) {
		err := errors.Errorf("type %s has no field %q", common.TypeName(t), name)
		if hints := match.Suggest(name, fieldNames(t), 3); len(hints) > 0 {
			err = errors.Errorf("%v (did you mean %s?)", err, strings.Join(hints, ", "))
		}

		b.fail(err)

		return b
	}

	key := fieldKey{declaring: t, name: name}
	if have, ok := b.p.fields[key]; ok && have != a {
		b.fail(errors.Errorf("field %s.%s already has action %s, cannot set %s", common.TypeName(t), name, have, a))
		return b
	}

	b.p.fields[key] = a

	return b
}

// TypeFunc applies a to every type pred accepts.
func (b *Builder) TypeFunc(pred TypePredicate, a Action) *Builder {
	if pred == nil {
		b.fail(errors.New("nil type predicate"))
		return b
	}

	b.p.typeFuncs = append(b.p.typeFuncs, typeRule{match: pred, action: a})

	return b
}

// FieldFunc applies a to every struct field pred accepts.
func (b *Builder) FieldFunc(pred FieldPredicate, a Action) *Builder {
	if pred == nil {
		b.fail(errors.New("nil field predicate"))
		return b
	}

	b.p.fieldFuncs = append(b.p.fieldFuncs, fieldRule{match: pred, action: a})

	return b
}

// WithoutDefaults drops the process-wide default type actions.
func (b *Builder) WithoutDefaults() *Builder {
	b.p.defaults = nil
	return b
}

// IgnoreTags makes the policy disregard `clone` struct tags.
func (b *Builder) IgnoreTags() *Builder {
	b.p.ignoreTags = true
	return b
}

// Build returns the immutable policy, or every configuration error found.
func (b *Builder) Build() (*Policy, error) {
	if err := b.errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	p := b.p
	p.types = maps.Clone(b.p.types)
	p.fields = maps.Clone(b.p.fields)
	p.defaults = maps.Clone(b.p.defaults)
	p.typeFuncs = append([]typeRule(nil), b.p.typeFuncs...)
	p.fieldFuncs = append([]fieldRule(nil), b.p.fieldFuncs...)

	return &p, nil
}

// MustBuild is like Build but panics on configuration errors.
func (b *Builder) MustBuild() *Policy {
	p, err := b.Build()
	if err != nil {
		panic(err)
	}

	return p
}

func (b *Builder) fail(err error) {
	b.errs = multierror.Append(b.errs, err)
}

func hasField(t reflect.Type, name string) bool {
	for i := range t.NumField() {
		if t.Field(i).Name == name {
			return true
		}
	}

	return false
}

func fieldNames(t reflect.Type) []string {
	names := make([]string, t.NumField())
	for i := range names {
		names[i] = t.Field(i).Name
	}

	return names
}
