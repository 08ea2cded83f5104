package copier

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"reflect-cloner/faults"
	"reflect-cloner/internal/access"
	"reflect-cloner/internal/common"
	"reflect-cloner/internal/diagnostic"
	"reflect-cloner/policy"
	"reflect-cloner/primitive"
)

// Config configures a Registry. Zero fields fall back to the standard
// policy, the default capability and the logrus standard logger.
type Config struct {
	Policy     *policy.Policy
	Accessor   *access.Accessor
	Copiers    []Copier
	Containers []Container
	// StrictAccess turns inaccessible fields into errors instead of
	// skipping them.
	StrictAccess bool
	Logger       logrus.FieldLogger
}

// Registry resolves and caches type descriptors. It is safe for concurrent
// use; concurrent first resolutions of a type build equal descriptors and one
// of them wins.
type Registry struct {
	policy      *policy.Policy
	accessor    *access.Accessor
	copiers     map[reflect.Type]Copier
	containers  map[reflect.Type]Container
	strict      bool
	log         logrus.FieldLogger
	diagnostics diagnostic.Collector
	cache       sync.Map // reflect.Type -> *Descriptor
}

// NewRegistry validates cfg and returns a registry.
func NewRegistry(cfg Config) (*Registry, error) {
	r := &Registry{
		policy:     cfg.Policy,
		accessor:   cfg.Accessor,
		copiers:    make(map[reflect.Type]Copier, len(cfg.Copiers)),
		containers: map[reflect.Type]Container{syncMapType: syncMap{}},
		strict:     cfg.StrictAccess,
		log:        cfg.Logger,
	}

	if r.policy == nil {
		r.policy = policy.Standard()
	}

	if r.accessor == nil {
		r.accessor = access.New(nil)
	}

	if r.log == nil {
		r.log = logrus.StandardLogger()
	}

	var errs *multierror.Error

	for _, c := range cfg.Copiers {
		if _, ok := r.copiers[c.Type()]; ok {
			errs = multierror.Append(errs, errors.Errorf("copier for %s registered twice", common.TypeName(c.Type())))
			continue
		}

		r.copiers[c.Type()] = c
	}

	userContainers := make(map[reflect.Type]struct{}, len(cfg.Containers))
	for _, c := range cfg.Containers {
		if _, ok := userContainers[c.Type()]; ok {
			errs = multierror.Append(errs, errors.Errorf("container for %s registered twice", common.TypeName(c.Type())))
			continue
		}

		userContainers[c.Type()] = struct{}{}
		r.containers[c.Type()] = c
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	return r, nil
}

// Accessor returns the field accessor descriptors were built with.
func (r *Registry) Accessor() *access.Accessor {
	return r.accessor
}

// Diagnostics returns what was noticed while building descriptors so far.
func (r *Registry) Diagnostics() diagnostic.Diagnostics {
	return r.diagnostics.Snapshot()
}

// Resolve returns the descriptor of t, building it on first use. Errors are
// not cached; resolving a failing type again fails again.
func (r *Registry) Resolve(t reflect.Type) (*Descriptor, error) {
	if t == nil {
		return nil, &faults.UninstantiableTypeError{Reason: "no concrete type"}
	}

	if d, ok := r.cache.Load(t); ok {
		return d.(*Descriptor), nil
	}

	d, err := r.build(t)
	if err != nil {
		r.report(err)
		return nil, err
	}

	actual, _ := r.cache.LoadOrStore(t, d)

	return actual.(*Descriptor), nil
}

// Admit is called before the fields of a composite value are filled. It
// fails in strict mode when a field the policy does not skip is out of the
// capability's reach, and otherwise reports such fields once per type.
func (r *Registry) Admit(d *Descriptor) error {
	if len(d.blocked) == 0 {
		return nil
	}

	if r.strict {
		r.diagnostics.Add(diagnostic.DiagnosticError, diagnostic.CodeInaccessibleField,
			fmt.Sprintf("not accessible with the %s capability", r.accessor.Capability().Name()), common.TypeName(d.Type), d.blocked[0])

		return &faults.InaccessibleFieldError{Type: d.Type, Field: d.blocked[0]}
	}

	d.warnOnce.Do(func() {
		capability := r.accessor.Capability().Name()

		for _, name := range d.blocked {
			msg := fmt.Sprintf("not accessible with the %s capability, left as zero value", capability)
			if !r.diagnostics.Add(diagnostic.DiagnosticWarning, diagnostic.CodeInaccessibleField, msg, common.TypeName(d.Type), name) {
				continue
			}

			r.log.WithFields(logrus.Fields{
				"type":       common.TypeName(d.Type),
				"field":      name,
				"capability": capability,
			}).Warn("skipping inaccessible field")
		}
	})

	return nil
}

// report records the resolution failures worth an error diagnostic.
func (r *Registry) report(err error) {
	var conflict *faults.PolicyConflictError
	if !errors.As(err, &conflict) {
		return
	}

	r.diagnostics.Add(diagnostic.DiagnosticError, diagnostic.CodePolicyConflict,
		"conflicting copy policies: "+strings.Join(conflict.Actions, ", "), common.TypeName(conflict.Type), conflict.Field)
}

func (r *Registry) build(t reflect.Type) (*Descriptor, error) {
	action, err := r.policy.TypeAction(t)
	if err != nil {
		return nil, err
	}

	if def, ok := r.policy.DefaultAction(t); ok && action != def {
		r.diagnostics.Add(diagnostic.DiagnosticInfo, diagnostic.CodeDefaultOverridden,
			fmt.Sprintf("default action %s overridden by %s", def, action), common.TypeName(t), "")
	}

	d := &Descriptor{Type: t, Action: action}

	custom, hasCustom := r.copiers[t]
	if !hasCustom {
		custom, hasCustom = selfCopierOf(t)
	}

	container, hasContainer := r.containers[t]

	switch {
	case hasCustom:
		d.Kind = KindCustom
		d.Copier = custom
		r.diagnostics.Add(diagnostic.DiagnosticInfo, diagnostic.CodeCustomCopier,
			fmt.Sprintf("copied by %s", describe(custom)), common.TypeName(t), "")
	case primitive.IsImmutable(t):
		d.Kind = KindPassthrough
	case t.Kind() == reflect.Array:
		d.Kind = KindArray
	case t.Kind() == reflect.Slice:
		d.Kind = KindSlice
	case hasContainer:
		d.Kind = KindContainer
		d.Container = container
	case t.Kind() == reflect.Map:
		d.Kind = KindMap
	case t.Kind() == reflect.Ptr:
		d.Kind = KindPointer
	case t.Kind() == reflect.Interface:
		d.Kind = KindInterface
	case t.Kind() == reflect.Struct:
		d.Kind = KindComposite
		if err := r.fields(d); err != nil {
			return nil, err
		}
	default:
		return nil, &faults.UninstantiableTypeError{Type: t, Reason: "unsupported kind " + t.Kind().String()}
	}

	d.Plain = r.plain(d)

	return d, nil
}

func (r *Registry) fields(d *Descriptor) error {
	for _, f := range r.accessor.Fields(d.Type) {
		action, err := r.policy.FieldAction(policy.FieldRef{
			Declaring: f.Declaring,
			Name:      f.Name,
			Type:      f.Type,
			Tag:       f.Tag,
			Exported:  f.Exported,
		})
		if err != nil {
			return err
		}

		if !f.Accessible && action != policy.Skip {
			// a field whose type is skipped anyway loses nothing
			if ta, err := r.policy.TypeAction(f.Type); err != nil || ta != policy.Skip {
				d.blocked = append(d.blocked, f.Name)
			}
			action = policy.Skip
		}

		d.Fields = append(d.Fields, Field{Field: f, Action: action})
	}

	return nil
}

// plain reports whether assignment copies d's values completely. Element and
// field types are resolved here only when they are held by value, which
// always terminates. A failing element type is treated as not plain so that
// the walker reports it under the right path.
func (r *Registry) plain(d *Descriptor) bool {
	if d.Action != policy.Default && d.Action != policy.Copy {
		return false
	}

	switch d.Kind {
	case KindPassthrough:
		return true

	case KindArray:
		elem, err := r.Resolve(d.Type.Elem())
		return err == nil && elem.Plain

	case KindComposite:
		if len(d.blocked) > 0 {
			return false
		}

		for _, f := range d.Fields {
			if f.Action != policy.Default || !f.Accessible {
				return false
			}

			fd, err := r.Resolve(f.Type)
			if err != nil || !fd.Plain {
				return false
			}
		}

		return true

	default:
		return false
	}
}

func describe(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}

	return fmt.Sprintf("%T", v)
}
