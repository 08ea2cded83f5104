package cloner

import (
	"reflect"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"reflect-cloner/internal/alloc"
	"reflect-cloner/internal/common"
	"reflect-cloner/internal/copier"
	"reflect-cloner/internal/walk"
	"reflect-cloner/policy"
)

// Option configures a Cloner.
type Option func(*config)

type config struct {
	policy      *policy.Policy
	copiers     []copier.Copier
	containers  []copier.Container
	factories   map[reflect.Type]alloc.Factory
	traversal   walk.Traversal
	parallelism int
	capability  Capability
	strict      bool
	logger      logrus.FieldLogger
	errs        *multierror.Error
}

func (c *config) fail(err error) {
	c.errs = multierror.Append(c.errs, err)
}

// WithPolicy sets the copy policy. The default is policy.Standard.
func WithPolicy(p *policy.Policy) Option {
	return func(c *config) {
		if p == nil {
			c.fail(errors.New("nil policy"))
			return
		}

		c.policy = p
	}
}

// WithCopier registers a custom strategy for the copier's type. It takes
// precedence over every built-in strategy.
func WithCopier(cp Copier) Option {
	return func(c *config) {
		if cp == nil {
			c.fail(errors.New("nil copier"))
			return
		}

		c.copiers = append(c.copiers, cp)
	}
}

// WithCopyFunc registers fn as custom strategy. See CopyFunc for the
// accepted signatures.
func WithCopyFunc(fn any) Option {
	return func(c *config) {
		cp, err := copier.ParseFunc(fn)
		if err != nil {
			c.fail(errors.Wrapf(err, "copy func %T", fn))
			return
		}

		c.copiers = append(c.copiers, cp)
	}
}

// WithContainer registers a container adapter, see Sequence and Mapping.
func WithContainer(ct Container) Option {
	return func(c *config) {
		if ct == nil {
			c.fail(errors.New("nil container"))
			return
		}

		c.containers = append(c.containers, ct)
	}
}

// WithFactory makes fn produce the blank instance copies of T start from,
// for types whose zero value is not a usable empty instance. It is used for
// the instances the cloner allocates itself: the root, pointer targets and
// maps. A T held by value inside a struct, array or slice starts from its
// enclosing copy instead. Fields skipped by the policy keep the value fn gave
// them; every other field is copied from the original, nil references
// included. A map factory must return an empty map.
func WithFactory[T any](fn func() T) Option {
	t := reflect.TypeFor[T]()

	return func(c *config) {
		if fn == nil {
			c.fail(errors.Errorf("nil factory for %s", common.TypeName(t)))
			return
		}

		if c.factories == nil {
			c.factories = make(map[reflect.Type]alloc.Factory)
		}

		c.factories[t] = func() reflect.Value {
			v := fn()
			return reflect.ValueOf(&v).Elem()
		}
	}
}

// WithTraversal selects the order in which references are filled.
func WithTraversal(t Traversal) Option {
	return func(c *config) {
		c.traversal = t
	}
}

// WithParallelism fills references on up to n goroutines per Clone call.
// Zero and one keep copying on the calling goroutine; a negative n removes
// the limit.
func WithParallelism(n int) Option {
	return func(c *config) {
		c.parallelism = n
	}
}

// WithCapability overrides the build time default field access capability.
func WithCapability(cp Capability) Option {
	return func(c *config) {
		c.capability = cp
	}
}

// WithStrictAccess makes fields out of the capability's reach an error
// instead of leaving them as zero value.
func WithStrictAccess() Option {
	return func(c *config) {
		c.strict = true
	}
}

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) {
		c.logger = l
	}
}
