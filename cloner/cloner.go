package cloner

import (
	"context"
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"

	"reflect-cloner/internal/access"
	"reflect-cloner/internal/alloc"
	"reflect-cloner/internal/copier"
	"reflect-cloner/internal/walk"
)

// Cloner makes deep copies. It is safe for concurrent use; type descriptors
// are cached across calls.
type Cloner struct {
	registry    *copier.Registry
	alloc       *alloc.Allocator
	traversal   walk.Traversal
	parallelism int
	logger      logrus.FieldLogger
	noop        bool
}

// New returns a Cloner configured by opts, or every configuration error.
func New(opts ...Option) (*Cloner, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	if cfg.logger == nil {
		cfg.logger = logrus.StandardLogger()
	}

	capability := cfg.capability
	if capability == nil {
		capability = access.Default()
	}

	registry, err := copier.NewRegistry(copier.Config{
		Policy:       cfg.policy,
		Accessor:     access.New(capability),
		Copiers:      cfg.copiers,
		Containers:   cfg.containers,
		StrictAccess: cfg.strict,
		Logger:       cfg.logger,
	})
	if err != nil {
		return nil, err
	}

	return &Cloner{
		registry:    registry,
		alloc:       alloc.New(capability, cfg.factories),
		traversal:   cfg.traversal,
		parallelism: cfg.parallelism,
		logger:      cfg.logger,
	}, nil
}

// MustNew is like New but panics on configuration errors.
func MustNew(opts ...Option) *Cloner {
	c, err := New(opts...)
	if err != nil {
		panic(err)
	}

	return c
}

var noop = &Cloner{noop: true}

// Noop returns a Cloner whose copies are the originals themselves. It stands
// in where cloning is configured away.
func Noop() *Cloner {
	return noop
}

var standard = sync.OnceValue(func() *Cloner { return MustNew() })

// Default returns the process-wide Cloner used by Clone and Of without
// options.
func Default() *Cloner {
	return standard()
}

// Clone returns a deep copy of root.
func (c *Cloner) Clone(root any) (any, error) {
	return c.CloneContext(context.Background(), root)
}

// CloneContext is Clone with a context. Cancelling ctx aborts the copy
// between two reference fills.
func (c *Cloner) CloneContext(ctx context.Context, root any) (any, error) {
	if c.noop || root == nil {
		return root, nil
	}

	s := walk.NewSession(ctx, walk.Config{
		Registry:    c.registry,
		Allocator:   c.alloc,
		Traversal:   c.traversal,
		Parallelism: c.parallelism,
		Logger:      c.logger,
	})

	out, err := s.Run(reflect.ValueOf(root))
	if err != nil {
		return nil, err
	}

	return out.Interface(), nil
}

// MustClone is like Clone but panics on error.
func (c *Cloner) MustClone(root any) any {
	out, err := c.Clone(root)
	if err != nil {
		panic(err)
	}

	return out
}

// Diagnostics returns what the cloner noticed about the types it has seen
// so far: skipped inaccessible fields, overridden defaults, custom copiers.
func (c *Cloner) Diagnostics() Diagnostics {
	if c.noop {
		return Diagnostics{}
	}

	return c.registry.Diagnostics()
}

// Clone returns a deep copy of root, made by Default or, when options are
// given, by a Cloner built from them for this call only.
func Clone(root any, opts ...Option) (any, error) {
	c, err := pick(opts)
	if err != nil {
		return nil, err
	}

	return c.Clone(root)
}

// Of is the typed form of Clone.
func Of[T any](v T, opts ...Option) (T, error) {
	c, err := pick(opts)
	if err != nil {
		var zero T
		return zero, err
	}

	return CloneAs(c, v)
}

// CloneAs returns a deep copy of v made by c.
func CloneAs[T any](c *Cloner, v T) (T, error) {
	out, err := c.Clone(v)
	if err != nil {
		var zero T
		return zero, err
	}

	typed, _ := out.(T)

	return typed, nil
}

func pick(opts []Option) (*Cloner, error) {
	if len(opts) == 0 {
		return Default(), nil
	}

	return New(opts...)
}
