package walk

import (
	"context"
	"reflect"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"reflect-cloner/faults"
	"reflect-cloner/internal/access"
	"reflect-cloner/internal/alloc"
	"reflect-cloner/internal/common"
	"reflect-cloner/internal/copier"
	"reflect-cloner/internal/identity"
	"reflect-cloner/policy"
)

var errWrongType = errors.New("copier returned a value of another type")

// Config holds what a session borrows from its cloner.
type Config struct {
	Registry  *copier.Registry
	Allocator *alloc.Allocator
	Traversal Traversal
	// Parallelism above one fills references on up to that many goroutines;
	// a negative value removes the limit. Traversal order is then up to the
	// scheduler.
	Parallelism int
	Logger      logrus.FieldLogger
}

// Session is one clone call. It is not reusable and, apart from the parallel
// mode it runs itself, not safe for concurrent use.
type Session struct {
	ctx      context.Context
	registry *copier.Registry
	accessor *access.Accessor
	alloc    *alloc.Allocator
	table    identity.Table
	mode     Traversal
	limit    int
	group    *errgroup.Group
	queue    Dealer
	log      logrus.FieldLogger
}

// NewSession prepares a session bound to ctx.
func NewSession(ctx context.Context, cfg Config) *Session {
	s := &Session{
		ctx:      ctx,
		registry: cfg.Registry,
		accessor: cfg.Registry.Accessor(),
		alloc:    cfg.Allocator,
		mode:     cfg.Traversal,
		limit:    cfg.Parallelism,
		log:      cfg.Logger,
	}

	if s.log == nil {
		s.log = logrus.StandardLogger()
	}

	if s.parallel() {
		s.table = identity.NewConcurrent()
		s.group, s.ctx = errgroup.WithContext(ctx)
		s.group.SetLimit(s.limit)
	} else {
		s.table = identity.New()
	}

	return s
}

func (s *Session) parallel() bool {
	return s.limit > 1 || s.limit < 0
}

// Instances returns the number of original reference instances mapped so far.
func (s *Session) Instances() int {
	return s.table.Len()
}

// Run copies root. Either the complete copy or an error is returned, never a
// partially filled graph.
func (s *Session) Run(root reflect.Value) (reflect.Value, error) {
	if !root.IsValid() {
		return root, nil
	}

	if err := s.ctx.Err(); err != nil {
		return reflect.Value{}, err
	}

	start := time.Now()
	log := s.log.WithFields(logrus.Fields{
		"root":      common.TypeName(root.Type()),
		"traversal": s.mode.String(),
	})

	if s.parallel() {
		log = log.WithField("parallelism", s.limit)
	}

	log.Debug("clone session started")

	p := rootPath(root.Type())

	dst, err := s.alloc.New(root.Type())
	if err != nil {
		return reflect.Value{}, p.wrap(err)
	}

	if s.parallel() {
		s.group.Go(func() error { return s.value(p, dst, root, policy.Default) })
		err = s.group.Wait()
	} else {
		err = s.value(p, dst, root, policy.Default)
		if err == nil {
			err = s.drain()
		}
	}

	log = log.WithFields(logrus.Fields{
		"instances": s.Instances(),
		"elapsed":   time.Since(start),
	})

	if err != nil {
		log.WithError(err).Debug("clone session failed")
		return reflect.Value{}, err
	}

	log.Debug("clone session finished")

	return dst, nil
}

// schedule runs or queues a reference fill according to the traversal mode.
func (s *Session) schedule(item workItem) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	switch {
	case s.parallel():
		// run inline when every slot is busy, a blocking Go here could
		// deadlock with the goroutines holding the slots
		if s.group.TryGo(item.run) {
			return nil
		}

		return item.run()

	case s.mode == BreadthFirst:
		s.queue.Needs(item)
		return nil

	default:
		return item.run()
	}
}

func (s *Session) drain() error {
	for item, ok := s.queue.NextNeeds(); ok; item, ok = s.queue.NextNeeds() {
		if err := s.ctx.Err(); err != nil {
			return err
		}

		if err := item.run(); err != nil {
			return err
		}
	}

	return nil
}

// value copies src into the settable dst. override is the field level action
// src was reached with, Default everywhere else.
func (s *Session) value(p *path, dst, src reflect.Value, override policy.Action) error {
	d, err := s.registry.Resolve(src.Type())
	if err != nil {
		return p.wrap(err)
	}

	switch d.Effective(override) {
	case policy.Skip:
		return nil

	case policy.Share:
		dst.Set(src)
		return nil

	case policy.Original:
		// later visits of the same reference resolve to the original too,
		// unless it was already copied through another path
		if _, _, err := s.table.Claim(src, func() (reflect.Value, error) { return src, nil }); err != nil {
			return p.wrap(err)
		}

		dst.Set(src)

		return nil
	}

	if d.Plain {
		dst.Set(src)
		return nil
	}

	switch d.Kind {
	case copier.KindPassthrough:
		dst.Set(src)
		return nil
	case copier.KindCustom:
		return s.custom(p, d, dst, src)
	case copier.KindPointer:
		return s.pointer(p, d, dst, src)
	case copier.KindArray:
		return s.array(p, dst, src)
	case copier.KindSlice:
		return s.slice(p, d, dst, src)
	case copier.KindMap:
		return s.mapping(p, d, dst, src)
	case copier.KindContainer:
		return s.container(p, d, dst, src)
	case copier.KindComposite:
		return s.composite(p, d, dst, src)
	case copier.KindInterface:
		return s.iface(p, dst, src)
	default:
		return p.wrap(&faults.UninstantiableTypeError{Type: d.Type, Reason: "no copy strategy for kind " + d.Kind.String()})
	}
}

func (s *Session) pointer(p *path, d *copier.Descriptor, dst, src reflect.Value) error {
	if isNil(dst, src) {
		return nil
	}

	cp, claimed, err := s.table.Claim(src, func() (reflect.Value, error) {
		return s.alloc.NewPointer(d.Type.Elem())
	})
	if err != nil {
		return p.wrap(err)
	}

	dst.Set(cp)

	if !claimed {
		return nil
	}

	return s.schedule(workItem{original: src, shell: cp, fill: func(shell, original reflect.Value) error {
		return s.value(p, shell.Elem(), original.Elem(), policy.Default)
	}})
}

func (s *Session) array(p *path, dst, src reflect.Value) error {
	for i := range src.Len() {
		if err := s.value(p.elem(i), dst.Index(i), src.Index(i), policy.Default); err != nil {
			return err
		}
	}

	return nil
}

// slice maps src to a copy of its whole backing array, from its first element
// up to its capacity, and re-slices that copy to src's length. Slices sharing
// start and capacity share the copied backing array.
func (s *Session) slice(p *path, d *copier.Descriptor, dst, src reflect.Value) error {
	if isNil(dst, src) {
		return nil
	}

	backing, claimed, err := s.table.Claim(src, func() (reflect.Value, error) {
		return s.alloc.MakeSlice(d.Type, src.Cap(), src.Cap())
	})
	if err != nil {
		return p.wrap(err)
	}

	dst.Set(backing.Slice(0, src.Len()))

	if !claimed {
		return nil
	}

	return s.schedule(workItem{original: src.Slice(0, src.Cap()), shell: backing, fill: func(shell, original reflect.Value) error {
		if s.plain(d.Type.Elem()) {
			reflect.Copy(shell, original)
			return nil
		}

		for i := range original.Len() {
			if err := s.value(p.elem(i), shell.Index(i), original.Index(i), policy.Default); err != nil {
				return err
			}
		}

		return nil
	}})
}

// plain reports whether values of t are copied by assignment. A resolve
// error surfaces again, with its path, at the first value of t.
func (s *Session) plain(t reflect.Type) bool {
	d, err := s.registry.Resolve(t)
	return err == nil && d.Plain
}

func (s *Session) mapping(p *path, d *copier.Descriptor, dst, src reflect.Value) error {
	if isNil(dst, src) {
		return nil
	}

	cp, claimed, err := s.table.Claim(src, func() (reflect.Value, error) {
		return s.alloc.MakeMap(d.Type, src.Len())
	})
	if err != nil {
		return p.wrap(err)
	}

	dst.Set(cp)

	if !claimed {
		return nil
	}

	return s.schedule(workItem{original: src, shell: cp, fill: func(shell, original reflect.Value) error {
		plain := s.plain(d.Type.Key()) && s.plain(d.Type.Elem())

		iter := original.MapRange()
		for iter.Next() {
			if plain {
				shell.SetMapIndex(iter.Key(), iter.Value())
				continue
			}

			ep := p.entry(iter.Key())

			k := reflect.New(d.Type.Key()).Elem()
			if err := s.value(ep, k, iter.Key(), policy.Default); err != nil {
				return err
			}

			v := reflect.New(d.Type.Elem()).Elem()
			if err := s.value(ep, v, iter.Value(), policy.Default); err != nil {
				return err
			}

			shell.SetMapIndex(k, v)
		}

		return nil
	}})
}

func (s *Session) container(p *path, d *copier.Descriptor, dst, src reflect.Value) error {
	c := d.Container
	ctx := scope{s: s, p: p}

	switch d.Type.Kind() {
	case reflect.Ptr, reflect.Map:
		if isNil(dst, src) {
			return nil
		}

	default:
		return p.wrap(c.Fill(dst, src, ctx))
	}

	cp, claimed, err := s.table.Claim(src, func() (reflect.Value, error) {
		empty, err := c.Empty(src)
		if err == nil && (!empty.IsValid() || empty.Type() != d.Type) {
			err = &faults.UninstantiableTypeError{Type: d.Type, Reason: "container returned a value of another type"}
		}

		return empty, err
	})
	if err != nil {
		return p.wrap(err)
	}

	dst.Set(cp)

	if !claimed {
		return nil
	}

	return s.schedule(workItem{original: src, shell: cp, fill: func(shell, original reflect.Value) error {
		return p.wrap(c.Fill(shell, original, ctx))
	}})
}

func (s *Session) composite(p *path, d *copier.Descriptor, dst, src reflect.Value) error {
	if err := s.registry.Admit(d); err != nil {
		return p.wrap(err)
	}

	// only a struct living in the original graph's memory can be the target
	// of interior pointers
	inPlace := src.CanAddr()
	if !inPlace {
		src = access.Addressable(src)
	}

	for _, f := range d.Fields {
		if f.Action == policy.Skip {
			continue
		}

		from := s.accessor.Read(src, f.Field)

		if inPlace && f.Type.Kind() == reflect.Struct {
			if err := s.interior(p, from, s.accessor.View(dst, f.Field)); err != nil {
				return err
			}
		}

		if f.Action == policy.Share || (f.Action == policy.Default && s.plain(f.Type)) {
			s.accessor.Write(dst, f.Field, from)
			continue
		}

		if err := s.value(p.field(f.Name), s.accessor.View(dst, f.Field), from, f.Action); err != nil {
			return err
		}
	}

	return nil
}

// interior maps the address of a struct held by value inside another struct
// to the address of its copy, so pointers to it (embedded bases, list
// sentinels) resolve into the copy. An original reached through such a
// pointer before its enclosing struct keeps its independent copy.
func (s *Session) interior(p *path, from, to reflect.Value) error {
	_, _, err := s.table.Claim(from.Addr(), func() (reflect.Value, error) { return to.Addr(), nil })
	return p.wrap(err)
}

func (s *Session) iface(p *path, dst, src reflect.Value) error {
	if isNil(dst, src) {
		return nil
	}

	elem := src.Elem()
	tmp := reflect.New(elem.Type()).Elem()

	if err := s.value(p, tmp, elem, policy.Default); err != nil {
		return err
	}

	dst.Set(tmp)

	return nil
}

// custom calls the registered copier. Nil references never reach it. Other
// references keep their identity: an original copied before resolves to that
// copy, and the produced copy is registered for later visits.
func (s *Session) custom(p *path, d *copier.Descriptor, dst, src reflect.Value) error {
	if isNil(dst, src) {
		return nil
	}

	_, isReference := identity.KeyOf(src)
	if isReference {
		if cp, ok := s.table.Get(src); ok {
			dst.Set(cp)
			return nil
		}
	}

	out, err := d.Copier.Copy(src, scope{s: s, p: p})
	if err != nil {
		return p.wrap(err)
	}

	if !out.IsValid() || out.Type() != d.Type {
		return p.wrap(&faults.CopierError{Type: d.Type, Err: errWrongType})
	}

	if isReference {
		// a concurrent or recursive copy of the same original may have
		// registered first, that copy wins
		if out, _, err = s.table.Claim(src, func() (reflect.Value, error) { return out, nil }); err != nil {
			return p.wrap(err)
		}
	}

	dst.Set(out)

	return nil
}

// isNil reports whether src is a nil reference and, if so, resets dst so that
// nothing a factory put there survives in the copy.
func isNil(dst, src reflect.Value) bool {
	switch src.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		if src.IsNil() {
			dst.SetZero()
			return true
		}
	}

	return false
}

// scope is the copier.Context handed to custom strategies.
type scope struct {
	s *Session
	p *path
}

func (c scope) CopyValue(v reflect.Value) (reflect.Value, error) {
	if !v.IsValid() {
		return v, nil
	}

	dst := reflect.New(v.Type()).Elem()
	if err := c.s.value(c.p, dst, v, policy.Default); err != nil {
		return reflect.Value{}, err
	}

	return dst, nil
}
