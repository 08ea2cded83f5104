package cloner_test

import (
	"iter"
	"maps"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reflect-cloner/cloner"
	"reflect-cloner/internal/testmodel"
	"reflect-cloner/policy"
)

func TestOptionErrors(t *testing.T) {
	_, err := cloner.New(
		cloner.WithPolicy(nil),
		cloner.WithCopyFunc(42),
		cloner.WithCopier(nil),
		cloner.WithContainer(nil),
		cloner.WithFactory[testmodel.Order](nil),
	)
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "nil policy")
	assert.Contains(t, msg, "copy func int")
	assert.Contains(t, msg, "nil copier")
	assert.Contains(t, msg, "nil container")
	assert.Contains(t, msg, "nil factory for testmodel.Order")

	_, err = cloner.Clone(testmodel.Sample(), cloner.WithPolicy(nil))
	assert.EqualError(t, err, "1 error occurred:\n\t* nil policy\n\n")

	assert.Panics(t, func() { cloner.MustNew(cloner.WithPolicy(nil)) })
}

func TestDuplicateCopier(t *testing.T) {
	upper := func(s testmodel.OrderStatus) testmodel.OrderStatus { return s }

	_, err := cloner.New(cloner.WithCopyFunc(upper), cloner.WithCopyFunc(upper))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "copier for testmodel.OrderStatus registered twice")
}

func TestWithCopyFunc(t *testing.T) {
	c := cloner.MustNew(cloner.WithCopyFunc(func(s testmodel.OrderStatus) testmodel.OrderStatus {
		return testmodel.OrderStatus(strings.ToLower(string(s)))
	}))

	orig := testmodel.Sample()

	cp, err := cloner.CloneAs(c, orig)
	require.NoError(t, err)

	assert.Equal(t, testmodel.OrderStatus("paid"), cp.Customers[0].Orders[0].Status)
	assert.Equal(t, testmodel.StatusPaid, orig.Customers[0].Orders[0].Status)

	infos := c.Diagnostics().Infos
	require.Len(t, infos, 1)
	assert.Equal(t, "custom-copier", infos[0].Code)
	assert.Equal(t, "testmodel.OrderStatus", infos[0].Type)
}

func TestCustomCopierNested(t *testing.T) {
	// customers lose their addresses and orders, referrers are copied as usual
	c := cloner.MustNew(cloner.WithCopier(cloner.CopyFunc(func(src *testmodel.Customer, ctx cloner.Context) (*testmodel.Customer, error) {
		referrer, err := cloner.Copy(ctx, src.Referrer)
		if err != nil {
			return nil, err
		}

		return &testmodel.Customer{ID: src.ID, Email: src.Email, FullName: src.FullName, Referrer: referrer}, nil
	})))

	orig := testmodel.Sample()

	cp, err := cloner.CloneAs(c, orig)
	require.NoError(t, err)

	alice, bob := cp.Customers[0], cp.Customers[1]
	assert.NotSame(t, orig.Customers[0], alice)
	assert.Nil(t, alice.Address)
	assert.Nil(t, alice.Orders)
	assert.Equal(t, "Bob", bob.FullName)
	assert.Same(t, alice, bob.Referrer)
	assert.Same(t, bob, cp.Lookup(2))
}

type Leaf struct {
	N int
}

type Pair struct {
	A, B *Leaf
}

func TestCustomCopierNilReference(t *testing.T) {
	var calls int

	c := cloner.MustNew(cloner.WithCopyFunc(func(l *Leaf) *Leaf {
		calls++
		return &Leaf{N: l.N * 10}
	}))

	cp, err := cloner.CloneAs(c, &Pair{A: &Leaf{N: 1}})
	require.NoError(t, err)

	assert.Equal(t, 10, cp.A.N)
	assert.Nil(t, cp.B)
	assert.Equal(t, 1, calls)

	// nested copies of nil references skip the copier too
	c = cloner.MustNew(cloner.WithCopier(cloner.CopyFunc(func(p *Pair, ctx cloner.Context) (*Pair, error) {
		b, err := cloner.Copy(ctx, p.B)
		return &Pair{B: b}, err
	})))

	cpp, err := cloner.CloneAs(c, []*Pair{{A: &Leaf{}}, nil})
	require.NoError(t, err)
	require.Len(t, cpp, 2)
	assert.Nil(t, cpp[0].B)
	assert.Nil(t, cpp[1])
}

// Token copies itself with a bumped generation.
type Token struct {
	ID         string
	Generation int
}

func (t *Token) CloneWith(cloner.Context) (*Token, error) {
	return &Token{ID: t.ID, Generation: t.Generation + 1}, nil
}

// Grant copies itself with a prime appended. Empty grants fail.
type Grant string

func (g Grant) CloneWith(cloner.Context) (Grant, error) {
	if g == "" {
		return "", errors.New("empty grant")
	}

	return g + "'", nil
}

type Keyring struct {
	Primary, Backup, Spare *Token
	Grants                 []Grant
}

func TestSelfCopier(t *testing.T) {
	tok := &Token{ID: "k", Generation: 1}
	orig := &Keyring{Primary: tok, Backup: tok, Grants: []Grant{"read", "write"}}

	c := cloner.MustNew()

	cp, err := cloner.CloneAs(c, orig)
	require.NoError(t, err)

	assert.NotSame(t, tok, cp.Primary)
	assert.Equal(t, 2, cp.Primary.Generation)
	assert.Same(t, cp.Primary, cp.Backup)
	assert.Nil(t, cp.Spare)
	assert.Equal(t, []Grant{"read'", "write'"}, cp.Grants)
	assert.Equal(t, 1, tok.Generation)

	var infos []string
	for _, d := range c.Diagnostics().Infos {
		infos = append(infos, d.Type+" "+d.Message)
	}
	assert.ElementsMatch(t, []string{
		"*cloner_test.Token copied by (*cloner_test.Token).CloneWith",
		"cloner_test.Grant copied by (cloner_test.Grant).CloneWith",
	}, infos)

	_, err = cloner.Of(&Keyring{Grants: []Grant{"ok", ""}})
	assert.EqualError(t, err, "Keyring.Grants[1]: custom copier failed for cloner_test.Grant: empty grant")

	// a registered copier wins over the method
	c = cloner.MustNew(cloner.WithCopyFunc(func(t *Token) *Token { return t }))

	cp, err = cloner.CloneAs(c, orig)
	require.NoError(t, err)
	assert.Same(t, tok, cp.Primary)
}

func TestCustomCopierError(t *testing.T) {
	c := cloner.MustNew(cloner.WithCopyFunc(func(s testmodel.OrderStatus) (testmodel.OrderStatus, error) {
		if s == testmodel.StatusShipped {
			return "", errors.New("boom")
		}

		return s, nil
	}))

	_, err := c.Clone(testmodel.Sample())
	require.Error(t, err)

	var ce *cloner.CopierError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, reflect.TypeFor[testmodel.OrderStatus](), ce.Type)
	assert.ErrorIs(t, err, cloner.ErrCopier)
	assert.EqualError(t, err, "Store.Customers[1].Orders[0].Status: custom copier failed for testmodel.OrderStatus: boom")
}

func TestWithFactory(t *testing.T) {
	p := policy.NewBuilder().Field(reflect.TypeFor[testmodel.Order](), "Attributes", policy.Skip).MustBuild()

	c := cloner.MustNew(
		cloner.WithPolicy(p),
		cloner.WithFactory(func() testmodel.Order {
			return testmodel.Order{Attributes: map[string]any{"copied": true}}
		}),
	)

	orig := testmodel.Sample()

	cp, err := cloner.CloneAs(c, orig)
	require.NoError(t, err)

	for _, o := range cp.Customers[0].Orders {
		assert.Equal(t, map[string]any{"copied": true}, o.Attributes)
	}

	assert.Equal(t, orig.Customers[0].Orders[0].ID, cp.Customers[0].Orders[0].ID)
}

type Draft struct {
	Title string
	Tags  map[string]int
	Notes []string
	Prev  *Draft
	Meta  any
	Cache map[string]int `clone:"skip"`
}

func blankDraft() Draft {
	return Draft{
		Tags:  map[string]int{"seed": 1},
		Notes: []string{"seed"},
		Prev:  &Draft{Title: "seed"},
		Meta:  "seed",
		Cache: map[string]int{"warm": 1},
	}
}

func TestFactoryCopiesNilReferences(t *testing.T) {
	c := cloner.MustNew(cloner.WithFactory(blankDraft))

	cp, err := cloner.CloneAs(c, &Draft{Title: "t"})
	require.NoError(t, err)

	assert.Equal(t, "t", cp.Title)
	assert.Nil(t, cp.Tags)
	assert.Nil(t, cp.Notes)
	assert.Nil(t, cp.Prev)
	assert.Nil(t, cp.Meta)
	assert.Equal(t, map[string]int{"warm": 1}, cp.Cache, "skipped fields keep the factory value")

	// value roots start from the factory too
	v, err := cloner.CloneAs(c, Draft{Title: "v", Tags: map[string]int{"a": 2}})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"a": 2}, v.Tags)
	assert.Nil(t, v.Prev)
	assert.Equal(t, map[string]int{"warm": 1}, v.Cache)
}

func TestUninstantiable(t *testing.T) {
	c := cloner.MustNew(cloner.WithCapability(noAddresses{cloner.UnsafeAccess()}))

	_, err := c.Clone(testmodel.Sample())
	require.Error(t, err)

	var ue *cloner.UninstantiableTypeError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, reflect.TypeFor[testmodel.Address](), ue.Type)
	assert.ErrorIs(t, err, cloner.ErrUninstantiable)
	assert.EqualError(t, err, "Store.Customers[0].Address: uninstantiable type: testmodel.Address: refused by no-address capability")
}

// noAddresses refuses to allocate addresses.
type noAddresses struct {
	cloner.Capability
}

func (noAddresses) Name() string { return "no-address" }

func (c noAddresses) CanAllocate(t reflect.Type) bool {
	return t != reflect.TypeFor[testmodel.Address]() && c.Capability.CanAllocate(t)
}

func TestCopierWrongType(t *testing.T) {
	c := cloner.MustNew(cloner.WithCopier(wrongType{}))

	_, err := c.Clone(testmodel.Sample())
	require.Error(t, err)

	var ce *cloner.CopierError
	require.True(t, errors.As(err, &ce))
	assert.EqualError(t, err, "Store.Customers[0].Address: custom copier failed for *testmodel.Address: copier returned a value of another type")
}

// wrongType claims addresses but produces strings.
type wrongType struct{}

func (wrongType) Type() reflect.Type { return reflect.TypeFor[*testmodel.Address]() }

func (wrongType) Copy(reflect.Value, cloner.Context) (reflect.Value, error) {
	return reflect.ValueOf("not an address"), nil
}

func TestExportedAccess(t *testing.T) {
	logger, hook := test.NewNullLogger()

	c := cloner.MustNew(cloner.WithCapability(cloner.ExportedAccess()), cloner.WithLogger(logger))

	orig := testmodel.Sample()

	cp, err := cloner.CloneAs(c, orig)
	require.NoError(t, err)

	assert.Equal(t, orig.Customers[0].FullName, cp.Customers[0].FullName)
	assert.Nil(t, cp.Customers[0].Orders[0].Audit())
	assert.Nil(t, cp.Lookup(1))

	warnings := c.Diagnostics().Warnings
	require.Len(t, warnings, 2)

	blocked := []string{warnings[0].Type + "." + warnings[0].Field, warnings[1].Type + "." + warnings[1].Field}
	assert.ElementsMatch(t, []string{"testmodel.Store.lookup", "testmodel.Order.audit"}, blocked)

	var logged int
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			logged++
			assert.Equal(t, "skipping inaccessible field", e.Message)
		}
	}
	assert.Equal(t, 2, logged)

	// the warning is given once per type
	_, err = c.Clone(testmodel.Sample())
	require.NoError(t, err)
	assert.Len(t, c.Diagnostics().Warnings, 2)
}

func TestStrictAccess(t *testing.T) {
	c := cloner.MustNew(cloner.WithCapability(cloner.ExportedAccess()), cloner.WithStrictAccess())

	_, err := c.Clone(testmodel.Sample())
	require.Error(t, err)

	var ie *cloner.InaccessibleFieldError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "lookup", ie.Field)
	assert.ErrorIs(t, err, cloner.ErrInaccessibleField)
	assert.EqualError(t, err, "Store: inaccessible field: testmodel.Store.lookup")

	diags := c.Diagnostics()
	require.Len(t, diags.Errors, 1)
	assert.Equal(t, "inaccessible-field", diags.Errors[0].Code)
	assert.EqualError(t, diags.Error(), "testmodel.Store.lookup: [inaccessible-field] not accessible with the exported capability")

	// reachable fields only are fine
	cp, err := cloner.CloneAs(c, &Node{Value: 1, Next: &Node{Value: 2}})
	require.NoError(t, err)
	assert.Equal(t, 2, cp.Next.Value)
}

// Registry is a keyed container with a private index the cloner is not
// allowed to walk itself.
type Registry struct {
	entries map[string]*Node
	order   []string
}

func NewRegistry() *Registry { return &Registry{entries: map[string]*Node{}} }

func (r *Registry) Put(k string, n *Node) {
	if _, ok := r.entries[k]; !ok {
		r.order = append(r.order, k)
	}
	r.entries[k] = n
}

func (r *Registry) All() iter.Seq2[string, *Node] {
	return func(yield func(string, *Node) bool) {
		for _, k := range r.order {
			if !yield(k, r.entries[k]) {
				return
			}
		}
	}
}

func TestWithContainer(t *testing.T) {
	c := cloner.MustNew(
		cloner.WithCapability(cloner.ExportedAccess()),
		cloner.WithStrictAccess(),
		cloner.WithContainer(cloner.Mapping((*Registry).All, NewRegistry, (*Registry).Put)),
	)

	shared := &Node{Value: 1}

	orig := NewRegistry()
	orig.Put("b", shared)
	orig.Put("a", shared)
	orig.Put("c", &Node{Value: 3, Next: shared})

	cp, err := cloner.CloneAs(c, orig)
	require.NoError(t, err)

	got := maps.Collect(cp.All())

	var keys []string
	for k := range cp.All() {
		keys = append(keys, k)
	}

	assert.Equal(t, []string{"b", "a", "c"}, keys)
	assert.NotSame(t, shared, got["a"])
	assert.Same(t, got["a"], got["b"])
	assert.Same(t, got["a"], got["c"].Next)
}

func TestSequenceContainer(t *testing.T) {
	type stack struct {
		items []*Node
	}

	c := cloner.MustNew(cloner.WithContainer(cloner.Sequence(
		func(s *stack) iter.Seq[*Node] { return slices.Values(s.items) },
		func() *stack { return &stack{} },
		func(s *stack, n *Node) { s.items = append(s.items, n) },
	)))

	x := &Node{Value: 9}
	orig := &stack{items: []*Node{x, x}}

	cp, err := cloner.CloneAs(c, orig)
	require.NoError(t, err)

	require.Len(t, cp.items, 2)
	assert.NotSame(t, x, cp.items[0])
	assert.Same(t, cp.items[0], cp.items[1])
}

func TestParseTraversal(t *testing.T) {
	tr, err := cloner.ParseTraversal("bfs")
	require.NoError(t, err)
	assert.Equal(t, cloner.BreadthFirst, tr)

	_, err = cloner.ParseTraversal("sideways")
	assert.Error(t, err)
}
