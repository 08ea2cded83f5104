package cloner_test

import (
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reflect-cloner/cloner"
	"reflect-cloner/internal/testmodel"
	"reflect-cloner/policy"
)

var (
	customerPtr = reflect.TypeFor[*testmodel.Customer]()
	productPtr  = reflect.TypeFor[*testmodel.Product]()
	orderType   = reflect.TypeFor[testmodel.Order]()
)

func withRules(t *testing.T, b *policy.Builder) *cloner.Cloner {
	t.Helper()

	p, err := b.Build()
	require.NoError(t, err)

	return cloner.MustNew(cloner.WithPolicy(p))
}

func TestPolicyShareType(t *testing.T) {
	c := withRules(t, policy.NewBuilder().Type(customerPtr, policy.Share))

	orig := testmodel.Sample()

	cp, err := cloner.CloneAs(c, orig)
	require.NoError(t, err)

	assert.NotSame(t, &orig.Customers[0], &cp.Customers[0])
	assert.Same(t, orig.Customers[0], cp.Customers[0])
	assert.Same(t, orig.Customers[1], cp.Customers[1])
	assert.Same(t, orig.Customers[0], cp.Lookup(1))
	assert.NotSame(t, orig.Products["KB-01"], cp.Products["KB-01"])
}

func TestPolicyShareField(t *testing.T) {
	c := withRules(t, policy.NewBuilder().Field(orderType, "Customer", policy.Share))

	orig := testmodel.Sample()

	cp, err := cloner.CloneAs(c, orig)
	require.NoError(t, err)

	alice := cp.Customers[0]
	assert.NotSame(t, orig.Customers[0], alice)
	assert.NotSame(t, orig.Customers[0].Orders[0], alice.Orders[0])
	assert.Same(t, orig.Customers[0], alice.Orders[0].Customer)

	// sharing is not registered, the customer is still copied where it is
	// reached through other fields
	assert.Same(t, alice, cp.Customers[1].Referrer)
}

func TestPolicySkip(t *testing.T) {
	c := withRules(t, policy.NewBuilder().
		Field(orderType, "Notes", policy.Skip).
		Type(reflect.TypeFor[*testmodel.Address](), policy.Skip))

	orig := testmodel.Sample()

	cp, err := cloner.CloneAs(c, orig)
	require.NoError(t, err)

	for _, o := range cp.Customers[0].Orders {
		assert.Nil(t, o.Notes)
	}

	assert.Nil(t, cp.Customers[0].Address)
	assert.Equal(t, orig.Customers[0].Orders[0].Items, cp.Customers[0].Orders[0].Items)
}

func TestPolicyOriginal(t *testing.T) {
	p := policy.NewBuilder().Type(productPtr, policy.Original).MustBuild()

	for name, opts := range modes {
		t.Run(name, func(t *testing.T) {
			orig := testmodel.Sample()

			cp, err := cloner.Of(orig, append(opts, cloner.WithPolicy(p))...)
			require.NoError(t, err)

			assert.Same(t, orig.Products["KB-01"], cp.Products["KB-01"])
			assert.Same(t, orig.Catalog[1], cp.Catalog[1])
			assert.Same(t, orig.Customers[0].Orders[0].Items[0].Product, cp.Customers[0].Orders[0].Items[0].Product)
			assert.Same(t, orig.Products["MS-01"], cp.Customers[0].Orders[0].Attributes["bundle"])
			assert.NotSame(t, &orig.Catalog[0], &cp.Catalog[0])
		})
	}
}

type tagged struct {
	Kept    []int
	Shared  []int `clone:"share"`
	Skipped []int `clone:"skip"`
}

func TestPolicyTags(t *testing.T) {
	orig := &tagged{Kept: []int{1}, Shared: []int{2}, Skipped: []int{3}}

	cp, err := cloner.Of(orig)
	require.NoError(t, err)

	assert.Equal(t, []int{1}, cp.Kept)
	assert.NotSame(t, &orig.Kept[0], &cp.Kept[0])
	assert.Same(t, &orig.Shared[0], &cp.Shared[0])
	assert.Nil(t, cp.Skipped)

	ignoring := withRules(t, policy.NewBuilder().IgnoreTags())

	all, err := cloner.CloneAs(ignoring, orig)
	require.NoError(t, err)
	assert.Equal(t, orig, all)
	assert.NotSame(t, &orig.Shared[0], &all.Shared[0])
}

// Handle is a token that must stay the same instance.
type Handle struct {
	ID int
}

func (*Handle) ClonePolicy() policy.Action { return policy.Original }

type Session struct {
	User   string
	Handle *Handle
}

func TestPolicyMarker(t *testing.T) {
	orig := &Session{User: "u", Handle: &Handle{ID: 7}}

	cp, err := cloner.Of(orig)
	require.NoError(t, err)

	assert.NotSame(t, orig, cp)
	assert.Same(t, orig.Handle, cp.Handle)
}

// sharedBase marks every type embedding it as shared.
type sharedBase struct {
	Label string
}

func (sharedBase) ClonePolicy() policy.Action { return policy.Share }

type Lease struct {
	*sharedBase
	Term int
}

type Tenant struct {
	Name  string
	Lease *Lease
}

func TestPolicyMarkerEmbedded(t *testing.T) {
	orig := &Tenant{Name: "t", Lease: &Lease{sharedBase: &sharedBase{Label: "l"}, Term: 3}}

	cp, err := cloner.Of(orig)
	require.NoError(t, err)

	assert.NotSame(t, orig, cp)
	assert.Same(t, orig.Lease, cp.Lease)
}

// fragile reads its receiver in ClonePolicy.
type fragile struct {
	limit *int
}

func (f fragile) ClonePolicy() policy.Action {
	if *f.limit > 0 {
		return policy.Share
	}

	return policy.Copy
}

type brittle struct {
	F fragile
}

func TestPolicyMarkerPanics(t *testing.T) {
	_, err := cloner.Of(&brittle{})
	assert.ErrorContains(t, err, "cloner_test.fragile.ClonePolicy panicked")
}

func TestPolicyDefaults(t *testing.T) {
	type guarded struct {
		Mu    sync.Mutex
		Once  sync.Once
		Count int
	}

	orig := &guarded{Count: 3}
	orig.Mu.Lock()
	defer orig.Mu.Unlock()

	cp, err := cloner.Of(orig)
	require.NoError(t, err)

	assert.Equal(t, 3, cp.Count)
	assert.True(t, cp.Mu.TryLock())

	ran := false
	cp.Once.Do(func() { ran = true })
	assert.True(t, ran)

	// without defaults locations are copied like any other struct
	c := withRules(t, policy.NewBuilder().WithoutDefaults())

	loc, err := cloner.CloneAs(c, time.UTC)
	require.NoError(t, err)
	assert.NotSame(t, time.UTC, loc)
	assert.Equal(t, "UTC", loc.String())
}

func TestPolicyDefaultOverridden(t *testing.T) {
	c := withRules(t, policy.NewBuilder().Type(reflect.TypeFor[sync.Mutex](), policy.Copy))

	_, err := c.Clone(testmodel.Sample())
	require.NoError(t, err)

	infos := c.Diagnostics().Infos
	require.NotEmpty(t, infos)
	assert.Equal(t, "default-overridden", infos[0].Code)
	assert.Equal(t, "sync.Mutex", infos[0].Type)
}

func TestPolicyConflict(t *testing.T) {
	c := withRules(t, policy.NewBuilder().
		Type(customerPtr, policy.Share).
		TypeFunc(func(t reflect.Type) bool {
			return t.Kind() == reflect.Ptr && t.Elem().Name() == "Customer"
		}, policy.Skip))

	_, err := c.Clone(testmodel.Sample())
	require.Error(t, err)

	var pc *cloner.PolicyConflictError
	require.True(t, errors.As(err, &pc))
	assert.Equal(t, customerPtr, pc.Type)
	assert.ErrorIs(t, err, cloner.ErrPolicyConflict)
	assert.EqualError(t, err, "Store.Customers[0]: conflicting copy policies for *testmodel.Customer: share, skip")

	errs := c.Diagnostics().Errors
	require.Len(t, errs, 1)
	assert.Equal(t, "*testmodel.Customer: [policy-conflict] conflicting copy policies: share, skip", errs[0].String())
}

func TestPolicyFieldConflict(t *testing.T) {
	type doc struct {
		Body []byte `clone:"share"`
	}

	c := withRules(t, policy.NewBuilder().Field(reflect.TypeFor[doc](), "Body", policy.Skip))

	_, err := c.Clone(&doc{Body: []byte("x")})
	require.Error(t, err)

	var pc *cloner.PolicyConflictError
	require.True(t, errors.As(err, &pc))
	assert.Equal(t, "Body", pc.Field)
}

const storePolicy = `
version: "1"
types:
  "*testmodel.Product": original
fields:
  testmodel.Order.Notes: skip
  testmodel.Order.Customer: share
`

var modelTypes = []reflect.Type{
	reflect.TypeFor[testmodel.Store](),
	reflect.TypeFor[testmodel.Customer](),
	reflect.TypeFor[testmodel.Order](),
	reflect.TypeFor[testmodel.Product](),
}

func TestPolicyFromYAML(t *testing.T) {
	loaded, err := policy.Load([]byte(storePolicy), modelTypes...)
	require.NoError(t, err)

	built := policy.NewBuilder().
		Type(productPtr, policy.Original).
		Field(orderType, "Notes", policy.Skip).
		Field(orderType, "Customer", policy.Share).
		MustBuild()

	orig := testmodel.Sample()

	fromFile, err := cloner.Of(orig, cloner.WithPolicy(loaded))
	require.NoError(t, err)

	fromBuilder, err := cloner.Of(orig, cloner.WithPolicy(built))
	require.NoError(t, err)

	assert.Empty(t, testmodel.Diff(fromBuilder, fromFile))
	assert.Same(t, orig.Products["KB-01"], fromFile.Products["KB-01"])
	assert.Same(t, orig.Customers[0], fromFile.Customers[0].Orders[0].Customer)
	assert.Nil(t, fromFile.Customers[0].Orders[0].Notes)
}

func TestPolicyFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(storePolicy), 0o600))

	p, err := policy.LoadFile(path, modelTypes...)
	require.NoError(t, err)

	cp, err := cloner.Of(testmodel.Sample(), cloner.WithPolicy(p))
	require.NoError(t, err)
	assert.Nil(t, cp.Customers[1].Orders[0].Notes)
}
