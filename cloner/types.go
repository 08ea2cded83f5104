package cloner

import (
	"iter"

	"reflect-cloner/faults"
	"reflect-cloner/internal/access"
	"reflect-cloner/internal/copier"
	"reflect-cloner/internal/diagnostic"
	"reflect-cloner/internal/walk"
)

// Traversal selects the order in which references are filled.
type Traversal = walk.Traversal

const (
	DepthFirst   = walk.DepthFirst
	BreadthFirst = walk.BreadthFirst
)

// ParseTraversal parses "depth-first" ("dfs") and "breadth-first" ("bfs").
func ParseTraversal(s string) (Traversal, error) {
	return walk.ParseTraversal(s)
}

// Capability is the runtime permission used to read and write struct fields
// and allocate blank instances.
type Capability = access.Capability

// UnsafeAccess reaches unexported fields, except those of Go runtime
// internals. It is the default unless built with the clonersafe tag.
func UnsafeAccess() Capability { return access.Unsafe{} }

// ExportedAccess reaches exported fields only.
func ExportedAccess() Capability { return access.Exported{} }

type (
	// Copier is a custom copy strategy for one type.
	Copier = copier.Copier
	// Context lets custom strategies copy nested values within the session.
	Context = copier.Context
	// Container adapts a collection type the cloner cannot traverse itself.
	Container = copier.Container
	// Diagnostics lists what a Cloner noticed about the types it copied.
	Diagnostics = diagnostic.Diagnostics
)

// Self is implemented by types that know how to copy themselves, such as
//
//	func (t *Token) CloneWith(ctx cloner.Context) (*Token, error)
//
// The method is called for every non-nil value of T reached by the cloner,
// once per instance for pointers, maps and slices. A Copier registered for T
// takes precedence.
type Self[T any] interface {
	CloneWith(ctx Context) (T, error)
}

// CopyFunc returns a Copier for T backed by fn.
func CopyFunc[T any](fn func(T, Context) (T, error)) Copier {
	return copier.Func(fn)
}

// Copy deep copies v from inside a custom strategy.
func Copy[T any](ctx Context, v T) (T, error) {
	return copier.Copy(ctx, v)
}

// Sequence adapts an ordered container of type C (a pointer or map type)
// holding elements of type E.
func Sequence[C any, E any](all func(C) iter.Seq[E], empty func() C, add func(C, E)) Container {
	return copier.Sequence(all, empty, add)
}

// Mapping adapts a keyed container of type C (a pointer or map type).
func Mapping[C any, K any, V any](all func(C) iter.Seq2[K, V], empty func() C, put func(C, K, V)) Container {
	return copier.Mapping(all, empty, put)
}

// Error kinds, see package faults.
type (
	UninstantiableTypeError = faults.UninstantiableTypeError
	InaccessibleFieldError  = faults.InaccessibleFieldError
	DuplicateMappingError   = faults.DuplicateMappingError
	PolicyConflictError     = faults.PolicyConflictError
	CopierError             = faults.CopierError
)

var (
	ErrUninstantiable    = faults.ErrUninstantiable
	ErrInaccessibleField = faults.ErrInaccessibleField
	ErrDuplicateMapping  = faults.ErrDuplicateMapping
	ErrPolicyConflict    = faults.ErrPolicyConflict
	ErrCopier            = faults.ErrCopier
)
