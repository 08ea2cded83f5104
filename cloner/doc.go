// Package cloner makes deep copies of arbitrary Go value graphs.
//
// A copy is structurally identical to its original and fully independent of
// it: every pointer, slice backing array and map reachable from the root is
// duplicated once, so cycles and shared references keep their shape in the
// copy. Types do not need to cooperate; unexported fields are copied too
// unless the program is built with the clonersafe tag.
//
//	snapshot, err := cloner.Of(state)
//
// Copying is steered by a policy.Policy. A type or field can be copied (the
// default), shared with the original, skipped (left as zero value) or pinned
// to its original instance:
//
//	p := policy.NewBuilder().
//		Type(reflect.TypeFor[*Customer](), policy.Share).
//		Field(reflect.TypeFor[Order](), "Cache", policy.Skip).
//		MustBuild()
//
//	c := cloner.MustNew(cloner.WithPolicy(p))
//	snapshot, err := cloner.CloneAs(c, order)
//
// Struct tags (`clone:"share"`), the policy.Marker interface and YAML policy
// files (policy.LoadFile) express the same rules.
//
// A Cloner caches what it learns about each type and is safe for concurrent
// use; reuse one instead of calling Clone with options in a loop.
package cloner
