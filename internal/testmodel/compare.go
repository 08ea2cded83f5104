package testmodel

import (
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Options are the go-cmp options comparing fixture graphs field by field,
// unexported fields included. Locations compare by identity.
func Options() []cmp.Option {
	return []cmp.Option{
		cmp.AllowUnexported(Store{}, Order{}),
		cmpopts.IgnoreFields(Store{}, "mu"),
		cmp.Comparer(func(a, b *time.Location) bool { return a == b }),
	}
}

// Diff returns a human-readable report of the differences between x and y,
// or "" when they are structurally equal.
func Diff(x, y any) string {
	return cmp.Diff(x, y, Options()...)
}
