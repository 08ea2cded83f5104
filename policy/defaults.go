package policy

import (
	"os"
	"reflect"
	"sync"
	"time"
)

// Defaults returns the process-wide default type actions. Rules registered on
// a Builder override them without conflict; Builder.WithoutDefaults drops them.
//
// Runtime handles and descriptors keep their original instance. Concurrency
// primitives are skipped so that the copy starts with fresh, unlocked state.
func Defaults() map[reflect.Type]Action {
	return map[reflect.Type]Action{
		reflect.TypeFor[*time.Location](): Original,
		reflect.TypeFor[*os.File]():       Original,
		reflect.TypeOf(reflect.TypeOf(0)): Original,
		reflect.TypeFor[reflect.Value]():  Original,

		reflect.TypeFor[sync.Mutex]():     Skip,
		reflect.TypeFor[sync.RWMutex]():   Skip,
		reflect.TypeFor[sync.WaitGroup](): Skip,
		reflect.TypeFor[sync.Once]():      Skip,
	}
}
