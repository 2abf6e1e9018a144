package asyncstack

import (
	"fmt"
	"os"
	"sync"

	"github.com/petermattis/goid"
	"go.uber.org/atomic"
)

// goroutineRoots maps a goroutine id to the holder of that goroutine's
// current root. An entry exists only while the goroutine has at least one
// active root, so the table does not accumulate dead goroutines.
//
// The table is the published tooling surface: VisitGoroutineRoots iterates
// it without cooperation from the traced code. Goroutine ids are never
// reused by the Go runtime, so a stale read can at worst miss a root or
// observe one that has just been released.
var goroutineRoots sync.Map // int64 -> *rootHolder

type rootHolder struct {
	value atomic.Pointer[Root]
}

var goroutineIDCheck sync.Once

// ensureGoroutineIDAvailable verifies once per process that goroutine ids
// can be resolved. Without them every recorded root would attach to the
// wrong slot and every later trace would be silently wrong, so there is no
// degraded mode: failure terminates the process.
func ensureGoroutineIDAvailable() {
	goroutineIDCheck.Do(func() {
		if goid.Get() <= 0 {
			fmt.Fprintln(os.Stderr, "asyncstack: failed to resolve the current goroutine id; async stack tracing cannot operate")
			os.Exit(1)
		}
	})
}

// CurrentRoot returns the calling goroutine's current async stack root, or
// nil when the goroutine is not executing under one.
func CurrentRoot() *Root {
	if h, ok := goroutineRoots.Load(goid.Get()); ok {
		return h.(*rootHolder).value.Load()
	}
	return nil
}

// GetCurrentRoot returns the calling goroutine's current root, which must
// exist.
func GetCurrentRoot() *Root {
	root := CurrentRoot()
	debugAssert(root != nil, "no current async stack root on this goroutine")
	return root
}

// ExchangeCurrentRoot installs newRoot as the calling goroutine's current
// root and returns the previous one. Runtimes that transfer a logical stack
// between execution contexts use this to save and restore the root around
// the transfer; nil uninstalls the slot entirely.
func ExchangeCurrentRoot(newRoot *Root) *Root {
	ensureGoroutineIDAvailable()
	gid := goid.Get()
	if newRoot == nil {
		if h, ok := goroutineRoots.Load(gid); ok {
			old := h.(*rootHolder).value.Swap(nil)
			goroutineRoots.Delete(gid)
			return old
		}
		return nil
	}
	h, _ := goroutineRoots.LoadOrStore(gid, &rootHolder{})
	return h.(*rootHolder).value.Swap(newRoot)
}

// VisitGoroutineRoots calls fn for every goroutine that currently has an
// active root, until fn returns false. Enumeration is a point-in-time
// best-effort snapshot; roots installed or released during the visit may or
// may not be observed.
func VisitGoroutineRoots(fn func(goroutineID int64, root *Root) bool) {
	goroutineRoots.Range(func(k, v any) bool {
		root := v.(*rootHolder).value.Load()
		if root == nil {
			return true
		}
		return fn(k.(int64), root)
	})
}

func installCurrentRoot(root *Root) {
	ensureGoroutineIDAvailable()
	h, _ := goroutineRoots.LoadOrStore(root.goroutineID, &rootHolder{})
	h.(*rootHolder).value.Store(root)
}

// restoreCurrentRoot reinstates root as the goroutine's current root on the
// known-safe scope-exit path. A nil root removes the goroutine's slot.
func restoreCurrentRoot(gid int64, root *Root) {
	if root == nil {
		goroutineRoots.Delete(gid)
		return
	}
	if h, ok := goroutineRoots.Load(gid); ok {
		h.(*rootHolder).value.Store(root)
	}
}
