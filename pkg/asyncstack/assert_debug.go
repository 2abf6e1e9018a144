//go:build asyncstackdebug

package asyncstack

// DebugTracking reports whether the package was built with the
// asyncstackdebug tag.
const DebugTracking = true

func debugAssert(cond bool, msg string) {
	if !cond {
		panic("asyncstack: " + msg)
	}
}
