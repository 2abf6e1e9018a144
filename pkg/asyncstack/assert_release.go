//go:build !asyncstackdebug

package asyncstack

// DebugTracking reports whether the package was built with the
// asyncstackdebug tag.
const DebugTracking = false

func debugAssert(bool, string) {}
