package asyncstack

// suspendedLeafSentinel is a process-wide Root that is never installed on
// any goroutine. Its address marks a frame as a suspended leaf: a frame at
// the bottom of its logical chain whose work is awaiting resumption and
// which therefore is owned by no real root. Tooling scanning frame memory
// recognizes suspended leaves by comparing against this address.
var suspendedLeafSentinel Root

// SuspendedLeafSentinel returns the sentinel address so tooling can
// identify suspended leaves by pointer comparison.
func SuspendedLeafSentinel() *Root { return &suspendedLeafSentinel }

// ActivateSuspendedLeaf marks frame as a suspended leaf. The frame must
// currently be owned by no root. In builds with the asyncstackdebug tag the
// frame is also added to the enumerable leaf set consumed by
// SweepSuspendedLeafFrames.
func ActivateSuspendedLeaf(frame *Frame) {
	debugAssert(frame.stackRoot.Load() == nil, "marking a suspended leaf that is still owned by a root")
	frame.stackRoot.Store(&suspendedLeafSentinel)
	leafStoreInsert(frame)
}

// IsSuspendedLeafActive reports whether frame is currently marked as a
// suspended leaf. The check is lock-free and safe to call from any
// goroutine; a concurrent marker may make the answer stale by the time it
// is returned.
func IsSuspendedLeafActive(frame *Frame) bool {
	return frame.stackRoot.Load() == &suspendedLeafSentinel
}

// DeactivateSuspendedLeaf clears frame's suspended-leaf mark. The frame
// must currently be marked.
func DeactivateSuspendedLeaf(frame *Frame) {
	debugAssert(IsSuspendedLeafActive(frame), "clearing a suspended-leaf mark on a frame that is not marked")
	frame.stackRoot.Store(nil)
	leafStoreRemove(frame)
}

// SweepSuspendedLeafFrames calls fn once per currently registered suspended
// leaf frame, in unspecified order. The enumerable set is maintained only
// in builds with the asyncstackdebug tag; otherwise the sweep yields
// nothing, keeping IsSuspendedLeafActive free of bookkeeping everywhere.
func SweepSuspendedLeafFrames(fn func(*Frame)) {
	leafStoreSweep(fn)
}
