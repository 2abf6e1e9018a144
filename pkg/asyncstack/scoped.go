package asyncstack

import (
	"github.com/petermattis/goid"
)

// ScopedRoot pairs a Root with the scope of the call that activated it.
// Obtain one with ActivateRoot and release it with Release before the
// activating call returns, usually via defer:
//
//	scope := asyncstack.ActivateRoot()
//	defer scope.Release()
//
// Releases must mirror activations exactly (LIFO) and the root must have no
// active top frame by the time it is released. Violations panic in builds
// with the asyncstackdebug tag and are undefined otherwise.
type ScopedRoot struct {
	root Root
}

// ActivateRoot creates a root anchored at the calling function, links it
// above the goroutine's current root and installs it as current.
func ActivateRoot() *ScopedRoot {
	return ActivateRootFromPC(CaptureCallerPC())
}

// ActivateRootFromPC is ActivateRoot for callers that captured the anchor
// PC themselves, such as runtimes recording the resumption site of a task
// rather than their own.
func ActivateRootFromPC(pc uintptr) *ScopedRoot {
	s := new(ScopedRoot)
	s.root.setStackFrameContext(pc, goid.Get())
	s.root.nextRoot = CurrentRoot()
	installCurrentRoot(&s.root)
	return s
}

// Release pops the root off the goroutine's root chain, restoring the root
// that was current when ActivateRoot ran.
func (s *ScopedRoot) Release() {
	if DebugTracking {
		debugAssert(CurrentRoot() == &s.root, "async stack root released out of order")
		debugAssert(s.root.topFrame.Load() == nil, "async stack root released while a frame is still active")
	}
	restoreCurrentRoot(s.root.goroutineID, s.root.nextRoot)
}

// Root returns the underlying root, valid until Release.
func (s *ScopedRoot) Root() *Root { return &s.root }

// ActivateFrame makes frame the active frame under this root.
func (s *ScopedRoot) ActivateFrame(frame *Frame) {
	ActivateFrame(&s.root, frame)
}

// DeactivateFrame detaches frame from this root.
func (s *ScopedRoot) DeactivateFrame(frame *Frame) {
	debugAssert(frame.stackRoot.Load() == &s.root, "deactivating a frame owned by a different root")
	DeactivateFrame(frame)
}
