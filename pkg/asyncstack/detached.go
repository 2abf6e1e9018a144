package asyncstack

import (
	"runtime"
	"sync"
)

var (
	detachedInit      sync.Once
	detachedRootFrame Frame
)

// detachedTask exists so that logical stacks with no tracked origin
// symbolize to a recognizable name. Its own entry PC is recorded as the
// detached root frame's return address, so symbolization resolves to
// "asyncstack.detachedTask" rather than to whatever helper happened to
// build the frame. Must not be inlined or the captured PC would land in
// the caller.
//
//go:noinline
func detachedTask() uintptr {
	pc, _, _, _ := runtime.Caller(0)
	return pc
}

// DetachedRootFrame returns the process-wide frame used as the logical
// origin of chains whose true origin is unknown or deliberately untracked,
// such as fire-and-forget work. The frame is initialized on first use and
// its recorded address never changes afterwards.
func DetachedRootFrame() *Frame {
	detachedInit.Do(func() {
		detachedRootFrame.SetReturnAddress(detachedTask())
	})
	return &detachedRootFrame
}
