// Package asyncstack reconstructs logical call stacks across coroutine
// suspension points.
//
// Every time a task suspends, the native goroutine stack it was running on
// unwinds, and the causal chain of calls that led to the suspended work is
// lost to conventional stack walkers. This package re-links those
// discontiguous native stacks into a single logical chain: runtimes embed a
// Frame in each task, activate a Root whenever control enters an async
// boundary, and tooling (profilers, crash handlers, debug endpoints) walks
// the resulting chain to recover the true causal stack instead of stopping
// at the current goroutine's boundary.
//
// The package only maintains the links. It never allocates or frees frames,
// and it never blocks on the hot path; the one lock it owns guards the
// debug-only suspended-leaf set (see the asyncstackdebug build tag).
//
// Misuse, such as releasing roots out of order or double-activating a frame,
// is a caller bug: it panics in builds with the asyncstackdebug tag and is
// undefined otherwise.
package asyncstack

import (
	"runtime"

	"go.uber.org/atomic"
)

// Frame is one logical call site in an async chain. It is embedded by the
// task or coroutine that owns the call site; the zero value is ready to use.
//
// The fields are atomics because tooling reads frames from other goroutines
// outside any synchronization the owner participates in. Such reads are
// best-effort: a concurrent reader may observe a frame mid-transition and
// must tolerate stale answers.
type Frame struct {
	// returnAddress is the symbolizable PC identifying this call site.
	returnAddress atomic.Uintptr

	// parentFrame points at the frame that logically called this one.
	parentFrame atomic.Pointer[Frame]

	// stackRoot holds nil, the owning Root, or the suspended-leaf
	// sentinel. Never anything else.
	stackRoot atomic.Pointer[Root]
}

// ReturnAddress returns the frame's recorded call-site PC.
func (f *Frame) ReturnAddress() uintptr { return f.returnAddress.Load() }

// SetReturnAddress records pc as the frame's call site.
func (f *Frame) SetReturnAddress(pc uintptr) { f.returnAddress.Store(pc) }

// CaptureReturnAddress records the caller of CaptureReturnAddress as the
// frame's call site. Must not be inlined: CaptureCallerPC counts this
// frame when skipping to the caller.
//
//go:noinline
func (f *Frame) CaptureReturnAddress() {
	f.returnAddress.Store(CaptureCallerPC())
}

// Parent returns the logically-calling frame, or nil for a chain head.
func (f *Frame) Parent() *Frame { return f.parentFrame.Load() }

// SetParent links f under parent.
func (f *Frame) SetParent(parent *Frame) { f.parentFrame.Store(parent) }

// StackRoot returns the frame's root-membership value: nil when inactive,
// the owning root while active, or SuspendedLeafSentinel while the frame is
// a suspended leaf. Intended for tooling that scans frame memory.
func (f *Frame) StackRoot() *Root { return f.stackRoot.Load() }

// Root anchors a logical stack to the goroutine currently executing it.
// Roots are created by ActivateRoot, form a LIFO chain per goroutine, and
// are never shared across goroutines or reused.
type Root struct {
	// nextRoot is the root that was current when this one was installed.
	// Written once before the root is published, immutable afterwards.
	nextRoot *Root

	// topFrame is the currently active frame under this root, nil when
	// no frame is active. Written only by the owning goroutine, read
	// concurrently by tooling.
	topFrame atomic.Pointer[Frame]

	// returnPC and goroutineID stitch the logical chain back into the
	// native stack: the PC of the code that activated the root, and the
	// goroutine whose native stack it lives on.
	returnPC    uintptr
	goroutineID int64
}

// NextRoot returns the previously-active root on the same goroutine.
func (r *Root) NextRoot() *Root { return r.nextRoot }

// TopFrame returns the currently active frame under r, or nil.
func (r *Root) TopFrame() *Frame { return r.topFrame.Load() }

// ReturnPC returns the PC of the call that activated this root.
func (r *Root) ReturnPC() uintptr { return r.returnPC }

// GoroutineID returns the id of the goroutine the root is anchored to.
func (r *Root) GoroutineID() int64 { return r.goroutineID }

func (r *Root) setStackFrameContext(pc uintptr, gid int64) {
	r.returnPC = pc
	r.goroutineID = gid
}

// CaptureCallerPC returns the return PC identifying the caller of the
// function that calls CaptureCallerPC. The result symbolizes through
// runtime.CallersFrames. Must not be inlined: the fixed skip count below
// requires CaptureCallerPC and its caller to be distinct frames.
//
//go:noinline
func CaptureCallerPC() uintptr {
	var pcs [1]uintptr
	// Skip runtime.Callers, CaptureCallerPC and the immediate caller.
	if runtime.Callers(3, pcs[:]) == 0 {
		return 0
	}
	return pcs[0]
}

// ActivateFrame makes frame the top frame of root. The root must have no
// active frame and the frame must not be owned elsewhere.
func ActivateFrame(root *Root, frame *Frame) {
	debugAssert(root.topFrame.Load() == nil, "activating a frame under a root that already has a top frame")
	debugAssert(frame.stackRoot.Load() == nil, "activating a frame that is already owned")
	// Membership becomes visible before the frame is published as the
	// top of the chain, so a reader that sees topFrame sees a fully
	// linked frame.
	frame.stackRoot.Store(root)
	root.topFrame.Store(frame)
}

// DeactivateFrame detaches frame from its owning root. The frame must be
// the root's current top frame.
func DeactivateFrame(frame *Frame) {
	root := frame.stackRoot.Load()
	debugAssert(root != nil, "deactivating a frame that is not active")
	debugAssert(root != &suspendedLeafSentinel, "deactivating a frame that is a suspended leaf")
	debugAssert(root.topFrame.Load() == frame, "deactivating a frame that is not the top frame of its root")
	root.topFrame.Store(nil)
	frame.stackRoot.Store(nil)
}

// PushFrameCallerCallee records a logical call from caller to callee:
// callee becomes the top frame of caller's root and caller's ownership is
// handed off to it. The caller must be the current top frame.
func PushFrameCallerCallee(caller, callee *Frame) {
	root := caller.stackRoot.Load()
	debugAssert(root != nil, "pushing under a caller frame that is not active")
	debugAssert(root != &suspendedLeafSentinel, "pushing under a suspended leaf frame")
	debugAssert(root.topFrame.Load() == caller, "pushing under a caller frame that is not the top frame")
	callee.parentFrame.Store(caller)
	callee.stackRoot.Store(root)
	root.topFrame.Store(callee)
	caller.stackRoot.Store(nil)
}

// PopFrameCallee records a logical return from callee: ownership moves back
// to its parent frame, which becomes the top frame again. A nil parent
// leaves the root with no active frame.
func PopFrameCallee(callee *Frame) {
	root := callee.stackRoot.Load()
	debugAssert(root != nil, "popping a callee frame that is not active")
	debugAssert(root != &suspendedLeafSentinel, "popping a suspended leaf frame")
	debugAssert(root.topFrame.Load() == callee, "popping a callee frame that is not the top frame")
	caller := callee.parentFrame.Load()
	if caller != nil {
		caller.stackRoot.Store(root)
	}
	root.topFrame.Store(caller)
	callee.stackRoot.Store(nil)
}
