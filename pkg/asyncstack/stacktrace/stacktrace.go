// Package stacktrace walks and symbolizes logical async stacks recorded by
// the asyncstack package. Walks follow parent links across suspension
// points and root chains, producing the causal chain of call sites rather
// than the native stack of the moment.
//
// Chains may be read while their owners mutate them; every walk is bounded
// and tolerates stale links, so a torn read can truncate a trace but never
// hang the walker.
package stacktrace

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/tracekit/asyncstack/pkg/asyncstack"
)

// DefaultMaxDepth bounds walks when the caller does not.
const DefaultMaxDepth = 128

// Entry is one symbolized logical call site.
type Entry struct {
	PC       uintptr `json:"pc"`
	Function string  `json:"function"`
	File     string  `json:"file"`
	Line     int     `json:"line"`
}

// WalkFrame returns the call-site PCs of frame and its logical ancestors,
// innermost first, visiting at most maxDepth frames.
func WalkFrame(frame *asyncstack.Frame, maxDepth int) []uintptr {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	pcs := make([]uintptr, 0, 8)
	for f := frame; f != nil && len(pcs) < maxDepth; f = f.Parent() {
		pcs = append(pcs, f.ReturnAddress())
	}
	return pcs
}

// WalkRoot returns the logical call-site PCs of the chain anchored at root:
// the active frame chain, the root's own activation site, and then every
// chain below it on the same goroutine, innermost first.
func WalkRoot(root *asyncstack.Root, maxDepth int) []uintptr {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	pcs := make([]uintptr, 0, 8)
	for r := root; r != nil && len(pcs) < maxDepth; r = r.NextRoot() {
		for f := r.TopFrame(); f != nil && len(pcs) < maxDepth; f = f.Parent() {
			pcs = append(pcs, f.ReturnAddress())
		}
		if len(pcs) < maxDepth {
			if pc := r.ReturnPC(); pc != 0 {
				pcs = append(pcs, pc)
			}
		}
	}
	return pcs
}

// Current returns the calling goroutine's logical stack, or nil when the
// goroutine is not executing under an async stack root.
func Current(maxDepth int) []uintptr {
	root := asyncstack.CurrentRoot()
	if root == nil {
		return nil
	}
	return WalkRoot(root, maxDepth)
}

// Symbolize resolves each PC to a function, file and line. The PCs are
// return addresses as recorded by the asyncstack package, so resolution
// goes through runtime.CallersFrames, which maps a return address back to
// its call site even when the call was inlined. Each PC resolves to exactly
// one entry, the innermost inline frame; PCs that do not belong to any
// known function keep an empty function name so the trace preserves its
// shape.
func Symbolize(pcs []uintptr) []Entry {
	entries := make([]Entry, 0, len(pcs))
	for _, pc := range pcs {
		e := Entry{PC: pc}
		if pc != 0 {
			frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
			e.Function = frame.Function
			e.File = frame.File
			e.Line = frame.Line
		}
		entries = append(entries, e)
	}
	return entries
}

// Format renders entries in the style of a goroutine stack dump.
func Format(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		name := e.Function
		if name == "" {
			name = fmt.Sprintf("unknown pc %#x", e.PC)
		}
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", name, e.File, e.Line)
	}
	return b.String()
}
