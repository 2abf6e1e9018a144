package asyncstack_test

import (
	"fmt"

	"github.com/tracekit/asyncstack/pkg/asyncstack"
)

// A minimal task: it owns a frame, suspends once, and finishes on the
// second resumption.
type task struct {
	frame asyncstack.Frame
	done  bool
}

func (t *task) Resume() {
	asyncstack.DeactivateFrame(&t.frame)
	if !t.done {
		t.done = true
		asyncstack.ActivateSuspendedLeaf(&t.frame)
	}
}

func Example() {
	t := &task{}
	t.frame.CaptureReturnAddress()

	asyncstack.ResumeWithNewRoot(t, &t.frame)
	fmt.Println("suspended:", asyncstack.IsSuspendedLeafActive(&t.frame))

	asyncstack.DeactivateSuspendedLeaf(&t.frame)
	asyncstack.ResumeWithNewRoot(t, &t.frame)
	fmt.Println("suspended:", asyncstack.IsSuspendedLeafActive(&t.frame))

	// Output:
	// suspended: true
	// suspended: false
}
