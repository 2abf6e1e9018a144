package asyncstack

// Resumer is the coroutine surface the resume bridge needs: Resume runs the
// suspended computation until it suspends again or completes.
type Resumer interface {
	Resume()
}

// ResumerFunc adapts a plain function to the Resumer interface.
type ResumerFunc func()

func (f ResumerFunc) Resume() { f() }

// ResumeWithNewRoot resumes co with frame installed as the active logical
// frame under a root scoped to this call. The root is current for exactly
// the duration of Resume: the scoped release runs after control returns
// from the resumption and before ResumeWithNewRoot itself returns.
//
// The resumed computation must deactivate frame before it suspends or
// completes; the root is released empty.
func ResumeWithNewRoot(co Resumer, frame *Frame) {
	scope := ActivateRootFromPC(CaptureCallerPC())
	defer scope.Release()
	scope.ActivateFrame(frame)
	co.Resume()
}
