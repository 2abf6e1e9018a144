package asyncstack

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuspendedLeafRoundTrip(t *testing.T) {
	var frame Frame
	require.False(t, IsSuspendedLeafActive(&frame))

	ActivateSuspendedLeaf(&frame)
	require.True(t, IsSuspendedLeafActive(&frame))
	require.Same(t, SuspendedLeafSentinel(), frame.StackRoot())

	DeactivateSuspendedLeaf(&frame)
	require.False(t, IsSuspendedLeafActive(&frame))
	require.Nil(t, frame.StackRoot())
}

func TestSuspendedLeafSentinelIsNeverARealRoot(t *testing.T) {
	scope := ActivateRoot()
	defer scope.Release()
	require.NotSame(t, SuspendedLeafSentinel(), scope.Root())
}

// Thread A marks a frame suspended under an active root; thread B observes
// the mark and, after A clears it, observes the clear.
func TestSuspendedLeafCrossGoroutineVisibility(t *testing.T) {
	scope := ActivateRoot()
	defer scope.Release()

	var frame Frame
	frame.SetReturnAddress(0x3001)

	marked := make(chan struct{})
	cleared := make(chan struct{})
	whileMarked := make(chan bool)
	afterClear := make(chan bool)
	go func() {
		<-marked
		whileMarked <- IsSuspendedLeafActive(&frame)
		<-cleared
		afterClear <- IsSuspendedLeafActive(&frame)
	}()

	ActivateSuspendedLeaf(&frame)
	require.True(t, IsSuspendedLeafActive(&frame))
	close(marked)
	require.True(t, <-whileMarked)

	DeactivateSuspendedLeaf(&frame)
	require.False(t, IsSuspendedLeafActive(&frame))
	close(cleared)
	require.False(t, <-afterClear)
}
