package asyncstack

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	c := DefaultConfig()
	require.Equal(t, DebugTracking, c.FrameTracking)
}

func TestConfigRegisterFlags(t *testing.T) {
	prev := FrameTrackingEnabled()
	defer SetFrameTrackingEnabled(prev)

	var c Config
	fs := flag.NewFlagSet("test", flag.PanicOnError)
	c.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-asyncstack.frame-tracking=true"}))
	require.True(t, c.FrameTracking)

	c.Apply()
	require.True(t, FrameTrackingEnabled())

	require.NoError(t, fs.Parse([]string{"-asyncstack.frame-tracking=false"}))
	c.Apply()
	require.False(t, FrameTrackingEnabled())
}
