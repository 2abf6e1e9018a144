package asyncstack

import (
	"flag"

	"go.uber.org/atomic"
)

const flagPrefix = "asyncstack."

// frameTrackingEnabled is advisory: it is published for tooling that wants
// to know whether the process records instrumented frames, and consulted by
// runtimes deciding whether to pay the recording cost. The link/unlink
// operations themselves never read it.
var frameTrackingEnabled = atomic.NewBool(DebugTracking)

// FrameTrackingEnabled reports whether instrumented frame tracking is
// enabled for this process.
func FrameTrackingEnabled() bool { return frameTrackingEnabled.Load() }

// SetFrameTrackingEnabled toggles instrumented frame tracking.
func SetFrameTrackingEnabled(enabled bool) { frameTrackingEnabled.Store(enabled) }

type Config struct {
	FrameTracking bool `yaml:"frame_tracking" json:"frame_tracking"`
}

func DefaultConfig() Config {
	var c Config
	var f flag.FlagSet
	c.RegisterFlags(&f)
	return c
}

func (c *Config) RegisterFlags(f *flag.FlagSet) {
	c.RegisterFlagsWithPrefix(flagPrefix, f)
}

func (c *Config) RegisterFlagsWithPrefix(prefix string, f *flag.FlagSet) {
	f.BoolVar(&c.FrameTracking, prefix+"frame-tracking", DebugTracking, "If enabled, the runtime records instrumented async stack frames. Defaults to on in builds with the asyncstackdebug tag.")
}

// Apply installs the configured values process-wide.
func (c *Config) Apply() {
	SetFrameTrackingEnabled(c.FrameTracking)
}
