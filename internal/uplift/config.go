package uplift

// Config holds the knobs for one attribution pass. It is passed by
// value into the engine and never read from ambient state, so a pass
// is a pure function of its arguments.
type Config struct {
	// BaselineWindowDays is the target number of clean days collected
	// when estimating a date's organic baseline.
	BaselineWindowDays int

	// PostWindowDays is the default observation window length for
	// channels without an override.
	PostWindowDays int

	// LookbackCeilingDays bounds the backward walk when collecting
	// clean days, so sparse history cannot loop forever.
	LookbackCeilingDays int

	// ChannelWindowOverrides maps a channel to its observation window
	// length, e.g. short windows for fast-decaying content and longer
	// ones for evergreen video. Channel policy belongs to the caller,
	// not the engine.
	ChannelWindowOverrides map[string]int
}

// DefaultConfig returns the stock engine configuration.
func DefaultConfig() Config {
	return Config{
		BaselineWindowDays:  14,
		PostWindowDays:      7,
		LookbackCeilingDays: 60,
	}
}

// WindowDays resolves the observation window length for a channel.
func (c Config) WindowDays(channel string) int {
	if d, ok := c.ChannelWindowOverrides[channel]; ok && d > 0 {
		return d
	}
	return c.PostWindowDays
}
