package filter

// Chain applies a Spec's cascade sequentially, one independent state set
// per channel, then multiplies by the scalar gain. Filter/pyramid/
// histogram state is mutated only by its single producer thread (§5);
// Chain itself takes no lock — callers own that discipline.
type Chain struct {
	spec     Spec
	channels int
	state    [][]state // [channel][section]
}

// NewChain builds a Chain for the given immutable spec and channel count.
func NewChain(spec Spec, channels int) *Chain {
	c := &Chain{spec: spec, channels: channels}
	c.state = make([][]state, channels)
	for ch := range c.state {
		c.state[ch] = make([]state, len(spec.Sections))
	}
	return c
}

// Spec returns the chain's immutable coefficient set.
func (c *Chain) Spec() Spec { return c.spec }

// WarmupSamples returns the settle time for this chain's spec.
func (c *Chain) WarmupSamples() int { return c.spec.WarmupSamples }

// Process filters a single sample on the given channel, updating that
// channel's state, and returns the filtered output.
func (c *Chain) Process(channel int, x float64) float64 {
	st := c.state[channel]
	y := x
	for i := range c.spec.Sections {
		y = processSection(c.spec.Sections[i], &st[i], y)
	}
	return y * c.spec.Gain
}

// ProcessBlock filters an entire span on the given channel in order,
// writing into out (which may alias in).
func (c *Chain) ProcessBlock(channel int, in, out []float64) {
	for i, x := range in {
		out[i] = c.Process(channel, x)
	}
}

// Reset clears all channels' history registers.
func (c *Chain) Reset() {
	for ch := range c.state {
		for i := range c.state[ch] {
			c.state[ch][i] = state{}
		}
	}
}

// ResetChannel clears a single channel's history registers, e.g. after a
// gap on that channel alone.
func (c *Chain) ResetChannel(channel int) {
	for i := range c.state[channel] {
		c.state[channel][i] = state{}
	}
}
