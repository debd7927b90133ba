package core

import "golang.org/x/exp/constraints"

// PulseLimits holds the servo pulse windows in microseconds
type PulseLimits struct {
	// Samples outside Min..Max are glitches and read as neutral
	Min int32
	Max int32

	// Plausible samples are clamped to ClampLow..ClampHigh
	ClampLow  int32
	ClampHigh int32

	// Endpoints start this far from the learned centre
	InitialSpread int32
}

// DefaultPulseLimits returns the windows used by standard RC receivers
func DefaultPulseLimits() PulseLimits {
	return PulseLimits{
		Min:           600,
		Max:           2500,
		ClampLow:      800,
		ClampHigh:     2300,
		InitialSpread: 250,
	}
}

func clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs16(v int16) uint16 {
	if v < 0 {
		return uint16(-v)
	}
	return uint16(v)
}

// seedChannel centres a channel on its current raw reading
func seedChannel(c *Channel, spread int32) {
	c.Centre = c.Raw
	c.EndpointLow = c.Raw - spread
	c.EndpointHigh = c.Raw + spread
}

// setDirect stores a pre-normalized percentage
func setDirect(c *Channel, value int32) {
	c.Raw = value
	c.Normalized = int16(clamp(value, -100, 100))
	c.Absolute = abs16(c.Normalized)
}

// Normalize converts the raw pulse width of c into a percentage, widening
// the endpoints when the sample lies beyond them.
//
// The ratio is scaled to 101 and clamped to 100 so that a sample sitting
// exactly on a learned endpoint reads 100 despite integer truncation.
func Normalize(c *Channel, lim PulseLimits) {
	if c.Raw < lim.Min || c.Raw > lim.Max {
		c.Normalized = 0
		c.Absolute = 0
		return
	}

	raw := clamp(c.Raw, lim.ClampLow, lim.ClampHigh)

	var n int32
	switch {
	case raw == c.Centre:
		n = 0

	case raw < c.Centre:
		if raw < c.EndpointLow {
			c.EndpointLow = raw
		}
		n = (c.Centre - raw) * 101 / (c.Centre - c.EndpointLow)
		if n > 100 {
			n = 100
		}
		if !c.Reversed {
			n = -n
		}

	default:
		if raw > c.EndpointHigh {
			c.EndpointHigh = raw
		}
		n = (raw - c.Centre) * 101 / (c.EndpointHigh - c.Centre)
		if n > 100 {
			n = 100
		}
		if c.Reversed {
			n = -n
		}
	}

	c.Normalized = int16(n)
	c.Absolute = abs16(c.Normalized)
}
