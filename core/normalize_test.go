package core

import "testing"

func seededChannel(centre int32, reversed bool) Channel {
	c := Channel{Raw: centre, Reversed: reversed}
	seedChannel(&c, DefaultPulseLimits().InitialSpread)
	return c
}

func normalizeRaw(c *Channel, raw int32) int16 {
	c.Raw = raw
	Normalize(c, DefaultPulseLimits())
	return c.Normalized
}

func TestNormalizeCentreIsNeutral(t *testing.T) {
	for _, reversed := range []bool{false, true} {
		c := seededChannel(1500, reversed)
		if n := normalizeRaw(&c, 1500); n != 0 {
			t.Errorf("reversed=%v: centre should normalize to 0, got %d", reversed, n)
		}
	}
}

func TestNormalizeEndpointsReadFullScale(t *testing.T) {
	tests := []struct {
		raw      int32
		reversed bool
		want     int16
	}{
		{1250, false, -100},
		{1750, false, 100},
		{1250, true, 100},
		{1750, true, -100},
	}

	for _, test := range tests {
		c := seededChannel(1500, test.reversed)
		n := normalizeRaw(&c, test.raw)
		if n != test.want {
			t.Errorf("raw=%d reversed=%v: expected %d, got %d", test.raw, test.reversed, test.want, n)
		}
		if c.Absolute != 100 {
			t.Errorf("raw=%d: expected absolute 100, got %d", test.raw, c.Absolute)
		}
	}
}

func TestNormalizeWidensEndpoints(t *testing.T) {
	c := seededChannel(1500, false)

	if n := normalizeRaw(&c, 1000); n != -100 {
		t.Errorf("Beyond endpoint should read -100, got %d", n)
	}
	if c.EndpointLow != 1000 {
		t.Errorf("Expected low endpoint 1000, got %d", c.EndpointLow)
	}

	// Half way to the widened endpoint
	if n := normalizeRaw(&c, 1250); n != -50 {
		t.Errorf("Expected -50, got %d", n)
	}

	normalizeRaw(&c, 1400)
	if c.EndpointLow != 1000 {
		t.Errorf("Endpoints must never shrink, low endpoint is %d", c.EndpointLow)
	}

	normalizeRaw(&c, 2100)
	if c.EndpointHigh != 2100 {
		t.Errorf("Expected high endpoint 2100, got %d", c.EndpointHigh)
	}
	normalizeRaw(&c, 1600)
	if c.EndpointHigh != 2100 {
		t.Errorf("Endpoints must never shrink, high endpoint is %d", c.EndpointHigh)
	}
}

func TestNormalizeRejectsImplausibleSamples(t *testing.T) {
	for _, raw := range []int32{0, 599, 2501, 5000} {
		c := seededChannel(1500, false)
		c.Normalized = 42
		n := normalizeRaw(&c, raw)
		if n != 0 || c.Absolute != 0 {
			t.Errorf("raw=%d: expected neutral, got %d/%d", raw, n, c.Absolute)
		}
		if c.EndpointLow != 1250 || c.EndpointHigh != 1750 {
			t.Errorf("raw=%d: endpoints changed to %d..%d", raw, c.EndpointLow, c.EndpointHigh)
		}
	}
}

func TestNormalizeClampsPlausibleSamples(t *testing.T) {
	c := seededChannel(1500, false)

	if n := normalizeRaw(&c, 700); n != -100 {
		t.Errorf("Expected -100, got %d", n)
	}
	if c.EndpointLow != 800 {
		t.Errorf("Low endpoint should stop at the clamp, got %d", c.EndpointLow)
	}
	if c.Raw != 700 {
		t.Errorf("Clamping must not modify Raw, got %d", c.Raw)
	}

	normalizeRaw(&c, 2450)
	if c.EndpointHigh != 2300 {
		t.Errorf("High endpoint should stop at the clamp, got %d", c.EndpointHigh)
	}
}

func TestNormalizeMonotonic(t *testing.T) {
	for _, reversed := range []bool{false, true} {
		c := seededChannel(1480, reversed)
		prev := normalizeRaw(&c, 800)

		for raw := int32(801); raw <= 2300; raw++ {
			n := normalizeRaw(&c, raw)
			if !reversed && n < prev {
				t.Fatalf("raw=%d: %d < %d, not monotonic", raw, n, prev)
			}
			if reversed && n > prev {
				t.Fatalf("raw=%d reversed: %d > %d, not monotonic", raw, n, prev)
			}
			if n < -100 || n > 100 {
				t.Fatalf("raw=%d: %d out of range", raw, n)
			}
			prev = n
		}
	}
}

func TestSetDirectClamps(t *testing.T) {
	var c Channel

	setDirect(&c, -73)
	if c.Normalized != -73 || c.Absolute != 73 {
		t.Errorf("Expected -73/73, got %d/%d", c.Normalized, c.Absolute)
	}

	setDirect(&c, 127)
	if c.Normalized != 100 || c.Absolute != 100 {
		t.Errorf("Expected 100/100, got %d/%d", c.Normalized, c.Absolute)
	}
	if c.Raw != 127 {
		t.Errorf("Raw should keep the received value, got %d", c.Raw)
	}
}
