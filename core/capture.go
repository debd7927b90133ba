package core

import (
	"runtime"
	"sync/atomic"
)

// CaptureConfig describes the timer behind the capture driver
type CaptureConfig struct {
	// PeriodLength is the counter modulus (reload value + 1).
	// Zero means a full 32-bit free-running counter.
	PeriodLength uint32

	// Shift converts counter ticks to microseconds (2 MHz timer: 1)
	Shift uint8
}

// CaptureEngine turns edge timestamps on three inputs into pulse widths.
//
// Capture runs in producer context (interrupt handler or capture drain
// loop). Every channel sets its "seen" bit on a rising edge. A channel that
// finds its own bit already set has completed a full cycle since the last
// publish and becomes dominant: it clears the other bits, publishes all three
// accumulated widths and zeroes the accumulators. Whichever channel is still
// transmitting dictates the publish cadence, so a missing input reads zero
// instead of stalling the others. The price is one frame of latency.
//
// The published snapshot, its sequence counter and the ready flag are the
// only state shared with the main loop. The producer makes the sequence odd
// while it writes the snapshot and even again when done, then raises ready.
// The main loop claims the flag and copies until it sees the same even
// sequence before and after the copy, so it never takes a torn triple even
// when the producer runs on another core.
type CaptureEngine struct {
	cfg    CaptureConfig
	driver CaptureDriver

	// Producer-private state
	start  [NumChannels]uint32
	result [NumChannels]uint32
	edge   [NumChannels]Edge
	seen   uint32

	seq      atomic.Uint32
	snapshot [NumChannels]atomic.Uint32
	ready    atomic.Bool
}

// NewCaptureEngine creates an engine. driver may be nil when edges are fed
// by a test harness.
func NewCaptureEngine(cfg CaptureConfig, driver CaptureDriver) *CaptureEngine {
	return &CaptureEngine{
		cfg:    cfg,
		driver: driver,
	}
}

// Start clears all capture state and arms every input for a rising edge
func (e *CaptureEngine) Start() error {
	state := disableInterrupts()
	e.seen = 0
	e.seq.Add(1)
	for i := range e.start {
		e.start[i] = 0
		e.result[i] = 0
		e.edge[i] = EdgeRising
		e.snapshot[i].Store(0)
	}
	e.seq.Add(1)
	e.ready.Store(false)
	restoreInterrupts(state)

	if e.driver == nil {
		return nil
	}
	for ch := ChannelID(0); ch < NumChannels; ch++ {
		if err := e.driver.ConfigureCapture(ch); err != nil {
			return err
		}
		e.driver.SelectEdge(ch, EdgeRising)
	}
	return nil
}

// ExpectedEdge returns the edge the next capture on ch is interpreted as.
// It reads producer state unsynchronized: diagnostics and tests only, with
// the producer idle.
func (e *CaptureEngine) ExpectedEdge(ch ChannelID) Edge {
	return e.edge[ch]
}

// Capture handles one capture event. Must only be called from the single
// producer context.
func (e *CaptureEngine) Capture(ch ChannelID, value uint32) {
	if ch >= NumChannels {
		return
	}
	bit := uint32(1) << ch

	if e.edge[ch] == EdgeRising {
		e.start[ch] = value

		if e.seen&bit != 0 {
			e.seen = bit
			e.publish(ch)
		}
		e.seen |= bit
	} else {
		if value < e.start[ch] {
			// Counter wrapped between the edges
			value += e.cfg.PeriodLength
		}
		e.result[ch] = value - e.start[ch]
	}

	e.edge[ch] ^= 1
	if e.driver != nil {
		e.driver.SelectEdge(ch, e.edge[ch])
	}
}

// publish copies all accumulators into the snapshot, then raises the flag
func (e *CaptureEngine) publish(dominant ChannelID) {
	e.seq.Add(1)
	for i := range e.result {
		e.snapshot[i].Store(e.result[i] >> e.cfg.Shift)
		e.result[i] = 0
	}
	e.seq.Add(1)
	e.ready.Store(true)

	RecordEvent(EvtPublish, uint8(dominant), GetTime(),
		e.snapshot[Steering].Load(), e.snapshot[Throttle].Load())
}

// Pending reports whether a snapshot is waiting to be taken
func (e *CaptureEngine) Pending() bool {
	return e.ready.Load()
}

// Take copies the published widths into dst and clears the ready flag.
// It returns false if nothing new was published. Main loop only.
//
// A publish landing during the copy raises the flag again, so the next
// Take may return the same triple once more.
func (e *CaptureEngine) Take(dst *[NumChannels]uint32) bool {
	if !e.ready.CompareAndSwap(true, false) {
		return false
	}

	for {
		before := e.seq.Load()
		if before&1 != 0 {
			runtime.Gosched()
			continue
		}
		for i := range dst {
			dst[i] = e.snapshot[i].Load()
		}
		if e.seq.Load() == before {
			return true
		}
	}
}
