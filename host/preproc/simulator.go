package preproc

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"rclight/protocol"
)

// DefaultPeriod is the frame interval of a real preprocessor
const DefaultPeriod = 20 * time.Millisecond

// Simulator stands in for a receiver with a built-in preprocessor. It
// transmits the current channel state as a frame every period.
type Simulator struct {
	mu    sync.Mutex
	frame protocol.Frame

	period time.Duration
	sent   atomic.Uint64
}

// NewSimulator creates a simulator in startup mode with all channels neutral
func NewSimulator(period time.Duration) *Simulator {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Simulator{
		frame:  protocol.Frame{Startup: true},
		period: period,
	}
}

// Frame returns the frame that will be sent next
func (s *Simulator) Frame() protocol.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Update modifies the channel state
func (s *Simulator) Update(fn func(f *protocol.Frame)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.frame)
}

// Sent returns the number of frames transmitted
func (s *Simulator) Sent() uint64 {
	return s.sent.Load()
}

// Run transmits frames until ctx is cancelled or a write fails
func (s *Simulator) Run(ctx context.Context, w io.Writer) error {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	buf := make([]byte, 0, protocol.MaxFrameLength)
	for {
		buf = protocol.AppendFrame(buf[:0], s.Frame())
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
		s.sent.Add(1)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Status describes the current state in one line
func (s *Simulator) Status() string {
	f := s.Frame()
	status := fmt.Sprintf("ST=%d TH=%d CH3=%s startup=%s sent=%d",
		f.Steering, f.Throttle, onOff(f.CH3), onOff(f.Startup), s.Sent())
	if f.Extended {
		status += fmt.Sprintf(" ext=%d", f.CH3Value)
	}
	return status
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
