package preproc

import (
	"context"
	"fmt"
	"io"
	"time"

	"rclight/core"
	"rclight/protocol"
)

// Monitor decodes a preprocessor byte stream with the same reader the
// firmware uses and prints the resulting channels
type Monitor struct {
	out    io.Writer
	fifo   *protocol.FifoBuffer
	reader *core.UARTReader
	model  *core.Model

	period  time.Duration
	updates uint64
	dropped uint64
}

// NewMonitor creates a monitor printing to out every period
func NewMonitor(out io.Writer, cfg core.UARTConfig, period time.Duration) (*Monitor, error) {
	if period <= 0 {
		period = DefaultPeriod
	}
	m := &Monitor{
		out:    out,
		fifo:   protocol.NewFifoBuffer(1024),
		model:  core.NewModel(),
		period: period,
	}
	m.reader = core.NewUARTReader(cfg, m.fifo)
	if err := m.reader.Init(m.model); err != nil {
		return nil, fmt.Errorf("init reader: %w", err)
	}
	return m, nil
}

// Model returns the decoded channel model
func (m *Monitor) Model() *core.Model {
	return m.model
}

// Updates returns the number of decoded frames
func (m *Monitor) Updates() uint64 {
	return m.updates
}

// Feed queues received bytes. Bytes that do not fit are dropped like a
// UART overrun would drop them.
func (m *Monitor) Feed(data []byte) {
	n := m.fifo.Write(data)
	m.dropped += uint64(len(data) - n)
}

// Tick runs one reader iteration and prints the channels if a frame was
// decoded
func (m *Monitor) Tick() bool {
	m.model.BeginLoop(true)
	m.reader.Read(m.model)

	if !m.model.Flags().NewChannelData {
		return false
	}
	m.updates++
	m.print()
	return true
}

func (m *Monitor) print() {
	st := m.model.Channel(core.Steering)
	th := m.model.Channel(core.Throttle)
	ch3 := m.model.Channel(core.CH3)

	fmt.Fprintf(m.out, "ST %4d  TH %4d  CH3 %4d  startup=%s  len=%d\n",
		st.Normalized, th.Normalized, ch3.Normalized,
		onOff(m.model.Flags().StartupModeNeutral),
		m.reader.Decoder().FrameLength())
}

// Run reads r in the background and decodes once per period until ctx is
// cancelled or r fails
func (m *Monitor) Run(ctx context.Context, r io.Reader) error {
	data := make(chan []byte, 16)
	errs := make(chan error, 1)

	go func() {
		buf := make([]byte, 64)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case data <- chunk:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				errs <- err
				return
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(m.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case chunk := <-data:
			m.Feed(chunk)
		case err := <-errs:
			m.drain(data)
			m.Tick()
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		case <-ticker.C:
			m.Tick()
			if m.dropped > 0 {
				fmt.Fprintf(m.out, "overrun: %d bytes dropped\n", m.dropped)
				m.dropped = 0
			}
		}
	}
}

func (m *Monitor) drain(data <-chan []byte) {
	for {
		select {
		case chunk := <-data:
			m.Feed(chunk)
		default:
			return
		}
	}
}
