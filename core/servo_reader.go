package core

// ReaderState is the startup calibration state of the servo reader
type ReaderState uint8

const (
	StateAwaitingFirstSignal ReaderState = iota
	StateAwaitingStabilization
	StateOperating
)

func (s ReaderState) String() string {
	switch s {
	case StateAwaitingFirstSignal:
		return "awaiting-first-signal"
	case StateAwaitingStabilization:
		return "awaiting-stabilization"
	case StateOperating:
		return "operating"
	default:
		return "unknown"
	}
}

// DefaultStartupTimeMS is how long the signal must settle before the
// centre positions are learned
const DefaultStartupTimeMS = 2000

// ServoConfig configures the pulse capture back-end
type ServoConfig struct {
	Capture CaptureConfig
	Limits  PulseLimits

	// StartupTicks is the stabilization countdown in systicks
	StartupTicks uint16
}

// DefaultServoConfig returns the configuration for a 2 MHz wrapping
// 32-bit capture timer and a 20 ms systick
func DefaultServoConfig() ServoConfig {
	return ServoConfig{
		Capture:      CaptureConfig{PeriodLength: 0, Shift: 1},
		Limits:       DefaultPulseLimits(),
		StartupTicks: DefaultStartupTimeMS / DefaultSystickMS,
	}
}

// ServoReader is the main-loop half of the pulse capture back-end: it takes
// snapshots from the capture engine, runs the startup state machine and
// normalizes the channels.
type ServoReader struct {
	cfg    ServoConfig
	engine *CaptureEngine
	state  ReaderState
	timer  uint16
	raw    [NumChannels]uint32
}

// NewServoReader creates a servo reader on top of a capture driver
func NewServoReader(cfg ServoConfig, driver CaptureDriver) *ServoReader {
	return &ServoReader{
		cfg:    cfg,
		engine: NewCaptureEngine(cfg.Capture, driver),
	}
}

// Engine returns the capture engine the driver must feed
func (r *ServoReader) Engine() *CaptureEngine {
	return r.engine
}

// State returns the current startup state
func (r *ServoReader) State() ReaderState {
	return r.state
}

// Init resets the model and the state machine and arms the capture inputs
func (r *ServoReader) Init(m *Model) error {
	m.reset()
	r.timer = 0
	r.state = StateAwaitingFirstSignal
	return r.engine.Start()
}

func (r *ServoReader) setState(s ReaderState) {
	RecordEvent(EvtStateChange, 0, GetTime(), uint32(r.state), uint32(s))
	DebugPrintln("[SERVO] " + r.state.String() + " -> " + s.String())
	r.state = s
}

// Read processes the latest snapshot. Call once per main loop iteration
// after Model.BeginLoop.
func (r *ServoReader) Read(m *Model) {
	// The countdown runs on systicks whether or not pulses arrive
	if m.flags.Systick && r.timer > 0 {
		r.timer--
	}

	m.flags.NewChannelData = false

	if !r.engine.Take(&r.raw) {
		return
	}
	for i := range m.channels {
		m.channels[i].Raw = int32(r.raw[i])
	}

	switch r.state {
	case StateAwaitingFirstSignal:
		r.timer = r.cfg.StartupTicks
		r.setState(StateAwaitingStabilization)

	case StateAwaitingStabilization:
		if r.timer == 0 {
			msg := "[SERVO] centre"
			for i := range m.channels {
				seedChannel(&m.channels[i], r.cfg.Limits.InitialSpread)
				msg += " " + ChannelID(i).String() + "=" + Itoa(int(m.channels[i].Centre))
			}
			DebugPrintln(msg)
			m.flags.StartupModeNeutral = false
			r.setState(StateOperating)
		}
		m.flags.NewChannelData = true

	case StateOperating:
		for i := range m.channels {
			c := &m.channels[i]
			Normalize(c, r.cfg.Limits)
			if c.Raw < r.cfg.Limits.Min || c.Raw > r.cfg.Limits.Max {
				RecordEvent(EvtSampleRejected, uint8(i), GetTime(), uint32(c.Raw), 0)
			}
		}
		m.flags.NewChannelData = true
	}
}
