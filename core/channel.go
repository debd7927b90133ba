package core

// ChannelID identifies one of the three command channels
type ChannelID uint8

const (
	Steering ChannelID = iota
	Throttle
	CH3

	NumChannels = 3
)

// String returns the short channel name used in debug output
func (id ChannelID) String() string {
	switch id {
	case Steering:
		return "ST"
	case Throttle:
		return "TH"
	case CH3:
		return "CH3"
	default:
		return "CH?"
	}
}

// Channel holds the raw and calibrated state of one command channel.
// Normalized is always derived from Raw, Centre, the endpoints and Reversed.
type Channel struct {
	Raw          int32 // Pulse width in us, or sign-extended protocol byte
	Normalized   int16 // -100..100, 0 is neutral
	Absolute     uint16
	Centre       int32
	EndpointLow  int32
	EndpointHigh int32
	Reversed     bool
}

// Flags is the per-loop flag record shared with the light logic
type Flags struct {
	// Systick is set for one main loop iteration every systick period
	Systick bool

	// NewChannelData is set for one main loop iteration whenever a fresh
	// set of channel values was processed
	NewChannelData bool

	// StartupModeNeutral forces consumers to treat the vehicle as stopped
	StartupModeNeutral bool
}

// Model is the channel/flag contract between the acquisition subsystem and
// its consumers. Only readers in this package write to it.
type Model struct {
	channels [NumChannels]Channel
	flags    Flags
}

// NewModel creates a model with all channels neutral and the startup flag set
func NewModel() *Model {
	m := &Model{}
	m.reset()
	return m
}

// reset brings every channel back to neutral; reversal settings survive
func (m *Model) reset() {
	for i := range m.channels {
		reversed := m.channels[i].Reversed
		m.channels[i] = Channel{Reversed: reversed}
	}
	m.flags.NewChannelData = false
	m.flags.StartupModeNeutral = true
}

// Channel returns a copy of the given channel
func (m *Model) Channel(id ChannelID) Channel {
	return m.channels[id]
}

// Channels returns a copy of all channels
func (m *Model) Channels() [NumChannels]Channel {
	return m.channels
}

// Flags returns a copy of the current flags
func (m *Model) Flags() Flags {
	return m.flags
}

// SetReversed sets the polarity inversion of a channel from configuration
func (m *Model) SetReversed(id ChannelID, reversed bool) {
	m.channels[id].Reversed = reversed
}

// BeginLoop latches the systick flag for the current main loop iteration.
// It must be called once at the top of every iteration before the reader runs.
func (m *Model) BeginLoop(systick bool) {
	m.flags.Systick = systick
}
