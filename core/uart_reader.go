package core

import "rclight/protocol"

// DefaultFrameConfirmations is how many consecutive frames of one length
// are needed before that length is trusted
const DefaultFrameConfirmations = 3

// UARTConfig configures the preprocessor serial back-end
type UARTConfig struct {
	Confirmations uint8
}

// DefaultUARTConfig returns the standard preprocessor configuration
func DefaultUARTConfig() UARTConfig {
	return UARTConfig{Confirmations: DefaultFrameConfirmations}
}

// FrameDecoder recovers preprocessor frames from a byte stream. The start
// byte resynchronizes it at any point. The frame length (4 or 5 bytes
// including the start byte) is learned from the stream: it is measured at
// every start byte and frames are only decoded once the same length was
// seen Confirmations times in a row.
type FrameDecoder struct {
	confirmations uint8

	pos  uint8 // bytes of the current frame including the start byte, 0 = unsynced
	done bool  // current frame already decoded
	data [protocol.MaxFrameLength - 1]byte

	candidate uint8 // assumed frame length, 0 = none
	remaining uint8 // observations still needed, 0 = confirmed
}

// NewFrameDecoder creates a decoder
func NewFrameDecoder(cfg UARTConfig) *FrameDecoder {
	d := &FrameDecoder{confirmations: cfg.Confirmations}
	if d.confirmations == 0 {
		d.confirmations = 1
	}
	d.Reset()
	return d
}

// Reset discards all framing knowledge
func (d *FrameDecoder) Reset() {
	d.pos = 0
	d.done = false
	d.candidate = 0
	d.remaining = d.confirmations
}

// Confirmed reports whether the frame length has been confirmed
func (d *FrameDecoder) Confirmed() bool {
	return d.candidate != 0 && d.remaining == 0
}

// FrameLength returns the candidate frame length, 0 if none
func (d *FrameDecoder) FrameLength() int {
	return int(d.candidate)
}

// Feed consumes one byte and returns a frame when one was completed
func (d *FrameDecoder) Feed(b byte) (protocol.Frame, bool) {
	if b == protocol.StartByte {
		if d.pos > 0 {
			d.observe(d.pos)
		}
		d.pos = 1
		d.done = false
		return protocol.Frame{}, false
	}

	if d.pos == 0 {
		return protocol.Frame{}, false
	}

	if idx := int(d.pos) - 1; idx < len(d.data) {
		d.data[idx] = b
	}
	if d.pos < 0xff {
		d.pos++
	}

	if d.done || !d.Confirmed() || d.pos != d.candidate {
		return protocol.Frame{}, false
	}
	d.done = true

	f := protocol.DecodePayload(d.data[:d.candidate-1])
	RecordEvent(EvtFrameDecoded, 0, GetTime(), uint32(d.data[0]), uint32(d.data[1]))
	return f, true
}

// observe accounts for a frame of the given length ending at a start byte
func (d *FrameDecoder) observe(length uint8) {
	valid := protocol.ValidFrameLength(int(length))
	RecordEvent(EvtFrameLength, 0, GetTime(), uint32(length), uint32(d.remaining))

	if valid && length == d.candidate {
		if d.remaining > 0 {
			d.remaining--
			if d.remaining == 0 {
				RecordEvent(EvtFrameSync, 0, GetTime(), uint32(length), 0)
				DebugPrintln("[UART] frame length " + Utoa(uint32(length)) + " confirmed")
			}
		}
		return
	}

	if d.Confirmed() {
		RecordEvent(EvtFrameSyncLost, 0, GetTime(), uint32(d.candidate), uint32(length))
		DebugPrintln("[UART] frame length changed " + Utoa(uint32(d.candidate)) +
			" -> " + Utoa(uint32(length)))
	}

	if !valid {
		d.candidate = 0
		d.remaining = d.confirmations
		return
	}

	d.candidate = length
	d.remaining = d.confirmations - 1
	if d.remaining == 0 {
		RecordEvent(EvtFrameSync, 0, GetTime(), uint32(length), 0)
	}
}

// UARTReader is the main-loop side of the preprocessor back-end
type UARTReader struct {
	decoder *FrameDecoder
	src     ByteReader
}

// NewUARTReader creates a reader pulling bytes from src
func NewUARTReader(cfg UARTConfig, src ByteReader) *UARTReader {
	return &UARTReader{
		decoder: NewFrameDecoder(cfg),
		src:     src,
	}
}

// Decoder returns the frame decoder
func (r *UARTReader) Decoder() *FrameDecoder {
	return r.decoder
}

// Init resets the model and the framing state
func (r *UARTReader) Init(m *Model) error {
	m.reset()
	r.decoder.Reset()
	return nil
}

// Read drains the pending bytes and applies every completed frame.
// Call once per main loop iteration after Model.BeginLoop.
func (r *UARTReader) Read(m *Model) {
	m.flags.NewChannelData = false

	for r.src.Buffered() > 0 {
		b, err := r.src.ReadByte()
		if err != nil {
			break
		}
		if f, ok := r.decoder.Feed(b); ok {
			r.apply(m, f)
		}
	}
}

// apply writes a decoded frame into the model. The preprocessor already
// normalized steering and throttle, so no calibration happens here.
func (r *UARTReader) apply(m *Model, f protocol.Frame) {
	setDirect(&m.channels[Steering], int32(f.Steering))
	setDirect(&m.channels[Throttle], int32(f.Throttle))
	if f.CH3 {
		setDirect(&m.channels[CH3], 100)
	} else {
		setDirect(&m.channels[CH3], -100)
	}

	m.flags.StartupModeNeutral = f.Startup
	m.flags.NewChannelData = true
}
