// Package protocol implements the preprocessor link protocol
package protocol

// Version is the firmware version reported by the tools
const Version = "0.1.0"

// Protocol constants
const (
	// StartByte begins every frame and never appears in a payload
	StartByte = 0x87

	FrameLength         = 4 // start, steering, throttle, flags
	ExtendedFrameLength = 5 // adds the HK310 expansion CH3 value
	MaxFrameLength      = ExtendedFrameLength

	// Flags byte bits; all other bits must be zero
	FlagCH3     = 0x01
	FlagStartup = 0x10

	// CH3Mask limits the extended CH3 value to 6 bits
	CH3Mask = 0x3f

	// DefaultBaud is the preprocessor link speed
	DefaultBaud = 38400
)

// Frame is one decoded preprocessor frame.
// Steering and throttle are percentages in -100..100.
type Frame struct {
	Steering int8
	Throttle int8
	CH3      bool
	Startup  bool

	// Extended frames carry a 6-bit CH3 value after the flags byte
	Extended bool
	CH3Value uint8
}

// Len returns the encoded length of the frame including the start byte
func (f Frame) Len() int {
	if f.Extended {
		return ExtendedFrameLength
	}
	return FrameLength
}

// ValidFrameLength reports whether n is a frame length the link can carry
func ValidFrameLength(n int) bool {
	return n == FrameLength || n == ExtendedFrameLength
}

func clampPercent(v int8) int8 {
	if v < -100 {
		return -100
	}
	if v > 100 {
		return 100
	}
	return v
}

// AppendFrame encodes f and appends it to dst. Percentages are limited to
// -100..100 so no payload byte can collide with the start byte.
func AppendFrame(dst []byte, f Frame) []byte {
	var flags byte
	if f.CH3 {
		flags |= FlagCH3
	}
	if f.Startup {
		flags |= FlagStartup
	}

	dst = append(dst,
		StartByte,
		byte(clampPercent(f.Steering)),
		byte(clampPercent(f.Throttle)),
		flags)
	if f.Extended {
		dst = append(dst, f.CH3Value&CH3Mask)
	}
	return dst
}

// EncodeFrame returns the wire encoding of f
func EncodeFrame(f Frame) []byte {
	return AppendFrame(make([]byte, 0, f.Len()), f)
}

// DecodePayload decodes the bytes following the start byte. It accepts 3 or
// 4 bytes; the extended CH3 value is carried through but not interpreted.
func DecodePayload(payload []byte) Frame {
	var f Frame
	if len(payload) < FrameLength-1 {
		return f
	}
	f.Steering = int8(payload[0])
	f.Throttle = int8(payload[1])
	f.CH3 = payload[2]&FlagCH3 != 0
	f.Startup = payload[2]&FlagStartup != 0
	if len(payload) >= ExtendedFrameLength-1 {
		f.Extended = true
		f.CH3Value = payload[3]
	}
	return f
}
