package core

import "errors"

// Reader is one channel acquisition back-end. Exactly one is active.
type Reader interface {
	// Init resets the model and prepares the back-end
	Init(m *Model) error

	// Read updates the model; called once per main loop iteration
	Read(m *Model)
}

// Mode selects the acquisition back-end
type Mode uint8

const (
	ModeServoReader Mode = iota
	ModeUARTReader
)

func (m Mode) String() string {
	switch m {
	case ModeServoReader:
		return "servo"
	case ModeUARTReader:
		return "uart"
	default:
		return "unknown"
	}
}

var (
	ErrUnknownMode     = errors.New("unknown reader mode")
	ErrNoCaptureDriver = errors.New("servo reader needs a capture driver")
	ErrNoByteReader    = errors.New("uart reader needs a byte source")
)

// ReaderConfig selects and configures the acquisition back-end
type ReaderConfig struct {
	Mode  Mode
	Servo ServoConfig
	UART  UARTConfig
}

// NewReader builds the back-end selected by cfg.Mode
func NewReader(cfg ReaderConfig, capture CaptureDriver, uart ByteReader) (Reader, error) {
	switch cfg.Mode {
	case ModeServoReader:
		if capture == nil {
			return nil, ErrNoCaptureDriver
		}
		return NewServoReader(cfg.Servo, capture), nil
	case ModeUARTReader:
		if uart == nil {
			return nil, ErrNoByteReader
		}
		return NewUARTReader(cfg.UART, uart), nil
	default:
		return nil, ErrUnknownMode
	}
}
