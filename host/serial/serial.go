package serial

import (
	"io"

	"rclight/protocol"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - In-memory pipes (for testing)
type Port interface {
	io.ReadWriteCloser

	// Flush discards any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate of the preprocessor link
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the preprocessor link configuration
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        protocol.DefaultBaud,
		ReadTimeout: 100,
	}
}
