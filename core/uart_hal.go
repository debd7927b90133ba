package core

// ByteReader is the receive side of the preprocessor link.
// machine.UART and protocol.FifoBuffer both satisfy it.
type ByteReader interface {
	// Buffered returns the number of bytes ready to be read
	Buffered() int

	// ReadByte returns the next received byte
	ReadByte() (byte, error)
}
