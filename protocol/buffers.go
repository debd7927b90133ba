package protocol

import "errors"

var (
	ErrBufferEmpty = errors.New("fifo buffer empty")
	ErrBufferFull  = errors.New("fifo buffer full")
)

// FifoBuffer is a circular buffer for serial I/O.
// It is not safe for concurrent use; one goroutine owns it.
type FifoBuffer struct {
	buf   []byte
	read  int
	write int
	size  int
}

// NewFifoBuffer creates a new FifoBuffer with the specified capacity.
// One slot is kept free to tell a full buffer from an empty one.
func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{
		buf:  make([]byte, capacity),
		size: capacity,
	}
}

// Write appends data to the FIFO buffer and returns the number of bytes stored
func (f *FifoBuffer) Write(data []byte) int {
	written := 0
	for _, b := range data {
		if f.WriteByte(b) != nil {
			break
		}
		written++
	}
	return written
}

// WriteByte appends one byte; it fails when the buffer is full
func (f *FifoBuffer) WriteByte(b byte) error {
	nextWrite := (f.write + 1) % f.size
	if nextWrite == f.read {
		return ErrBufferFull
	}
	f.buf[f.write] = b
	f.write = nextWrite
	return nil
}

// Read reads up to len(data) bytes from the FIFO buffer
func (f *FifoBuffer) Read(data []byte) int {
	read := 0
	for i := range data {
		b, err := f.ReadByte()
		if err != nil {
			break
		}
		data[i] = b
		read++
	}
	return read
}

// ReadByte removes and returns the oldest byte
func (f *FifoBuffer) ReadByte() (byte, error) {
	if f.read == f.write {
		return 0, ErrBufferEmpty
	}
	b := f.buf[f.read]
	f.read = (f.read + 1) % f.size
	return b, nil
}

// Available returns the number of bytes available for reading
func (f *FifoBuffer) Available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return f.size - f.read + f.write
}

// Buffered is Available under the name machine.UART uses
func (f *FifoBuffer) Buffered() int {
	return f.Available()
}

// Free returns the number of bytes available for writing
func (f *FifoBuffer) Free() int {
	return f.size - f.Available() - 1
}

// Pop removes n bytes from the front
func (f *FifoBuffer) Pop(n int) {
	for i := 0; i < n && f.read != f.write; i++ {
		f.read = (f.read + 1) % f.size
	}
}

// IsEmpty returns true if the buffer is empty
func (f *FifoBuffer) IsEmpty() bool {
	return f.read == f.write
}

// Reset clears the buffer
func (f *FifoBuffer) Reset() {
	f.read = 0
	f.write = 0
}
