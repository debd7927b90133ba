package protocol

import "testing"

func TestFifoBuffer(t *testing.T) {
	fifo := NewFifoBuffer(10)

	if !fifo.IsEmpty() {
		t.Error("New FIFO should be empty")
	}

	if fifo.Available() != 0 {
		t.Errorf("Empty FIFO should have 0 available, got %d", fifo.Available())
	}

	written := fifo.Write([]byte{1, 2, 3, 4, 5})
	if written != 5 {
		t.Errorf("Expected to write 5 bytes, wrote %d", written)
	}

	if fifo.Buffered() != 5 {
		t.Errorf("Expected 5 bytes buffered, got %d", fifo.Buffered())
	}

	readBuf := make([]byte, 3)
	read := fifo.Read(readBuf)
	if read != 3 {
		t.Errorf("Expected to read 3 bytes, read %d", read)
	}
	if readBuf[0] != 1 || readBuf[1] != 2 || readBuf[2] != 3 {
		t.Errorf("Read data mismatch: got %v", readBuf)
	}

	fifo.Pop(1)
	if fifo.Available() != 1 {
		t.Errorf("After popping 1, expected 1 available, got %d", fifo.Available())
	}

	fifo.Reset()
	bigData := make([]byte, 12)
	for i := range bigData {
		bigData[i] = byte(i)
	}
	written = fifo.Write(bigData)
	if written != 9 { // one slot stays free
		t.Errorf("Expected to write 9 bytes to size-10 FIFO, wrote %d", written)
	}
	if fifo.Free() != 0 {
		t.Errorf("Full FIFO should have no free space, got %d", fifo.Free())
	}
	if err := fifo.WriteByte(0xff); err != ErrBufferFull {
		t.Errorf("WriteByte on full FIFO: expected ErrBufferFull, got %v", err)
	}
}

func TestFifoBufferWrapAround(t *testing.T) {
	fifo := NewFifoBuffer(5)

	fifo.Write([]byte{1, 2, 3, 4})

	readBuf := make([]byte, 2)
	fifo.Read(readBuf)

	written := fifo.Write([]byte{5, 6})
	if written != 2 {
		t.Errorf("Expected to write 2 bytes, wrote %d", written)
	}

	allData := make([]byte, 4)
	read := fifo.Read(allData)
	if read != 4 {
		t.Errorf("Expected to read 4 bytes, read %d", read)
	}
	if allData[0] != 3 || allData[1] != 4 || allData[2] != 5 || allData[3] != 6 {
		t.Errorf("Wrap-around data mismatch: got %v", allData)
	}
}

func TestFifoBufferReadByte(t *testing.T) {
	fifo := NewFifoBuffer(4)

	if _, err := fifo.ReadByte(); err != ErrBufferEmpty {
		t.Fatalf("ReadByte on empty FIFO: expected ErrBufferEmpty, got %v", err)
	}

	fifo.WriteByte(StartByte)
	fifo.WriteByte(0x10)

	b, err := fifo.ReadByte()
	if err != nil || b != StartByte {
		t.Errorf("Expected 0x87, got 0x%02x (err %v)", b, err)
	}
	b, err = fifo.ReadByte()
	if err != nil || b != 0x10 {
		t.Errorf("Expected 0x10, got 0x%02x (err %v)", b, err)
	}
	if !fifo.IsEmpty() {
		t.Error("FIFO should be empty after reading everything")
	}
}
