package core

import (
	"testing"

	"rclight/protocol"
)

type uartHarness struct {
	fifo   *protocol.FifoBuffer
	reader *UARTReader
	model  *Model
}

func newUARTHarness(t *testing.T) *uartHarness {
	h := &uartHarness{
		fifo:  protocol.NewFifoBuffer(256),
		model: NewModel(),
	}
	h.reader = NewUARTReader(DefaultUARTConfig(), h.fifo)
	if err := h.reader.Init(h.model); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return h
}

// send writes raw bytes and runs one main loop iteration
func (h *uartHarness) send(data []byte) bool {
	h.fifo.Write(data)
	h.model.BeginLoop(false)
	h.reader.Read(h.model)
	return h.model.Flags().NewChannelData
}

func (h *uartHarness) sendFrame(f protocol.Frame) bool {
	return h.send(protocol.EncodeFrame(f))
}

// sync sends the frames needed to confirm the frame length
func (h *uartHarness) sync(t *testing.T, extended bool) {
	for i := 0; i < DefaultFrameConfirmations; i++ {
		if h.sendFrame(protocol.Frame{Extended: extended}) {
			t.Fatalf("Frame %d decoded before the length was confirmed", i)
		}
	}
}

func TestUARTReaderTenFramesAfterSync(t *testing.T) {
	for _, extended := range []bool{false, true} {
		h := newUARTHarness(t)
		h.sync(t, extended)

		updates := 0
		for i := 0; i < 10; i++ {
			f := protocol.Frame{Steering: int8(i * 10), Throttle: int8(-i * 10), Extended: extended}
			if !h.sendFrame(f) {
				t.Errorf("extended=%v frame %d: not decoded", extended, i)
				continue
			}
			updates++

			if n := h.model.Channel(Steering).Normalized; n != int16(i*10) {
				t.Errorf("Frame %d: steering expected %d, got %d", i, i*10, n)
			}
			if n := h.model.Channel(Throttle).Normalized; n != int16(-i*10) {
				t.Errorf("Frame %d: throttle expected %d, got %d", i, -i*10, n)
			}
		}

		if updates != 10 {
			t.Errorf("extended=%v: expected 10 updates, got %d", extended, updates)
		}

		want := 4
		if extended {
			want = 5
		}
		if h.reader.Decoder().FrameLength() != want {
			t.Errorf("Expected frame length %d, got %d", want, h.reader.Decoder().FrameLength())
		}
	}
}

func TestUARTReaderCH3AndStartup(t *testing.T) {
	h := newUARTHarness(t)
	h.sync(t, false)

	h.sendFrame(protocol.Frame{CH3: true, Startup: true})
	if n := h.model.Channel(CH3).Normalized; n != 100 {
		t.Errorf("CH3 bit set: expected 100, got %d", n)
	}
	if !h.model.Flags().StartupModeNeutral {
		t.Error("Startup bit should set the startup flag")
	}

	h.sendFrame(protocol.Frame{})
	if n := h.model.Channel(CH3).Normalized; n != -100 {
		t.Errorf("CH3 bit clear: expected -100, got %d", n)
	}
	if h.model.Flags().StartupModeNeutral {
		t.Error("Startup flag should follow the startup bit")
	}
}

func TestUARTReaderIgnoresExtendedByte(t *testing.T) {
	h := newUARTHarness(t)
	h.sync(t, true)

	h.sendFrame(protocol.Frame{Steering: 20, Extended: true, CH3Value: 0x3f})
	if n := h.model.Channel(CH3).Normalized; n != -100 {
		t.Errorf("CH3 must come from the flag bit only, got %d", n)
	}
	if n := h.model.Channel(Steering).Normalized; n != 20 {
		t.Errorf("Expected steering 20, got %d", n)
	}
}

func TestUARTReaderSpuriousStartByte(t *testing.T) {
	h := newUARTHarness(t)
	h.sync(t, false)
	if !h.sendFrame(protocol.Frame{Steering: 5}) {
		t.Fatal("Expected a decoded frame after sync")
	}

	// A stray start byte yields a 2-byte "frame" and drops the confirmation
	h.send([]byte{protocol.StartByte, 0x10})

	f := protocol.Frame{Steering: 60}
	for i := 0; i < DefaultFrameConfirmations; i++ {
		if h.sendFrame(f) {
			t.Errorf("Frame %d after glitch decoded before re-confirmation", i)
		}
	}
	if h.model.Channel(Steering).Normalized != 5 {
		t.Errorf("Values must hold while resyncing, got %d", h.model.Channel(Steering).Normalized)
	}

	if !h.sendFrame(f) {
		t.Fatal("Expected decoding to resume after re-confirmation")
	}
	if n := h.model.Channel(Steering).Normalized; n != 60 {
		t.Errorf("Expected steering 60, got %d", n)
	}
}

func TestUARTReaderLengthChange(t *testing.T) {
	h := newUARTHarness(t)
	h.sync(t, false)

	// The first long frame still decodes under the old length; its
	// trailing byte is only detected at the next start byte
	results := make([]bool, 5)
	for i := range results {
		results[i] = h.sendFrame(protocol.Frame{Throttle: 30, Extended: true})
	}

	want := []bool{true, false, false, true, true}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("Frame %d: decoded=%v, expected %v", i, results[i], want[i])
		}
	}
	if !h.reader.Decoder().Confirmed() || h.reader.Decoder().FrameLength() != 5 {
		t.Errorf("Expected confirmed length 5, got %d", h.reader.Decoder().FrameLength())
	}
}

func TestUARTReaderGarbageBeforeSync(t *testing.T) {
	h := newUARTHarness(t)

	if h.send([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}) {
		t.Fatal("Garbage must not decode")
	}
	if h.reader.Decoder().FrameLength() != 0 {
		t.Errorf("Garbage without start byte must not produce a candidate length")
	}

	h.sync(t, false)
	if !h.sendFrame(protocol.Frame{Steering: -100}) {
		t.Fatal("Expected decoding after sync")
	}
	if h.model.Channel(Steering).Absolute != 100 {
		t.Errorf("Expected absolute 100, got %d", h.model.Channel(Steering).Absolute)
	}
}

func TestFrameDecoderInvalidLength(t *testing.T) {
	d := NewFrameDecoder(DefaultUARTConfig())

	// 6-byte frames never confirm
	frame := []byte{protocol.StartByte, 1, 2, 3, 4, 5}
	for i := 0; i < 5; i++ {
		for _, b := range frame {
			if _, ok := d.Feed(b); ok {
				t.Fatal("6-byte frames must never decode")
			}
		}
	}
	if d.Confirmed() || d.FrameLength() != 0 {
		t.Errorf("Expected no candidate, got %d confirmed=%v", d.FrameLength(), d.Confirmed())
	}
}

func TestUARTReaderInitResetsSync(t *testing.T) {
	h := newUARTHarness(t)
	h.sync(t, false)
	h.sendFrame(protocol.Frame{})

	if err := h.reader.Init(h.model); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if h.reader.Decoder().Confirmed() {
		t.Error("Init must drop the confirmed length")
	}
	if !h.model.Flags().StartupModeNeutral {
		t.Error("Init must raise the startup flag")
	}
}
