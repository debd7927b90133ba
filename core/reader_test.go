package core

import (
	"errors"
	"testing"

	"rclight/protocol"
)

func TestNewReader(t *testing.T) {
	cfg := ReaderConfig{
		Mode:  ModeServoReader,
		Servo: DefaultServoConfig(),
		UART:  DefaultUARTConfig(),
	}

	r, err := NewReader(cfg, &mockCaptureDriver{}, nil)
	if err != nil {
		t.Fatalf("Servo reader: %v", err)
	}
	if _, ok := r.(*ServoReader); !ok {
		t.Errorf("Expected *ServoReader, got %T", r)
	}

	if _, err := NewReader(cfg, nil, nil); !errors.Is(err, ErrNoCaptureDriver) {
		t.Errorf("Expected ErrNoCaptureDriver, got %v", err)
	}

	cfg.Mode = ModeUARTReader
	r, err = NewReader(cfg, nil, protocol.NewFifoBuffer(16))
	if err != nil {
		t.Fatalf("UART reader: %v", err)
	}
	if _, ok := r.(*UARTReader); !ok {
		t.Errorf("Expected *UARTReader, got %T", r)
	}

	if _, err := NewReader(cfg, nil, nil); !errors.Is(err, ErrNoByteReader) {
		t.Errorf("Expected ErrNoByteReader, got %v", err)
	}

	cfg.Mode = Mode(9)
	if _, err := NewReader(cfg, nil, nil); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("Expected ErrUnknownMode, got %v", err)
	}
}

func TestReaderInitModel(t *testing.T) {
	m := NewModel()
	m.SetReversed(Steering, true)

	r, err := NewReader(ReaderConfig{Mode: ModeServoReader, Servo: DefaultServoConfig()},
		&mockCaptureDriver{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Init(m); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	for _, c := range m.Channels() {
		if c.Normalized != 0 || c.Absolute != 0 {
			t.Errorf("Channel should start neutral, got %+v", c)
		}
	}
	if !m.Channel(Steering).Reversed {
		t.Error("Reversal lost by Init")
	}
}
