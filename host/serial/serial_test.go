package serial

import (
	"errors"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyUSB0")
	if cfg.Baud != 38400 {
		t.Errorf("Expected 38400 baud, got %d", cfg.Baud)
	}
	if cfg.ReadTimeout == 0 {
		t.Error("Default config must not block forever on reads")
	}
}

func TestOpenRejectsBadConfig(t *testing.T) {
	if _, err := Open(nil); !errors.Is(err, ErrNilConfig) {
		t.Errorf("Expected ErrNilConfig, got %v", err)
	}

	cfg := DefaultConfig("/dev/null")
	cfg.Baud = 0
	if _, err := Open(cfg); !errors.Is(err, ErrBadBaud) {
		t.Errorf("Expected ErrBadBaud, got %v", err)
	}
}
