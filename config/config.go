package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"rclight/core"
	"rclight/protocol"
)

var (
	ErrUnknownMode = errors.New("unknown mode")
	ErrBadPin      = errors.New("bad pin name")
	ErrBadLimits   = errors.New("inconsistent pulse limits")
)

// captureShiftDefault marks an unset capture_shift; zero is a valid shift
const captureShiftDefault = 0xff

// LoadConfig parses a JSON configuration and fills in the defaults
func LoadConfig(jsonData []byte) (*Config, error) {
	config := Config{CaptureShift: captureShiftDefault}

	if err := json.Unmarshal(jsonData, &config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// applyDefaults fills in missing configuration values
func applyDefaults(config *Config) {
	def := DefaultConfig()

	if config.Mode == "" {
		config.Mode = def.Mode
	}

	if config.Pins.Steering == "" {
		config.Pins.Steering = def.Pins.Steering
	}
	if config.Pins.Throttle == "" {
		config.Pins.Throttle = def.Pins.Throttle
	}
	if config.Pins.CH3 == "" {
		config.Pins.CH3 = def.Pins.CH3
	}
	if config.Pins.UARTTx == "" {
		config.Pins.UARTTx = def.Pins.UARTTx
	}
	if config.Pins.UARTRx == "" {
		config.Pins.UARTRx = def.Pins.UARTRx
	}

	if config.StartupTimeMS == 0 {
		config.StartupTimeMS = def.StartupTimeMS
	}
	if config.SystickMS == 0 {
		config.SystickMS = def.SystickMS
	}
	if config.CaptureShift == captureShiftDefault {
		config.CaptureShift = def.CaptureShift
	}
	if config.FrameConfirmations == 0 {
		config.FrameConfirmations = def.FrameConfirmations
	}

	if config.PulseMin == 0 {
		config.PulseMin = def.PulseMin
	}
	if config.PulseMax == 0 {
		config.PulseMax = def.PulseMax
	}
	if config.ClampLow == 0 {
		config.ClampLow = def.ClampLow
	}
	if config.ClampHigh == 0 {
		config.ClampHigh = def.ClampHigh
	}
	if config.InitialSpread == 0 {
		config.InitialSpread = def.InitialSpread
	}

	if config.Baud == 0 {
		config.Baud = def.Baud
	}
}

// DefaultConfig returns the configuration for a standard receiver on a
// Raspberry Pi Pico
func DefaultConfig() *Config {
	lim := core.DefaultPulseLimits()

	return &Config{
		Mode: core.ModeServoReader.String(),
		Pins: PinConfig{
			Steering:  "gpio2",
			Throttle:  "gpio3",
			CH3:       "gpio4",
			UARTTx:    "gpio0",
			UARTRx:    "gpio1",
			StatusLED: "gpio16",
		},
		StartupTimeMS:      core.DefaultStartupTimeMS,
		SystickMS:          core.DefaultSystickMS,
		CapturePeriod:      0,
		CaptureShift:       1,
		FrameConfirmations: core.DefaultFrameConfirmations,
		PulseMin:           lim.Min,
		PulseMax:           lim.Max,
		ClampLow:           lim.ClampLow,
		ClampHigh:          lim.ClampHigh,
		InitialSpread:      lim.InitialSpread,
		Baud:               protocol.DefaultBaud,
	}
}

// Validate checks the configuration for values the readers cannot work with
func (c *Config) Validate() error {
	if _, err := c.ReaderMode(); err != nil {
		return err
	}

	if c.PulseMin >= c.PulseMax {
		return fmt.Errorf("%w: pulse_min %d >= pulse_max %d", ErrBadLimits, c.PulseMin, c.PulseMax)
	}
	if c.ClampLow >= c.ClampHigh {
		return fmt.Errorf("%w: clamp_low %d >= clamp_high %d", ErrBadLimits, c.ClampLow, c.ClampHigh)
	}
	if c.InitialSpread <= 0 {
		return fmt.Errorf("%w: initial_spread must be positive", ErrBadLimits)
	}
	if c.CaptureShift > 31 {
		return fmt.Errorf("%w: capture_shift %d", ErrBadLimits, c.CaptureShift)
	}
	if c.SystickMS == 0 || c.StartupTimeMS/c.SystickMS > 0xffff {
		return fmt.Errorf("%w: startup_time_ms %d with systick_ms %d", ErrBadLimits,
			c.StartupTimeMS, c.SystickMS)
	}

	pins := map[string]string{
		"steering": c.Pins.Steering,
		"throttle": c.Pins.Throttle,
		"ch3":      c.Pins.CH3,
		"uart_tx":  c.Pins.UARTTx,
		"uart_rx":  c.Pins.UARTRx,
	}
	if c.Pins.StatusLED != "" {
		pins["status_led"] = c.Pins.StatusLED
	}
	for name, pin := range pins {
		if _, err := ParsePin(pin); err != nil {
			return fmt.Errorf("pins.%s: %w", name, err)
		}
	}

	return nil
}

// ReaderMode maps the mode string to the acquisition back-end
func (c *Config) ReaderMode() (core.Mode, error) {
	switch strings.ToLower(c.Mode) {
	case core.ModeServoReader.String():
		return core.ModeServoReader, nil
	case core.ModeUARTReader.String():
		return core.ModeUARTReader, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, c.Mode)
	}
}

// PulseLimits returns the pulse windows
func (c *Config) PulseLimits() core.PulseLimits {
	return core.PulseLimits{
		Min:           c.PulseMin,
		Max:           c.PulseMax,
		ClampLow:      c.ClampLow,
		ClampHigh:     c.ClampHigh,
		InitialSpread: c.InitialSpread,
	}
}

// ServoConfig returns the servo reader options
func (c *Config) ServoConfig() core.ServoConfig {
	return core.ServoConfig{
		Capture: core.CaptureConfig{
			PeriodLength: c.CapturePeriod,
			Shift:        c.CaptureShift,
		},
		Limits:       c.PulseLimits(),
		StartupTicks: uint16(c.StartupTimeMS / c.SystickMS),
	}
}

// UARTConfig returns the preprocessor reader options
func (c *Config) UARTConfig() core.UARTConfig {
	return core.UARTConfig{Confirmations: c.FrameConfirmations}
}

// ReaderConfig returns the complete reader selection
func (c *Config) ReaderConfig() (core.ReaderConfig, error) {
	mode, err := c.ReaderMode()
	if err != nil {
		return core.ReaderConfig{}, err
	}
	return core.ReaderConfig{
		Mode:  mode,
		Servo: c.ServoConfig(),
		UART:  c.UARTConfig(),
	}, nil
}

// ApplyReversal copies the channel polarity settings into the model
func (c *Config) ApplyReversal(m *core.Model) {
	m.SetReversed(core.Steering, c.Reversed.Steering)
	m.SetReversed(core.Throttle, c.Reversed.Throttle)
	m.SetReversed(core.CH3, c.Reversed.CH3)
}

// ParsePin converts a "gpioN" name into a pin number
func ParsePin(name string) (uint8, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	if !strings.HasPrefix(s, "gpio") {
		return 0, fmt.Errorf("%w: %q", ErrBadPin, name)
	}
	n, err := strconv.ParseUint(s[len("gpio"):], 10, 8)
	if err != nil || n > 29 {
		return 0, fmt.Errorf("%w: %q", ErrBadPin, name)
	}
	return uint8(n), nil
}
