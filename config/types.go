package config

// ReversedConfig holds the polarity inversion of each channel
type ReversedConfig struct {
	Steering bool `json:"steering"`
	Throttle bool `json:"throttle"`
	CH3      bool `json:"ch3"`
}

// PinConfig assigns the board pins, named "gpioN"
type PinConfig struct {
	Steering  string `json:"steering"`   // Servo pulse input
	Throttle  string `json:"throttle"`   // Servo pulse input
	CH3       string `json:"ch3"`        // Servo pulse input
	UARTTx    string `json:"uart_tx"`    // Diagnostic output / preprocessor link
	UARTRx    string `json:"uart_rx"`    // Preprocessor link
	StatusLED string `json:"status_led"` // WS2812 data, empty to disable
}

// Config is the complete acquisition configuration
type Config struct {
	Mode     string         `json:"mode"` // "servo" or "uart"
	Reversed ReversedConfig `json:"reversed"`
	Pins     PinConfig      `json:"pins"`

	StartupTimeMS uint32 `json:"startup_time_ms"` // Stabilization time before centring
	SystickMS     uint32 `json:"systick_ms"`      // Main loop tick

	CapturePeriod uint32 `json:"capture_period"` // Counter modulus, 0 = 32-bit
	CaptureShift  uint8  `json:"capture_shift"`  // Ticks to microseconds

	FrameConfirmations uint8 `json:"frame_confirmations"`

	PulseMin      int32 `json:"pulse_min"`
	PulseMax      int32 `json:"pulse_max"`
	ClampLow      int32 `json:"clamp_low"`
	ClampHigh     int32 `json:"clamp_high"`
	InitialSpread int32 `json:"initial_spread"`

	Baud  uint32 `json:"baud"`
	Debug bool   `json:"debug"` // Enable debug output on the UART
}
