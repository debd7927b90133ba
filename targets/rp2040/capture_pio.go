//go:build rp2040

package main

import (
	"errors"
	"machine"
	"time"

	pio "github.com/tinygo-org/pio/rp2-pio"

	"rclight/core"
)

// Every loop iteration of the capture program takes this many PIO cycles
// and decrements X once
const captureCyclesPerTick = 3

// captureTickHz is the timestamp rate; CaptureConfig.Shift 1 turns it into us
const captureTickHz = 2000000

var errCaptureChannel = errors.New("capture channel out of range")

// buildCaptureProgram creates the edge timestamp program. X counts down
// once per loop iteration while the program waits for the pin to change;
// on every edge ~X (an up-counting timestamp) is pushed to the RX FIFO.
// Rising and falling edges therefore always alternate, starting with a
// rising edge.
func buildCaptureProgram() []uint16 {
	return []uint16{
		// wait_high: pin is low, wait for the rising edge
		pio.EncodeJmp(1, pio.JmpXNZeroDec),             // 0: jmp x--, 1
		pio.EncodeJmp(3, pio.JmpPinInput),              // 1: jmp pin, 3
		pio.EncodeJmp(0, pio.JmpAlways),                // 2: jmp 0
		pio.EncodeMovNot(pio.SrcDestISR, pio.SrcDestX), // 3: mov isr, ~x
		pio.EncodePush(false, true),                    // 4: push block
		// wait_low: pin is high, wait for the falling edge
		pio.EncodeJmp(6, pio.JmpXNZeroDec) | encodeDelay(1), // 5: jmp x--, 6 [1]
		pio.EncodeJmp(5, pio.JmpPinInput),                   // 6: jmp pin, 5
		pio.EncodeMovNot(pio.SrcDestISR, pio.SrcDestX),      // 7: mov isr, ~x
		pio.EncodePush(false, true),                         // 8: push block
		// .wrap
	}
}

// encodeDelay sets the delay field of an instruction. pio.EncodeDelay in
// v0.2.0 masks before shifting and always returns 0.
func encodeDelay(cycles uint8) uint16 {
	return uint16(cycles&0x1f) << 8
}

// PIOCapture implements core.CaptureDriver with one PIO state machine per
// channel. A drain goroutine moves timestamps from the RX FIFOs into the
// capture engine; it is the only producer the engine has.
type PIOCapture struct {
	pio    *pio.PIO
	pins   [core.NumChannels]machine.Pin
	sms    [core.NumChannels]pio.StateMachine
	offset uint8
	loaded bool

	engine  *core.CaptureEngine
	overrun uint32
}

// NewPIOCapture creates a capture driver on PIO0 for the given input pins
func NewPIOCapture(pins [core.NumChannels]machine.Pin) *PIOCapture {
	c := &PIOCapture{
		pio:  pio.PIO0,
		pins: pins,
	}
	for i := range c.sms {
		c.sms[i] = c.pio.StateMachine(uint8(i))
	}
	return c
}

// ConfigureCapture loads the program once and starts the state machine
// of the channel
func (c *PIOCapture) ConfigureCapture(ch core.ChannelID) error {
	if ch >= core.NumChannels {
		return errCaptureChannel
	}

	program := buildCaptureProgram()
	if !c.loaded {
		offset, err := c.pio.AddProgram(program, -1)
		if err != nil {
			return err
		}
		c.offset = offset
		c.loaded = true
	}

	sm := c.sms[ch]
	pin := c.pins[ch]
	sm.TryClaim()
	sm.SetEnabled(false)

	pin.Configure(machine.PinConfig{Mode: c.pio.PinMode()})

	cfg := pio.DefaultStateMachineConfig()
	cfg.SetInPins(pin)
	cfg.SetJmpPin(pin)
	cfg.SetWrap(c.offset, c.offset+uint8(len(program))-1)
	cfg.SetFIFOJoin(pio.FifoJoinRx)

	whole, frac, err := pio.ClkDivFromFrequency(captureTickHz*captureCyclesPerTick, machine.CPUFrequency())
	if err != nil {
		return err
	}
	cfg.SetClkDivIntFrac(whole, frac)

	sm.Init(c.offset, cfg)
	sm.SetPindirsConsecutive(pin, 1, false)
	sm.ClearFIFOs()
	sm.SetX(0)
	sm.SetEnabled(true)

	return nil
}

// SelectEdge is a no-op: the program alternates edges by itself
func (c *PIOCapture) SelectEdge(ch core.ChannelID, edge core.Edge) {}

// Start attaches the engine and begins draining the FIFOs
func (c *PIOCapture) Start(engine *core.CaptureEngine) {
	c.engine = engine
	go c.drainLoop()
}

// drainLoop runs in a goroutine and feeds every timestamp to the engine
func (c *PIOCapture) drainLoop() {
	// Recover from panics to prevent a firmware crash
	defer func() {
		if r := recover(); r != nil {
			time.Sleep(100 * time.Millisecond)
			go c.drainLoop()
		}
	}()

	for {
		for ch := range c.sms {
			sm := c.sms[ch]
			if sm.IsRxFIFOFull() {
				// push blocks, so the state machine stalled and the
				// following timestamp is late
				c.overrun++
			}
			for !sm.IsRxFIFOEmpty() {
				c.engine.Capture(core.ChannelID(ch), sm.RxGet())
			}
		}
		// Yield to avoid a busy loop
		time.Sleep(100 * time.Microsecond)
	}
}

// Overruns returns how often a FIFO was found full; 0 for a nil driver
func (c *PIOCapture) Overruns() uint32 {
	if c == nil {
		return 0
	}
	return c.overrun
}
