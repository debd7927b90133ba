//go:build rp2040

package main

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ws2812"

	"rclight/core"
)

var (
	colorOff     = color.RGBA{}
	colorWaiting = color.RGBA{R: 0x20}
	colorStartup = color.RGBA{R: 0x20, G: 0x10}
	colorRunning = color.RGBA{G: 0x20}
	colorSerial  = color.RGBA{B: 0x20}
)

// LED patterns, advanced once per systick
const (
	ledSolid = iota
	ledSlowFlash
	ledFastFlash
)

// Half periods of the flash patterns in systicks
const (
	slowFlashTicks = 25
	fastFlashTicks = 5
)

// StatusLED shows the acquisition state on a WS2812 as a colour and a
// flash pattern. A nil *StatusLED is valid and does nothing.
type StatusLED struct {
	dev     ws2812.Device
	buf     [1]color.RGBA
	current color.RGBA
	ticks   uint16
}

// NewStatusLED drives a WS2812 on pin
func NewStatusLED(pin machine.Pin) *StatusLED {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	l := &StatusLED{dev: ws2812.New(pin)}
	l.show(colorOff)
	return l
}

// Update refreshes the LED; call once per systick
func (l *StatusLED) Update(r core.Reader, m *core.Model) {
	if l == nil {
		return
	}
	l.ticks++

	c, pattern := statusPattern(r, m)
	switch pattern {
	case ledSlowFlash:
		if (l.ticks/slowFlashTicks)%2 == 1 {
			c = colorOff
		}
	case ledFastFlash:
		if (l.ticks/fastFlashTicks)%2 == 1 {
			c = colorOff
		}
	}
	if c != l.current {
		l.show(c)
	}
}

func (l *StatusLED) show(c color.RGBA) {
	l.current = c
	l.buf[0] = c
	l.dev.WriteColors(l.buf[:])
}

// statusPattern maps the reader state to a colour and pattern: slow red
// flash without signal, fast amber flash while the centre is learned,
// amber while the preprocessor reports startup, solid green (servo) or
// blue (serial) when running
func statusPattern(r core.Reader, m *core.Model) (color.RGBA, int) {
	switch rd := r.(type) {
	case *core.ServoReader:
		switch rd.State() {
		case core.StateAwaitingFirstSignal:
			return colorWaiting, ledSlowFlash
		case core.StateAwaitingStabilization:
			return colorStartup, ledFastFlash
		}
		return colorRunning, ledSolid

	case *core.UARTReader:
		if !rd.Decoder().Confirmed() {
			return colorWaiting, ledSlowFlash
		}
		if m.Flags().StartupModeNeutral {
			return colorStartup, ledSolid
		}
		return colorSerial, ledSolid
	}
	return colorOff, ledSolid
}
