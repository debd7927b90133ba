//go:build rp2040

package main

import (
	"machine"

	"rclight/config"
	"rclight/core"
)

// InitUART configures UART0 for the preprocessor link and debug output.
// The returned UART is the byte source of the serial reader.
func InitUART(cfg *config.Config) *machine.UART {
	tx, _ := config.ParsePin(cfg.Pins.UARTTx)
	rx, _ := config.ParsePin(cfg.Pins.UARTRx)

	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: cfg.Baud,
		TX:       machine.Pin(tx),
		RX:       machine.Pin(rx),
	})

	core.SetDebugWriter(func(msg string) {
		uart.Write([]byte(msg))
		uart.Write([]byte("\r\n"))
	})

	return uart
}
