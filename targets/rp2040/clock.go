//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"rclight/core"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWL = timerBase + 0x0C // Raw timer low word
)

var timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))

// InitClock starts the core time base from the 1 MHz hardware timer
func InitClock() {
	UpdateSystemTime()
	core.TimerInit()
}

// GetHardwareTime returns the low 32 bits of the microsecond counter
func GetHardwareTime() uint32 {
	return timerRAWL.Get()
}

// UpdateSystemTime updates the core timer with hardware time.
// Called at the top of every main loop iteration.
func UpdateSystemTime() {
	core.SetTime(GetHardwareTime())
}
