//go:build rp2040

package main

import (
	_ "embed"
	"machine"
	"time"

	"rclight/config"
	"rclight/core"
	"rclight/protocol"
)

//go:embed config.json
var configJSON []byte

// reportTicks is the interval of the debug channel report in systicks
const reportTicks = 50

var (
	model   *core.Model
	reader  core.Reader
	systick *core.Systick
	status  *StatusLED
	capture *PIOCapture

	// Debug counters
	loopErrors uint32
	updates    uint32
)

func main() {
	// Disable a watchdog left running by a previous image
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	cfg, cfgErr := config.LoadConfig(configJSON)
	if cfgErr != nil {
		cfg = config.DefaultConfig()
	}

	uart := InitUART(cfg)
	core.SetDebugEnabled(cfg.Debug || cfgErr != nil)
	core.InitAsyncDebug()
	core.DebugPrintln("rclight " + protocol.Version)
	if cfgErr != nil {
		core.DebugPrintln("[CONFIG] " + cfgErr.Error() + ", using defaults")
	}

	InitClock()

	rc, err := cfg.ReaderConfig()
	if err != nil {
		halt("[CONFIG] " + err.Error())
	}

	if rc.Mode == core.ModeServoReader {
		capture = NewPIOCapture(capturePins(cfg))
		core.SetCaptureDriver(capture)
	}

	reader, err = core.NewReader(rc, core.GetCaptureDriver(), uart)
	if err != nil {
		halt("[READER] " + err.Error())
	}

	model = core.NewModel()
	cfg.ApplyReversal(model)
	if err := reader.Init(model); err != nil {
		halt("[READER] init: " + err.Error())
	}
	if sr, ok := reader.(*core.ServoReader); ok {
		capture.Start(sr.Engine())
	}
	core.DebugPrintln("[READER] " + rc.Mode.String() + " mode")

	if cfg.Pins.StatusLED != "" {
		pin, _ := config.ParsePin(cfg.Pins.StatusLED)
		status = NewStatusLED(machine.Pin(pin))
	}

	systick = core.NewSystick(core.TimerFromMS(cfg.SystickMS))
	systick.Start()

	var ticks uint32
	for {
		// Recover from panics in the main loop to prevent a firmware crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					loopErrors++
					core.DumpEventRing()
				}
			}()

			UpdateSystemTime()
			core.ProcessTimers()

			model.BeginLoop(systick.Take())
			reader.Read(model)

			if model.Flags().NewChannelData {
				updates++
			}
			if model.Flags().Systick {
				status.Update(reader, model)
				ticks++
				if ticks%reportTicks == 0 {
					reportChannels()
				}
			}
		}()

		// Yield to other goroutines
		time.Sleep(10 * time.Microsecond)
	}
}

func capturePins(cfg *config.Config) [core.NumChannels]machine.Pin {
	var pins [core.NumChannels]machine.Pin
	for ch, name := range [core.NumChannels]string{cfg.Pins.Steering, cfg.Pins.Throttle, cfg.Pins.CH3} {
		n, _ := config.ParsePin(name)
		pins[ch] = machine.Pin(n)
	}
	return pins
}

// reportChannels queues a one-line channel summary for debug output
func reportChannels() {
	if !core.IsDebugEnabled() {
		return
	}

	msg := "[CH]"
	for id := core.ChannelID(0); id < core.NumChannels; id++ {
		c := model.Channel(id)
		msg += " " + id.String() + "=" + core.Itoa(int(c.Normalized)) + "(" + core.Itoa(int(c.Raw)) + ")"
	}
	if model.Flags().StartupModeNeutral {
		msg += " startup"
	}
	msg += " up=" + core.Itoa(int(core.TimerToUS(core.GetUptime())/1000)) + "ms"
	msg += " updates=" + core.Itoa(int(updates)) + " errors=" + core.Itoa(int(loopErrors))
	if n := capture.Overruns(); n > 0 {
		msg += " overruns=" + core.Itoa(int(n))
	}
	core.DebugAsync(msg)
}

// halt reports a fatal setup error forever
func halt(msg string) {
	core.SetDebugEnabled(true)
	for {
		core.DebugPrintln(msg)
		time.Sleep(time.Second)
	}
}
