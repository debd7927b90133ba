package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"rclight/core"
	"rclight/host/preproc"
	"rclight/host/serial"
	"rclight/protocol"
)

var (
	device   = flag.String("device", "/dev/ttyUSB0", "Serial device path")
	baud     = flag.Int("baud", protocol.DefaultBaud, "Baud rate of the preprocessor link")
	period   = flag.Duration("period", preproc.DefaultPeriod, "Frame interval")
	extended = flag.Bool("ext", false, "Send 5-byte frames")
	monitor  = flag.Bool("monitor", false, "Decode frames received on the port instead of sending")
	confirm  = flag.Uint("confirm", core.DefaultFrameConfirmations, "Frames of equal length needed for sync (monitor)")
)

func main() {
	flag.Parse()

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	port, err := serial.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer port.Close()

	// Stale bytes from before we opened the port would confuse both modes
	if err := port.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: flush failed: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *monitor {
		err = runMonitor(ctx, port)
	} else {
		err = runSimulator(ctx, stop, port)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runMonitor(ctx context.Context, port serial.Port) error {
	fmt.Printf("Monitoring preprocessor frames on %s at %d baud (Ctrl-C to stop)\n", *device, *baud)

	if *confirm == 0 || *confirm > 255 {
		return fmt.Errorf("confirm must be 1..255, got %d", *confirm)
	}
	mon, err := preproc.NewMonitor(os.Stdout, core.UARTConfig{Confirmations: uint8(*confirm)}, *period)
	if err != nil {
		return err
	}
	err = mon.Run(ctx, port)

	fmt.Printf("%d frames decoded\n", mon.Updates())
	return err
}

func runSimulator(ctx context.Context, stop context.CancelFunc, port serial.Port) error {
	sim := preproc.NewSimulator(*period)
	if *extended {
		sim.Update(func(f *protocol.Frame) { f.Extended = true })
	}

	fmt.Printf("Simulating on %s at %d baud.\n", *device, *baud)
	fmt.Println("Type 'help' for commands, 'quit' to exit.")

	errs := make(chan error, 2)
	go func() { errs <- sim.Run(ctx, port) }()

	logger := preproc.NewLineLogger(os.Stdout)
	logger.Header()
	go func() { errs <- logger.Run(ctx, port) }()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil

		case err := <-errs:
			stop()
			return err

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			cmd, err := preproc.ParseCommand(line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}

			switch cmd.Name {
			case "quit", "exit", "q":
				fmt.Println("Goodbye!")
				stop()
				// Let the writer finish its current frame
				time.Sleep(*period)
				return nil
			}

			msg, err := sim.Execute(cmd)
			switch {
			case errors.Is(err, preproc.ErrUnknownCommand):
				fmt.Printf("%v (type 'help' for available commands)\n", err)
			case err != nil:
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			case msg != "":
				fmt.Println(msg)
			}
		}
	}
}
