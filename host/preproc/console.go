package preproc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"rclight/protocol"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArgument    = errors.New("bad argument")
)

// Command is one parsed console line
type Command struct {
	Name string
	Args []string
}

// ParseCommand splits a console line with shell quoting rules. An empty
// line yields a Command with an empty Name.
func ParseCommand(line string) (Command, error) {
	fields, err := shlex.Split(line)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrBadArgument, err)
	}
	if len(fields) == 0 {
		return Command{}, nil
	}

	// "ST=10 TH=-5" is shorthand for "set ST=10 TH=-5"
	if strings.Contains(fields[0], "=") {
		return Command{Name: "set", Args: fields}, nil
	}
	return Command{Name: strings.ToLower(fields[0]), Args: fields[1:]}, nil
}

// Help lists the console commands
const Help = `Commands:
  st <-100..100>         steering
  th <-100..100>         throttle
  ch3 [on|off|toggle]    CH3 button state (no argument toggles)
  startup [on|off]       startup mode flag
  ext [on|off]           send 5-byte frames
  ch3v <0..63>           CH3 value carried in the 5th byte
  neutral                steering and throttle to 0
  set KEY=VALUE...       ST, TH, CH3, STARTUP_MODE as numbers
  status                 show the current frame
  quit                   exit`

// Execute applies a command to the simulator and returns a message to show
func (s *Simulator) Execute(cmd Command) (string, error) {
	switch cmd.Name {
	case "":
		return "", nil

	case "help", "?":
		return Help, nil

	case "status":
		return s.Status(), nil

	case "st", "th":
		if len(cmd.Args) != 1 {
			return "", fmt.Errorf("%w: %s needs a value", ErrBadArgument, cmd.Name)
		}
		v, err := parsePercent(cmd.Args[0])
		if err != nil {
			return "", err
		}
		s.Update(func(f *protocol.Frame) {
			if cmd.Name == "st" {
				f.Steering = v
			} else {
				f.Throttle = v
			}
		})

	case "neutral":
		s.Update(func(f *protocol.Frame) {
			f.Steering = 0
			f.Throttle = 0
		})

	case "ch3", "startup", "ext":
		arg := "toggle"
		if len(cmd.Args) > 0 {
			arg = cmd.Args[0]
		}
		var err error
		s.Update(func(f *protocol.Frame) {
			switch cmd.Name {
			case "ch3":
				f.CH3, err = parseSwitch(arg, f.CH3)
			case "startup":
				f.Startup, err = parseSwitch(arg, f.Startup)
			case "ext":
				f.Extended, err = parseSwitch(arg, f.Extended)
			}
		})
		if err != nil {
			return "", err
		}

	case "ch3v":
		if len(cmd.Args) != 1 {
			return "", fmt.Errorf("%w: ch3v needs a value", ErrBadArgument)
		}
		v, err := strconv.ParseUint(cmd.Args[0], 0, 8)
		if err != nil || v > protocol.CH3Mask {
			return "", fmt.Errorf("%w: ch3v %q", ErrBadArgument, cmd.Args[0])
		}
		s.Update(func(f *protocol.Frame) { f.CH3Value = uint8(v) })

	case "set":
		if err := s.set(cmd.Args); err != nil {
			return "", err
		}

	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Name)
	}

	return s.Status(), nil
}

// set applies KEY=VALUE pairs atomically: nothing changes if one is bad
func (s *Simulator) set(args []string) error {
	f := s.Frame()
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("%w: %q is not KEY=VALUE", ErrBadArgument, arg)
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrBadArgument, arg)
		}

		switch strings.ToUpper(key) {
		case "ST":
			v, err := parsePercent(value)
			if err != nil {
				return err
			}
			f.Steering = v
		case "TH":
			v, err := parsePercent(value)
			if err != nil {
				return err
			}
			f.Throttle = v
		case "CH3":
			f.CH3 = n != 0
		case "STARTUP_MODE":
			f.Startup = n != 0
		default:
			return fmt.Errorf("%w: key %q", ErrBadArgument, key)
		}
	}

	s.Update(func(cur *protocol.Frame) { *cur = f })
	return nil
}

func parsePercent(s string) (int8, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v < -100 || v > 100 {
		return 0, fmt.Errorf("%w: %q is not in -100..100", ErrBadArgument, s)
	}
	return int8(v), nil
}

func parseSwitch(s string, cur bool) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	case "toggle":
		return !cur, nil
	default:
		return cur, fmt.Errorf("%w: %q is not on/off/toggle", ErrBadArgument, s)
	}
}
