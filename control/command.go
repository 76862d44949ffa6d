package control

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cwbudde/filterbox/dsp/filterbox"
)

var (
	// ErrUnknownCommand reports a line that matches no command form.
	ErrUnknownCommand = errors.New("control: unknown command")

	// ErrInvalidValue reports a command whose frequency is not a finite number.
	ErrInvalidValue = errors.New("control: invalid frequency")
)

// Action is what a command asks for.
type Action int

const (
	ActionNone Action = iota
	ActionReset
	ActionSet
	ActionAdjust
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionReset:
		return "reset"
	case ActionSet:
		return "set"
	case ActionAdjust:
		return "adjust"
	case ActionQuit:
		return "quit"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Command is one parsed control line.
type Command struct {
	Action Action
	Target filterbox.StageID
	Hz     float64 // absolute cutoff for ActionSet, signed delta for ActionAdjust
}

// Parse reads one command line. Blank lines parse to ActionNone.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{Action: ActionNone}, nil
	}

	var target filterbox.StageID
	switch line[0] {
	case 'q', 'Q':
		if len(line) == 1 || strings.EqualFold(line, "quit") {
			return Command{Action: ActionQuit}, nil
		}
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, line)
	case 'l', 'L':
		target = filterbox.LowPassStage
	case 'h', 'H':
		target = filterbox.HighPassStage
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, line)
	}

	arg := strings.TrimSpace(line[1:])
	if arg == "" {
		return Command{Action: ActionReset, Target: target}, nil
	}

	action := ActionSet
	if arg[0] == '+' || arg[0] == '-' {
		action = ActionAdjust
	}

	hz, err := strconv.ParseFloat(arg, 64)
	if err != nil || math.IsNaN(hz) || math.IsInf(hz, 0) {
		return Command{}, fmt.Errorf("%w: %q", ErrInvalidValue, line)
	}

	return Command{Action: action, Target: target, Hz: hz}, nil
}
