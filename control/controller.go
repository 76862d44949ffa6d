package control

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/cwbudde/filterbox/dsp/filterbox"
	"github.com/cwbudde/filterbox/stream"
)

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithPrompt prints a prompt before every line is read.
func WithPrompt(prompt string) ControllerOption {
	return func(c *Controller) { c.prompt = prompt }
}

// WithControllerLogger sets the controller logger.
func WithControllerLogger(l *zap.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller applies parsed commands to a session's filter chain.
type Controller struct {
	session *stream.Session
	chain   *filterbox.Chain
	prompt  string
	logger  *zap.Logger
}

// NewController returns a controller for session.
func NewController(session *stream.Session, opts ...ControllerOption) *Controller {
	c := &Controller{
		session: session,
		chain:   session.Chain(),
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		if o != nil {
			o(c)
		}
	}
	return c
}

// Apply executes cmd and returns the resulting status line.
func (c *Controller) Apply(cmd Command) string {
	switch cmd.Action {
	case ActionQuit:
		c.session.Finish()
		return "bye"
	case ActionReset:
		hz := c.chain.ResetCutoff(cmd.Target)
		c.logger.Debug("cutoff reset", zap.Stringer("stage", cmd.Target), zap.Float64("hz", hz))
	case ActionSet:
		hz := c.chain.SetCutoff(cmd.Target, cmd.Hz)
		c.logger.Debug("cutoff set", zap.Stringer("stage", cmd.Target),
			zap.Float64("requested_hz", cmd.Hz), zap.Float64("hz", hz))
	case ActionAdjust:
		hz := c.chain.AdjustCutoff(cmd.Target, cmd.Hz)
		c.logger.Debug("cutoff adjusted", zap.Stringer("stage", cmd.Target),
			zap.Float64("delta_hz", cmd.Hz), zap.Float64("hz", hz))
	}

	return c.Status()
}

// Status describes the pass band.
func (c *Controller) Status() string {
	return fmt.Sprintf("passing %.0fHz .. %.0fHz",
		c.chain.Cutoff(filterbox.HighPassStage),
		c.chain.Cutoff(filterbox.LowPassStage))
}

// Run reads commands from r and writes status lines to w until r ends, a
// quit command is read, ctx is done or the session finishes. Unknown
// commands are reported on w and do not stop the loop.
func (c *Controller) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-c.session.Done():
				return
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	fmt.Fprintln(w, c.Status())
	for {
		if c.prompt != "" {
			fmt.Fprint(w, c.prompt)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-c.session.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("control: read commands: %w", err)
					}
				default:
				}
				return nil
			}

			cmd, err := Parse(line)
			if err != nil {
				if errors.Is(err, ErrUnknownCommand) || errors.Is(err, ErrInvalidValue) {
					fmt.Fprintln(w, err)
					continue
				}
				return err
			}
			if cmd.Action == ActionNone {
				continue
			}

			fmt.Fprintln(w, c.Apply(cmd))
			if cmd.Action == ActionQuit {
				return nil
			}
		}
	}
}
