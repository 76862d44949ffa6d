package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/filterbox/dsp/filterbox"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{line: "", want: Command{Action: ActionNone}},
		{line: "   ", want: Command{Action: ActionNone}},
		{line: "q", want: Command{Action: ActionQuit}},
		{line: "quit", want: Command{Action: ActionQuit}},
		{line: "l", want: Command{Action: ActionReset, Target: filterbox.LowPassStage}},
		{line: "h", want: Command{Action: ActionReset, Target: filterbox.HighPassStage}},
		{line: "l4000", want: Command{Action: ActionSet, Target: filterbox.LowPassStage, Hz: 4000}},
		{line: "h 120.5", want: Command{Action: ActionSet, Target: filterbox.HighPassStage, Hz: 120.5}},
		{line: "l+250", want: Command{Action: ActionAdjust, Target: filterbox.LowPassStage, Hz: 250}},
		{line: "h-40", want: Command{Action: ActionAdjust, Target: filterbox.HighPassStage, Hz: -40}},
		{line: "  L1e3 ", want: Command{Action: ActionSet, Target: filterbox.LowPassStage, Hz: 1000}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	unknown := []string{"x", "quiet", "?", "1000"}
	for _, line := range unknown {
		_, err := Parse(line)
		assert.ErrorIs(t, err, ErrUnknownCommand, line)
	}

	invalid := []string{"l+", "h-", "labc", "lNaN", "h+Inf", "l--5"}
	for _, line := range invalid {
		_, err := Parse(line)
		assert.ErrorIs(t, err, ErrInvalidValue, line)
	}
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "adjust", ActionAdjust.String())
	assert.Equal(t, "Action(42)", Action(42).String())
}
