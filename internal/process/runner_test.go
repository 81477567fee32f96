package process

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/xcbundle/internal/errors"
)

func TestCommandName(t *testing.T) {
	tests := []struct {
		name     string
		argv     []string
		launcher string
		want     string
	}{
		{"empty", nil, "xcrun", "<command>"},
		{"plain", []string{"ditto", "-c"}, "xcrun", "ditto"},
		{"launcher", []string{"xcrun", "xcodebuild", "archive"}, "xcrun", "xcodebuild"},
		{"launcher path", []string{"/usr/bin/xcrun", "dwarfdump"}, "xcrun", "dwarfdump"},
		{"launcher only", []string{"xcrun"}, "xcrun", "xcrun"},
		{"no launcher configured", []string{"xcrun", "xcodebuild"}, "", "xcrun"},
		{"absolute tool", []string{"/usr/bin/swift", "package"}, "xcrun", "swift"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CommandName(tc.argv, tc.launcher))
		})
	}
}

func TestProcessError_Messages(t *testing.T) {
	nonZero := &ProcessError{Command: "xcodebuild", Kind: NonZeroExit, Code: 65}
	assert.Equal(t, "xcodebuild exited with a non-zero code: 65", nonZero.Error())
	assert.ErrorIs(t, nonZero, errors.ErrExternalTool)

	signal := &ProcessError{Command: "ditto", Kind: SignalExit, Signal: 9}
	assert.Equal(t, "ditto exited due to signal: 9", signal.Error())
	assert.ErrorIs(t, signal, errors.ErrExternalTool)
}

func TestExecRunner_EmptyCommand(t *testing.T) {
	_, err := NewExecRunner("xcrun").Run(context.Background(), nil, true)
	require.ErrorIs(t, err, errors.ErrEmptyValue)
}

func TestExecRunner_MissingExecutable(t *testing.T) {
	_, err := NewExecRunner("").Run(context.Background(), []string{"xcbundle-definitely-not-a-tool"}, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrExternalTool)

	var perr *ProcessError
	assert.False(t, stderrors.As(err, &perr), "start failures are not process exits")
}

func TestExecRunner_WritesLiveOutput(t *testing.T) {
	var live bytes.Buffer
	r := NewExecRunner("")
	r.Stdout = &live

	out, err := r.Run(context.Background(), []string{"sh", "-c", "echo streamed"}, false)
	require.NoError(t, err)
	assert.Empty(t, out.Stdout)
	assert.Equal(t, "streamed\n", live.String())
}
