package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/xcbundle/internal/errors"
	"github.com/mrz1836/xcbundle/internal/process"
	"github.com/mrz1836/xcbundle/internal/testutil"
	"github.com/mrz1836/xcbundle/internal/toolcheck"
)

func toolchainRunner() *testutil.FakeRunner {
	return testutil.NewFakeRunner().
		On("--find", func(argv []string) (process.Output, error) {
			return process.Output{Stdout: []byte("/Xcode/usr/bin/" + argv[2])}, nil
		}).
		Respond("xcodebuild", "Xcode 16.1\nBuild version 16B40\n")
}

func TestDoctor_Ready(t *testing.T) {
	c := newTestCLI(t, toolchainRunner())

	require.NoError(t, c.run("doctor", "-p", t.TempDir()))

	output := c.stdout.String()
	assert.Contains(t, output, "TOOL")
	assert.Contains(t, output, "Installed")
	assert.Contains(t, output, "16.1")
	assert.Contains(t, output, "/Xcode/usr/bin/dwarfdump")
	assert.Contains(t, output, "toolchain ready")
}

func TestDoctor_MissingTool(t *testing.T) {
	runner := toolchainRunner().Fail("--find", testutil.ErrMockToolFailed)
	c := newTestCLI(t, runner)

	err := c.run("-o", "json", "doctor", "-p", t.TempDir())
	require.ErrorIs(t, err, errors.ErrToolMissing)
	assert.Equal(t, ExitError, ExitCodeForError(err))

	var result toolcheck.Result
	require.NoError(t, json.Unmarshal(c.stdout.Bytes(), &result))
	require.Len(t, result.Tools, 5)
	assert.Empty(t, result.Tools[1].Path)
}
