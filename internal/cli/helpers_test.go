package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/xcbundle/internal/domain"
	"github.com/mrz1836/xcbundle/internal/process"
	"github.com/mrz1836/xcbundle/internal/testutil"
	"github.com/mrz1836/xcbundle/internal/toolcheck"
)

const kitManifest = `{
  "name": "Kit",
  "platforms": [{"platformName": "ios", "version": "13.0"}, {"platformName": "macos", "version": "10.15"}],
  "products": [
    {"name": "Kit", "type": {"library": ["automatic"]}, "targets": ["Kit"]},
    {"name": "kit-tool", "type": {"executable": null}, "targets": ["Tool"]}
  ],
  "targets": [
    {"name": "Kit", "type": "regular"},
    {"name": "KitCore", "type": "regular"},
    {"name": "Tool", "type": "executable"}
  ]
}`

// kitPackage creates a package directory and a runner that describes it.
func kitPackage(t *testing.T) (string, *testutil.FakeRunner) {
	t.Helper()
	pkg := t.TempDir()

	runner := testutil.NewFakeRunner().On("swift", func(argv []string) (process.Output, error) {
		if slices.Contains(argv, "show-dependencies") {
			tree := `{"identity": "kit", "name": "Kit", "path": "` + pkg + `", "dependencies": []}`
			return process.Output{Stdout: []byte(tree)}, nil
		}
		return process.Output{Stdout: []byte(kitManifest)}, nil
	})
	return pkg, runner
}

type testCLI struct {
	cmd    *cobra.Command
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestCLI(t *testing.T, runner process.Runner) *testCLI {
	t.Helper()

	env := environment{
		newRunner: func(string, io.Writer) process.Runner { return runner },
		newLogger: func(verbose, quiet bool, _ io.Writer) zerolog.Logger {
			return InitLoggerWithWriter(verbose, quiet, io.Discard)
		},
		newDetector: func(runner process.Runner, toolchain domain.Toolchain) *toolcheck.Detector {
			return toolcheck.NewDetector(runner, toolchain, func(file string) (string, error) {
				return "/usr/bin/" + file, nil
			})
		},
	}

	c := &testCLI{
		cmd:    newRootCmdWithEnv(&GlobalFlags{}, BuildInfo{Version: "test"}, env),
		stdout: new(bytes.Buffer),
		stderr: new(bytes.Buffer),
	}
	c.cmd.SetOut(c.stdout)
	c.cmd.SetErr(c.stderr)
	return c
}

func (c *testCLI) run(args ...string) error {
	c.cmd.SetArgs(args)
	return c.cmd.Execute()
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}
