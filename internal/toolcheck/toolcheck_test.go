package toolcheck

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/xcbundle/internal/domain"
	"github.com/mrz1836/xcbundle/internal/process"
	"github.com/mrz1836/xcbundle/internal/testutil"
)

func lookPathOnly(found ...string) LookPathFunc {
	return func(file string) (string, error) {
		for _, f := range found {
			if f == file {
				return "/usr/bin/" + file, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func TestDetect_AllInstalled(t *testing.T) {
	runner := testutil.NewFakeRunner().
		On("--find", func(argv []string) (process.Output, error) {
			return process.Output{Stdout: []byte("/Applications/Xcode.app/bin/" + argv[2] + "\n")}, nil
		}).
		Respond("xcodebuild", "Xcode 15.2\nBuild version 15C500b\n").
		Respond("swift", "swift-driver version: 1.87.3 Apple Swift version 5.9.2 (swiftlang-5.9.2.2.56 clang-1500.1.0.2.5)\n")

	d := NewDetector(runner, domain.DefaultToolchain(), lookPathOnly("xcrun", "ditto", "swift"))
	result, err := d.Detect(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
		assert.Equal(t, StatusInstalled, tool.Status, tool.Name)
	}
	assert.Equal(t, []string{"xcrun", "xcodebuild", "dwarfdump", "ditto", "swift"}, names)
	assert.Empty(t, result.Missing())

	assert.Equal(t, "/Applications/Xcode.app/bin/xcodebuild", result.Tools[1].Path)
	assert.Equal(t, "15.2", result.Tools[1].Version)
	assert.Equal(t, "5.9.2", result.Tools[4].Version)
	assert.Empty(t, result.Tools[3].Version, "ditto has no version probe")
}

func TestDetect_Missing(t *testing.T) {
	runner := testutil.NewFakeRunner().Fail("--find", testutil.ErrMockToolFailed)

	d := NewDetector(runner, domain.DefaultToolchain(), lookPathOnly("swift"))
	result, err := d.Detect(context.Background())
	require.NoError(t, err)

	missing := make([]string, 0)
	for _, tool := range result.Missing() {
		missing = append(missing, tool.Name)
	}
	assert.Equal(t, []string{"xcrun", "xcodebuild", "dwarfdump", "ditto"}, missing)
}

func TestDetect_NoLauncher(t *testing.T) {
	tc := domain.DefaultToolchain()
	tc.Xcrun = ""

	runner := testutil.NewFakeRunner()
	d := NewDetector(runner, tc, lookPathOnly("xcodebuild", "dwarfdump", "ditto", "swift"))
	result, err := d.Detect(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Tools, 4)
	assert.Equal(t, "xcodebuild", result.Tools[0].Name)
	assert.Equal(t, "/usr/bin/xcodebuild", result.Tools[0].Path)
	assert.Empty(t, runner.CallsFor("--find"))
}

func TestDetect_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDetector(testutil.NewFakeRunner(), domain.DefaultToolchain(), nil).Detect(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestParseVersion(t *testing.T) {
	assert.Equal(t, "16.0", ParseVersion("Xcode 16.0\nBuild version 16A242d", xcodeVersionRe))
	assert.Empty(t, ParseVersion("garbage", xcodeVersionRe))
	assert.Equal(t, "6.0.3", ParseVersion("Apple Swift version 6.0.3 (swift-6.0.3-RELEASE)", swiftVersionRe))
}

func TestStatus_MarshalText(t *testing.T) {
	text, err := StatusMissing.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "missing", string(text))
}

func TestStatus_UnmarshalText(t *testing.T) {
	var s Status
	require.NoError(t, s.UnmarshalText([]byte("installed")))
	assert.Equal(t, StatusInstalled, s)
	require.NoError(t, s.UnmarshalText([]byte("unknown")))
	assert.Equal(t, StatusMissing, s)
}
