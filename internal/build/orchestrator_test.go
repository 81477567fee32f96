package build

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/xcbundle/internal/domain"
	"github.com/mrz1836/xcbundle/internal/platform"
	"github.com/mrz1836/xcbundle/internal/process"
	"github.com/mrz1836/xcbundle/internal/testutil"
)

func newTestOrchestrator(t *testing.T, runner process.Runner, legacy bool, clean bool) *Orchestrator {
	t.Helper()
	opts := testOptions()
	opts.Clean = clean
	conv := testLayout(opts, legacy)
	p, err := NewPolicy(opts, conv, legacy)
	require.NoError(t, err)
	return NewOrchestrator(runner, p, conv)
}

func TestOrchestrator_Build(t *testing.T) {
	runner := testutil.NewFakeRunner()
	o := newTestOrchestrator(t, runner, false, false)
	ios := platform.IOS.Variants()[0]

	results, err := o.Build(context.Background(), []string{"B", "A"}, ios)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "B", results[0].Target)
	assert.Equal(t, "A", results[1].Target)
	assert.Equal(t, "/pkg/.build/xcbundle/build/A/iphoneos.xcarchive/Products/usr/local/lib/A.framework", results[1].FrameworkPath)
	assert.Equal(t, "/pkg/.build/xcbundle/build/Release-iphoneos", results[1].DebugSymbolsPath)

	calls := runner.CallsFor("xcodebuild")
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0], "B")
	assert.False(t, runner.Calls()[0].Capture, "build output streams live")
}

func TestOrchestrator_BuildAll_DeclarationOrder(t *testing.T) {
	runner := testutil.NewFakeRunner()
	o := newTestOrchestrator(t, runner, false, false)

	grouped, err := o.BuildAll(context.Background(), []string{"A", "B"}, platform.VariantsFor([]platform.Platform{platform.IOS, platform.MacOS}))
	require.NoError(t, err)

	var archives []string
	for _, argv := range runner.CallsFor("xcodebuild") {
		archives = append(archives, argv[indexOf(argv, "-archivePath")+1])
	}
	assert.Equal(t, []string{
		"/pkg/.build/xcbundle/build/A/iphoneos.xcarchive",
		"/pkg/.build/xcbundle/build/B/iphoneos.xcarchive",
		"/pkg/.build/xcbundle/build/A/iphonesimulator.xcarchive",
		"/pkg/.build/xcbundle/build/B/iphonesimulator.xcarchive",
		"/pkg/.build/xcbundle/build/A/macos.xcarchive",
		"/pkg/.build/xcbundle/build/B/macos.xcarchive",
	}, archives)

	require.Len(t, grouped, 2)
	assert.Equal(t, "A", grouped[0].Target)
	require.Len(t, grouped[0].Results, 3)
	assert.Contains(t, grouped[0].Results[2].FrameworkPath, "macos.xcarchive")
}

func TestOrchestrator_FirstFailureAborts(t *testing.T) {
	runner := testutil.NewFakeRunner().
		Fail("xcodebuild", &process.ProcessError{Command: "xcodebuild", Kind: process.NonZeroExit, Code: 2})
	o := newTestOrchestrator(t, runner, false, false)

	grouped, err := o.BuildAll(context.Background(), []string{"A", "B"}, platform.IOS.Variants())
	require.Error(t, err)
	assert.Nil(t, grouped)
	assert.Len(t, runner.Calls(), 1)

	var perr *process.ProcessError
	require.True(t, stderrors.As(err, &perr))
	assert.Equal(t, 2, perr.Code)
	assert.Contains(t, err.Error(), "xcodebuild exited with a non-zero code: 2")
}

func TestOrchestrator_Clean(t *testing.T) {
	runner := testutil.NewFakeRunner()
	require.NoError(t, newTestOrchestrator(t, runner, false, true).Clean(context.Background()))
	assert.Empty(t, runner.Calls(), "current policy cleans inside archive")

	require.NoError(t, newTestOrchestrator(t, runner, true, true).Clean(context.Background()))
	require.Len(t, runner.Calls(), 1)
	assert.Equal(t, "clean", runner.Calls()[0].Argv[len(runner.Calls()[0].Argv)-1])

	failing := testutil.NewFakeRunner().Fail("xcodebuild", testutil.ErrMockToolFailed)
	err := newTestOrchestrator(t, failing, true, true).Clean(context.Background())
	require.ErrorIs(t, err, testutil.ErrMockToolFailed)
}

func TestGroup(t *testing.T) {
	perVariant := [][]domain.BuildResult{
		{{Target: "B", FrameworkPath: "b1"}, {Target: "A", FrameworkPath: "a1"}},
		{{Target: "A", FrameworkPath: "a2"}, {Target: "B", FrameworkPath: "b2"}},
	}

	grouped := Group([]string{"A", "B", "C"}, perVariant)
	require.Len(t, grouped, 2)
	assert.Equal(t, "A", grouped[0].Target)
	assert.Equal(t, "a1", grouped[0].Results[0].FrameworkPath)
	assert.Equal(t, "a2", grouped[0].Results[1].FrameworkPath)
	assert.Equal(t, "B", grouped[1].Target)
}
