package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/xcbundle/internal/clock"
	"github.com/mrz1836/xcbundle/internal/domain"
	"github.com/mrz1836/xcbundle/internal/errors"
	"github.com/mrz1836/xcbundle/internal/flock"
	"github.com/mrz1836/xcbundle/internal/platform"
	"github.com/mrz1836/xcbundle/internal/process"
	"github.com/mrz1836/xcbundle/internal/testutil"
	"github.com/mrz1836/xcbundle/internal/version"
)

// fakeXcodebuild succeeds for archives and creates the -output bundle for
// -create-xcframework.
func fakeXcodebuild(argv []string) (process.Output, error) {
	if slices.Contains(argv, "-create-xcframework") {
		out := argv[len(argv)-1]
		return process.Output{}, os.MkdirAll(filepath.Join(out, "ios-arm64"), 0o750)
	}
	return process.Output{}, nil
}

func fakeDitto(argv []string) (process.Output, error) {
	return process.Output{}, os.WriteFile(argv[len(argv)-1], []byte("zip"), 0o600)
}

func testOptions(t *testing.T) Options {
	t.Helper()
	root := t.TempDir()
	return Options{
		Toolchain:     domain.DefaultToolchain(),
		Configuration: domain.ConfigurationRelease,
		PackageRoot:   root,
		WorkDir:       filepath.Join(root, ".build", "xcbundle"),
		OutputDir:     filepath.Join(root, "out"),
		Clean:         true,
		DebugSymbols:  true,
	}
}

func testGraph() (version.Graph, version.WorkspaceState) {
	graph := version.Graph{Packages: []version.Package{
		{Identity: "app", Targets: []string{"App"}, Root: true},
		{Identity: "swift-log", Targets: []string{"Logging"}},
	}}
	state := version.WorkspaceState{Dependencies: map[string]version.DependencyState{
		"swift-log": {Kind: version.StateSourceControlCheckout, Version: "1.2.0"},
	}}
	return graph, state
}

func TestRun_BuildMergeAndPackage(t *testing.T) {
	opts := testOptions(t)
	runner := testutil.NewFakeRunner().
		On("xcodebuild", fakeXcodebuild).
		On("ditto", fakeDitto)

	p, err := New(runner, opts)
	require.NoError(t, err)

	graph, state := testGraph()
	list := filepath.Join(opts.PackageRoot, ".build", "xcframework-zipfile.url")
	report, err := p.Run(context.Background(), Request{
		Targets:      []string{"Logging", "App"},
		Platforms:    []platform.Platform{platform.IOS},
		Zip:          true,
		ZipVersion:   "beta1",
		Graph:        graph,
		State:        state,
		ArtifactList: list,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"iphoneos", "iphonesimulator"}, report.Variants)
	assert.Equal(t, []string{"xcodebuild", "xcodebuild", "xcodebuild", "xcodebuild", "xcodebuild", "xcodebuild", "ditto", "ditto"}, runner.Names())

	require.Len(t, report.Bundles, 2)
	assert.Equal(t, filepath.Join(opts.OutputDir, "Logging.xcframework"), report.Bundles[0].Path)

	require.Len(t, report.Artifacts, 2)
	assert.Equal(t, filepath.Join(opts.OutputDir, "Logging-1.2.0.zip"), report.Artifacts[0].ZipPath)
	assert.Equal(t, filepath.Join(opts.OutputDir, "App-beta1.zip"), report.Artifacts[1].ZipPath)
	for _, a := range report.Artifacts {
		assert.FileExists(t, a.ZipPath)
		assert.FileExists(t, a.ChecksumPath)
	}
	for _, b := range report.Bundles {
		assert.NoDirExists(t, b.Path, "bundle is removed after zipping")
	}

	data, err := os.ReadFile(list) //nolint:gosec // test path
	require.NoError(t, err)
	assert.Len(t, strings.Split(string(data), "\n"), 4)
	assert.Equal(t, list, report.ArtifactList)

	assert.FileExists(t, filepath.Join(opts.WorkDir, "Distribution.xcconfig"))
}

func TestRun_WithoutZipKeepsBundles(t *testing.T) {
	opts := testOptions(t)
	runner := testutil.NewFakeRunner().On("xcodebuild", fakeXcodebuild)

	p, err := New(runner, opts)
	require.NoError(t, err)
	p.WithClock(&clock.Stepping{Start: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), Step: 3 * time.Minute})

	report, err := p.Run(context.Background(), Request{
		Targets:   []string{"App"},
		Platforms: []platform.Platform{platform.MacOS},
	})
	require.NoError(t, err)
	assert.Equal(t, 3*time.Minute, report.Duration)
	require.Len(t, report.Bundles, 1)
	assert.DirExists(t, report.Bundles[0].Path)
	assert.Empty(t, report.Artifacts)
	assert.Empty(t, runner.CallsFor("ditto"))
}

func TestRun_FatalErrorStopsEverything(t *testing.T) {
	opts := testOptions(t)
	runner := testutil.NewFakeRunner().
		Fail("xcodebuild", &process.ProcessError{Command: "xcodebuild", Kind: process.NonZeroExit, Code: 2})

	p, err := New(runner, opts)
	require.NoError(t, err)

	report, err := p.Run(context.Background(), Request{
		Targets:   []string{"A", "B"},
		Platforms: []platform.Platform{platform.IOS, platform.MacOS},
		Zip:       true,
	})
	require.Error(t, err)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, errors.ErrExternalTool)
	assert.Contains(t, err.Error(), "xcodebuild")
	assert.Contains(t, err.Error(), "2")

	require.Len(t, runner.Calls(), 1, "no later target, variant, or merge runs")
	assert.NoDirExists(t, opts.OutputDir)
}

func TestRun_LegacyCleansFirst(t *testing.T) {
	opts := testOptions(t)
	opts.Legacy = true
	opts.Project = filepath.Join(opts.WorkDir, "App.xcodeproj")
	runner := testutil.NewFakeRunner().On("xcodebuild", fakeXcodebuild)

	p, err := New(runner, opts)
	require.NoError(t, err)

	_, err = p.Run(context.Background(), Request{
		Targets:   []string{"App"},
		Platforms: []platform.Platform{platform.MacOS},
	})
	require.NoError(t, err)

	calls := runner.CallsFor("xcodebuild")
	require.Len(t, calls, 3)
	assert.Equal(t, "clean", calls[0][len(calls[0])-1])
	assert.Equal(t, "archive", calls[1][len(calls[1])-1])
	assert.Contains(t, calls[2], "-create-xcframework")
	assert.Contains(t, calls[1][indexOf(calls[1], "-archivePath")+1], "macos.xcarchive")
}

func TestRun_LegacyPassesDistributionXcconfig(t *testing.T) {
	opts := testOptions(t)
	opts.Legacy = true
	opts.Clean = false
	opts.Project = filepath.Join(opts.WorkDir, "App.xcodeproj")
	opts.Xcconfig = "Overrides.xcconfig"
	runner := testutil.NewFakeRunner().On("xcodebuild", fakeXcodebuild)

	p, err := New(runner, opts)
	require.NoError(t, err)

	_, err = p.Run(context.Background(), Request{
		Targets:   []string{"App"},
		Platforms: []platform.Platform{platform.MacOS},
	})
	require.NoError(t, err)

	archive := runner.CallsFor("xcodebuild")[0]
	distribution := filepath.Join(opts.WorkDir, "Distribution.xcconfig")
	i := indexOf(archive, "-xcconfig")
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, distribution, archive[i+1])
	assert.NotContains(t, archive, "BUILD_LIBRARY_FOR_DISTRIBUTION=YES")

	data, err := os.ReadFile(distribution) //nolint:gosec // test path
	require.NoError(t, err)
	assert.Contains(t, string(data), `#include "../../Overrides.xcconfig"`)
	assert.Contains(t, string(data), "BUILD_LIBRARY_FOR_DISTRIBUTION=YES")
}

func TestRun_LegacyStackEvolutionSkipsDistributionXcconfig(t *testing.T) {
	opts := testOptions(t)
	opts.Legacy = true
	opts.Clean = false
	opts.StackEvolution = true
	opts.Project = filepath.Join(opts.WorkDir, "App.xcodeproj")
	runner := testutil.NewFakeRunner().On("xcodebuild", fakeXcodebuild)

	p, err := New(runner, opts)
	require.NoError(t, err)

	_, err = p.Run(context.Background(), Request{
		Targets:   []string{"App"},
		Platforms: []platform.Platform{platform.MacOS},
	})
	require.NoError(t, err)

	archive := runner.CallsFor("xcodebuild")[0]
	assert.Contains(t, archive, "BUILD_LIBRARY_FOR_DISTRIBUTION=YES")
	assert.NotContains(t, archive, "-xcconfig")
}

func TestNew_LegacyRequiresProject(t *testing.T) {
	opts := testOptions(t)
	opts.Legacy = true

	_, err := New(testutil.NewFakeRunner(), opts)
	require.ErrorIs(t, err, errors.ErrLegacyRequiresProject)
}

func TestRun_RejectsEmptyRequest(t *testing.T) {
	runner := testutil.NewFakeRunner()
	p, err := New(runner, testOptions(t))
	require.NoError(t, err)

	_, err = p.Run(context.Background(), Request{Platforms: platform.All()})
	require.ErrorIs(t, err, errors.ErrNoProducts)

	_, err = p.Run(context.Background(), Request{Targets: []string{"App"}})
	require.ErrorIs(t, err, errors.ErrNoPlatforms)

	assert.Empty(t, runner.Calls())
}

func TestRun_LockedBuildDirectory(t *testing.T) {
	opts := testOptions(t)
	held, err := flock.Acquire(filepath.Join(opts.WorkDir, ".lock"))
	require.NoError(t, err)
	defer func() { _ = held.Release() }()

	runner := testutil.NewFakeRunner()
	p, err := New(runner, opts)
	require.NoError(t, err)

	_, err = p.Run(context.Background(), Request{
		Targets:   []string{"App"},
		Platforms: []platform.Platform{platform.IOS},
	})
	require.ErrorIs(t, err, errors.ErrBuildDirLocked)
	assert.Empty(t, runner.Calls())
}

func TestRun_PackagingFailureLeavesBundle(t *testing.T) {
	opts := testOptions(t)
	runner := testutil.NewFakeRunner().
		On("xcodebuild", fakeXcodebuild).
		Fail("ditto", &process.ProcessError{Command: "ditto", Kind: process.SignalExit, Signal: 15})

	p, err := New(runner, opts)
	require.NoError(t, err)

	_, err = p.Run(context.Background(), Request{
		Targets:   []string{"App"},
		Platforms: []platform.Platform{platform.MacOS},
		Zip:       true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ditto exited due to signal: 15")
	assert.DirExists(t, filepath.Join(opts.OutputDir, "App.xcframework"))
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
