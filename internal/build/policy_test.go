package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/xcbundle/internal/domain"
	"github.com/mrz1836/xcbundle/internal/errors"
	"github.com/mrz1836/xcbundle/internal/layout"
	"github.com/mrz1836/xcbundle/internal/platform"
)

func testOptions() Options {
	return Options{
		Toolchain:     domain.DefaultToolchain(),
		Configuration: domain.ConfigurationRelease,
		BuildDir:      "/pkg/.build/xcbundle/build",
		Workspace:     "/pkg",
		Project:       "/pkg/.build/xcbundle/Pkg.xcodeproj",
	}
}

func testLayout(opts Options, legacy bool) layout.Convention {
	return layout.NewXcode(opts.BuildDir, opts.Configuration, DefaultFrameworkSubpath(legacy))
}

func TestCurrentPolicy_ArchiveCommand(t *testing.T) {
	opts := testOptions()
	opts.Xcconfig = "/pkg/Overrides.xcconfig"
	opts.Settings = []domain.BuildSetting{{Name: "SUPPORTS_MACCATALYST", Value: "NO"}}
	opts.Clean = true
	p := NewCurrentPolicy(opts, testLayout(opts, false))

	catalyst := platform.MacCatalyst.Variants()[0]
	got := p.ArchiveCommand("My-Lib", catalyst)

	assert.Equal(t, []string{
		"xcrun", "xcodebuild",
		"-workspace", "/pkg",
		"-configuration", "Release",
		"-archivePath", "/pkg/.build/xcbundle/build/My_Lib/maccatalyst.xcarchive",
		"-destination", "platform=macOS,variant=Mac Catalyst",
		"BUILD_DIR=/pkg/.build/xcbundle/build",
		"SKIP_INSTALL=NO",
		"BUILD_LIBRARY_FOR_DISTRIBUTION=YES",
		"SUPPORTS_MACCATALYST=YES",
		"-xcconfig", "/pkg/Overrides.xcconfig",
		"SUPPORTS_MACCATALYST=NO",
		"-scheme", "My-Lib",
		"clean",
		"archive",
	}, got)
	assert.Nil(t, p.CleanCommand())
}

func TestCurrentPolicy_CallerSettingsComeAfterVariantSettings(t *testing.T) {
	opts := testOptions()
	opts.Settings = []domain.BuildSetting{{Name: "SUPPORTS_MACCATALYST", Value: "NO"}}
	p := NewCurrentPolicy(opts, testLayout(opts, false))

	got := p.ArchiveCommand("Lib", platform.MacCatalyst.Variants()[0])
	variantIdx := indexOf(got, "SUPPORTS_MACCATALYST=YES")
	callerIdx := indexOf(got, "SUPPORTS_MACCATALYST=NO")
	require.NotEqual(t, -1, variantIdx)
	assert.Greater(t, callerIdx, variantIdx)
	assert.NotContains(t, got, "clean")
	assert.Equal(t, "archive", got[len(got)-1])
}

func TestCurrentPolicy_FrameworkPath(t *testing.T) {
	opts := testOptions()
	p := NewCurrentPolicy(opts, testLayout(opts, false))

	assert.Equal(t,
		"/pkg/.build/xcbundle/build/Core/iphoneos.xcarchive/Products/usr/local/lib/Core.framework",
		p.FrameworkPath("Core", platform.IOS.Variants()[0]))
}

func TestLegacyPolicy(t *testing.T) {
	opts := testOptions()
	opts.StackEvolution = true
	opts.Clean = true
	opts.Xcconfig = "/pkg/Overrides.xcconfig"
	opts.DistributionXcconfig = "/pkg/.build/xcbundle/Distribution.xcconfig"
	p, err := NewLegacyPolicy(opts, testLayout(opts, true))
	require.NoError(t, err)

	got := p.ArchiveCommand("Core", platform.IOS.Variants()[1])
	assert.Equal(t, []string{
		"xcrun", "xcodebuild",
		"-project", "/pkg/.build/xcbundle/Pkg.xcodeproj",
		"-configuration", "Release",
		"-archivePath", "/pkg/.build/xcbundle/build/Core/iphonesimulator.xcarchive",
		"-destination", "generic/platform=iOS Simulator",
		"BUILD_DIR=/pkg/.build/xcbundle/build",
		"SKIP_INSTALL=NO",
		"BUILD_LIBRARY_FOR_DISTRIBUTION=YES",
		"-xcconfig", "/pkg/Overrides.xcconfig",
		"-scheme", "Core",
		"archive",
	}, got)

	assert.Equal(t, []string{
		"xcrun", "xcodebuild",
		"-project", "/pkg/.build/xcbundle/Pkg.xcodeproj",
		"BUILD_DIR=/pkg/.build/xcbundle/build",
		"clean",
	}, p.CleanCommand())

	assert.Equal(t,
		"/pkg/.build/xcbundle/build/Core/iphonesimulator.xcarchive/Products/Library/Frameworks/Core.framework",
		p.FrameworkPath("Core", platform.IOS.Variants()[1]))
}

func TestLegacyPolicy_WithoutStackEvolutionOrClean(t *testing.T) {
	opts := testOptions()
	opts.Xcconfig = "/pkg/Overrides.xcconfig"
	opts.DistributionXcconfig = "/pkg/.build/xcbundle/Distribution.xcconfig"
	opts.Settings = []domain.BuildSetting{{Name: "SWIFT_VERSION", Value: "5"}}
	p, err := NewLegacyPolicy(opts, testLayout(opts, true))
	require.NoError(t, err)

	got := p.ArchiveCommand("Core", platform.MacOS.Variants()[0])
	assert.NotContains(t, got, "BUILD_LIBRARY_FOR_DISTRIBUTION=YES")
	assert.NotContains(t, got, "/pkg/Overrides.xcconfig", "overrides arrive through the distribution include")
	assert.Equal(t, []string{
		"-xcconfig", "/pkg/.build/xcbundle/Distribution.xcconfig",
		"SWIFT_VERSION=5",
		"-scheme", "Core",
		"archive",
	}, got[len(got)-6:])
	assert.Nil(t, p.CleanCommand())
}

func TestLegacyPolicy_UserXcconfigWithoutDistributionFile(t *testing.T) {
	opts := testOptions()
	opts.Xcconfig = "/pkg/Overrides.xcconfig"
	p, err := NewLegacyPolicy(opts, testLayout(opts, true))
	require.NoError(t, err)

	got := p.ArchiveCommand("Core", platform.MacOS.Variants()[0])
	assert.Equal(t, []string{"-xcconfig", "/pkg/Overrides.xcconfig", "-scheme", "Core", "archive"}, got[len(got)-5:])
}

func TestNewPolicy(t *testing.T) {
	opts := testOptions()

	p, err := NewPolicy(opts, testLayout(opts, false), false)
	require.NoError(t, err)
	assert.Equal(t, "current", p.Name())

	p, err = NewPolicy(opts, testLayout(opts, true), true)
	require.NoError(t, err)
	assert.Equal(t, "legacy", p.Name())

	opts.Project = ""
	_, err = NewPolicy(opts, testLayout(opts, true), true)
	require.ErrorIs(t, err, errors.ErrLegacyRequiresProject)
}

func TestDefaultFrameworkSubpath(t *testing.T) {
	assert.Equal(t, "Products/usr/local/lib", DefaultFrameworkSubpath(false))
	assert.Equal(t, "Products/Library/Frameworks", DefaultFrameworkSubpath(true))
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
