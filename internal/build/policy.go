// Package build drives xcodebuild archive builds for every (target, SDK
// variant) pair and reports where the resulting frameworks and debug symbols
// are expected to be.
package build

import (
	"fmt"

	"github.com/mrz1836/xcbundle/internal/constants"
	"github.com/mrz1836/xcbundle/internal/domain"
	"github.com/mrz1836/xcbundle/internal/errors"
	"github.com/mrz1836/xcbundle/internal/layout"
	"github.com/mrz1836/xcbundle/internal/platform"
)

// Policy builds the xcodebuild invocations for one way of driving Xcode.
// The orchestrator only talks to this interface.
type Policy interface {
	// Name identifies the policy in logs.
	Name() string
	// ArchiveCommand returns the argv that archives target for v.
	ArchiveCommand(target string, v platform.Variant) []string
	// FrameworkPath returns where the archive for (target, v) keeps its framework.
	FrameworkPath(target string, v platform.Variant) string
	// CleanCommand returns a separate clean invocation to run before any
	// build, or nil when cleaning is not a separate step.
	CleanCommand() []string
}

// Options are the inputs shared by both policies.
type Options struct {
	// Toolchain supplies the xcrun/xcodebuild argv prefix.
	Toolchain domain.Toolchain
	// Configuration is Debug or Release.
	Configuration domain.Configuration
	// BuildDir is passed as BUILD_DIR and hosts every archive.
	BuildDir string
	// Workspace is the package root handed to -workspace (current policy).
	Workspace string
	// Project is the .xcodeproj handed to -project (legacy policy).
	Project string
	// Xcconfig is an absolute user xcconfig override file.
	Xcconfig string
	// DistributionXcconfig is the generated xcconfig that includes Xcconfig
	// and turns on library evolution. The legacy policy passes it when
	// StackEvolution is off.
	DistributionXcconfig string
	// Settings are caller-supplied overrides, appended after variant defaults.
	Settings []domain.BuildSetting
	// Clean requests a clean build.
	Clean bool
	// StackEvolution enables library evolution for every target in the
	// dependency graph (legacy policy only; the current policy always does).
	StackEvolution bool
}

// DefaultFrameworkSubpath returns the archive-relative framework location a
// policy uses when config does not override it.
func DefaultFrameworkSubpath(legacy bool) string {
	if legacy {
		return constants.LegacyFrameworkSubpath
	}
	return constants.CurrentFrameworkSubpath
}

// NewPolicy returns the legacy or current policy.
func NewPolicy(opts Options, conv layout.Convention, legacy bool) (Policy, error) {
	if legacy {
		return NewLegacyPolicy(opts, conv)
	}
	return NewCurrentPolicy(opts, conv), nil
}

// CurrentPolicy archives package schemes directly with -workspace.
type CurrentPolicy struct {
	opts   Options
	layout layout.Convention
}

// NewCurrentPolicy creates a CurrentPolicy.
func NewCurrentPolicy(opts Options, conv layout.Convention) *CurrentPolicy {
	return &CurrentPolicy{opts: opts, layout: conv}
}

// Name implements Policy.
func (p *CurrentPolicy) Name() string { return "current" }

// ArchiveCommand implements Policy.
func (p *CurrentPolicy) ArchiveCommand(target string, v platform.Variant) []string {
	cmd := append(p.opts.Toolchain.XcodebuildCommand(),
		"-workspace", p.opts.Workspace,
	)
	cmd = append(cmd, commonArgs(p.opts, p.layout, target, v)...)
	cmd = append(cmd, setting(constants.SettingBuildLibraryForDistribution, "YES"))
	cmd = appendSettings(cmd, v.BuildSettings)

	if p.opts.Xcconfig != "" {
		cmd = append(cmd, "-xcconfig", p.opts.Xcconfig)
	}

	cmd = appendSettings(cmd, p.opts.Settings)
	cmd = append(cmd, "-scheme", target)

	if p.opts.Clean {
		cmd = append(cmd, "clean")
	}
	return append(cmd, "archive")
}

// FrameworkPath implements Policy.
func (p *CurrentPolicy) FrameworkPath(target string, v platform.Variant) string {
	return p.layout.FrameworkPath(target, v)
}

// CleanCommand implements Policy. The current policy folds clean into each
// archive invocation.
func (p *CurrentPolicy) CleanCommand() []string { return nil }

// LegacyPolicy archives schemes of a generated Xcode project with -project.
type LegacyPolicy struct {
	opts   Options
	layout layout.Convention
}

// NewLegacyPolicy creates a LegacyPolicy. It requires Options.Project.
func NewLegacyPolicy(opts Options, conv layout.Convention) (*LegacyPolicy, error) {
	if opts.Project == "" {
		return nil, errors.ErrLegacyRequiresProject
	}
	return &LegacyPolicy{opts: opts, layout: conv}, nil
}

// Name implements Policy.
func (p *LegacyPolicy) Name() string { return "legacy" }

// ArchiveCommand implements Policy.
func (p *LegacyPolicy) ArchiveCommand(target string, v platform.Variant) []string {
	cmd := append(p.opts.Toolchain.XcodebuildCommand(),
		"-project", p.opts.Project,
	)
	cmd = append(cmd, commonArgs(p.opts, p.layout, target, v)...)
	cmd = appendSettings(cmd, v.BuildSettings)

	switch {
	case p.opts.StackEvolution:
		cmd = append(cmd, setting(constants.SettingBuildLibraryForDistribution, "YES"))
		if p.opts.Xcconfig != "" {
			cmd = append(cmd, "-xcconfig", p.opts.Xcconfig)
		}
	case p.opts.DistributionXcconfig != "":
		cmd = append(cmd, "-xcconfig", p.opts.DistributionXcconfig)
	case p.opts.Xcconfig != "":
		cmd = append(cmd, "-xcconfig", p.opts.Xcconfig)
	}

	cmd = appendSettings(cmd, p.opts.Settings)
	cmd = append(cmd, "-scheme", target)
	return append(cmd, "archive")
}

// FrameworkPath implements Policy.
func (p *LegacyPolicy) FrameworkPath(target string, v platform.Variant) string {
	return p.layout.FrameworkPath(target, v)
}

// CleanCommand implements Policy.
func (p *LegacyPolicy) CleanCommand() []string {
	if !p.opts.Clean {
		return nil
	}
	return append(p.opts.Toolchain.XcodebuildCommand(),
		"-project", p.opts.Project,
		setting(constants.SettingBuildDir, p.opts.BuildDir),
		"clean",
	)
}

func commonArgs(opts Options, conv layout.Convention, target string, v platform.Variant) []string {
	return []string{
		"-configuration", opts.Configuration.XcodeName(),
		"-archivePath", conv.ArchivePath(target, v),
		"-destination", v.Destination,
		setting(constants.SettingBuildDir, opts.BuildDir),
		setting(constants.SettingSkipInstall, "NO"),
	}
}

func appendSettings(cmd []string, settings []domain.BuildSetting) []string {
	for _, s := range settings {
		cmd = append(cmd, s.String())
	}
	return cmd
}

func setting(name, value string) string {
	return fmt.Sprintf("%s=%s", name, value)
}

// Ensure both policies implement Policy.
var (
	_ Policy = (*CurrentPolicy)(nil)
	_ Policy = (*LegacyPolicy)(nil)
)
