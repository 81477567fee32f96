// Package pipeline runs the whole bundle build: archive every (target,
// variant), merge each target's variants into an .xcframework, and
// optionally zip and checksum each bundle.
//
// Every step waits for the previous one. The first error stops the run and
// whatever was already written stays on disk.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/xcbundle/internal/build"
	"github.com/mrz1836/xcbundle/internal/clock"
	"github.com/mrz1836/xcbundle/internal/constants"
	"github.com/mrz1836/xcbundle/internal/domain"
	"github.com/mrz1836/xcbundle/internal/errors"
	"github.com/mrz1836/xcbundle/internal/flock"
	"github.com/mrz1836/xcbundle/internal/layout"
	"github.com/mrz1836/xcbundle/internal/merge"
	"github.com/mrz1836/xcbundle/internal/packaging"
	"github.com/mrz1836/xcbundle/internal/platform"
	"github.com/mrz1836/xcbundle/internal/process"
	"github.com/mrz1836/xcbundle/internal/symbols"
	"github.com/mrz1836/xcbundle/internal/version"
)

// Builder archives targets for every variant.
type Builder interface {
	Clean(ctx context.Context) error
	BuildAll(ctx context.Context, targets []string, variants []platform.Variant) ([]build.TargetBuilds, error)
}

// Merger merges one target's build results into a bundle.
type Merger interface {
	Merge(ctx context.Context, target string, results []domain.BuildResult) (domain.MergedBundle, error)
}

// Packager zips bundles and removes them afterwards.
type Packager interface {
	Package(ctx context.Context, bundle domain.MergedBundle, suffix string) (domain.PackagedArtifact, error)
	Clean(bundle string) error
}

// Options configure a pipeline assembled by New.
type Options struct {
	Toolchain     domain.Toolchain
	Configuration domain.Configuration
	// PackageRoot is the Swift package directory.
	PackageRoot string
	// WorkDir is <build-path>/xcbundle. It holds the lock, the generated
	// xcconfig, and BuildDir.
	WorkDir string
	// OutputDir receives the .xcframework bundles and zips.
	OutputDir string
	// Legacy selects the -project policy; Project must then be set.
	Legacy  bool
	Project string
	// Xcconfig is a user xcconfig, absolute or relative to PackageRoot.
	Xcconfig       string
	Settings       []domain.BuildSetting
	Clean          bool
	StackEvolution bool
	DebugSymbols   bool
	// FrameworkSubpath overrides where archives keep frameworks.
	FrameworkSubpath string
}

// BuildDir returns the BUILD_DIR handed to xcodebuild.
func (o Options) BuildDir() string {
	return filepath.Join(o.WorkDir, "build")
}

// Request is one run's inputs.
type Request struct {
	// Targets are validated product or target names, in build order.
	Targets []string
	// Platforms are the supported platforms to build, in build order.
	Platforms []platform.Platform
	// Zip packages each bundle after merging.
	Zip bool
	// ZipVersion is the fallback version suffix when a target's package has
	// no resolved version.
	ZipVersion string
	// Graph and State resolve version suffixes.
	Graph version.Graph
	State version.WorkspaceState
	// ArtifactList, when set and Zip is true, receives the list of produced
	// zip and checksum paths.
	ArtifactList string
}

// Report describes a finished run.
type Report struct {
	Targets      []string                  `json:"targets"`
	Variants     []string                  `json:"variants"`
	Bundles      []domain.MergedBundle     `json:"bundles"`
	Artifacts    []domain.PackagedArtifact `json:"artifacts,omitempty"`
	ArtifactList string                    `json:"artifact_list,omitempty"`
	Duration     time.Duration             `json:"duration"`
}

// Pipeline wires the build, merge, and packaging stages together.
type Pipeline struct {
	builder   Builder
	merger    Merger
	packager  Packager
	lockPath  string
	xcconfig  string
	overrides string
	clock     clock.Clock
}

// New assembles a pipeline that runs its external commands through runner.
func New(runner process.Runner, opts Options) (*Pipeline, error) {
	buildDir := opts.BuildDir()
	subpath := opts.FrameworkSubpath
	if subpath == "" {
		subpath = build.DefaultFrameworkSubpath(opts.Legacy)
	}
	conv := layout.NewXcode(buildDir, opts.Configuration, subpath)

	xcconfig := build.ResolveXcconfig(opts.PackageRoot, opts.Xcconfig)
	distribution := filepath.Join(opts.WorkDir, constants.DistributionXcconfigName)
	policy, err := build.NewPolicy(build.Options{
		Toolchain:            opts.Toolchain,
		Configuration:        opts.Configuration,
		BuildDir:             buildDir,
		Workspace:            opts.PackageRoot,
		Project:              opts.Project,
		Xcconfig:             xcconfig,
		DistributionXcconfig: distribution,
		Settings:             opts.Settings,
		Clean:                opts.Clean,
		StackEvolution:       opts.StackEvolution,
	}, conv, opts.Legacy)
	if err != nil {
		return nil, err
	}

	var resolver merge.SymbolResolver
	if opts.DebugSymbols {
		resolver = symbols.NewResolver(runner, opts.Toolchain, conv)
	}

	return &Pipeline{
		builder:   build.NewOrchestrator(runner, policy, conv),
		merger:    merge.NewStage(runner, opts.Toolchain, conv, resolver, opts.OutputDir),
		packager:  packaging.NewZipper(runner, opts.Toolchain),
		lockPath:  filepath.Join(opts.WorkDir, constants.LockFileName),
		xcconfig:  distribution,
		overrides: xcconfig,
		clock:     clock.RealClock{},
	}, nil
}

// NewWithStages assembles a pipeline from explicit stages. Empty paths skip
// the build-directory lock and the distribution xcconfig.
func NewWithStages(builder Builder, merger Merger, packager Packager, lockPath, xcconfig string) *Pipeline {
	return &Pipeline{
		builder:  builder,
		merger:   merger,
		packager: packager,
		lockPath: lockPath,
		xcconfig: xcconfig,
		clock:    clock.RealClock{},
	}
}

// WithClock replaces the clock used to time runs.
func (p *Pipeline) WithClock(c clock.Clock) *Pipeline {
	p.clock = c
	return p
}

// Run executes req. On error the report is nil.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Report, error) {
	start := p.clock.Now()
	log := zerolog.Ctx(ctx)

	if len(req.Targets) == 0 {
		return nil, errors.ErrNoProducts
	}
	variants := platform.VariantsFor(req.Platforms)
	if len(variants) == 0 {
		return nil, errors.ErrNoPlatforms
	}

	if p.lockPath != "" {
		lock, err := flock.Acquire(p.lockPath)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				log.Warn().Err(err).Msg("failed to release build directory lock")
			}
		}()
	}

	if p.xcconfig != "" {
		if err := build.WriteDistributionXcconfig(p.xcconfig, p.overrides); err != nil {
			return nil, err
		}
	}

	report := &Report{Targets: req.Targets}
	for _, v := range variants {
		report.Variants = append(report.Variants, v.Name())
	}

	log.Info().
		Strs("targets", req.Targets).
		Strs("variants", report.Variants).
		Msg("starting build")

	if err := p.builder.Clean(ctx); err != nil {
		return nil, err
	}

	grouped, err := p.builder.BuildAll(ctx, req.Targets, variants)
	if err != nil {
		return nil, err
	}

	for _, g := range grouped {
		bundle, err := p.merger.Merge(ctx, g.Target, g.Results)
		if err != nil {
			return nil, err
		}
		report.Bundles = append(report.Bundles, bundle)
	}

	if req.Zip {
		if err := p.pack(ctx, req, report); err != nil {
			return nil, err
		}
	}

	report.Duration = p.clock.Now().Sub(start)
	log.Info().
		Int("bundles", len(report.Bundles)).
		Int("artifacts", len(report.Artifacts)).
		Dur("duration", report.Duration).
		Msg("build complete")

	return report, nil
}

func (p *Pipeline) pack(ctx context.Context, req Request, report *Report) error {
	for _, bundle := range report.Bundles {
		suffix := version.SuffixFor(bundle.Target, req.Graph, req.State, req.ZipVersion)

		artifact, err := p.packager.Package(ctx, bundle, suffix)
		if err != nil {
			return err
		}
		if err := p.packager.Clean(bundle.Path); err != nil {
			return err
		}
		report.Artifacts = append(report.Artifacts, artifact)
	}

	if req.ArtifactList == "" {
		return nil
	}
	if err := packaging.WriteArtifactList(req.ArtifactList, report.Artifacts); err != nil {
		return fmt.Errorf("artifact list: %w", err)
	}
	report.ArtifactList = req.ArtifactList
	return nil
}
