package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/xcbundle/internal/config"
	"github.com/mrz1836/xcbundle/internal/domain"
	"github.com/mrz1836/xcbundle/internal/errors"
	"github.com/mrz1836/xcbundle/internal/manifest"
	"github.com/mrz1836/xcbundle/internal/pipeline"
	"github.com/mrz1836/xcbundle/internal/platform"
	"github.com/mrz1836/xcbundle/internal/signal"
	"github.com/mrz1836/xcbundle/internal/tui"
)

// packageFlags locate the package and are shared by commands that load it.
type packageFlags struct {
	packagePath string
	buildPath   string
}

func (f *packageFlags) add(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.packagePath, "package-path", "p", "", "Swift package directory (default \".\")")
	cmd.Flags().StringVar(&f.buildPath, "build-path", "", "SwiftPM build directory (default \".build\")")
}

// buildFlags holds flags for the build command. Bools are applied only when
// the flag was given, so config files can set them.
type buildFlags struct {
	packageFlags

	project          string
	configuration    string
	platforms        []string
	settings         []string
	xcconfig         string
	outputDir        string
	zipVersion       string
	frameworkSubpath string
	timeout          time.Duration

	clean          bool
	legacy         bool
	stackEvolution bool
	debugSymbols   bool
	zip            bool
	githubAction   bool
}

func newBuildCmd(gf *GlobalFlags, env environment) *cobra.Command {
	f := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "build [products...]",
		Short: "Build xcframeworks for library products",
		Long: `Build an .xcframework for each named product or target, or for every
library product of the package when none are named.

Each product is archived for every supported platform variant, then the
variants are merged with their debug symbols into one bundle in the output
directory.

Examples:
  xcbundle build                               # every library product, every platform
  xcbundle build Networking --platform ios     # one product, iOS device and simulator
  xcbundle build --zip --zip-version 1.2.0     # zip bundles with checksums
  xcbundle build --xc-setting IPHONEOS_DEPLOYMENT_TARGET=13.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, gf, f, env, args)
		},
	}

	f.packageFlags.add(cmd)
	flags := cmd.Flags()
	flags.StringVar(&f.project, "project", "", "Xcode project for --legacy builds")
	flags.StringVarP(&f.configuration, "configuration", "c", "", "build configuration (debug|release)")
	flags.StringSliceVar(&f.platforms, "platform", nil, "platforms to build ("+strings.Join(platform.Names(), "|")+"); repeatable")
	flags.StringArrayVar(&f.settings, "xc-setting", nil, "xcodebuild setting override NAME=VALUE; repeatable")
	flags.StringVar(&f.xcconfig, "xcconfig", "", "xcconfig file with build setting overrides")
	flags.StringVar(&f.outputDir, "output-dir", "", "directory for .xcframework bundles (default \".\")")
	flags.StringVar(&f.zipVersion, "zip-version", "", "version suffix for zips of products without a resolved version")
	flags.StringVar(&f.frameworkSubpath, "framework-subpath", "", "archive-relative directory holding the built framework")
	flags.DurationVar(&f.timeout, "timeout", 0, "abort the build after this long (0 = no limit)")
	flags.BoolVar(&f.clean, "clean", true, "clean the build directory before building")
	flags.BoolVar(&f.legacy, "legacy", false, "build through an Xcode project instead of the package")
	flags.BoolVar(&f.stackEvolution, "stack-evolution", false, "enable library evolution for every dependency (legacy only)")
	flags.BoolVar(&f.debugSymbols, "debug-symbols", true, "embed dSYMs and symbol maps in bundles")
	flags.BoolVar(&f.zip, "zip", false, "zip each bundle and write a sha256 checksum")
	flags.BoolVar(&f.githubAction, "github-action", false, "write the list of zips and checksums for CI upload")

	return cmd
}

func runBuild(cmd *cobra.Command, gf *GlobalFlags, f *buildFlags, env environment, args []string) error {
	ctx := cmd.Context()
	out := tui.NewOutput(cmd.OutOrStdout(), gf.Output)

	cfg, err := loadBuildConfig(ctx, cmd, f)
	if err != nil {
		return err
	}

	if cfg.Build.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Build.Timeout)
		defer cancel()
	}

	interrupts := signal.NewHandler(ctx)
	defer interrupts.Stop()
	ctx = interrupts.Context()

	runner := env.newRunner(cfg.Toolchain.Xcrun, cmd.ErrOrStderr())

	pkg, err := manifest.NewLoader(runner, cfg.Toolchain).Load(ctx, cfg.PackageRoot(), cfg.BuildPath())
	if err != nil {
		return err
	}

	targets, err := pkg.ValidateProducts(args)
	if err != nil {
		return err
	}

	platforms, err := supportedPlatforms(cfg, pkg)
	if err != nil {
		return err
	}

	opts, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}

	p, err := pipeline.New(runner, opts)
	if err != nil {
		return err
	}

	req := pipeline.Request{
		Targets:    targets,
		Platforms:  platforms,
		Zip:        cfg.Output.Zip,
		ZipVersion: cfg.Output.ZipVersion,
		Graph:      pkg.Graph,
		State:      pkg.State,
	}
	if cfg.Output.Zip && cfg.Output.GitHubAction {
		req.ArtifactList = cfg.ArtifactListPath()
	}

	report, err := p.Run(ctx, req)
	if err != nil {
		if interrupts.WasInterrupted() {
			out.Warning("interrupted; partially written output was left in place")
		}
		return err
	}

	return renderReport(out, gf.Output, report)
}

// loadBuildConfig layers build flags over the loaded configuration.
func loadBuildConfig(ctx context.Context, cmd *cobra.Command, f *buildFlags) (*config.Config, error) {
	overrides := &config.Config{
		Package: config.PackageConfig{
			BuildPath: f.buildPath,
			Project:   f.project,
		},
		Build: config.BuildConfig{
			Configuration:    f.configuration,
			Platforms:        f.platforms,
			Settings:         f.settings,
			Xcconfig:         f.xcconfig,
			FrameworkSubpath: f.frameworkSubpath,
			Timeout:          f.timeout,
		},
		Output: config.OutputConfig{
			Path:       f.outputDir,
			ZipVersion: f.zipVersion,
		},
	}

	cfg, err := config.LoadWithOverrides(ctx, f.packagePath, overrides)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("clean") {
		cfg.Build.Clean = f.clean
	}
	if flags.Changed("legacy") {
		cfg.Build.Legacy = f.legacy
	}
	if flags.Changed("stack-evolution") {
		cfg.Build.StackEvolution = f.stackEvolution
	}
	if flags.Changed("debug-symbols") {
		cfg.Symbols.Enabled = f.debugSymbols
	}
	if flags.Changed("zip") {
		cfg.Output.Zip = f.zip
	}
	if flags.Changed("github-action") {
		cfg.Output.GitHubAction = f.githubAction
	}

	if err := config.Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// supportedPlatforms narrows the requested platforms to those the package declares.
func supportedPlatforms(cfg *config.Config, pkg *manifest.Package) ([]platform.Platform, error) {
	requested, err := platform.ParseAll(cfg.Build.Platforms)
	if err != nil {
		return nil, err
	}

	declared := pkg.Manifest.DeclaredPlatforms()
	platforms := platform.Supported(requested, declared)
	if len(platforms) == 0 {
		return nil, fmt.Errorf("%w: requested %s, package declares %s",
			errors.ErrNoPlatforms, strings.Join(cfg.Build.Platforms, ", "), strings.Join(declared, ", "))
	}
	return platforms, nil
}

func pipelineOptions(cfg *config.Config) (pipeline.Options, error) {
	configuration, err := domain.ParseConfiguration(cfg.Build.Configuration)
	if err != nil {
		return pipeline.Options{}, err
	}
	settings, err := domain.ParseBuildSettings(cfg.Build.Settings)
	if err != nil {
		return pipeline.Options{}, err
	}

	return pipeline.Options{
		Toolchain:        cfg.Toolchain,
		Configuration:    configuration,
		PackageRoot:      cfg.PackageRoot(),
		WorkDir:          cfg.WorkDir(),
		OutputDir:        cfg.OutputPath(),
		Legacy:           cfg.Build.Legacy,
		Project:          cfg.Package.Project,
		Xcconfig:         cfg.Build.Xcconfig,
		Settings:         settings,
		Clean:            cfg.Build.Clean,
		StackEvolution:   cfg.Build.StackEvolution,
		DebugSymbols:     cfg.Symbols.Enabled,
		FrameworkSubpath: cfg.Build.FrameworkSubpath,
	}, nil
}

func renderReport(out tui.Output, format string, report *pipeline.Report) error {
	if format == OutputJSON {
		return out.JSON(report)
	}

	if len(report.Artifacts) > 0 {
		rows := make([][]string, 0, len(report.Artifacts))
		for _, a := range report.Artifacts {
			rows = append(rows, []string{a.Target, a.ZipPath, a.Checksum})
		}
		out.Table([]string{"TARGET", "ZIP", "SHA256"}, rows)
	} else {
		rows := make([][]string, 0, len(report.Bundles))
		for _, b := range report.Bundles {
			rows = append(rows, []string{b.Target, b.Path})
		}
		out.Table([]string{"TARGET", "BUNDLE"}, rows)
	}

	if report.ArtifactList != "" {
		out.Info("artifact list: " + report.ArtifactList)
	}
	out.Success(fmt.Sprintf("built %d bundle(s) for %s in %s",
		len(report.Bundles), strings.Join(report.Variants, ", "), report.Duration.Round(time.Second)))
	return nil
}

// logger returns the command's context logger.
func logger(cmd *cobra.Command) *zerolog.Logger {
	return zerolog.Ctx(cmd.Context())
}
