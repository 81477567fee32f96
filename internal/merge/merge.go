// Package merge combines the per-platform frameworks of a target into one
// .xcframework with xcodebuild -create-xcframework.
package merge

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/mrz1836/xcbundle/internal/domain"
	"github.com/mrz1836/xcbundle/internal/errors"
	"github.com/mrz1836/xcbundle/internal/layout"
	"github.com/mrz1836/xcbundle/internal/process"
)

// SymbolResolver finds the debug-symbol files for a built variant.
type SymbolResolver interface {
	Resolve(ctx context.Context, target, debugDir string) ([]string, error)
}

// Stage merges build results into bundles.
type Stage struct {
	runner    process.Runner
	toolchain domain.Toolchain
	layout    layout.Convention
	symbols   SymbolResolver
	outputDir string
}

// NewStage creates a Stage writing bundles to outputDir. A nil symbols
// resolver leaves debug symbols out of the bundle.
func NewStage(runner process.Runner, toolchain domain.Toolchain, conv layout.Convention, symbols SymbolResolver, outputDir string) *Stage {
	return &Stage{
		runner:    runner,
		toolchain: toolchain,
		layout:    conv,
		symbols:   symbols,
		outputDir: outputDir,
	}
}

// Merge builds <output>/<product>.xcframework from results and returns it.
// Any bundle already at that path is removed first, so repeated runs start
// from a clean slate.
func (s *Stage) Merge(ctx context.Context, target string, results []domain.BuildResult) (domain.MergedBundle, error) {
	bundle := s.layout.BundlePath(s.outputDir, target)

	// Best effort: the path usually does not exist.
	_ = os.RemoveAll(bundle)

	argv, err := s.Command(ctx, bundle, results)
	if err != nil {
		return domain.MergedBundle{}, err
	}

	zerolog.Ctx(ctx).Info().
		Str("target", target).
		Int("variants", len(results)).
		Str("output", bundle).
		Msg("creating xcframework")

	if _, err := s.runner.Run(ctx, argv, false); err != nil {
		return domain.MergedBundle{}, errors.Wrapf(err, "merge %s", target)
	}
	return domain.MergedBundle{Target: target, Path: bundle}, nil
}

// Command returns the -create-xcframework argv for results: one -framework
// per result, each followed by its existing debug-symbol files when symbols
// are enabled, then -output bundle.
func (s *Stage) Command(ctx context.Context, bundle string, results []domain.BuildResult) ([]string, error) {
	argv := append(s.toolchain.XcodebuildCommand(), "-create-xcframework")

	for _, r := range results {
		argv = append(argv, "-framework", r.FrameworkPath)
		if s.symbols == nil {
			continue
		}

		files, err := s.symbols.Resolve(ctx, r.Target, r.DebugSymbolsPath)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve debug symbols for %s", r.Target)
		}
		for _, f := range files {
			argv = append(argv, "-debug-symbols", f)
		}
	}

	return append(argv, "-output", bundle), nil
}
