package build

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mrz1836/xcbundle/internal/domain"
	"github.com/mrz1836/xcbundle/internal/errors"
	"github.com/mrz1836/xcbundle/internal/layout"
	"github.com/mrz1836/xcbundle/internal/platform"
	"github.com/mrz1836/xcbundle/internal/process"
)

// TargetBuilds is every per-variant build result for one target, in
// variant order.
type TargetBuilds struct {
	Target  string               `json:"target"`
	Results []domain.BuildResult `json:"results"`
}

// Orchestrator runs one archive build per (target, variant), strictly in
// sequence. The first failure aborts the run.
type Orchestrator struct {
	runner process.Runner
	policy Policy
	layout layout.Convention
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(runner process.Runner, policy Policy, conv layout.Convention) *Orchestrator {
	return &Orchestrator{
		runner: runner,
		policy: policy,
		layout: conv,
	}
}

// Clean runs the policy's clean command, if it has one.
func (o *Orchestrator) Clean(ctx context.Context) error {
	cmd := o.policy.CleanCommand()
	if cmd == nil {
		return nil
	}

	zerolog.Ctx(ctx).Info().Str("policy", o.policy.Name()).Msg("cleaning build directory")
	if _, err := o.runner.Run(ctx, cmd, false); err != nil {
		return errors.Wrap(err, "clean failed")
	}
	return nil
}

// Build archives every target for v and returns one result per target, in
// the order targets were given.
//
// Result paths are derived from naming conventions, not from xcodebuild
// output, so a result only says where the framework should be.
func (o *Orchestrator) Build(ctx context.Context, targets []string, v platform.Variant) ([]domain.BuildResult, error) {
	log := zerolog.Ctx(ctx)

	for _, target := range targets {
		log.Info().
			Str("target", target).
			Str("sdk", v.Name()).
			Str("policy", o.policy.Name()).
			Msg("archiving")

		if _, err := o.runner.Run(ctx, o.policy.ArchiveCommand(target, v), false); err != nil {
			return nil, errors.Wrapf(err, "archive %s for %s", target, v.Name())
		}
	}

	results := make([]domain.BuildResult, 0, len(targets))
	for _, target := range targets {
		results = append(results, domain.BuildResult{
			Target:           target,
			FrameworkPath:    o.policy.FrameworkPath(target, v),
			DebugSymbolsPath: o.layout.DebugDir(v),
		})
	}
	return results, nil
}

// BuildAll builds every variant in order and groups the results by target.
// All variants of the first platform are built for all targets before the
// next variant starts.
func (o *Orchestrator) BuildAll(ctx context.Context, targets []string, variants []platform.Variant) ([]TargetBuilds, error) {
	perVariant := make([][]domain.BuildResult, 0, len(variants))
	for _, v := range variants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results, err := o.Build(ctx, targets, v)
		if err != nil {
			return nil, err
		}
		perVariant = append(perVariant, results)
	}
	return Group(targets, perVariant), nil
}

// Group collects per-variant results by target. Targets appear in the order
// given and each target's results keep variant order. Targets with no
// results are omitted.
func Group(targets []string, perVariant [][]domain.BuildResult) []TargetBuilds {
	byTarget := make(map[string][]domain.BuildResult, len(targets))
	for _, results := range perVariant {
		for _, r := range results {
			byTarget[r.Target] = append(byTarget[r.Target], r)
		}
	}

	grouped := make([]TargetBuilds, 0, len(targets))
	for _, t := range targets {
		results, ok := byTarget[t]
		if !ok {
			continue
		}
		grouped = append(grouped, TargetBuilds{Target: t, Results: results})
		delete(byTarget, t)
	}
	return grouped
}
