package manifest

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/xcbundle/internal/constants"
	"github.com/mrz1836/xcbundle/internal/domain"
	"github.com/mrz1836/xcbundle/internal/errors"
	"github.com/mrz1836/xcbundle/internal/process"
	"github.com/mrz1836/xcbundle/internal/version"
)

// Loader loads package descriptions through the swift CLI.
type Loader struct {
	runner    process.Runner
	toolchain domain.Toolchain
}

// NewLoader creates a Loader.
func NewLoader(runner process.Runner, toolchain domain.Toolchain) *Loader {
	return &Loader{runner: runner, toolchain: toolchain}
}

// dependencyNode is one node of `swift package show-dependencies --format json`.
type dependencyNode struct {
	Identity     string           `json:"identity"`
	Name         string           `json:"name"`
	URL          string           `json:"url"`
	Version      string           `json:"version"`
	Path         string           `json:"path"`
	Dependencies []dependencyNode `json:"dependencies"`
}

// Load describes the package at root. buildPath is SwiftPM's scratch
// directory, where workspace-state.json lives.
func (l *Loader) Load(ctx context.Context, root, buildPath string) (*Package, error) {
	log := zerolog.Ctx(ctx)

	m, err := l.DumpPackage(ctx, root)
	if err != nil {
		return nil, err
	}

	tree, err := l.dependencies(ctx, root, buildPath)
	if err != nil {
		return nil, err
	}

	graph := version.Graph{Packages: []version.Package{{
		Identity: strings.ToLower(tree.Identity),
		Name:     m.Name,
		Targets:  m.BuildableTargets(),
		Root:     true,
	}}}

	seen := map[string]bool{graph.Packages[0].Identity: true}
	for _, dep := range flatten(tree.Dependencies) {
		identity := strings.ToLower(dep.Identity)
		if seen[identity] {
			continue
		}
		seen[identity] = true

		depManifest, err := l.DumpPackage(ctx, dep.Path)
		if err != nil {
			return nil, err
		}
		graph.Packages = append(graph.Packages, version.Package{
			Identity: identity,
			Name:     depManifest.Name,
			Targets:  depManifest.BuildableTargets(),
		})
	}

	state, err := LoadWorkspaceState(filepath.Join(buildPath, constants.WorkspaceStateFileName))
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("package", m.Name).
		Int("dependencies", len(graph.Packages)-1).
		Msg("loaded package")

	return &Package{
		Root:     root,
		Manifest: *m,
		Graph:    graph,
		State:    state,
	}, nil
}

// DumpPackage runs `swift package dump-package` for the package at dir.
func (l *Loader) DumpPackage(ctx context.Context, dir string) (*Manifest, error) {
	argv := []string{l.toolchain.Swift, "package", "--package-path", dir, "dump-package"}
	out, err := l.runner.Run(ctx, argv, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errors.ErrManifestLoad, dir, err)
	}

	var m Manifest
	if err := json.Unmarshal(out.Stdout, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errors.ErrManifestLoad, dir, err)
	}
	return &m, nil
}

func (l *Loader) dependencies(ctx context.Context, root, buildPath string) (*dependencyNode, error) {
	argv := []string{
		l.toolchain.Swift, "package",
		"--package-path", root,
		"--scratch-path", buildPath,
		"show-dependencies", "--format", "json",
	}
	out, err := l.runner.Run(ctx, argv, true)
	if err != nil {
		return nil, fmt.Errorf("%w: dependencies: %w", errors.ErrManifestLoad, err)
	}

	var tree dependencyNode
	if err := json.Unmarshal(out.Stdout, &tree); err != nil {
		return nil, fmt.Errorf("%w: dependencies: %w", errors.ErrManifestLoad, err)
	}
	return &tree, nil
}

// flatten walks the dependency tree depth first, parents before children.
func flatten(nodes []dependencyNode) []dependencyNode {
	var out []dependencyNode
	for _, n := range nodes {
		out = append(out, n)
		out = append(out, flatten(n.Dependencies)...)
	}
	return out
}

// workspaceStateFile is the on-disk layout of workspace-state.json.
type workspaceStateFile struct {
	Version int `json:"version"`
	Object  struct {
		Dependencies []struct {
			PackageRef struct {
				Identity string `json:"identity"`
				Name     string `json:"name"`
			} `json:"packageRef"`
			State struct {
				Name          string `json:"name"`
				Version       string `json:"version"`
				CheckoutState *struct {
					Version  string `json:"version"`
					Revision string `json:"revision"`
					Branch   string `json:"branch"`
				} `json:"checkoutState"`
			} `json:"state"`
		} `json:"dependencies"`
	} `json:"object"`
}

// LoadWorkspaceState reads SwiftPM's workspace-state.json. A missing file
// means nothing has been resolved yet and yields an empty state.
func LoadWorkspaceState(path string) (version.WorkspaceState, error) {
	state := version.WorkspaceState{Dependencies: map[string]version.DependencyState{}}

	data, err := os.ReadFile(path) //nolint:gosec // path is inside the build directory
	if stderrors.Is(err, fs.ErrNotExist) {
		return state, nil
	}
	if err != nil {
		return state, errors.Wrap(err, "failed to read workspace state")
	}

	var file workspaceStateFile
	if err := json.Unmarshal(data, &file); err != nil {
		return state, fmt.Errorf("%w: %w", errors.ErrWorkspaceStateCorrupted, err)
	}

	for _, dep := range file.Object.Dependencies {
		identity := dep.PackageRef.Identity
		if identity == "" {
			identity = dep.PackageRef.Name
		}

		ds := version.DependencyState{Kind: version.StateKind(dep.State.Name)}
		switch ds.Kind {
		case version.StateSourceControlCheckout, version.StateCheckout:
			if dep.State.CheckoutState != nil {
				ds.Version = dep.State.CheckoutState.Version
			}
		case version.StateRegistryDownload, version.StateCustom:
			ds.Version = dep.State.Version
		case version.StateFileSystem, version.StateEdited:
		}
		state.Dependencies[strings.ToLower(identity)] = ds
	}
	return state, nil
}
