// Package version derives the version suffix attached to packaged bundles
// from the resolved dependency graph.
package version

import (
	"slices"
	"strings"
)

// Package is one package of the dependency graph.
type Package struct {
	// Identity is the lowercase SwiftPM package identity.
	Identity string `json:"identity"`
	// Name is the manifest name.
	Name string `json:"name"`
	// Targets are the target names the package declares.
	Targets []string `json:"targets"`
	// Root marks the package being built.
	Root bool `json:"root,omitempty"`
}

// Graph is the root package and every package it depends on.
type Graph struct {
	Packages []Package `json:"packages"`
}

// Owner returns the first package that declares target.
func (g Graph) Owner(target string) (Package, bool) {
	for _, p := range g.Packages {
		if slices.Contains(p.Targets, target) {
			return p, true
		}
	}
	return Package{}, false
}

// StateKind is how the workspace materialized a dependency.
type StateKind string

// Dependency state kinds as recorded in workspace-state.json.
const (
	StateSourceControlCheckout StateKind = "sourceControlCheckout"
	StateCheckout              StateKind = "checkout"
	StateRegistryDownload      StateKind = "registryDownload"
	StateCustom                StateKind = "custom"
	StateFileSystem            StateKind = "fileSystem"
	StateEdited                StateKind = "edited"
)

// DependencyState is the workspace record for one dependency.
type DependencyState struct {
	Kind StateKind `json:"kind"`
	// Version is the pinned version, empty when the dependency is pinned to a
	// branch or revision, or is local.
	Version string `json:"version,omitempty"`
}

// ResolvedVersion returns the pinned version, if the state has one.
func (s DependencyState) ResolvedVersion() (string, bool) {
	switch s.Kind {
	case StateSourceControlCheckout, StateCheckout, StateRegistryDownload, StateCustom:
		if s.Version != "" {
			return s.Version, true
		}
	case StateFileSystem, StateEdited:
	}
	return "", false
}

// WorkspaceState maps package identities to their dependency state.
type WorkspaceState struct {
	Dependencies map[string]DependencyState `json:"dependencies"`
}

// Lookup returns the state for a package identity. Identities compare
// case-insensitively.
func (w WorkspaceState) Lookup(identity string) (DependencyState, bool) {
	s, ok := w.Dependencies[strings.ToLower(identity)]
	return s, ok
}

// ResolvedVersion returns the version to attach to target's bundle.
//
//   - No package in graph declares target: nothing.
//   - The owner is pinned to a version in state: that version.
//   - Otherwise (root package, local, branch): fallback, if not empty.
func ResolvedVersion(target string, graph Graph, state WorkspaceState, fallback string) (string, bool) {
	owner, ok := graph.Owner(target)
	if !ok {
		return "", false
	}

	if !owner.Root {
		if dep, found := state.Lookup(owner.Identity); found {
			if v, pinned := dep.ResolvedVersion(); pinned {
				return v, true
			}
		}
	}

	if fallback == "" {
		return "", false
	}
	return fallback, true
}

// Suffix renders a resolved version as a file-name suffix: "-1.2.0", or ""
// when there is no version.
func Suffix(v string, ok bool) string {
	if !ok || v == "" {
		return ""
	}
	return "-" + v
}

// SuffixFor is ResolvedVersion followed by Suffix.
func SuffixFor(target string, graph Graph, state WorkspaceState, fallback string) string {
	return Suffix(ResolvedVersion(target, graph, state, fallback))
}
