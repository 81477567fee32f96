// Package manifest describes a Swift package by asking SwiftPM: the root
// manifest (dump-package), the resolved dependency tree
// (show-dependencies), and the workspace state SwiftPM keeps in the build
// directory. It produces the graph and version lookup the packaging stage
// uses, and validates which products can be built.
package manifest

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/mrz1836/xcbundle/internal/version"
)

// ProductType is a product kind: library, executable, plugin, ...
type ProductType string

// Known product kinds.
const (
	ProductLibrary    ProductType = "library"
	ProductExecutable ProductType = "executable"
)

// UnmarshalJSON decodes dump-package's single-key object form, e.g.
// {"library": ["automatic"]} or {"executable": null}.
func (t *ProductType) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*t = ProductType(plain)
		return nil
	}

	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(data, &keyed); err != nil {
		return err
	}
	*t = ""
	if len(keyed) != 1 {
		return nil
	}
	for k := range keyed {
		*t = ProductType(k)
	}
	return nil
}

// Product is a product declared in the manifest.
type Product struct {
	Name    string      `json:"name"`
	Type    ProductType `json:"type"`
	Targets []string    `json:"targets"`
}

// Target is a target declared in the manifest.
type Target struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Buildable reports whether xcodebuild can archive the target as a framework.
func (t Target) Buildable() bool {
	switch t.Type {
	case "", "regular":
		return true
	default:
		return false
	}
}

// PlatformRequirement is a minimum deployment target from the manifest.
type PlatformRequirement struct {
	PlatformName string `json:"platformName"`
	Version      string `json:"version"`
}

// Manifest is the subset of dump-package output xcbundle uses.
type Manifest struct {
	Name      string                `json:"name"`
	Products  []Product             `json:"products"`
	Targets   []Target              `json:"targets"`
	Platforms []PlatformRequirement `json:"platforms"`
}

// LibraryProducts returns the names of library products in manifest order.
func (m Manifest) LibraryProducts() []string {
	var names []string
	for _, p := range m.Products {
		if p.Type == ProductLibrary {
			names = append(names, p.Name)
		}
	}
	return names
}

// BuildableTargets returns the names of targets that build as frameworks.
func (m Manifest) BuildableTargets() []string {
	var names []string
	for _, t := range m.Targets {
		if t.Buildable() {
			names = append(names, t.Name)
		}
	}
	return names
}

// DeclaredPlatforms returns the platform names the manifest declares, in order.
func (m Manifest) DeclaredPlatforms() []string {
	names := make([]string, 0, len(m.Platforms))
	for _, p := range m.Platforms {
		names = append(names, strings.ToLower(p.PlatformName))
	}
	return names
}

// Package is a loaded root package with its dependency graph and state.
type Package struct {
	// Root is the absolute package directory.
	Root string `json:"root"`
	// Manifest is the root manifest.
	Manifest Manifest `json:"manifest"`
	// Graph is the root and every resolved dependency with its targets.
	Graph version.Graph `json:"graph"`
	// State is the workspace dependency state.
	State version.WorkspaceState `json:"state"`
}

// Name returns the root package name.
func (p *Package) Name() string {
	return p.Manifest.Name
}

// LibraryProducts returns the root package's library products.
func (p *Package) LibraryProducts() []string {
	return p.Manifest.LibraryProducts()
}

// BuildableNames returns every name that can be requested: root library
// products plus every buildable target in the graph.
func (p *Package) BuildableNames() []string {
	names := slices.Clone(p.LibraryProducts())
	for _, target := range p.Manifest.BuildableTargets() {
		if !slices.Contains(names, target) {
			names = append(names, target)
		}
	}
	for _, pkg := range p.Graph.Packages {
		for _, target := range pkg.Targets {
			if !slices.Contains(names, target) {
				names = append(names, target)
			}
		}
	}
	return names
}

// AdditionalTargets returns buildable names that are not root library
// products, sorted.
func (p *Package) AdditionalTargets() []string {
	products := p.LibraryProducts()
	var extra []string
	for _, n := range p.BuildableNames() {
		if !slices.Contains(products, n) {
			extra = append(extra, n)
		}
	}
	slices.Sort(extra)
	return extra
}
