package manifest

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mrz1836/xcbundle/internal/errors"
)

// ProductError lists requested names that cannot be built, along with what
// can be. It matches errors.ErrInvalidProducts.
type ProductError struct {
	Package  string
	Invalid  []string
	Products []string
	Targets  []string
}

// Error implements the error interface.
func (e *ProductError) Error() string {
	var b strings.Builder
	b.WriteString("Invalid product/target name(s):\n")
	writeIndented(&b, e.Invalid)
	fmt.Fprintf(&b, "\nAvailable %s products:\n", e.Package)
	writeIndented(&b, e.Products)
	b.WriteString("\nAdditional available targets:\n")
	writeIndented(&b, e.Targets)
	return strings.TrimRight(b.String(), "\n")
}

// Unwrap lets callers match ErrInvalidProducts.
func (e *ProductError) Unwrap() error {
	return errors.ErrInvalidProducts
}

func writeIndented(b *strings.Builder, names []string) {
	for _, n := range names {
		b.WriteString("    ")
		b.WriteString(n)
		b.WriteByte('\n')
	}
}

// ValidateProducts returns the names to build. With no requested names the
// root library products are used. Repeated names are dropped, keeping the
// first occurrence. It fails before anything is built when the list is empty
// or names something that is not buildable.
func (p *Package) ValidateProducts(requested []string) ([]string, error) {
	names := requested
	if len(names) == 0 {
		names = p.LibraryProducts()
	}
	names = dedupe(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: add library products to Package.swift or name products/targets on the command line", errors.ErrNoProducts)
	}

	valid := p.BuildableNames()
	var invalid []string
	for _, n := range names {
		if !slices.Contains(valid, n) {
			invalid = append(invalid, n)
		}
	}

	if len(invalid) > 0 {
		products := slices.Clone(p.LibraryProducts())
		slices.Sort(products)
		return nil, &ProductError{
			Package:  p.Name(),
			Invalid:  invalid,
			Products: products,
			Targets:  p.AdditionalTargets(),
		}
	}
	return names, nil
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
