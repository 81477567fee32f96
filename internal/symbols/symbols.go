// Package symbols finds the debug-symbol files that belong to a built
// framework: its dSYM bundle and the .bcsymbolmap side file of every binary
// slice that has one.
package symbols

import (
	"context"
	"os"
	"regexp"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/xcbundle/internal/domain"
	"github.com/mrz1836/xcbundle/internal/errors"
	"github.com/mrz1836/xcbundle/internal/layout"
	"github.com/mrz1836/xcbundle/internal/process"
)

// uuidLine matches dwarfdump --uuid output, one slice per line:
//
//	UUID: 6B1F2A0E-3C0B-3E55-9C1A-0D2E4F6A8B9C (arm64) /path/to/binary
//
// Only the dashed 8-4-4-4-12 form is accepted, since symbol map files are
// named after it.
var uuidLine = regexp.MustCompile(`(?m)^UUID: ([0-9A-Fa-f]{8}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{12})(?:\s|$)`)

// ParseSliceIdentifiers extracts slice UUIDs from dwarfdump --uuid output, in
// the order they appear. Tokens that are not valid UUIDs are skipped, and
// output with no matching lines yields nil.
func ParseSliceIdentifiers(output string) []uuid.UUID {
	var ids []uuid.UUID
	for _, m := range uuidLine.FindAllStringSubmatch(output, -1) {
		id, err := uuid.Parse(m[1])
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// Resolver locates debug symbols for a (target, debug directory) pair.
type Resolver struct {
	runner    process.Runner
	toolchain domain.Toolchain
	layout    layout.Convention
}

// NewResolver creates a Resolver.
func NewResolver(runner process.Runner, toolchain domain.Toolchain, conv layout.Convention) *Resolver {
	return &Resolver{
		runner:    runner,
		toolchain: toolchain,
		layout:    conv,
	}
}

// Resolve returns the debug-symbol files for target that exist on disk: the
// dSYM bundle first, then one .bcsymbolmap per slice UUID in discovery order.
//
// A missing dSYM or DWARF binary is not an error; the variant simply has
// fewer symbols. A failing dwarfdump is.
func (r *Resolver) Resolve(ctx context.Context, target, debugDir string) ([]string, error) {
	log := zerolog.Ctx(ctx)

	dsym := r.layout.SymbolBundlePath(target, debugDir)
	if !exists(dsym) {
		log.Debug().Str("target", target).Str("path", dsym).Msg("no dSYM bundle")
		return nil, nil
	}
	files := []string{dsym}

	dwarf := r.layout.DebugBinaryPath(target, dsym)
	if !exists(dwarf) {
		log.Debug().Str("target", target).Str("path", dwarf).Msg("no DWARF binary in dSYM")
		return files, nil
	}

	ids, err := r.SliceIdentifiers(ctx, dwarf)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		symbolMap := r.layout.SymbolMapPath(dsym, id)
		if exists(symbolMap) {
			files = append(files, symbolMap)
		}
	}

	log.Debug().
		Str("target", target).
		Int("slices", len(ids)).
		Int("files", len(files)).
		Msg("resolved debug symbols")

	return files, nil
}

// SliceIdentifiers runs dwarfdump --uuid on binary and parses its output.
func (r *Resolver) SliceIdentifiers(ctx context.Context, binary string) ([]uuid.UUID, error) {
	argv := append(r.toolchain.DwarfdumpCommand(), "--uuid", binary)
	out, err := r.runner.Run(ctx, argv, true)
	if err != nil {
		return nil, errors.Wrapf(err, "inspect %s", binary)
	}
	return ParseSliceIdentifiers(out.String()), nil
}

// exists is an existence probe; any stat error counts as absent.
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
