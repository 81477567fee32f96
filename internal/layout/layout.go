// Package layout encodes where xcodebuild puts things.
//
// xcodebuild never reports the paths of the frameworks, dSYMs, or symbol maps
// an archive produces. Everything here is inferred from naming conventions,
// so when Xcode changes one of them this package is the only thing that needs
// updating.
package layout

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mrz1836/xcbundle/internal/constants"
	"github.com/mrz1836/xcbundle/internal/domain"
	"github.com/mrz1836/xcbundle/internal/platform"
)

// ProductName sanitizes a target name the way the Swift toolchain derives a
// module name from it: every character outside [0-9a-zA-Z] becomes '_', and a
// leading digit becomes '_'.
//
//	MyLib-2 -> MyLib_2
//	2Fast   -> _Fast
//
// The result is only correct while Xcode keeps this rule. If it ever changes,
// framework and dSYM discovery will silently point at paths that do not exist.
func ProductName(target string) string {
	mangled := []rune(strings.Map(func(r rune) rune {
		if isASCIIAlnum(r) {
			return r
		}
		return '_'
	}, target))

	if len(mangled) > 0 && mangled[0] >= '0' && mangled[0] <= '9' {
		mangled[0] = '_'
	}
	return string(mangled)
}

func isASCIIAlnum(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// Convention maps targets and variants to the paths of build outputs.
type Convention interface {
	// ArchivePath is the -archivePath passed to xcodebuild.
	ArchivePath(target string, v platform.Variant) string
	// FrameworkPath is the framework inside the archive.
	FrameworkPath(target string, v platform.Variant) string
	// DebugDir is the directory where dSYMs and symbol maps for v land.
	DebugDir(v platform.Variant) string
	// SymbolBundlePath is the dSYM bundle for target inside debugDir.
	SymbolBundlePath(target, debugDir string) string
	// DebugBinaryPath is the DWARF binary inside a dSYM bundle.
	DebugBinaryPath(target, symbolBundle string) string
	// SymbolMapPath is the .bcsymbolmap side file for a binary slice.
	SymbolMapPath(symbolBundle string, id uuid.UUID) string
	// BundlePath is the merged .xcframework in outputDir.
	BundlePath(outputDir, target string) string
}

// Xcode is the Convention observed for xcodebuild archive builds.
type Xcode struct {
	// BuildDir is the BUILD_DIR passed to xcodebuild.
	BuildDir string
	// Configuration selects the Debug-/Release- products folder.
	Configuration domain.Configuration
	// FrameworkSubpath is where the archive keeps the framework, relative to
	// the archive root.
	FrameworkSubpath string
}

// NewXcode returns the Xcode convention rooted at buildDir.
func NewXcode(buildDir string, configuration domain.Configuration, frameworkSubpath string) *Xcode {
	if frameworkSubpath == "" {
		frameworkSubpath = constants.CurrentFrameworkSubpath
	}
	return &Xcode{
		BuildDir:         buildDir,
		Configuration:    configuration,
		FrameworkSubpath: frameworkSubpath,
	}
}

// ArchivePath returns <build>/<product>/<archive>.
func (x *Xcode) ArchivePath(target string, v platform.Variant) string {
	return filepath.Join(x.BuildDir, ProductName(target), v.ArchiveName)
}

// FrameworkPath returns <archive>/<subpath>/<product>.framework.
func (x *Xcode) FrameworkPath(target string, v platform.Variant) string {
	return filepath.Join(x.ArchivePath(target, v), filepath.FromSlash(x.FrameworkSubpath),
		ProductName(target)+constants.FrameworkExtension)
}

// DebugDir returns <build>/<Configuration>[-<sdk>].
func (x *Xcode) DebugDir(v platform.Variant) string {
	return filepath.Join(x.BuildDir, v.DebugFolder(x.Configuration))
}

// SymbolBundlePath returns <debugDir>/<product>.framework.dSYM.
func (x *Xcode) SymbolBundlePath(target, debugDir string) string {
	return filepath.Join(debugDir, ProductName(target)+constants.DSYMExtension)
}

// DebugBinaryPath returns <dSYM>/Contents/Resources/DWARF/<product>.
func (x *Xcode) DebugBinaryPath(target, symbolBundle string) string {
	return filepath.Join(symbolBundle, filepath.FromSlash(constants.DWARFSubpath), ProductName(target))
}

// SymbolMapPath returns <dSYM parent>/<UPPERCASE-UUID>.bcsymbolmap.
func (x *Xcode) SymbolMapPath(symbolBundle string, id uuid.UUID) string {
	return filepath.Join(filepath.Dir(symbolBundle), strings.ToUpper(id.String())+constants.SymbolMapExtension)
}

// BundlePath returns <outputDir>/<product>.xcframework.
func (x *Xcode) BundlePath(outputDir, target string) string {
	return filepath.Join(outputDir, ProductName(target)+constants.XCFrameworkExtension)
}

// Ensure Xcode implements Convention.
var _ Convention = (*Xcode)(nil)
