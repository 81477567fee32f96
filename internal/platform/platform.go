// Package platform is the catalog of logical platforms and the SDK variants
// built for each of them. It is the only place per-platform build knowledge
// lives; the orchestrator reads variants from here and never branches on a
// platform itself.
package platform

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mrz1836/xcbundle/internal/constants"
	"github.com/mrz1836/xcbundle/internal/domain"
	"github.com/mrz1836/xcbundle/internal/errors"
)

// Platform is a logical platform a user selects.
type Platform string

// Supported logical platforms, in catalog order.
const (
	IOS         Platform = "ios"
	MacOS       Platform = "macos"
	MacCatalyst Platform = "maccatalyst"
	TVOS        Platform = "tvos"
	WatchOS     Platform = "watchos"
)

// Variant is one buildable SDK slice of a logical platform.
type Variant struct {
	// Destination is the xcodebuild -destination selector.
	Destination string `json:"destination"`
	// ArchiveName is the archive directory name, e.g. iphoneos.xcarchive.
	ArchiveName string `json:"archive_name"`
	// ReleaseFolder is the directory under BUILD_DIR where xcodebuild places
	// debug output for this SDK. The configuration prefix is filled in by
	// DebugFolder.
	ReleaseFolder string `json:"release_folder"`
	// BuildSettings are overrides this variant needs on top of the defaults.
	BuildSettings []domain.BuildSetting `json:"build_settings,omitempty"`
}

// DebugFolder returns the build-products folder name for configuration,
// e.g. Release-iphoneos or Debug-iphonesimulator. macOS products have no
// SDK suffix.
func (v Variant) DebugFolder(configuration domain.Configuration) string {
	if v.ReleaseFolder == "" {
		return configuration.XcodeName()
	}
	return configuration.XcodeName() + "-" + v.ReleaseFolder
}

// Name returns the variant's short name (the archive name without extension).
func (v Variant) Name() string {
	return strings.TrimSuffix(v.ArchiveName, ".xcarchive")
}

var catalog = map[Platform][]Variant{
	IOS: {
		{Destination: "generic/platform=iOS", ArchiveName: "iphoneos.xcarchive", ReleaseFolder: "iphoneos"},
		{Destination: "generic/platform=iOS Simulator", ArchiveName: "iphonesimulator.xcarchive", ReleaseFolder: "iphonesimulator"},
	},
	MacOS: {
		{Destination: "platform=macOS", ArchiveName: "macos.xcarchive"},
	},
	MacCatalyst: {
		{
			Destination:   "platform=macOS,variant=Mac Catalyst",
			ArchiveName:   "maccatalyst.xcarchive",
			ReleaseFolder: "maccatalyst",
			BuildSettings: []domain.BuildSetting{{Name: constants.SettingSupportsMacCatalyst, Value: "YES"}},
		},
	},
	TVOS: {
		{Destination: "generic/platform=tvOS", ArchiveName: "appletvos.xcarchive", ReleaseFolder: "appletvos"},
		{Destination: "generic/platform=tvOS Simulator", ArchiveName: "appletvsimulator.xcarchive", ReleaseFolder: "appletvsimulator"},
	},
	WatchOS: {
		{Destination: "generic/platform=watchOS", ArchiveName: "watchos.xcarchive", ReleaseFolder: "watchos"},
		{Destination: "generic/platform=watchOS Simulator", ArchiveName: "watchsimulator.xcarchive", ReleaseFolder: "watchsimulator"},
	},
}

// All returns every logical platform in catalog order.
func All() []Platform {
	return []Platform{IOS, MacOS, MacCatalyst, TVOS, WatchOS}
}

// Parse converts a user-supplied platform name.
func Parse(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := catalog[p]; !ok {
		return "", fmt.Errorf("%w: %q (valid: %s)", errors.ErrInvalidPlatform, s, strings.Join(Names(), ", "))
	}
	return p, nil
}

// ParseAll converts a list of platform names, stopping at the first invalid one.
func ParseAll(names []string) ([]Platform, error) {
	out := make([]Platform, 0, len(names))
	for _, n := range names {
		p, err := Parse(n)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Names returns the names of every logical platform.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, p := range all {
		names[i] = string(p)
	}
	return names
}

// Variants returns the SDK variants built for p, device first. The returned
// slice is a copy.
func (p Platform) Variants() []Variant {
	return slices.Clone(catalog[p])
}

// ManifestName is the platform name as a package manifest declares it.
// Mac Catalyst has no manifest entry of its own and follows macOS.
func (p Platform) ManifestName() string {
	if p == MacCatalyst {
		return string(MacOS)
	}
	return string(p)
}

// Supported filters requested (or every platform when requested is empty) down
// to the ones the package declares. An empty declared list means the package
// supports everything and requested order is kept; otherwise the result
// follows the manifest's declaration order. Mac Catalyst is supported when
// the manifest declares either maccatalyst or macos.
func Supported(requested []Platform, declared []string) []Platform {
	if len(requested) == 0 {
		requested = All()
	}
	if len(declared) == 0 {
		return slices.Clone(requested)
	}

	var out []Platform
	for _, d := range declared {
		d = strings.ToLower(d)
		for _, p := range requested {
			if (string(p) == d || p.ManifestName() == d) && !slices.Contains(out, p) {
				out = append(out, p)
			}
		}
	}
	return out
}

// VariantsFor expands platforms into their variants in declaration order.
func VariantsFor(platforms []Platform) []Variant {
	var out []Variant
	for _, p := range platforms {
		out = append(out, p.Variants()...)
	}
	return out
}
