package build

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrz1836/xcbundle/internal/constants"
	"github.com/mrz1836/xcbundle/internal/errors"
)

// ResolveXcconfig turns a user-supplied xcconfig path into an absolute path.
// Absolute paths are returned unchanged; anything else, with or without a
// leading "./", is relative to the package root. Empty stays empty.
func ResolveXcconfig(root, path string) string {
	switch {
	case path == "":
		return ""
	case filepath.IsAbs(path):
		return filepath.Clean(path)
	default:
		return filepath.Join(root, strings.TrimPrefix(path, "./"))
	}
}

// WriteDistributionXcconfig writes the xcconfig the legacy policy hands to
// xcodebuild when stack evolution is off. It enables library evolution. When
// overrides is set, it is included first via a path relative to the
// generated file.
func WriteDistributionXcconfig(path, overrides string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.Wrap(err, "failed to create xcconfig directory")
	}

	var b strings.Builder
	if overrides != "" {
		rel, err := filepath.Rel(filepath.Dir(path), overrides)
		if err != nil {
			rel = overrides
		}
		fmt.Fprintf(&b, "#include %q\n\n", filepath.ToSlash(rel))
	}
	fmt.Fprintf(&b, "%s=YES\n", constants.SettingBuildLibraryForDistribution)

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return errors.Wrap(err, "failed to write distribution xcconfig")
	}
	return nil
}
