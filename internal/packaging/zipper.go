// Package packaging zips merged bundles, writes their sha256 checksum side
// files, and records what it produced for CI pickup.
package packaging

import (
	"context"
	_ "crypto/sha256" // registers sha256 for go-digest
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"
	"github.com/rs/zerolog"

	"github.com/mrz1836/xcbundle/internal/constants"
	"github.com/mrz1836/xcbundle/internal/domain"
	"github.com/mrz1836/xcbundle/internal/errors"
	"github.com/mrz1836/xcbundle/internal/process"
)

// Zipper packages bundles with ditto.
type Zipper struct {
	runner    process.Runner
	toolchain domain.Toolchain
}

// NewZipper creates a Zipper.
func NewZipper(runner process.Runner, toolchain domain.Toolchain) *Zipper {
	return &Zipper{runner: runner, toolchain: toolchain}
}

// ZipPath replaces a trailing .xcframework with <suffix>.zip:
// Out/My_Lib.xcframework with suffix -1.2.0 becomes Out/My_Lib-1.2.0.zip.
// Paths without that extension get <suffix>.zip appended.
func ZipPath(bundle, suffix string) string {
	return strings.TrimSuffix(bundle, constants.XCFrameworkExtension) + suffix + constants.ZipExtension
}

// ChecksumPath returns the side file for zip: same base name, .sha256 extension.
func ChecksumPath(zip string) string {
	return strings.TrimSuffix(zip, filepath.Ext(zip)) + constants.ChecksumExtension
}

// Zip compresses bundle into ZipPath(bundle, suffix) keeping the bundle as
// the single top-level directory, and returns the zip path.
func (z *Zipper) Zip(ctx context.Context, bundle, suffix string) (string, error) {
	zip := ZipPath(bundle, suffix)

	zerolog.Ctx(ctx).Info().
		Str("bundle", bundle).
		Str("zip", zip).
		Msg("packaging bundle")

	argv := []string{z.toolchain.Ditto, "-c", "-k", "--keepParent", bundle, zip}
	if _, err := z.runner.Run(ctx, argv, false); err != nil {
		return "", errors.Wrapf(err, "zip %s", filepath.Base(bundle))
	}
	return zip, nil
}

// Checksum computes the sha256 of the zip's bytes and writes the lowercase
// hex digest to ChecksumPath(zip). It returns the side file path and digest.
func Checksum(zip string) (path, sum string, err error) {
	dgst, err := digestOf(zip)
	if err != nil {
		return "", "", err
	}

	path = ChecksumPath(zip)
	if err := os.WriteFile(path, []byte(dgst.Encoded()), 0o644); err != nil { //nolint:gosec // checksum files are published alongside the zip
		return "", "", errors.Wrap(err, "failed to write checksum file")
	}
	return path, dgst.Encoded(), nil
}

// Verify recomputes the zip's sha256 and compares it with its side file.
// It returns the digest read from the side file.
func Verify(zip string) (string, error) {
	if err := checkArchive(zip); err != nil {
		return "", err
	}

	data, err := os.ReadFile(ChecksumPath(zip)) //nolint:gosec // path derived from user-supplied zip
	if err != nil {
		return "", errors.Wrap(err, "failed to read checksum file")
	}

	want := strings.TrimSpace(string(data))
	expected := digest.NewDigestFromEncoded(digest.SHA256, strings.ToLower(want))
	if err := expected.Validate(); err != nil {
		return "", fmt.Errorf("%w: %q is not a sha256 digest", errors.ErrChecksumMismatch, want)
	}

	f, err := os.Open(zip) //nolint:gosec // path derived from user-supplied zip
	if err != nil {
		return "", errors.Wrap(err, "failed to open archive")
	}
	defer func() { _ = f.Close() }()

	verifier := expected.Verifier()
	if _, err := io.Copy(verifier, f); err != nil {
		return "", errors.Wrap(err, "failed to read archive")
	}
	if !verifier.Verified() {
		return "", fmt.Errorf("%w: %s", errors.ErrChecksumMismatch, filepath.Base(zip))
	}
	return expected.Encoded(), nil
}

// Clean removes the uncompressed bundle once it has been zipped. Unlike the
// pre-merge removal, a failure here is returned.
func (z *Zipper) Clean(bundle string) error {
	if err := os.RemoveAll(bundle); err != nil {
		return errors.Wrapf(err, "failed to remove %s", bundle)
	}
	return nil
}

// Package zips bundle and writes its checksum.
func (z *Zipper) Package(ctx context.Context, bundle domain.MergedBundle, suffix string) (domain.PackagedArtifact, error) {
	zip, err := z.Zip(ctx, bundle.Path, suffix)
	if err != nil {
		return domain.PackagedArtifact{}, err
	}

	checksumPath, sum, err := Checksum(zip)
	if err != nil {
		return domain.PackagedArtifact{}, err
	}

	return domain.PackagedArtifact{
		Target:       bundle.Target,
		Suffix:       suffix,
		ZipPath:      zip,
		ChecksumPath: checksumPath,
		Checksum:     sum,
	}, nil
}

// WriteArtifactList writes every zip and checksum path, one per line, to
// path. CI steps read this file to find what to upload.
func WriteArtifactList(path string, artifacts []domain.PackagedArtifact) error {
	lines := make([]string, 0, len(artifacts)*2)
	for _, a := range artifacts {
		lines = append(lines, a.ZipPath, a.ChecksumPath)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.Wrap(err, "failed to create artifact list directory")
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o600); err != nil {
		return errors.Wrap(err, "failed to write artifact list")
	}
	return nil
}

func digestOf(zip string) (digest.Digest, error) {
	if err := checkArchive(zip); err != nil {
		return "", err
	}

	f, err := os.Open(zip) //nolint:gosec // path produced by Zip
	if err != nil {
		return "", errors.Wrap(err, "failed to open archive")
	}
	defer func() { _ = f.Close() }()

	dgst, err := digest.SHA256.FromReader(f)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash archive")
	}
	return dgst, nil
}

func checkArchive(zip string) error {
	if filepath.Ext(zip) != constants.ZipExtension {
		return fmt.Errorf("%w: %s (supported: %s)", errors.ErrUnsupportedArchive, filepath.Base(zip), constants.ZipExtension)
	}
	info, err := os.Stat(zip)
	if err != nil {
		return errors.Wrap(err, "archive not found")
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a file", errors.ErrUnsupportedArchive, zip)
	}
	return nil
}
