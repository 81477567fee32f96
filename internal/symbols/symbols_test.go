package symbols

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/xcbundle/internal/domain"
	"github.com/mrz1836/xcbundle/internal/layout"
	"github.com/mrz1836/xcbundle/internal/process"
	"github.com/mrz1836/xcbundle/internal/testutil"
)

const (
	armID = "6B1F2A0E-3C0B-3E55-9C1A-0D2E4F6A8B9C"
	x86ID = "0d6a1a2b-3c4d-4e5f-8a9b-0c1d2e3f4a5b"
)

func TestParseSliceIdentifiers(t *testing.T) {
	output := strings.Join([]string{
		"UUID: " + armID + " (arm64) /tmp/Lib",
		"UUID: " + x86ID + " (x86_64) /tmp/Lib",
		"UUID: not-a-uuid (i386) /tmp/Lib",
		"UUID: 6B1F2A0E3C0B3E559C1A0D2E4F6A8B9C (arm64e) /tmp/Lib",
		"UUID: {6B1F2A0E-3C0B-3E55-9C1A-0D2E4F6A8B9C} (arm64e) /tmp/Lib",
		"UUID: 6B1F2A0E-3C0B-3E55-9C1A-0D2E4F6A8B9C0 (arm64e) /tmp/Lib",
		"  UUID: 11111111-1111-1111-1111-111111111111 indented is ignored",
		"warning: something else",
	}, "\n")

	ids := ParseSliceIdentifiers(output)
	require.Len(t, ids, 2)
	assert.Equal(t, uuid.MustParse(armID), ids[0])
	assert.Equal(t, uuid.MustParse(x86ID), ids[1])
}

func TestParseSliceIdentifiers_NoMatches(t *testing.T) {
	assert.Empty(t, ParseSliceIdentifiers(""))
	assert.Empty(t, ParseSliceIdentifiers("error: no dSYM\n"))
}

// fixture builds a debug directory tree for target "My-Lib".
type fixture struct {
	debugDir string
	dsym     string
	dwarf    string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	debugDir := filepath.Join(t.TempDir(), "Release-iphoneos")
	dsym := filepath.Join(debugDir, "My_Lib.framework.dSYM")
	return fixture{
		debugDir: debugDir,
		dsym:     dsym,
		dwarf:    filepath.Join(dsym, "Contents", "Resources", "DWARF", "My_Lib"),
	}
}

func (f fixture) withDSYM(t *testing.T) fixture {
	t.Helper()
	require.NoError(t, os.MkdirAll(f.dsym, 0o750))
	return f
}

func (f fixture) withDWARF(t *testing.T) fixture {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(f.dwarf), 0o750))
	require.NoError(t, os.WriteFile(f.dwarf, []byte("dwarf"), 0o600))
	return f
}

func (f fixture) withSymbolMap(t *testing.T, id string) string {
	t.Helper()
	path := filepath.Join(f.debugDir, strings.ToUpper(id)+".bcsymbolmap")
	require.NoError(t, os.WriteFile(path, []byte("map"), 0o600))
	return path
}

func newResolver(runner process.Runner, debugDir string) *Resolver {
	conv := layout.NewXcode(filepath.Dir(debugDir), domain.ConfigurationRelease, "")
	return NewResolver(runner, domain.DefaultToolchain(), conv)
}

func TestResolve_NoDSYM(t *testing.T) {
	f := newFixture(t)
	runner := testutil.NewFakeRunner()

	files, err := newResolver(runner, f.debugDir).Resolve(context.Background(), "My-Lib", f.debugDir)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Empty(t, runner.Calls())
}

func TestResolve_DSYMWithoutDWARF(t *testing.T) {
	f := newFixture(t).withDSYM(t)
	runner := testutil.NewFakeRunner()

	files, err := newResolver(runner, f.debugDir).Resolve(context.Background(), "My-Lib", f.debugDir)
	require.NoError(t, err)
	assert.Equal(t, []string{f.dsym}, files)
	assert.Empty(t, runner.Calls())
}

func TestResolve_KeepsOnlyExistingSymbolMaps(t *testing.T) {
	f := newFixture(t).withDSYM(t).withDWARF(t)
	x86Map := f.withSymbolMap(t, x86ID)

	runner := testutil.NewFakeRunner().Respond("dwarfdump",
		"UUID: "+armID+" (arm64) "+f.dwarf+"\nUUID: "+x86ID+" (x86_64) "+f.dwarf+"\n")

	files, err := newResolver(runner, f.debugDir).Resolve(context.Background(), "My-Lib", f.debugDir)
	require.NoError(t, err)
	assert.Equal(t, []string{f.dsym, x86Map}, files)

	calls := runner.CallsFor("dwarfdump")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"xcrun", "dwarfdump", "--uuid", f.dwarf}, calls[0])
	assert.True(t, runner.Calls()[0].Capture)
}

func TestResolve_DiscoveryOrder(t *testing.T) {
	f := newFixture(t).withDSYM(t).withDWARF(t)
	armMap := f.withSymbolMap(t, armID)
	x86Map := f.withSymbolMap(t, x86ID)

	runner := testutil.NewFakeRunner().Respond("dwarfdump", "UUID: "+x86ID+"\nUUID: "+armID+"\n")

	files, err := newResolver(runner, f.debugDir).Resolve(context.Background(), "My-Lib", f.debugDir)
	require.NoError(t, err)
	assert.Equal(t, []string{f.dsym, x86Map, armMap}, files)
}

func TestResolve_NoUUIDsIsNotAnError(t *testing.T) {
	f := newFixture(t).withDSYM(t).withDWARF(t)
	runner := testutil.NewFakeRunner().Respond("dwarfdump", "")

	files, err := newResolver(runner, f.debugDir).Resolve(context.Background(), "My-Lib", f.debugDir)
	require.NoError(t, err)
	assert.Equal(t, []string{f.dsym}, files)
}

func TestResolve_DwarfdumpFailureIsFatal(t *testing.T) {
	f := newFixture(t).withDSYM(t).withDWARF(t)
	runner := testutil.NewFakeRunner().
		Fail("dwarfdump", &process.ProcessError{Command: "dwarfdump", Kind: process.SignalExit, Signal: 9})

	files, err := newResolver(runner, f.debugDir).Resolve(context.Background(), "My-Lib", f.debugDir)
	require.Error(t, err)
	assert.Nil(t, files)
	assert.Contains(t, err.Error(), "dwarfdump exited due to signal: 9")
}
