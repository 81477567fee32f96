// Package toolcheck probes the configured toolchain for the doctor command:
// whether each executable can be found and, where the tool reports one, its
// version.
package toolcheck

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/xcbundle/internal/constants"
	"github.com/mrz1836/xcbundle/internal/domain"
	"github.com/mrz1836/xcbundle/internal/errors"
	"github.com/mrz1836/xcbundle/internal/process"
)

//nolint:gochecknoglobals // compiled once
var (
	xcodeVersionRe = regexp.MustCompile(`Xcode (\d+\.\d+(?:\.\d+)?)`)
	swiftVersionRe = regexp.MustCompile(`Swift version (\d+\.\d+(?:\.\d+)?)`)
)

// Status is the outcome of probing one tool.
type Status int

const (
	// StatusMissing means the tool could not be located.
	StatusMissing Status = iota
	// StatusInstalled means the tool was found.
	StatusInstalled
)

// String returns "installed" or "missing".
func (s Status) String() string {
	if s == StatusInstalled {
		return "installed"
	}
	return "missing"
}

// MarshalText renders the status by name in JSON output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name. Unknown names read as StatusMissing.
func (s *Status) UnmarshalText(text []byte) error {
	if string(text) == StatusInstalled.String() {
		*s = StatusInstalled
	} else {
		*s = StatusMissing
	}
	return nil
}

// Tool is the probe result for one toolchain entry.
type Tool struct {
	Name    string `json:"name"`
	Command string `json:"command"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Status  Status `json:"status"`
}

// Result holds every probed tool in toolchain order.
type Result struct {
	Tools []Tool `json:"tools"`
}

// Missing returns the tools that could not be found.
func (r *Result) Missing() []Tool {
	var missing []Tool
	for _, t := range r.Tools {
		if t.Status == StatusMissing {
			missing = append(missing, t)
		}
	}
	return missing
}

// LookPathFunc locates an executable on PATH.
type LookPathFunc func(file string) (string, error)

// Detector probes tools through a process runner.
type Detector struct {
	runner    process.Runner
	lookPath  LookPathFunc
	toolchain domain.Toolchain
}

// NewDetector creates a Detector for toolchain. A nil lookPath uses exec.LookPath.
func NewDetector(runner process.Runner, toolchain domain.Toolchain, lookPath LookPathFunc) *Detector {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	return &Detector{runner: runner, lookPath: lookPath, toolchain: toolchain}
}

type probe struct {
	name    string
	command string
	// viaLauncher tools are located with `xcrun --find`.
	viaLauncher bool
	versionArgs []string
	versionRe   *regexp.Regexp
}

func (d *Detector) probes() []probe {
	t := d.toolchain
	probes := []probe{
		{name: "xcodebuild", command: t.Xcodebuild, viaLauncher: t.Xcrun != "", versionArgs: []string{"-version"}, versionRe: xcodeVersionRe},
		{name: "dwarfdump", command: t.Dwarfdump, viaLauncher: t.Xcrun != ""},
		{name: "ditto", command: t.Ditto},
		{name: "swift", command: t.Swift, versionArgs: []string{"--version"}, versionRe: swiftVersionRe},
	}
	if t.Xcrun != "" {
		probes = append([]probe{{name: "xcrun", command: t.Xcrun}}, probes...)
	}
	return probes
}

// Detect probes every tool concurrently. Probe failures are reported as
// StatusMissing, never as an error; only cancellation of ctx is.
func (d *Detector) Detect(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	detectCtx, cancel := context.WithTimeout(ctx, constants.ToolDetectionTimeout)
	defer cancel()

	probes := d.probes()
	tools := make([]Tool, len(probes))

	g, gCtx := errgroup.WithContext(detectCtx)
	for i, p := range probes {
		g.Go(func() error {
			tools[i] = d.detect(gCtx, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to detect tools: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Result{Tools: tools}, nil
}

func (d *Detector) detect(ctx context.Context, p probe) Tool {
	log := zerolog.Ctx(ctx)
	tool := Tool{Name: p.name, Command: p.command, Status: StatusMissing}

	path, err := d.locate(ctx, p)
	if err != nil {
		log.Debug().Err(err).Str("tool", p.name).Msg("tool not found")
		return tool
	}
	tool.Path = path
	tool.Status = StatusInstalled

	if p.versionRe == nil {
		return tool
	}

	argv := append(d.command(p), p.versionArgs...)
	out, err := d.runner.Run(ctx, argv, true)
	if err != nil {
		log.Debug().Err(err).Str("tool", p.name).Msg("version probe failed")
		return tool
	}
	tool.Version = ParseVersion(out.String(), p.versionRe)
	return tool
}

func (d *Detector) locate(ctx context.Context, p probe) (string, error) {
	if !p.viaLauncher {
		return d.lookPath(p.command)
	}
	out, err := d.runner.Run(ctx, []string{d.toolchain.Xcrun, "--find", p.command}, true)
	if err != nil {
		return "", err
	}
	path := strings.TrimSpace(out.String())
	if path == "" {
		return "", fmt.Errorf("%w: xcrun --find %s printed nothing", errors.ErrToolMissing, p.command)
	}
	return path, nil
}

func (d *Detector) command(p probe) []string {
	if p.viaLauncher {
		return d.toolchain.XcodeTool(p.command)
	}
	return []string{p.command}
}

// ParseVersion returns the first capture of re in output, or "" when it
// does not match.
func ParseVersion(output string, re *regexp.Regexp) string {
	m := re.FindStringSubmatch(output)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
