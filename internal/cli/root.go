// Package cli provides the command-line interface for xcbundle.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/xcbundle/internal/domain"
	"github.com/mrz1836/xcbundle/internal/errors"
	"github.com/mrz1836/xcbundle/internal/process"
	"github.com/mrz1836/xcbundle/internal/toolcheck"
	"github.com/mrz1836/xcbundle/internal/tui"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// environment holds the collaborators commands need. Tests replace them to
// avoid touching real tools or the user's log directory.
type environment struct {
	// newRunner creates the process runner for external tools. Live tool
	// output goes to out.
	newRunner func(launcher string, out io.Writer) process.Runner
	// newLogger creates the logger attached to the command context.
	newLogger func(verbose, quiet bool, w io.Writer) zerolog.Logger
	// newDetector creates the toolchain probe used by doctor.
	newDetector func(runner process.Runner, toolchain domain.Toolchain) *toolcheck.Detector
}

func defaultEnvironment() environment {
	return environment{
		newRunner: func(launcher string, out io.Writer) process.Runner {
			r := process.NewExecRunner(launcher)
			r.Stdout = out
			r.Stderr = out
			return r
		},
		newLogger: func(verbose, quiet bool, _ io.Writer) zerolog.Logger {
			return InitLogger(verbose, quiet)
		},
		newDetector: func(runner process.Runner, toolchain domain.Toolchain) *toolcheck.Detector {
			return toolcheck.NewDetector(runner, toolchain, nil)
		},
	}
}

// newRootCmd creates the root command with real tools and logging.
func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	return newRootCmdWithEnv(flags, info, defaultEnvironment())
}

func newRootCmdWithEnv(flags *GlobalFlags, info BuildInfo, env environment) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "xcbundle",
		Short: "Build xcframeworks from Swift packages",
		Long: `xcbundle turns the library products of a Swift package into .xcframework
bundles for every Apple platform the package supports.

For each product and platform it archives the framework with xcodebuild,
collects dSYMs and symbol maps, and merges the slices into one bundle.
Bundles can be zipped with a sha256 checksum for binary-target distribution.`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}
			flags.Output = v.GetString("output")

			if !IsValidOutputFormat(flags.Output) {
				return fmt.Errorf("%w: %q must be one of %v", errors.ErrInvalidOutputFormat, flags.Output, ValidOutputFormats())
			}

			logger := env.newLogger(flags.Verbose, flags.Quiet, cmd.ErrOrStderr())
			cmd.SetContext(logger.WithContext(contextOrBackground(cmd)))
			return nil
		},
		// Errors are printed by Execute through tui.Output.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd, flags)

	cmd.AddCommand(newBuildCmd(flags, env))
	cmd.AddCommand(newProductsCmd(flags, env))
	cmd.AddCommand(newChecksumCmd(flags))
	cmd.AddCommand(newConfigCmd(flags))
	cmd.AddCommand(newDoctorCmd(flags, env))

	return cmd
}

func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command and prints any error it returns. The error is
// returned unchanged so the caller can map it to an exit code.
func Execute(ctx context.Context, info BuildInfo) error {
	flags := &GlobalFlags{}
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(flags, info)
	defer CloseLogFile()

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		tui.NewOutput(cmd.ErrOrStderr(), flags.Output).Error(err)
	}
	return err
}
