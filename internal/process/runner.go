// Package process runs the external tools the pipeline drives (xcodebuild,
// dwarfdump, ditto, swift) and turns their completion into typed errors.
//
// Every invocation is launched and waited on before Run returns. There are no
// retries: a failed command is reported to the caller unchanged.
package process

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/xcbundle/internal/errors"
	"github.com/mrz1836/xcbundle/internal/logging"
)

// Runner defines the interface for executing external commands.
// This allows for testing by injecting fake implementations.
type Runner interface {
	// Run executes argv and waits for it to exit. When capture is true, the
	// command's standard output is returned in Output.Stdout; otherwise it is
	// streamed live to the runner's output writer.
	Run(ctx context.Context, argv []string, capture bool) (Output, error)
}

// Output holds what a finished command produced.
type Output struct {
	Stdout []byte
}

// String returns the captured standard output as text.
func (o Output) String() string {
	return string(o.Stdout)
}

// ExecRunner implements Runner using os/exec.
type ExecRunner struct {
	// Launcher is a wrapper executable (usually xcrun) whose first argument is
	// the real tool. It only affects error naming.
	Launcher string
	// Stdout receives live output of non-capturing runs. Defaults to os.Stdout.
	Stdout io.Writer
	// Stderr receives the command's standard error. Defaults to os.Stderr.
	Stderr io.Writer
	// Dir is the working directory for commands. Empty uses the current directory.
	Dir string
}

// NewExecRunner creates an ExecRunner that treats launcher as a wrapper
// executable when naming failed commands.
func NewExecRunner(launcher string) *ExecRunner {
	return &ExecRunner{
		Launcher: launcher,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}

// Run executes argv and waits for it to complete.
func (r *ExecRunner) Run(ctx context.Context, argv []string, capture bool) (Output, error) {
	if len(argv) == 0 {
		return Output{}, fmt.Errorf("%w: empty command", errors.ErrEmptyValue)
	}

	log := zerolog.Ctx(ctx)
	name := CommandName(argv, r.Launcher)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //#nosec G204 -- argv is assembled by the pipeline
	cmd.Dir = r.Dir

	var stdout bytes.Buffer
	if capture {
		cmd.Stdout = &stdout
	} else {
		cmd.Stdout = writerOr(r.Stdout, os.Stdout)
	}
	cmd.Stderr = writerOr(r.Stderr, os.Stderr)

	log.Debug().
		Str("command", name).
		Strs("argv", logging.SafeArgv(argv)).
		Bool("capture", capture).
		Msg("running external command")

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return Output{}, ctx.Err()
		}
		perr := classify(name, err)
		log.Debug().
			Err(perr).
			Str("command", name).
			Dur("duration", duration).
			Msg("external command failed")
		return Output{}, perr
	}

	log.Debug().
		Str("command", name).
		Dur("duration", duration).
		Msg("external command completed")

	return Output{Stdout: stdout.Bytes()}, nil
}

// classify converts an exec error into a ProcessError when the process ran,
// or a wrapped start failure when it never did.
func classify(name string, err error) error {
	var exitErr *exec.ExitError
	if !stderrors.As(err, &exitErr) {
		return fmt.Errorf("failed to start %s: %w: %w", name, err, errors.ErrExternalTool)
	}

	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return &ProcessError{
			Command: name,
			Kind:    SignalExit,
			Signal:  int(status.Signal()),
		}
	}

	return &ProcessError{
		Command: name,
		Kind:    NonZeroExit,
		Code:    exitErr.ExitCode(),
	}
}

// CommandName returns the logical name of a command for error messages. When
// argv is wrapped by launcher (e.g. xcrun xcodebuild ...), the wrapped tool's
// name is used instead of the launcher's.
func CommandName(argv []string, launcher string) string {
	if len(argv) == 0 {
		return "<command>"
	}
	if launcher != "" && len(argv) > 1 && filepath.Base(argv[0]) == filepath.Base(launcher) {
		return filepath.Base(argv[1])
	}
	return filepath.Base(argv[0])
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}

// Ensure ExecRunner implements Runner.
var _ Runner = (*ExecRunner)(nil)
