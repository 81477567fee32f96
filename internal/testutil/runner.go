package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/mrz1836/xcbundle/internal/process"
)

// Call records one invocation seen by FakeRunner.
type Call struct {
	Argv    []string
	Capture bool
}

// Name returns the logical command name of the call, skipping xcrun.
func (c Call) Name() string {
	return process.CommandName(c.Argv, "xcrun")
}

// HandlerFunc scripts the result of a command.
type HandlerFunc func(argv []string) (process.Output, error)

// FakeRunner is a process.Runner that records calls and returns scripted
// results keyed by logical command name. Unscripted commands succeed with
// empty output.
type FakeRunner struct {
	mu       sync.Mutex
	calls    []Call
	handlers map[string]HandlerFunc
}

// NewFakeRunner creates an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{handlers: make(map[string]HandlerFunc)}
}

// On registers fn for every command whose logical name is name.
func (f *FakeRunner) On(name string, fn HandlerFunc) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[name] = fn
	return f
}

// Fail makes every command named name return err.
func (f *FakeRunner) Fail(name string, err error) *FakeRunner {
	return f.On(name, func([]string) (process.Output, error) {
		return process.Output{}, err
	})
}

// Respond makes every command named name return stdout.
func (f *FakeRunner) Respond(name, stdout string) *FakeRunner {
	return f.On(name, func([]string) (process.Output, error) {
		return process.Output{Stdout: []byte(stdout)}, nil
	})
}

// Run implements process.Runner.
func (f *FakeRunner) Run(ctx context.Context, argv []string, capture bool) (process.Output, error) {
	if err := ctx.Err(); err != nil {
		return process.Output{}, err
	}

	call := Call{Argv: slices.Clone(argv), Capture: capture}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	fn := f.handlers[call.Name()]
	f.mu.Unlock()

	if fn == nil {
		return process.Output{}, nil
	}
	return fn(argv)
}

// Calls returns every recorded call in order.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallsFor returns the argv of every recorded call named name.
func (f *FakeRunner) CallsFor(name string) [][]string {
	var out [][]string
	for _, c := range f.Calls() {
		if c.Name() == name {
			out = append(out, c.Argv)
		}
	}
	return out
}

// Names returns the logical names of every recorded call in order.
func (f *FakeRunner) Names() []string {
	calls := f.Calls()
	names := make([]string, 0, len(calls))
	for _, c := range calls {
		names = append(names, c.Name())
	}
	return names
}

// Ensure FakeRunner implements process.Runner.
var _ process.Runner = (*FakeRunner)(nil)
