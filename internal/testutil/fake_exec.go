// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/vipsbundle/vipsbundle/internal/toolexec"
)

type (
	// FakeExecutor is a scripted toolexec.Executor. Responses are keyed by
	// the space-joined command line; unknown commands succeed with no output.
	FakeExecutor struct {
		mu        sync.Mutex
		responses map[string]FakeResponse
		missing   map[string]bool
		calls     []string
	}

	// FakeResponse is the scripted outcome of one command line.
	FakeResponse struct {
		Stdout   string
		Stderr   string
		ExitCode int
	}
)

// NewFakeExecutor creates an executor with no scripted responses.
func NewFakeExecutor() *FakeExecutor {
	return &FakeExecutor{responses: make(map[string]FakeResponse), missing: make(map[string]bool)}
}

// On scripts the response for name with args.
func (f *FakeExecutor) On(resp FakeResponse, name string, args ...string) *FakeExecutor {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[key(name, args)] = resp
	return f
}

// Missing makes LookPath and Run report name as not installed.
func (f *FakeExecutor) Missing(name string) *FakeExecutor {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.missing[name] = true
	return f
}

// Run implements toolexec.Executor.
func (f *FakeExecutor) Run(_ context.Context, name string, args ...string) (toolexec.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	k := key(name, args)
	f.calls = append(f.calls, k)
	if f.missing[name] {
		return toolexec.Result{}, &toolexec.ToolNotFoundError{Name: name}
	}

	resp := f.responses[k]
	res := toolexec.Result{Stdout: resp.Stdout, Stderr: resp.Stderr, ExitCode: resp.ExitCode}
	if resp.ExitCode != 0 {
		return res, &toolexec.CommandError{Command: k, ExitCode: resp.ExitCode, Stderr: resp.Stderr}
	}
	return res, nil
}

// LookPath implements toolexec.Executor.
func (f *FakeExecutor) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[name] {
		return "", &toolexec.ToolNotFoundError{Name: name}
	}
	return "/usr/bin/" + name, nil
}

// Calls returns every command line run so far.
func (f *FakeExecutor) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Called reports whether the exact command line was run.
func (f *FakeExecutor) Called(name string, args ...string) bool {
	want := key(name, args)
	for _, c := range f.Calls() {
		if c == want {
			return true
		}
	}
	return false
}

func key(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}
