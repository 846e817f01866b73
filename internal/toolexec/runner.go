// SPDX-License-Identifier: MPL-2.0

package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/vipsbundle/vipsbundle/pkg/types"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/syntax"
)

// ErrToolNotFound is the sentinel error wrapped by ToolNotFoundError.
var ErrToolNotFound = errors.New("tool not found")

type (
	// ExecCommandFunc creates the exec.Cmd for a tool invocation.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// LookPathFunc resolves a tool name to an executable path.
	LookPathFunc func(file string) (string, error)

	// Executor is the narrow interface consumers depend on.
	Executor interface {
		Run(ctx context.Context, name string, args ...string) (Result, error)
		LookPath(name string) (string, error)
	}

	// Result is the captured outcome of one tool invocation.
	Result struct {
		Stdout   string
		Stderr   string
		ExitCode int
	}

	// Option configures a Runner.
	Option func(*Runner)

	// Runner executes tools through an injectable process factory.
	Runner struct {
		logger      *log.Logger
		execCommand ExecCommandFunc
		lookPath    LookPathFunc
	}

	// ToolNotFoundError is returned when a tool is not installed or not on PATH.
	ToolNotFoundError struct {
		Name string
	}

	// CommandError is returned when a tool exits non-zero or cannot be started.
	CommandError struct {
		Command  string
		ExitCode int
		Stderr   string
		Err      error
	}
)

// WithExecCommand replaces the process factory.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(r *Runner) {
		r.execCommand = fn
	}
}

// WithLookPath replaces PATH lookup.
func WithLookPath(fn LookPathFunc) Option {
	return func(r *Runner) {
		r.lookPath = fn
	}
}

// New creates a Runner that logs through logger.
func New(logger *log.Logger, opts ...Option) *Runner {
	r := &Runner{
		logger:      logger,
		execCommand: exec.CommandContext,
		lookPath:    exec.LookPath,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LookPath reports where name is installed.
func (r *Runner) LookPath(name string) (string, error) {
	path, err := r.lookPath(name)
	if err != nil {
		return "", &ToolNotFoundError{Name: name}
	}
	return path, nil
}

// Run executes name with args and waits for it to finish. A non-zero exit
// returns the captured Result together with a *CommandError. Exit status 127,
// as reported by wrappers such as xcrun, is treated as a missing tool.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	line := CommandLine(name, args...)
	r.logger.Debug("running", "cmd", line)

	cmd := r.execCommand(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}

	if errors.Is(err, exec.ErrNotFound) {
		return res, &ToolNotFoundError{Name: name}
	}

	res.ExitCode = -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	}
	if types.ExitCode(res.ExitCode).IsCommandNotFound() {
		r.logger.Debug("tool not found", "cmd", line)
		return res, &ToolNotFoundError{Name: name}
	}

	r.logger.Debug("command failed", "cmd", line, "exit", res.ExitCode, "stderr", strings.TrimSpace(res.Stderr))
	return res, &CommandError{Command: line, ExitCode: res.ExitCode, Stderr: strings.TrimSpace(res.Stderr), Err: err}
}

// CommandLine renders name and args as a shell-quoted command line.
func CommandLine(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	for _, s := range append([]string{name}, args...) {
		q, err := syntax.Quote(s, syntax.LangBash)
		if err != nil {
			q = fmt.Sprintf("%q", s)
		}
		parts = append(parts, q)
	}
	return strings.Join(parts, " ")
}

// Error implements the error interface.
func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("%s: not found in PATH", e.Name)
}

// Unwrap returns ErrToolNotFound for errors.Is compatibility.
func (e *ToolNotFoundError) Unwrap() error { return ErrToolNotFound }

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: exit status %d: %s", e.Command, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s: exit status %d", e.Command, e.ExitCode)
}

// Unwrap returns the underlying exec error.
func (e *CommandError) Unwrap() error { return e.Err }
