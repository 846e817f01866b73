// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/vipsbundle/vipsbundle/internal/binfmt"
	"github.com/vipsbundle/vipsbundle/internal/config"
	"github.com/vipsbundle/vipsbundle/internal/toolexec"

	"github.com/charmbracelet/log"
)

// logTimeFormat matches the timestamp layout of the bundle logs.
const logTimeFormat = "2006-01-02 15:04:05"

type (
	// App wires CLI services and shared dependencies. Every Cobra handler
	// receives it and builds a per-run session from it.
	App struct {
		Config     ConfigProvider
		Exec       toolexec.Executor
		Trace      binfmt.Tracer
		HTTPClient *http.Client
		Now        func() time.Time
		stdout     io.Writer
		stderr     io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		// Exec runs external tools. When nil each run gets a toolexec.Runner
		// bound to its own logger.
		Exec toolexec.Executor
		// Trace lists ELF dependencies. When nil the system loader is asked.
		Trace      binfmt.Tracer
		HTTPClient *http.Client
		Now        func() time.Time
		Stdout     io.Writer
		Stderr     io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		LoadWithSource(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}

	// session is the state of one command invocation.
	session struct {
		app        *App
		cfg        *config.Config
		configPath string
		logger     *log.Logger
		exec       toolexec.Executor
		verbose    bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.HTTPClient == nil {
		deps.HTTPClient = http.DefaultClient
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &App{
		Config:     deps.Config,
		Exec:       deps.Exec,
		Trace:      deps.Trace,
		HTTPClient: deps.HTTPClient,
		Now:        deps.Now,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
	}
}

// newLogger builds the run logger: timestamped, Info by default, Debug when verbose.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
		Level:           level,
	})
}

// newSession loads configuration and builds the logger and tool runner for one run.
func (a *App) newSession(ctx context.Context, flags *rootFlags) (*session, error) {
	logger := newLogger(a.stderr, flags.verbose)

	cfg, path, err := a.Config.LoadWithSource(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return nil, err
	}
	if path != "" {
		logger.Debug("loaded configuration", "path", path)
	}

	exec := a.Exec
	if exec == nil {
		exec = toolexec.New(logger)
	}

	return &session{
		app:        a,
		cfg:        cfg,
		configPath: path,
		logger:     logger,
		exec:       exec,
		verbose:    flags.verbose,
	}, nil
}
