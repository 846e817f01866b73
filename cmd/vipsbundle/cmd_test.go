// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/vipsbundle/vipsbundle/internal/config"
	"github.com/vipsbundle/vipsbundle/internal/testutil"
	"github.com/vipsbundle/vipsbundle/internal/toolexec"
)

// fixedNow is the timestamp recorded in test manifests.
var fixedNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

// stubConfig returns a fixed configuration.
type stubConfig struct {
	cfg  *config.Config
	path string
	err  error
}

func (s stubConfig) LoadWithSource(context.Context, config.LoadOptions) (*config.Config, string, error) {
	return s.cfg, s.path, s.err
}

// testSession builds a session that writes to buffers and runs tools through exec.
func testSession(t *testing.T, cfg *config.Config, exec toolexec.Executor) (*session, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	var stdout bytes.Buffer
	logger, logs := testutil.NewLogger()
	app := NewApp(Dependencies{
		Config: stubConfig{cfg: cfg},
		Exec:   exec,
		Stdout: &stdout,
		Stderr: logs,
		Now:    func() time.Time { return fixedNow },
	})
	return &session{app: app, cfg: cfg, logger: logger, exec: exec}, &stdout, logs
}
