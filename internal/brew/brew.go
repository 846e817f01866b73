// SPDX-License-Identifier: MPL-2.0

package brew

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"

	"github.com/vipsbundle/vipsbundle/internal/toolexec"
)

const (
	// DefaultBinary is the Homebrew executable name.
	DefaultBinary = "brew"
	// UnknownVersion is reported when no version can be read.
	UnknownVersion = "unknown"
)

// ErrPrefixNotFound is the sentinel error wrapped by prefix lookup failures.
var ErrPrefixNotFound = errors.New("homebrew prefix not found")

// Client runs brew through an Executor.
type Client struct {
	exec   toolexec.Executor
	binary string
	logger *log.Logger
}

// NewClient creates a Client. An empty binary selects DefaultBinary.
func NewClient(exec toolexec.Executor, binary string, logger *log.Logger) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Client{exec: exec, binary: binary, logger: logger}
}

// Prefix returns the Homebrew installation prefix.
func (c *Client) Prefix(ctx context.Context) (string, error) {
	return c.prefix(ctx)
}

// PackagePrefix returns the installation prefix of formula pkg.
func (c *Client) PackagePrefix(ctx context.Context, pkg string) (string, error) {
	return c.prefix(ctx, pkg)
}

func (c *Client) prefix(ctx context.Context, pkg ...string) (string, error) {
	args := append([]string{"--prefix"}, pkg...)
	res, err := c.exec.Run(ctx, c.binary, args...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPrefixNotFound, err)
	}
	out := strings.TrimSpace(res.Stdout)
	if out == "" {
		return "", fmt.Errorf("%w: %s printed nothing", ErrPrefixNotFound, toolexec.CommandLine(c.binary, args...))
	}
	return out, nil
}

// PackageVersion returns the installed version of pkg, falling back to the
// stable version and finally to UnknownVersion. It never fails.
func (c *Client) PackageVersion(ctx context.Context, pkg string) string {
	res, err := c.exec.Run(ctx, c.binary, "info", "--json=v2", pkg)
	if err != nil {
		c.logger.Warn("could not read formula info", "pkg", pkg, "err", err)
		return UnknownVersion
	}
	return ParseVersion(res.Stdout)
}

// ParseVersion extracts a formula version from `brew info --json=v2` output.
func ParseVersion(infoJSON string) string {
	if !gjson.Valid(infoJSON) {
		return UnknownVersion
	}
	for _, path := range []string{"formulae.0.installed.0.version", "formulae.0.versions.stable"} {
		if v := gjson.Get(infoJSON, path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return UnknownVersion
}
