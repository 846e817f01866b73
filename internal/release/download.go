// SPDX-License-Identifier: MPL-2.0

package release

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// progressStep is the percentage between progress log lines.
const progressStep = 10

type (
	// Downloaded describes an asset written to disk.
	Downloaded struct {
		Path   string
		Size   int64
		SHA256 string
	}

	progressWriter struct {
		logger *log.Logger
		total  int64
		done   int64
		next   int64
	}
)

// Download streams asset into dir under its own name and hashes it on the
// way. A partial file is removed on failure.
func (c *Client) Download(ctx context.Context, asset Asset, dir string, logger *log.Logger) (*Downloaded, error) {
	body, length, err := c.DownloadAsset(ctx, asset.BrowserDownloadURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	if length <= 0 {
		length = asset.Size
	}

	dest := filepath.Join(dir, filepath.Base(asset.Name))
	f, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", dest, err)
	}

	hash := sha256.New()
	progress := &progressWriter{logger: logger, total: length, next: progressStep}
	n, copyErr := io.Copy(io.MultiWriter(f, hash, progress), body)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(dest)
		if copyErr != nil {
			return nil, fmt.Errorf("downloading asset %s: %w", redactURL(asset.BrowserDownloadURL), copyErr)
		}
		return nil, fmt.Errorf("write %s: %w", dest, closeErr)
	}

	logger.Info("download complete", "bytes", n)
	return &Downloaded{Path: dest, Size: n, SHA256: hex.EncodeToString(hash.Sum(nil))}, nil
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.done += int64(len(b))
	if p.total <= 0 {
		return len(b), nil
	}
	pct := p.done * 100 / p.total
	if pct >= p.next || p.done == p.total {
		p.logger.Info("progress", "bytes", p.done, "total", p.total, "percent", pct)
		for p.next <= pct {
			p.next += progressStep
		}
	}
	return len(b), nil
}
