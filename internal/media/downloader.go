package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const defaultUserAgent = "tiktok-videogenerator/1.0"

// Downloader fetches remote media assets to local storage
type Downloader struct {
	// client carries no overall timeout; large assets stream at their own
	// pace. Header arrival is still bounded.
	client    *http.Client
	userAgent string
}

// NewDownloader creates an HTTP downloader for media assets
func NewDownloader() *Downloader {
	return &Downloader{
		client: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
		userAgent: defaultUserAgent,
	}
}

// Download streams the resource at url to dest. Any transport, status or
// filesystem error is returned and no partial file is left behind.
func (d *Downloader) Download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create media dir: %w", err)
	}

	// Write to a temp file first so a failed stream never leaves a
	// truncated asset at dest.
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("stream body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("move into place: %w", err)
	}
	return nil
}
