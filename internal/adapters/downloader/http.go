package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DefaultTimeout bounds one archive request.
const DefaultTimeout = 30 * time.Second

// HTTPDownloader implements ports.Fetcher using standard HTTP.
type HTTPDownloader struct {
	client *http.Client
}

// NewHTTPDownloader creates a new HTTPDownloader with the given per-request
// timeout. A zero timeout uses DefaultTimeout.
func NewHTTPDownloader(timeout time.Duration) *HTTPDownloader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPDownloader{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads url into dest. The body is written to dest+".part" first
// and renamed on success, so a failed attempt never leaves a file at dest.
func (d *HTTPDownloader) Fetch(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	partial := dest + ".part"
	file, err := os.Create(partial)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", partial, err)
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(partial)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(partial)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(partial, dest); err != nil {
		os.Remove(partial)
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}
