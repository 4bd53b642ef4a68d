// Package fetch downloads source images over HTTP.
package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/maraichr/imagesync/internal/config"
	"github.com/maraichr/imagesync/pkg/outcome"
)

const defaultTimeout = 5 * time.Second

// Fetcher performs a single GET per URL and buffers the whole body.
// Failures are returned as *outcome.Error with KindDownloadFailed.
type Fetcher struct {
	http      *http.Client
	userAgent string
	maxBytes  int64
}

func New(cfg config.FetchConfig) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	return &Fetcher{
		http:      &http.Client{Timeout: timeout, Transport: transport},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBytes,
	}
}

// Fetch returns the response body for url. Any status other than 200 is a
// failure carrying the status code.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, outcome.DownloadFailed(err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, outcome.DownloadFailed(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, outcome.DownloadStatus(resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, outcome.DownloadFailed(fmt.Errorf("read body: %w", err))
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, outcome.DownloadTooLarge(f.maxBytes)
	}
	return data, nil
}
