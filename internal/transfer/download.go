// Package transfer streams remote archives to local files.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

const (
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "WPK/1.0"
	// DefaultProgressInterval throttles Observer calls
	DefaultProgressInterval = 200 * time.Millisecond
)

// ErrTransfer marks every download failure.
var ErrTransfer = errors.New("download failed")

// Request describes one download.
type Request struct {
	URL         string
	Destination string
	// ExpectedSize seeds Progress.Expected. When zero the response
	// Content-Length is used instead.
	ExpectedSize int64
}

// Downloader performs single-attempt HTTP downloads.
type Downloader struct {
	client    *http.Client
	userAgent string
	interval  time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// Option customizes a Downloader.
type Option func(*Downloader)

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(d *Downloader) {
		if ua != "" {
			d.userAgent = ua
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Downloader) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithProgressInterval sets the minimum time between Observer calls.
func WithProgressInterval(interval time.Duration) Option {
	return func(d *Downloader) {
		d.interval = interval
	}
}

// NewDownloader creates a downloader that issues requests through client.
// The client is expected to carry no overall timeout: transfers may take as
// long as the network needs.
func NewDownloader(client *http.Client, opts ...Option) *Downloader {
	d := &Downloader{
		client:    client,
		userAgent: DefaultUserAgent,
		interval:  DefaultProgressInterval,
		now:       time.Now,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download fetches req.URL into req.Destination. The destination must not
// exist yet; it is created exclusively. On any failure the partially written
// file is removed and the returned error wraps ErrTransfer. On success the
// file has been synced and closed.
func (d *Downloader) Download(ctx context.Context, req Request, observer Observer) (Progress, error) {
	progress, err := d.download(ctx, req, observer)
	if err != nil {
		return progress, fmt.Errorf("%w: %w", ErrTransfer, err)
	}
	return progress, nil
}

func (d *Downloader) download(ctx context.Context, req Request, observer Observer) (Progress, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return Progress{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", d.userAgent)

	file, err := os.OpenFile(req.Destination, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return Progress{}, fmt.Errorf("create output file: %w", err)
	}

	// Track whether we need to clean up the destination
	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			file.Close()
			os.Remove(req.Destination)
		}
	}()

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return Progress{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Progress{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	expected := req.ExpectedSize
	if expected <= 0 && resp.ContentLength > 0 {
		expected = resp.ContentLength
	}

	counter := newProgressWriter(expected, observer, d.interval, d.now)
	d.logger.Debug("download started", "url", req.URL, "dest", req.Destination, "expected", expected)

	if _, err := io.Copy(io.MultiWriter(file, counter), resp.Body); err != nil {
		return counter.progress, fmt.Errorf("copy response body: %w", err)
	}

	if err := file.Sync(); err != nil {
		return counter.progress, fmt.Errorf("sync output file: %w", err)
	}
	if err := file.Close(); err != nil {
		return counter.progress, fmt.Errorf("close output file: %w", err)
	}

	cleanupNeeded = false
	counter.finish()
	d.logger.Debug("download finished", "url", req.URL, "bytes", counter.progress.Transferred)
	return counter.progress, nil
}
