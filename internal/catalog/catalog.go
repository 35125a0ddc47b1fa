// Package catalog talks to the remote WPK package repository.
//
// It builds archive URLs from validated package names, probes the size of an
// archive with a HEAD request and lists the archives published in the
// repository's packages directory.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const (
	// DefaultBaseURL is where package archives are downloaded from.
	DefaultBaseURL = "https://github.com/zer0users/wpk-repositories/raw/refs/heads/main/packages/"
	// DefaultListingURL returns a JSON directory listing of DefaultBaseURL.
	DefaultListingURL = "https://api.github.com/repos/zer0users/wpk-repositories/contents/packages"
	// DefaultArchiveSuffix is the file extension of package archives.
	DefaultArchiveSuffix = "wpk"
)

var (
	// ErrInvalidName means a package name failed validation.
	ErrInvalidName = errors.New("invalid package name")
	// ErrNotFound means the archive is missing or its size is unknown.
	ErrNotFound = errors.New("package not found or size could not be determined")
	// ErrListingUnavailable means the listing endpoint could not be read.
	ErrListingUnavailable = errors.New("package listing unavailable")
	// ErrMalformedListing means the listing body is not a JSON array of objects.
	ErrMalformedListing = errors.New("malformed package listing")
)

// Config configures a Client.
type Config struct {
	BaseURL       string
	ListingURL    string
	ArchiveSuffix string
	UserAgent     string
	// HTTPClient is shared with the rest of the process. Required.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client accesses the remote catalog.
type Client struct {
	http       *http.Client
	baseURL    string
	listingURL string
	suffix     string
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates a catalog client. Empty fields in cfg fall back to the
// public WPK repository.
func NewClient(cfg Config) (*Client, error) {
	if cfg.HTTPClient == nil {
		return nil, fmt.Errorf("HTTPClient is required")
	}

	c := &Client{
		http:       cfg.HTTPClient,
		baseURL:    cfg.BaseURL,
		listingURL: cfg.ListingURL,
		suffix:     strings.TrimPrefix(cfg.ArchiveSuffix, "."),
		userAgent:  cfg.UserAgent,
		logger:     cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.listingURL == "" {
		c.listingURL = DefaultListingURL
	}
	if c.suffix == "" {
		c.suffix = DefaultArchiveSuffix
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c, nil
}

// Suffix returns the archive extension without the leading dot.
func (c *Client) Suffix() string {
	return c.suffix
}

// ArchiveFilename returns "<name>.<suffix>".
func (c *Client) ArchiveFilename(name Name) string {
	return name.String() + "." + c.suffix
}

// ArchiveURL returns "<base>/<name>.<suffix>".
func (c *Client) ArchiveURL(name Name) string {
	return strings.TrimRight(c.baseURL, "/") + "/" + c.ArchiveFilename(name)
}

// ProbeSize issues a HEAD request for url and returns the declared
// Content-Length. A missing or non-positive length, a non-2xx status and any
// transport failure all yield ErrNotFound. Redirects are followed.
func (c *Client) ProbeSize(ctx context.Context, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: create request: %v", ErrNotFound, err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("size probe failed", "url", url, "error", err)
		return 0, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("size probe rejected", "url", url, "status", resp.StatusCode)
		return 0, fmt.Errorf("%w: unexpected status code: %d", ErrNotFound, resp.StatusCode)
	}

	if resp.ContentLength <= 0 {
		c.logger.Debug("size probe without length", "url", url, "content_length", resp.ContentLength)
		return 0, ErrNotFound
	}

	c.logger.Debug("size probe", "url", url, "size", resp.ContentLength)
	return resp.ContentLength, nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}
