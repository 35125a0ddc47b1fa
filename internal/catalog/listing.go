package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxListingBytes bounds how much of a listing response is read.
const maxListingBytes = 16 << 20

// Entry is one installable package discovered in the listing.
type Entry struct {
	Name        string `json:"name" yaml:"name"`
	Size        int64  `json:"size,omitempty" yaml:"size,omitempty"`
	DownloadURL string `json:"download_url,omitempty" yaml:"download_url,omitempty"`
}

// listingItem mirrors one element of a GitHub contents API response.
type listingItem struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Size        int64  `json:"size"`
	DownloadURL string `json:"download_url"`
}

// List fetches the listing endpoint and returns every archive in it, with the
// archive suffix stripped, in the order the endpoint returned them.
func (c *Client) List(ctx context.Context) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.listingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrListingUnavailable, err)
	}
	c.setHeaders(req)
	req.Header.Set("Accept", "application/vnd.github+json, application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code: %d", ErrListingUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxListingBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrListingUnavailable, err)
	}

	entries, err := ParseListing(body, c.suffix)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("listing fetched", "url", c.listingURL, "entries", len(entries))
	return entries, nil
}

// ParseListing decodes a JSON directory listing and keeps the entries whose
// name ends in "."+suffix. Anything that is not a JSON array of objects is
// reported as ErrMalformedListing.
func ParseListing(body []byte, suffix string) ([]Entry, error) {
	var items []listingItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedListing, err)
	}
	if items == nil {
		return nil, fmt.Errorf("%w: listing is not an array", ErrMalformedListing)
	}

	ext := "." + strings.TrimPrefix(suffix, ".")
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		if item.Type != "" && item.Type != "file" {
			continue
		}
		name, ok := strings.CutSuffix(item.Name, ext)
		if !ok || name == "" {
			continue
		}
		entries = append(entries, Entry{
			Name:        name,
			Size:        item.Size,
			DownloadURL: item.DownloadURL,
		})
	}
	return entries, nil
}
