// Package testutil provides a fake WPK package repository and archive
// builders so tests never reach the real network.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

const (
	packagesPath = "/packages/"
	listingPath  = "/api/contents/packages"
)

// Repository is an httptest server that serves package archives under
// /packages/ and a GitHub style JSON listing of them.
type Repository struct {
	Server *httptest.Server

	mu       sync.Mutex
	order    []string
	archives map[string][]byte
	requests map[string]int

	omitLength    bool
	truncateAfter int
	listingBody   []byte
	listingStatus int
	userAgents    []string
}

// NewRepository starts a fake repository that is shut down when the test ends.
func NewRepository(t *testing.T) *Repository {
	t.Helper()

	r := &Repository{
		archives:      make(map[string][]byte),
		requests:      make(map[string]int),
		truncateAfter: -1,
		listingStatus: http.StatusOK,
	}
	r.Server = httptest.NewServer(http.HandlerFunc(r.serveHTTP))
	t.Cleanup(r.Server.Close)
	return r
}

// BaseURL is the archive base URL, with a trailing slash.
func (r *Repository) BaseURL() string {
	return r.Server.URL + packagesPath
}

// ListingURL is the listing endpoint URL.
func (r *Repository) ListingURL() string {
	return r.Server.URL + listingPath
}

// ArchiveURL returns the URL filename is served from.
func (r *Repository) ArchiveURL(filename string) string {
	return r.BaseURL() + filename
}

// AddArchive publishes data under filename, e.g. "water.wpk".
func (r *Repository) AddArchive(filename string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.archives[filename]; !ok {
		r.order = append(r.order, filename)
	}
	r.archives[filename] = data
}

// OmitContentLength makes HEAD responses carry no Content-Length header.
func (r *Repository) OmitContentLength() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.omitLength = true
}

// TruncateDownloads makes GET responses declare the full length but abort
// the connection after n bytes.
func (r *Repository) TruncateDownloads(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.truncateAfter = n
}

// SetListing replaces the generated listing with a raw body and status.
func (r *Repository) SetListing(status int, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listingStatus = status
	r.listingBody = []byte(body)
}

// Requests returns how many requests were made with method for path, where
// path is relative to the server root, e.g. "/packages/water.wpk".
func (r *Repository) Requests(method, path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[method+" "+path]
}

// UserAgents returns every User-Agent header seen, in order.
func (r *Repository) UserAgents() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.userAgents...)
}

func (r *Repository) serveHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	r.requests[req.Method+" "+req.URL.Path]++
	r.userAgents = append(r.userAgents, req.Header.Get("User-Agent"))
	r.mu.Unlock()

	switch {
	case req.URL.Path == listingPath:
		r.serveListing(w)
	case strings.HasPrefix(req.URL.Path, packagesPath):
		r.serveArchive(w, req, strings.TrimPrefix(req.URL.Path, packagesPath))
	default:
		http.NotFound(w, req)
	}
}

func (r *Repository) serveArchive(w http.ResponseWriter, req *http.Request, filename string) {
	r.mu.Lock()
	data, ok := r.archives[filename]
	omitLength := r.omitLength
	truncateAfter := r.truncateAfter
	r.mu.Unlock()

	if !ok {
		http.NotFound(w, req)
		return
	}

	w.Header().Set("Content-Type", "application/zip")

	switch req.Method {
	case http.MethodHead:
		if !omitLength {
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)
		if truncateAfter >= 0 && truncateAfter < len(data) {
			_, _ = w.Write(data[:truncateAfter])
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
			panic(http.ErrAbortHandler)
		}
		_, _ = w.Write(data)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type listingItem struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Size        int    `json:"size"`
	DownloadURL string `json:"download_url"`
}

func (r *Repository) serveListing(w http.ResponseWriter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if r.listingBody != nil || r.listingStatus != http.StatusOK {
		w.WriteHeader(r.listingStatus)
		_, _ = w.Write(r.listingBody)
		return
	}

	items := make([]listingItem, 0, len(r.order))
	for _, name := range r.order {
		items = append(items, listingItem{
			Name:        name,
			Type:        "file",
			Size:        len(r.archives[name]),
			DownloadURL: r.Server.URL + packagesPath + name,
		})
	}
	_ = json.NewEncoder(w).Encode(items)
}
