// Package session holds the process-wide network state of a WPK run.
//
// A Session is opened once at startup and closed once before exit. Every
// network component shares its HTTP client, User-Agent and logger.
package session

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/zer0users/wpk/internal/platform"
	"github.com/zer0users/wpk/internal/transfer"
)

// DefaultMaxRedirects is how many redirects a request may follow.
const DefaultMaxRedirects = 10

// Options configures Open.
type Options struct {
	// UserAgent is the product token, e.g. "WPK/1.0". Empty means
	// transfer.DefaultUserAgent.
	UserAgent string
	// Platform is appended to the User-Agent as a comment when set.
	Platform     *platform.Info
	MaxRedirects int
	// Transport overrides the cloned default transport.
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// Session is the shared network state of one run.
type Session struct {
	ID        uuid.UUID
	Client    *http.Client
	UserAgent string
	Logger    *slog.Logger

	closeOnce sync.Once
}

// Open initialises the session. Close must be called when the run ends.
func Open(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	maxRedirects := opts.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}

	id := uuid.New()
	s := &Session{
		ID: id,
		Client: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		UserAgent: UserAgent(opts.UserAgent, opts.Platform),
		Logger:    logger.With("run_id", id.String()),
	}

	s.Logger.Debug("session opened", "user_agent", s.UserAgent)
	return s
}

// Close releases idle connections. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.Client.CloseIdleConnections()
		s.Logger.Debug("session closed")
	})
}

// UserAgent combines a product token with the platform comment:
// "WPK/1.0 (linux/amd64; ubuntu 22.04)". A product that already carries a
// comment is returned unchanged.
func UserAgent(product string, info *platform.Info) string {
	product = strings.TrimSpace(product)
	if product == "" {
		product = transfer.DefaultUserAgent
	}
	if info == nil || strings.Contains(product, "(") {
		return product
	}
	return fmt.Sprintf("%s (%s)", product, info.String())
}
