package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zer0users/wpk/internal/catalog"
	"github.com/zer0users/wpk/internal/config"
	"github.com/zer0users/wpk/internal/platform"
	"github.com/zer0users/wpk/internal/session"
)

// app is the state shared by commands that talk to the repository.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	session *session.Session
	catalog *catalog.Client
}

// open detects the platform, loads configuration and opens the network
// session. The caller must Close the returned app.
func (c *cli) open(ctx context.Context, opts *options) (*app, error) {
	info, err := platform.NewDetector().Detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect platform: %w", err)
	}

	parser := config.NewParser(platform.StaticDetector{Info: *info})
	cfg, err := config.Load(ctx, parser, opts.configPath)
	if err != nil {
		var parseErr *config.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("load config: %s", config.FormatError(parseErr, opts.debug))
		}
		return nil, err
	}

	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, err
	}
	if opts.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: level}))

	sess := session.Open(session.Options{
		UserAgent: cfg.HTTP.UserAgent,
		Platform:  info,
		Logger:    logger,
	})

	client, err := catalog.NewClient(catalog.Config{
		BaseURL:       cfg.Repository.BaseURL,
		ListingURL:    cfg.Repository.ListingURL,
		ArchiveSuffix: cfg.Repository.ArchiveSuffix,
		UserAgent:     sess.UserAgent,
		HTTPClient:    sess.Client,
		Logger:        sess.Logger,
	})
	if err != nil {
		sess.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		logger:  sess.Logger,
		session: sess,
		catalog: client,
	}, nil
}

// Close tears down the network session.
func (a *app) Close() {
	a.session.Close()
}
