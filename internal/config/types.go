// Package config loads WPK's optional wpk.lua configuration.
//
// The file is evaluated in a sandboxed gopher-lua VM with a read-only
// "platform" table available, and must assign a global "wpk" table:
//
//	wpk = {
//	  repository = {
//	    base_url       = "https://example.com/packages/",
//	    listing_url    = "https://api.example.com/packages",
//	    archive_suffix = "wpk",
//	  },
//	  install = {
//	    interpreter = platform.when(platform.is_windows, "python", "python3"),
//	    script_name = "Packagefile",
//	    unpacker    = "auto", -- auto, unzip or builtin
//	    assume_yes  = false,
//	    temp_dir    = "",
//	  },
//	  http = { user_agent = "WPK/1.0" },
//	  log  = { level = "warn" },
//	}
//
// Every key is optional; missing keys keep their defaults.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/zer0users/wpk/internal/archive"
	"github.com/zer0users/wpk/internal/catalog"
	"github.com/zer0users/wpk/internal/script"
	"github.com/zer0users/wpk/internal/transfer"
)

// Config represents the complete WPK configuration.
type Config struct {
	Repository Repository
	Install    Install
	HTTP       HTTP
	Log        Log
}

// Repository locates the remote package catalog.
type Repository struct {
	BaseURL       string
	ListingURL    string
	ArchiveSuffix string
}

// Install tunes the install pipeline.
type Install struct {
	Interpreter string
	ScriptName  string
	Unpacker    string
	AssumeYes   bool
	// TempDir is where workspaces are created; empty means os.TempDir().
	TempDir string
}

// HTTP holds network settings.
type HTTP struct {
	UserAgent string
}

// Log holds logging settings.
type Log struct {
	Level string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Repository: Repository{
			BaseURL:       catalog.DefaultBaseURL,
			ListingURL:    catalog.DefaultListingURL,
			ArchiveSuffix: catalog.DefaultArchiveSuffix,
		},
		Install: Install{
			Interpreter: script.DefaultInterpreter,
			ScriptName:  script.DefaultName,
			Unpacker:    archive.KindAuto,
		},
		HTTP: HTTP{
			UserAgent: transfer.DefaultUserAgent,
		},
		Log: Log{
			Level: "warn",
		},
	}
}

// Validate checks the configuration for values WPK cannot work with.
func (c *Config) Validate() error {
	if err := validateHTTPURL("repository.base_url", c.Repository.BaseURL); err != nil {
		return err
	}
	if err := validateHTTPURL("repository.listing_url", c.Repository.ListingURL); err != nil {
		return err
	}

	suffix := c.Repository.ArchiveSuffix
	if suffix == "" || strings.ContainsAny(suffix, `/\ `) || strings.Contains(suffix, "..") {
		return fmt.Errorf("repository.archive_suffix %q is invalid", suffix)
	}

	if strings.TrimSpace(c.Install.Interpreter) == "" {
		return fmt.Errorf("install.interpreter cannot be empty")
	}

	name := c.Install.ScriptName
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("install.script_name %q must be a plain file name", name)
	}

	switch c.Install.Unpacker {
	case archive.KindAuto, archive.KindUnzip, archive.KindBuiltin:
	default:
		return fmt.Errorf("install.unpacker %q must be one of auto, unzip, builtin", c.Install.Unpacker)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}

	return nil
}

// SlogLevel converts Log.Level to a slog.Level.
func (l Log) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelWarn, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level %q is invalid: %w", l.Level, err)
	}
	return level, nil
}

func validateHTTPURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", field, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host", field)
	}
	return nil
}
