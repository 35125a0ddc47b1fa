package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileName is the name of the configuration file.
const FileName = "wpk.lua"

// DefaultPath returns <user config dir>/wpk/wpk.lua.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(dir, "wpk", FileName), nil
}

// Load returns the configuration at path. When path is empty the default
// location is tried and a missing file yields Default(). An explicitly
// named file must exist.
func Load(ctx context.Context, parser *Parser, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return Default(), nil
		}
	}

	cfg, err := parser.ParseFile(ctx, path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}
