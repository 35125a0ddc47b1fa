// Package archive unpacks downloaded package archives.
//
// Archives are zip files. Two unpackers are available: CommandUnpacker runs
// the system unzip tool, NativeUnpacker extracts in process. Select picks one
// by name.
package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// ErrExtraction marks every extraction failure.
var ErrExtraction = errors.New("failed to extract package")

// Unpacker extracts the full contents of an archive into an existing
// directory, overwriting files that are already there.
type Unpacker interface {
	Unpack(ctx context.Context, archivePath, targetDir string) error
	Name() string
}

// Extractor handles archive extraction
type Extractor struct {
	unpacker Unpacker
	logger   *slog.Logger
}

// NewExtractor creates a new extractor
func NewExtractor(unpacker Unpacker, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{unpacker: unpacker, logger: logger}
}

// Extract unpacks archivePath into targetDir, creating targetDir when it is
// missing. Extracting the same archive twice leaves identical contents.
func (e *Extractor) Extract(ctx context.Context, archivePath, targetDir string) error {
	if _, err := os.Stat(archivePath); err != nil {
		return fmt.Errorf("%w: open archive: %w", ErrExtraction, err)
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("%w: create dest dir: %w", ErrExtraction, err)
	}

	e.logger.Debug("extracting archive", "archive", archivePath, "dest", targetDir, "unpacker", e.unpacker.Name())
	if err := e.unpacker.Unpack(ctx, archivePath, targetDir); err != nil {
		return fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	return nil
}
