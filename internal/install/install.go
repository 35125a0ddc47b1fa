package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/zer0users/wpk/internal/catalog"
	"github.com/zer0users/wpk/internal/script"
	"github.com/zer0users/wpk/internal/transfer"
)

// Config holds the collaborators of an Installer.
type Config struct {
	Catalog   Catalog
	Transfer  Transferer
	Extractor Extractor
	Scripts   ScriptRunner
	// Confirmer is required unless AssumeYes is set.
	Confirmer Confirmer
	AssumeYes bool

	// Out receives the user-facing install log. Defaults to io.Discard.
	Out io.Writer
	// TempDir is where workspaces are created; empty means os.TempDir().
	TempDir string
	// Progress is called while the archive downloads.
	Progress transfer.Observer
	Logger   *slog.Logger
	Clock    Clock
}

// Installer runs installs one at a time.
type Installer struct {
	catalog   Catalog
	transfer  Transferer
	extractor Extractor
	scripts   ScriptRunner
	confirmer Confirmer
	assumeYes bool
	out       io.Writer
	tempDir   string
	progress  transfer.Observer
	logger    *slog.Logger
	clock     Clock
}

// NewInstaller creates an installer.
func NewInstaller(cfg Config) (*Installer, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("Catalog is required")
	}
	if cfg.Transfer == nil {
		return nil, fmt.Errorf("Transfer is required")
	}
	if cfg.Extractor == nil {
		return nil, fmt.Errorf("Extractor is required")
	}
	if cfg.Scripts == nil {
		return nil, fmt.Errorf("Scripts is required")
	}
	if cfg.Confirmer == nil && !cfg.AssumeYes {
		return nil, fmt.Errorf("Confirmer is required unless AssumeYes is set")
	}

	i := &Installer{
		catalog:   cfg.Catalog,
		transfer:  cfg.Transfer,
		extractor: cfg.Extractor,
		scripts:   cfg.Scripts,
		confirmer: cfg.Confirmer,
		assumeYes: cfg.AssumeYes,
		out:       cfg.Out,
		tempDir:   cfg.TempDir,
		progress:  cfg.Progress,
		logger:    cfg.Logger,
		clock:     cfg.Clock,
	}
	if i.out == nil {
		i.out = io.Discard
	}
	if i.logger == nil {
		i.logger = slog.New(slog.DiscardHandler)
	}
	if i.clock == nil {
		i.clock = RealClock{}
	}
	return i, nil
}

// Install fetches, extracts and configures the named package.
//
// A declined confirmation is not an error: the result has OutcomeCancelled.
// Probe, transfer and extraction failures return an error wrapping
// catalog.ErrNotFound, transfer.ErrTransfer or archive.ErrExtraction. A
// missing or failing post-install script only adds a warning. The workspace
// is removed before Install returns, whatever the outcome.
func (i *Installer) Install(ctx context.Context, rawName string) (result *Result, err error) {
	start := i.clock.Now()
	result = &Result{Outcome: OutcomeFailed, State: StateInit}
	defer func() {
		result.Duration = i.clock.Now().Sub(start)
		i.logger.Debug("install finished",
			"package", rawName,
			"outcome", result.Outcome,
			"state", result.State,
			"duration", result.Duration)
	}()

	name, err := catalog.ParseName(rawName)
	if err != nil {
		return result, err
	}
	result.Package = name

	fmt.Fprintln(i.out, "Checking information..")

	ws, err := NewWorkspace(i.tempDir, name, i.catalog.ArchiveFilename(name))
	if err != nil {
		return result, err
	}
	defer func() {
		i.logger.Debug("install state", "package", name, "state", StateCleanup)
		if rmErr := ws.Remove(); rmErr != nil {
			i.logger.Warn("cleanup failed", "dir", ws.Dir, "error", rmErr)
		}
		if result.Outcome == OutcomeSuccess {
			i.enter(result, StateDone)
		}
	}()
	i.logger.Debug("workspace created", "dir", ws.Dir)

	i.enter(result, StateProbe)
	result.URL = i.catalog.ArchiveURL(name)
	size, err := i.catalog.ProbeSize(ctx, result.URL)
	if err != nil {
		return result, fmt.Errorf("package '%s': %w", name, err)
	}
	result.Size = size

	i.enter(result, StateConfirm)
	fmt.Fprintf(i.out, "=======%s=======\n", name.Display())
	if i.assumeYes {
		fmt.Fprintf(i.out, "This package is %d Bytes (%s)\n", size, transfer.HumanSize(size))
	} else {
		prompt := fmt.Sprintf("This package is %d Bytes, Do you want to continue? (Y/N): ", size)
		ok, err := i.confirmer.Confirm(ctx, prompt)
		if err != nil {
			return result, fmt.Errorf("confirm: %w", err)
		}
		if !ok {
			fmt.Fprintln(i.out, "Installation cancelled.")
			result.Outcome = OutcomeCancelled
			return result, nil
		}
	}
	fmt.Fprintln(i.out, "===================")

	i.enter(result, StateTransfer)
	progress, err := i.transfer.Download(ctx, transfer.Request{
		URL:          result.URL,
		Destination:  ws.Archive,
		ExpectedSize: size,
	}, i.progress)
	result.Transferred = progress.Transferred
	if err != nil {
		return result, fmt.Errorf("download %s: %w", name, err)
	}

	i.enter(result, StateExtract)
	if err := i.extractor.Extract(ctx, ws.Archive, ws.ExtractDir); err != nil {
		return result, fmt.Errorf("extract %s: %w", name, err)
	}
	if err := os.Remove(ws.Archive); err != nil {
		i.logger.Debug("remove archive", "path", ws.Archive, "error", err)
	}

	i.enter(result, StatePostInstall)
	scriptResult, err := i.scripts.FindAndRun(ctx, ws.ExtractDir)
	result.Script = scriptResult
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return result, ctx.Err()
	case errors.Is(err, script.ErrNoScript):
		fmt.Fprintln(i.out, "No Packagefile found, installation complete.")
		result.Warnings = append(result.Warnings, err)
	case errors.Is(err, script.ErrScript):
		fmt.Fprintln(i.out, "Warning: Packagefile execution returned non-zero exit code")
		result.Warnings = append(result.Warnings, err)
	default:
		fmt.Fprintf(i.out, "Warning: Package configuration may have failed: %v\n", err)
		result.Warnings = append(result.Warnings, err)
	}

	fmt.Fprintln(i.out, "==================")
	fmt.Fprintln(i.out, "Install done!")
	result.Outcome = OutcomeSuccess
	return result, nil
}

func (i *Installer) enter(result *Result, state State) {
	result.State = state
	i.logger.Debug("install state", "package", result.Package, "state", state)
}
