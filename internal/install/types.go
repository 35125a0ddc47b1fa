// Package install drives a single package installation through its states:
// Init, Probe, Confirm, Transfer, Extract, PostInstall, Cleanup and Done.
package install

import (
	"context"
	"time"

	"github.com/zer0users/wpk/internal/catalog"
	"github.com/zer0users/wpk/internal/script"
	"github.com/zer0users/wpk/internal/transfer"
)

// Catalog resolves and probes package archives.
type Catalog interface {
	ArchiveFilename(name catalog.Name) string
	ArchiveURL(name catalog.Name) string
	ProbeSize(ctx context.Context, url string) (int64, error)
}

// Transferer downloads an archive into the workspace.
type Transferer interface {
	Download(ctx context.Context, req transfer.Request, observer transfer.Observer) (transfer.Progress, error)
}

// Extractor unpacks an archive into a directory.
type Extractor interface {
	Extract(ctx context.Context, archivePath, targetDir string) error
}

// ScriptRunner runs the post-install script found under a directory.
type ScriptRunner interface {
	FindAndRun(ctx context.Context, rootDir string) (script.Result, error)
}

// Confirmer asks the user whether to go ahead.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// State is a step of the install state machine.
type State int

const (
	StateInit State = iota
	StateProbe
	StateConfirm
	StateTransfer
	StateExtract
	StatePostInstall
	StateCleanup
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateProbe:
		return "probe"
	case StateConfirm:
		return "confirm"
	case StateTransfer:
		return "transfer"
	case StateExtract:
		return "extract"
	case StatePostInstall:
		return "postinstall"
	case StateCleanup:
		return "cleanup"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Outcome is how an install ended.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeCancelled
	OutcomeSuccess
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "failed"
	}
}

// Result summarises one install.
type Result struct {
	Outcome Outcome
	// State is StateDone on success, otherwise the state in which the
	// install stopped.
	State       State
	Package     catalog.Name
	URL         string
	Size        int64
	Transferred int64
	Script      script.Result
	// Warnings holds non-fatal problems, such as a missing or failing
	// post-install script.
	Warnings []error
	Duration time.Duration
}
