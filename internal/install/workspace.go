package install

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zer0users/wpk/internal/catalog"
)

// Workspace is the private temp directory of one install. It holds the
// downloaded archive and the extraction directory.
type Workspace struct {
	Dir        string
	Archive    string
	ExtractDir string
}

// NewWorkspace creates <root>/wpk_<name>_<random>. An empty root means
// os.TempDir().
func NewWorkspace(root string, name catalog.Name, archiveFilename string) (*Workspace, error) {
	dir, err := os.MkdirTemp(root, "wpk_"+name.String()+"_*")
	if err != nil {
		return nil, fmt.Errorf("create temporary directory: %w", err)
	}
	return &Workspace{
		Dir:        dir,
		Archive:    filepath.Join(dir, archiveFilename),
		ExtractDir: filepath.Join(dir, name.String()),
	}, nil
}

// Remove deletes the workspace and everything in it.
func (w *Workspace) Remove() error {
	if err := os.RemoveAll(w.Dir); err != nil {
		return fmt.Errorf("remove workspace %s: %w", w.Dir, err)
	}
	return nil
}
