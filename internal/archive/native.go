package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mholt/archiver"
)

// NativeUnpacker extracts zip archives in process.
type NativeUnpacker struct{}

// NewNativeUnpacker returns an in-process zip unpacker.
func NewNativeUnpacker() *NativeUnpacker {
	return &NativeUnpacker{}
}

// Name identifies the unpacker in logs.
func (u *NativeUnpacker) Name() string {
	return "builtin"
}

// Unpack validates every entry name and then extracts the archive,
// overwriting existing files.
func (u *NativeUnpacker) Unpack(ctx context.Context, archivePath, targetDir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	z := archiver.NewZip()
	z.OverwriteExisting = true
	z.MkdirAll = true

	err := z.Walk(archivePath, func(f archiver.File) error {
		name := entryName(f)
		if !isLocalPath(name) {
			return fmt.Errorf("illegal file path: %s", name)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := z.Unarchive(archivePath, targetDir); err != nil {
		return fmt.Errorf("unarchive: %w", err)
	}
	return nil
}

func entryName(f archiver.File) string {
	switch h := f.Header.(type) {
	case zip.FileHeader:
		return h.Name
	case *zip.FileHeader:
		return h.Name
	default:
		return f.Name()
	}
}

// isLocalPath reports whether an entry name stays inside the extraction root.
func isLocalPath(name string) bool {
	name = strings.TrimSuffix(strings.ReplaceAll(name, `\`, "/"), "/")
	return filepath.IsLocal(filepath.FromSlash(name))
}
