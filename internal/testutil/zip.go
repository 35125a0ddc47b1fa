package testutil

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// BuildZip returns a zip archive holding files, keyed by slash separated path.
// Entries are written in sorted order so archives are reproducible.
func BuildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	return buildZip(t, files, "")
}

// BuildZipOfSize is BuildZip padded to exactly size bytes with an archive
// comment.
func BuildZipOfSize(t *testing.T, files map[string]string, size int) []byte {
	t.Helper()

	pad := size - len(buildZip(t, files, ""))
	if pad < 0 || pad > 0xffff {
		t.Fatalf("cannot pad zip to %d bytes", size)
	}
	data := buildZip(t, files, strings.Repeat("#", pad))
	if len(data) != size {
		t.Fatalf("zip is %d bytes, want %d", len(data), size)
	}
	return data
}

func buildZip(t *testing.T, files map[string]string, comment string) []byte {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		header := &zip.FileHeader{Name: name, Method: zip.Deflate}
		header.SetMode(0o644)

		w, err := zw.CreateHeader(header)
		if err != nil {
			t.Fatalf("failed to add %s to zip: %v", name, err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			t.Fatalf("failed to write %s to zip: %v", name, err)
		}
	}
	if err := zw.SetComment(comment); err != nil {
		t.Fatalf("failed to set zip comment: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

// WriteZip builds a zip from files and writes it into a fresh temp dir.
func WriteZip(t *testing.T, files map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "package.wpk")
	if err := os.WriteFile(path, BuildZip(t, files), 0o644); err != nil {
		t.Fatalf("failed to write zip: %v", err)
	}
	return path
}

// ReadTree returns every regular file below root keyed by slash separated
// relative path.
func ReadTree(t *testing.T, root string) map[string]string {
	t.Helper()

	tree := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		tree[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("failed to read tree %s: %v", root, err)
	}
	return tree
}
