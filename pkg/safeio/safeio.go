package safeio

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when a reference resolves outside its root.
var ErrOutsideRoot = errors.New("path is outside the source root")

// JoinContained resolves ref against dir, both slash-separated and relative to
// a source root, and rejects results that escape the root. A ref starting with
// "@/" or "/" is resolved from the root itself. The result is a valid io/fs path.
func JoinContained(dir, ref string) (string, error) {
	ref = filepath.ToSlash(strings.TrimSpace(ref))
	if ref == "" {
		return "", errors.New("empty reference")
	}

	var joined string
	switch {
	case strings.HasPrefix(ref, "@/"):
		joined = path.Clean(strings.TrimPrefix(ref, "@/"))
	case strings.HasPrefix(ref, "/"):
		joined = path.Clean(strings.TrimPrefix(ref, "/"))
	default:
		joined = path.Join(dir, ref)
	}

	if joined == ".." || strings.HasPrefix(joined, "../") {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, ref)
	}
	return joined, nil
}

// WriteFile writes data to a sibling temp file and renames it over path so
// readers never observe a partially written artifact. Parent directories are
// created as needed and an existing file keeps its permission bits; new files
// get 0644.
func WriteFile(target string, data []byte) error {
	var mode os.FileMode = 0o644
	if st, err := os.Stat(target); err == nil {
		if st.IsDir() {
			return fmt.Errorf("%s is a directory", target)
		}
		if m := st.Mode() & 0o777; m != 0 {
			mode = m
		}
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
