package converter

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// copyFile copies src to dst, creating or truncating dst with src's permission bits.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(out, in)
	return err
}

// moveFile renames src to dst, falling back to copy and remove across devices.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return err
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// hasExtension reports whether name ends in one of exts. Extensions are compared
// as configured unless caseInsensitive is set.
func hasExtension(name string, exts []string, caseInsensitive bool) bool {
	ext := filepath.Ext(name)
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if ext == e || (caseInsensitive && strings.EqualFold(ext, e)) {
			return true
		}
	}
	return false
}

// relSlash returns target relative to root with '/' separators.
func relSlash(root, target string) string {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}

// isSymlink reports whether d is a symbolic link.
func isSymlink(d fs.DirEntry) bool {
	return d.Type()&fs.ModeSymlink != 0
}

// stageError wraps err with the sentinel kind and the path it concerns.
func stageError(kind error, path string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", kind, path)
	}
	return fmt.Errorf("%w: %s: %w", kind, path, err)
}
