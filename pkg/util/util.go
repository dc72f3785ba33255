package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MatchesIgnore reports whether a slash-separated path relative to the walk root
// matches a gitignore-style pattern. Patterns containing a '/' are anchored to the
// root; bare patterns match any single path segment (e.g. ".git", "*.tmp").
// A trailing '/' restricts the pattern to directories.
func MatchesIgnore(pattern, relPath string, isDir bool) bool {
	pattern = strings.TrimSpace(filepath.ToSlash(pattern))
	relPath = filepath.ToSlash(relPath)
	if pattern == "" || relPath == "" || relPath == "." {
		return false
	}
	dirOnly := strings.HasSuffix(pattern, "/")
	pattern = strings.TrimSuffix(pattern, "/")
	if dirOnly && !isDir {
		return false
	}
	if strings.Contains(pattern, "/") {
		pattern = strings.TrimPrefix(pattern, "/")
		ok, _ := filepath.Match(pattern, relPath)
		return ok
	}
	for _, segment := range strings.Split(relPath, "/") {
		if ok, _ := filepath.Match(pattern, segment); ok {
			return true
		}
	}
	return false
}

// NormalizePrefix turns an operator-supplied protected directory into the canonical
// slash-separated form used for matching and as the destination subdirectory.
// It returns "" for entries that do not name a directory.
func NormalizePrefix(prefix string) string {
	p := strings.TrimSpace(filepath.ToSlash(prefix))
	p = strings.Trim(p, "/")
	if p == "" || p == "." {
		return ""
	}
	return filepath.ToSlash(filepath.Clean(p))
}

// MatchProtected returns the first prefix (already normalized) that covers relDir,
// comparing whole path segments: "assets" covers "assets" and "assets/img" but not
// "assets2".
func MatchProtected(relDir string, prefixes []string) (string, bool) {
	relDir = filepath.ToSlash(relDir)
	if relDir == "." || relDir == "" {
		return "", false
	}
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		if relDir == p || strings.HasPrefix(relDir, p+"/") {
			return p, true
		}
	}
	return "", false
}

// NextFreeName returns the first path of the form "<stem>-<n><ext>" (n starting at 1)
// for which taken reports false. A nil taken checks the filesystem.
func NextFreeName(path string, taken func(candidate string) bool) (string, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for n := 1; n < 10000; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, n, ext))
		if taken != nil {
			if !taken(candidate) {
				return candidate, nil
			}
			continue
		}
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate, nil
		} else if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("no free name found for %s", path)
}

// IsWithin reports whether child is root itself or located below it. Both paths
// must be absolute.
func IsWithin(root, child string) bool {
	rel, err := filepath.Rel(root, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
