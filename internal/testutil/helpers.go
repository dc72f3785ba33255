package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// CreateDummyFile writes content at path, creating parent directories.
func CreateDummyFile(t *testing.T, path string, content string) {
	t.Helper()
	fullPath := filepath.Clean(path)
	dir := filepath.Dir(fullPath)
	require.NoError(t, os.MkdirAll(dir, 0755), "Failed to create directory %s for dummy file", dir)
	require.NoError(t, os.WriteFile(fullPath, []byte(content), 0644), "Failed to write dummy file %s", fullPath)
}

// CreateTree creates files under root from a map of slash-separated relative
// paths to contents.
func CreateTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		CreateDummyFile(t, filepath.Join(root, filepath.FromSlash(rel)), content)
	}
}

// ListFiles returns the slash-separated relative paths of all regular files
// under root, sorted.
func ListFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			rel, relErr := filepath.Rel(root, p)
			if relErr != nil {
				return relErr
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err, "Failed to list files under %s", root)
	sort.Strings(files)
	return files
}

// ReadFile returns the contents of root/rel as a string.
func ReadFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err, "Failed to read %s", rel)
	return string(data)
}

// CreateDummyDir ensures a directory exists at path, creating parents if needed.
func CreateDummyDir(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Clean(path), 0755), "Failed to create dummy directory %s", path)
}
