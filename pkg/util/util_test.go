package util_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gitayam/markdown2dokuwiki/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesIgnore(t *testing.T) {
	testCases := []struct {
		name     string
		pattern  string
		relPath  string
		isDir    bool
		expected bool
	}{
		{name: "Bare name matches root segment", pattern: ".git", relPath: ".git", isDir: true, expected: true},
		{name: "Bare name matches nested segment", pattern: "node_modules", relPath: "a/node_modules/x.md", expected: true},
		{name: "Glob matches file segment", pattern: "*.tmp", relPath: "notes/draft.tmp", expected: true},
		{name: "Glob does not match other ext", pattern: "*.tmp", relPath: "notes/draft.md", expected: false},
		{name: "Anchored pattern matches from root", pattern: "drafts/*.md", relPath: "drafts/a.md", expected: true},
		{name: "Anchored pattern does not match nested", pattern: "drafts/*.md", relPath: "x/drafts/a.md", expected: false},
		{name: "Leading slash is anchored", pattern: "/build", relPath: "build", isDir: true, expected: true},
		{name: "Dir-only pattern skips files", pattern: "build/", relPath: "build", isDir: false, expected: false},
		{name: "Dir-only pattern matches dirs", pattern: "build/", relPath: "build", isDir: true, expected: true},
		{name: "Empty pattern never matches", pattern: "", relPath: "a.md", expected: false},
		{name: "Root path never matches", pattern: "*", relPath: ".", isDir: true, expected: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, util.MatchesIgnore(tc.pattern, tc.relPath, tc.isDir))
		})
	}
}

func TestNormalizePrefix(t *testing.T) {
	assert.Equal(t, "assets", util.NormalizePrefix("assets/"))
	assert.Equal(t, "assets", util.NormalizePrefix("  /assets  "))
	assert.Equal(t, "docs/api", util.NormalizePrefix("docs//api/"))
	assert.Equal(t, "", util.NormalizePrefix(" "))
	assert.Equal(t, "", util.NormalizePrefix("./"))
}

func TestMatchProtected(t *testing.T) {
	prefixes := []string{"assets", "docs/api"}

	p, ok := util.MatchProtected("assets/img", prefixes)
	assert.True(t, ok)
	assert.Equal(t, "assets", p)

	p, ok = util.MatchProtected("assets", prefixes)
	assert.True(t, ok)
	assert.Equal(t, "assets", p)

	_, ok = util.MatchProtected("assets2", prefixes)
	assert.False(t, ok, "segment-aware matching must not treat assets2 as assets")

	p, ok = util.MatchProtected("docs/api/v1", prefixes)
	assert.True(t, ok)
	assert.Equal(t, "docs/api", p)

	_, ok = util.MatchProtected(".", prefixes)
	assert.False(t, ok)
}

func TestNextFreeName(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "page.md")
	require.NoError(t, os.WriteFile(target, []byte("a"), 0644))

	next, err := util.NextFreeName(target, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "page-1.md"), next)

	require.NoError(t, os.WriteFile(next, []byte("b"), 0644))
	next, err = util.NextFreeName(target, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "page-2.md"), next)

	claimed := map[string]bool{filepath.Join(dir, "page-1.md"): true}
	next, err = util.NextFreeName(target, func(c string) bool { return claimed[c] })
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "page-2.md"), next, "predicate replaces the filesystem check")

	next, err = util.NextFreeName(filepath.Join(dir, "README"), func(string) bool { return false })
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "README-1"), next)
}

func TestIsWithin(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "src")
	assert.True(t, util.IsWithin(root, root))
	assert.True(t, util.IsWithin(root, filepath.Join(root, "a", "b")))
	assert.False(t, util.IsWithin(root, filepath.Join(string(filepath.Separator), "src2")))
	assert.False(t, util.IsWithin(root, string(filepath.Separator)))
}
