package converter_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gitayam/markdown2dokuwiki/internal/testutil"
	"github.com/gitayam/markdown2dokuwiki/pkg/converter"
)

func collect(t *testing.T, opts converter.Options) (converter.CollectResult, error) {
	t.Helper()
	c, err := converter.NewCollector(&opts, opts.Logger)
	require.NoError(t, err)
	return c.Collect(context.Background())
}

func destinations(files []converter.CollectedInfo) map[string]string {
	out := make(map[string]string, len(files))
	for _, f := range files {
		out[f.Path] = f.Destination
	}
	return out
}

func TestCollect_MirrorsTreeWithoutFlatten(t *testing.T) {
	opts, _ := newTestOptions(t)
	testutil.CreateTree(t, opts.InputPath, map[string]string{
		"index.md":           "# Home",
		"guides/setup.md":    "# Setup",
		"guides/img/net.png": "png",
	})
	testutil.CreateDummyDir(t, filepath.Join(opts.InputPath, "empty"))

	res, err := collect(t, opts)

	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Equal(t, []string{"guides/img/net.png", "guides/setup.md", "index.md"}, testutil.ListFiles(t, opts.OutputPath))
	assert.DirExists(t, filepath.Join(opts.OutputPath, "empty"), "directories are mirrored even when empty")
	assert.Equal(t, "# Setup", testutil.ReadFile(t, opts.OutputPath, "guides/setup.md"))
	assert.Equal(t, "# Home", testutil.ReadFile(t, opts.InputPath, "index.md"), "source must not be modified")
}

func TestCollect_FlattenWithProtectedPrefixes(t *testing.T) {
	opts, _ := newTestOptions(t)
	opts.Flatten = true
	opts.ProtectedPrefixes = []string{"assets"}
	testutil.CreateTree(t, opts.InputPath, map[string]string{
		"top.md":              "top",
		"notes/a.md":          "a",
		"notes/deep/b.md":     "b",
		"assets/img/logo.png": "logo",
		"assets/readme.md":    "readme",
		"assets2/c.md":        "c",
	})

	res, err := collect(t, opts)

	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Equal(t, map[string]string{
		"top.md":              "top.md",
		"notes/a.md":          "a.md",
		"notes/deep/b.md":     "b.md",
		"assets/img/logo.png": "assets/logo.png",
		"assets/readme.md":    "assets/readme.md",
		"assets2/c.md":        "c.md",
	}, destinations(res.Files))
	assert.Equal(t, []string{"a.md", "assets/logo.png", "assets/readme.md", "b.md", "c.md", "top.md"}, testutil.ListFiles(t, opts.OutputPath))
	for _, f := range res.Files {
		if f.Path == "assets/img/logo.png" {
			assert.Equal(t, "assets", f.Protected)
		}
		if f.Path == "assets2/c.md" {
			assert.Empty(t, f.Protected, "prefix match is segment aware")
		}
	}
}

func TestCollect_FlattenCollisionPolicies(t *testing.T) {
	tree := map[string]string{
		"a/dup.md": "first",
		"b/dup.md": "second",
	}

	t.Run("overwrite keeps last writer", func(t *testing.T) {
		opts, logBuf := newTestOptions(t)
		opts.Flatten = true
		opts.CollisionPolicy = converter.CollisionOverwrite
		hooks := testutil.NewPermissiveHooks()
		opts.EventHooks = hooks
		testutil.CreateTree(t, opts.InputPath, tree)

		res, err := collect(t, opts)

		require.NoError(t, err)
		assert.Empty(t, res.Errors)
		assert.Equal(t, []string{"dup.md"}, testutil.ListFiles(t, opts.OutputPath))
		assert.Equal(t, "second", testutil.ReadFile(t, opts.OutputPath, "dup.md"))
		assert.Contains(t, logBuf.String(), "Destination collision")
		hooks.AssertCalled(t, "OnNotice", "b/dup.md", mock.AnythingOfType("string"))
	})

	t.Run("rename appends a counter", func(t *testing.T) {
		opts, _ := newTestOptions(t)
		opts.Flatten = true
		opts.CollisionPolicy = converter.CollisionRename
		testutil.CreateTree(t, opts.InputPath, tree)

		res, err := collect(t, opts)

		require.NoError(t, err)
		assert.Equal(t, []string{"dup-1.md", "dup.md"}, testutil.ListFiles(t, opts.OutputPath))
		assert.Equal(t, "first", testutil.ReadFile(t, opts.OutputPath, "dup.md"))
		assert.Equal(t, "second", testutil.ReadFile(t, opts.OutputPath, "dup-1.md"))
		require.Len(t, res.Files, 2)
		assert.True(t, res.Files[1].Renamed)
		assert.Equal(t, "dup-1.md", res.Files[1].Destination)
	})

	t.Run("error records and keeps the first", func(t *testing.T) {
		opts, _ := newTestOptions(t)
		opts.Flatten = true
		opts.CollisionPolicy = converter.CollisionError
		testutil.CreateTree(t, opts.InputPath, tree)

		res, err := collect(t, opts)

		require.NoError(t, err)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "b/dup.md", res.Errors[0].Path)
		assert.Equal(t, converter.StageCollect, res.Errors[0].Stage)
		assert.Contains(t, res.Errors[0].Error, converter.ErrCollision.Error())
		assert.Equal(t, "first", testutil.ReadFile(t, opts.OutputPath, "dup.md"))
	})

	t.Run("error with stop mode aborts", func(t *testing.T) {
		opts, _ := newTestOptions(t)
		opts.Flatten = true
		opts.CollisionPolicy = converter.CollisionError
		opts.OnErrorMode = converter.OnErrorStop
		testutil.CreateTree(t, opts.InputPath, tree)

		_, err := collect(t, opts)

		require.Error(t, err)
		assert.True(t, errors.Is(err, converter.ErrCollision))
	})
}

func TestCollect_IgnorePatterns(t *testing.T) {
	opts, _ := newTestOptions(t)
	opts.IgnorePatterns = []string{".git/", "*.tmp", "!keep.bak"}
	testutil.CreateTree(t, opts.InputPath, map[string]string{
		".git/config":             "[core]",
		"scratch.tmp":             "tmp",
		"old.bak":                 "bak",
		"keep.bak":                "bak",
		"page.md":                 "page",
		converter.IgnoreFileName: "# backups\n*.bak\n",
	})

	res, err := collect(t, opts)

	require.NoError(t, err)
	assert.Equal(t, []string{"keep.bak", "page.md"}, testutil.ListFiles(t, opts.OutputPath))
	skipped := map[string]string{}
	for _, s := range res.Skipped {
		skipped[s.Path] = s.Reason
	}
	assert.Equal(t, converter.SkipReasonIgnored, skipped[".git"])
	assert.Equal(t, converter.SkipReasonIgnored, skipped["scratch.tmp"])
	assert.Equal(t, converter.SkipReasonIgnored, skipped["old.bak"])
	assert.Equal(t, converter.SkipReasonIgnored, skipped[converter.IgnoreFileName])
	assert.NotContains(t, skipped, "keep.bak")
}

func TestCollect_SkipsOutputDirInsideSource(t *testing.T) {
	opts, _ := newTestOptions(t)
	opts.OutputPath = filepath.Join(opts.InputPath, "out")
	testutil.CreateTree(t, opts.InputPath, map[string]string{
		"page.md":    "page",
		"out/old.md": "stale",
	})

	res, err := collect(t, opts)

	require.NoError(t, err)
	assert.Equal(t, []string{"old.md", "page.md"}, testutil.ListFiles(t, opts.OutputPath))
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "out", res.Skipped[0].Path)
	assert.Equal(t, converter.SkipReasonOutputDir, res.Skipped[0].Reason)
}

func TestCollect_SkipsSymlinks(t *testing.T) {
	opts, _ := newTestOptions(t)
	testutil.CreateTree(t, opts.InputPath, map[string]string{"page.md": "page"})
	if err := os.Symlink(filepath.Join(opts.InputPath, "page.md"), filepath.Join(opts.InputPath, "link.md")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	res, err := collect(t, opts)

	require.NoError(t, err)
	assert.Equal(t, []string{"page.md"}, testutil.ListFiles(t, opts.OutputPath))
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, converter.SkipReasonSymlink, res.Skipped[0].Reason)
}

func TestCollect_Cancelled(t *testing.T) {
	opts, _ := newTestOptions(t)
	testutil.CreateTree(t, opts.InputPath, map[string]string{"page.md": "page"})
	c, err := converter.NewCollector(&opts, opts.Logger)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.Collect(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}
