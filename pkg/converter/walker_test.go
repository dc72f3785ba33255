package converter_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitayam/markdown2dokuwiki/internal/testutil"
	"github.com/gitayam/markdown2dokuwiki/pkg/converter"
)

func relAll(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestDiscover_FindsMarkupDocuments(t *testing.T) {
	opts, _ := newTestOptions(t)
	hooks := testutil.NewPermissiveHooks()
	opts.EventHooks = hooks
	testutil.CreateTree(t, opts.OutputPath, map[string]string{
		"a.md":            "a",
		"sub/b.md":        "b",
		"sub/b.md.log":    "log",
		"UPPER.MD":        "upper",
		"media/embed.md":  "page kept in media",
		"media/photo.jpg": "jpg",
	})

	docs, err := converter.NewWalker(&opts, opts.Logger).Discover(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "media/embed.md", "sub/b.md"}, relAll(t, opts.OutputPath, docs))
	hooks.AssertCalled(t, "OnFileDiscovered", "sub/b.md")
	hooks.AssertCalled(t, "OnFileDiscovered", "media/embed.md")
	hooks.AssertNumberOfCalls(t, "OnFileDiscovered", 3)
}

func TestDiscover_CaseInsensitiveAndCustomExtensions(t *testing.T) {
	opts, _ := newTestOptions(t)
	opts.CaseInsensitiveExtensions = true
	opts.MarkupExtensions = []string{".md", ".markdown"}
	testutil.CreateTree(t, opts.OutputPath, map[string]string{
		"a.md":       "a",
		"B.MD":       "b",
		"c.markdown": "c",
		"d.txt":      "d",
	})

	docs, err := converter.NewWalker(&opts, opts.Logger).Discover(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"B.MD", "a.md", "c.markdown"}, relAll(t, opts.OutputPath, docs))
}

func TestDiscover_MissingRoot(t *testing.T) {
	opts, _ := newTestOptions(t)
	opts.OutputPath = filepath.Join(opts.OutputPath, "does-not-exist")

	_, err := converter.NewWalker(&opts, opts.Logger).Discover(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, converter.ErrWalkFailed))
}

func TestDiscover_Cancelled(t *testing.T) {
	opts, _ := newTestOptions(t)
	testutil.CreateTree(t, opts.OutputPath, map[string]string{"a.md": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := converter.NewWalker(&opts, opts.Logger).Discover(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, converter.ErrWalkFailed))
}
