package converter_test

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/gitayam/markdown2dokuwiki/internal/testutil"
	"github.com/gitayam/markdown2dokuwiki/pkg/converter"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// newTestOptions returns options with a fresh source and (not yet created)
// output directory, a buffered debug logger and permissive hooks.
func newTestOptions(t *testing.T) (converter.Options, *bytes.Buffer) {
	t.Helper()
	logBuf := &bytes.Buffer{}
	base := t.TempDir()
	opts := converter.Options{
		InputPath:   filepath.Join(base, "docs"),
		OutputPath:  filepath.Join(base, "docs"+converter.ConvertedDirSuffix),
		Dialect:     converter.DialectDokuWiki,
		WikiBaseURL: converter.DefaultWikiBaseURL,
		Logger:      slog.NewTextHandler(logBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		EventHooks:  testutil.NewPermissiveHooks(),
		RunID:       "test-run",
		Now:         func() time.Time { return fixedNow },
	}
	testutil.CreateDummyDir(t, opts.InputPath)
	return opts, logBuf
}
