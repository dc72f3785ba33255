package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gitayam/markdown2dokuwiki/internal/cli/config"
	"github.com/gitayam/markdown2dokuwiki/internal/cli/prompt"
	"github.com/gitayam/markdown2dokuwiki/internal/testutil"
	"github.com/gitayam/markdown2dokuwiki/pkg/converter"
	libgit "github.com/gitayam/markdown2dokuwiki/pkg/converter/git"
	libprobe "github.com/gitayam/markdown2dokuwiki/pkg/converter/probe"
)

// recordingSupplier counts how often each question was asked.
type recordingSupplier struct {
	prompt.StaticSupplier
	asked []string
}

func (r *recordingSupplier) Dialect() (converter.Dialect, error) {
	r.asked = append(r.asked, "dialect")
	return r.StaticSupplier.Dialect()
}

func (r *recordingSupplier) Flatten() (bool, error) {
	r.asked = append(r.asked, "flatten")
	return r.StaticSupplier.Flatten()
}

func (r *recordingSupplier) ProtectedPrefixes() ([]string, error) {
	r.asked = append(r.asked, "protected")
	return r.StaticSupplier.ProtectedPrefixes()
}

func TestResolveSettings(t *testing.T) {
	answers := prompt.StaticSupplier{
		DialectValue:   converter.DialectMediaWiki,
		FlattenValue:   true,
		ProtectedValue: []string{"assets"},
	}

	t.Run("asks for everything missing", func(t *testing.T) {
		cfg := config.Config{Interactive: true}
		s := &recordingSupplier{StaticSupplier: answers}

		require.NoError(t, ResolveSettings(&cfg, s))

		assert.Equal(t, []string{"dialect", "flatten", "protected"}, s.asked)
		assert.Equal(t, converter.DialectMediaWiki, cfg.Options.Dialect)
		assert.True(t, cfg.Options.Flatten)
		assert.Equal(t, []string{"assets"}, cfg.Options.ProtectedPrefixes)
	})

	t.Run("configured values are not asked", func(t *testing.T) {
		cfg := config.Config{Interactive: true, FlattenSet: true, ProtectedSet: true}
		cfg.Options.Dialect = converter.DialectDokuWiki
		cfg.Options.Flatten = true
		cfg.Options.ProtectedPrefixes = []string{"img"}
		s := &recordingSupplier{StaticSupplier: answers}

		require.NoError(t, ResolveSettings(&cfg, s))

		assert.Empty(t, s.asked)
		assert.Equal(t, converter.DialectDokuWiki, cfg.Options.Dialect)
		assert.Equal(t, []string{"img"}, cfg.Options.ProtectedPrefixes)
	})

	t.Run("no flattening means no protected question", func(t *testing.T) {
		cfg := config.Config{Interactive: true}
		s := &recordingSupplier{StaticSupplier: prompt.StaticSupplier{DialectValue: converter.DialectDokuWiki}}

		require.NoError(t, ResolveSettings(&cfg, s))

		assert.Equal(t, []string{"dialect", "flatten"}, s.asked)
		assert.False(t, cfg.Options.Flatten)
	})

	t.Run("non-interactive without dialect", func(t *testing.T) {
		cfg := config.Config{}
		s := &recordingSupplier{StaticSupplier: answers}

		err := ResolveSettings(&cfg, s)

		assert.ErrorIs(t, err, converter.ErrConfigValidation)
		assert.Contains(t, err.Error(), "dialect is required")
		assert.Empty(t, s.asked)
	})

	t.Run("non-interactive with dialect", func(t *testing.T) {
		cfg := config.Config{}
		cfg.Options.Dialect = converter.DialectDokuWiki
		s := &recordingSupplier{StaticSupplier: answers}

		require.NoError(t, ResolveSettings(&cfg, s))

		assert.Empty(t, s.asked)
		assert.False(t, cfg.Options.Flatten)
	})

	t.Run("invalid choice", func(t *testing.T) {
		cfg := config.Config{Interactive: true}
		s := prompt.NewLinePrompter(strings.NewReader("7\n"), &bytes.Buffer{})

		err := ResolveSettings(&cfg, s)

		assert.ErrorIs(t, err, converter.ErrConfigValidation)
		assert.ErrorIs(t, err, prompt.ErrInvalidChoice)
	})
}

func newRunConfig(t *testing.T) config.Config {
	t.Helper()
	base := t.TempDir()
	src := filepath.Join(base, "docs")
	testutil.CreateTree(t, src, map[string]string{
		"index.md":     "# Home\n",
		"img/logo.png": "png",
	})
	rev := new(testutil.MockRevisionReader)
	rev.On("ReadRevision", mock.Anything).Return(libgit.Revision{}, libgit.Errorf("not a repository"))

	var cfg config.Config
	cfg.Options = converter.Options{
		InputPath:       src,
		OutputPath:      filepath.Join(base, "docs_converted"),
		CollisionPolicy: converter.DefaultCollisionPolicy,
		WikiBaseURL:     converter.DefaultWikiBaseURL,
		DashMode:        converter.DefaultDashMode,
		HeadingMode:     converter.DefaultHeadingMode,
		OnErrorMode:     converter.OnErrorContinue,
		OutputFormat:    converter.OutputFormatText,
		Logger:          slog.DiscardHandler,
		RevisionReader:  rev,
	}
	cfg.Interactive = true
	cfg.ProbeEnabled = true
	return cfg
}

func TestRun_ConvertsAndSuggestsImport(t *testing.T) {
	cfg := newRunConfig(t)
	p := new(testutil.MockProbe)
	p.On("FindWikiContainer", mock.Anything, "dokuwiki").
		Return(libprobe.Container{Name: "wiki", Kind: "dokuwiki"}, nil).Once()
	var out, errOut bytes.Buffer
	env := Env{
		In:       strings.NewReader(""),
		Out:      &out,
		Err:      &errOut,
		Supplier: prompt.StaticSupplier{DialectValue: converter.DialectDokuWiki},
		Probe:    p,
	}

	err := Run(context.Background(), cfg, slog.New(slog.DiscardHandler), env)

	require.NoError(t, err)
	p.AssertExpectations(t)
	assert.Equal(t, "====== Home\n", testutil.ReadFile(t, cfg.Options.OutputPath, "index.txt"))
	assert.Contains(t, out.String(), "Copying files to the output directory")
	assert.Contains(t, out.String(), "Dialect:")
	assert.Contains(t, out.String(), "docker cp "+cfg.Options.OutputPath+"/. wiki:"+libprobe.DokuWikiImportPath)
	assert.Empty(t, errOut.String())
}

func TestRun_ProbeMissDegradesToManualInstructions(t *testing.T) {
	cfg := newRunConfig(t)
	p := new(testutil.MockProbe)
	p.On("FindWikiContainer", mock.Anything, "mediawiki").Return(libprobe.Container{}, libprobe.ErrNotFound)
	var out bytes.Buffer
	env := Env{
		In:       strings.NewReader(""),
		Out:      &out,
		Err:      &bytes.Buffer{},
		Supplier: prompt.StaticSupplier{DialectValue: converter.DialectMediaWiki},
		Probe:    p,
	}

	require.NoError(t, Run(context.Background(), cfg, slog.New(slog.DiscardHandler), env))

	assert.Contains(t, out.String(), "No running wiki container found")
}

func TestRun_JSONReportSkipsProbe(t *testing.T) {
	cfg := newRunConfig(t)
	cfg.Options.OutputFormat = converter.OutputFormatJSON
	p := new(testutil.MockProbe)
	var out, errOut bytes.Buffer
	env := Env{
		In:       strings.NewReader(""),
		Out:      &out,
		Err:      &errOut,
		Supplier: prompt.StaticSupplier{DialectValue: converter.DialectDokuWiki},
		Probe:    p,
	}

	require.NoError(t, Run(context.Background(), cfg, slog.New(slog.DiscardHandler), env))

	p.AssertNotCalled(t, "FindWikiContainer", mock.Anything, mock.Anything)
	var report converter.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report), "stdout must hold only the JSON report")
	assert.Equal(t, converter.DialectDokuWiki, report.Summary.Dialect)
	assert.Equal(t, 1, report.Summary.ProcessedCount)
	assert.Contains(t, errOut.String(), "Copying files to the output directory")
	assert.Contains(t, errOut.String(), "Cleaning and converting documents")
}

func TestRun_LinePromptsFromInput(t *testing.T) {
	cfg := newRunConfig(t)
	cfg.ProbeEnabled = false
	var errOut bytes.Buffer
	env := Env{
		In:  strings.NewReader("2\ny\n\n"),
		Out: &bytes.Buffer{},
		Err: &errOut,
	}

	require.NoError(t, Run(context.Background(), cfg, slog.New(slog.DiscardHandler), env))

	assert.Contains(t, errOut.String(), "Enter your choice (1/2): ")
	assert.Contains(t, errOut.String(), "flatten the directory structure")
	files := testutil.ListFiles(t, cfg.Options.OutputPath)
	assert.Contains(t, files, "index.txt")
	assert.Contains(t, files, "media/logo.png")
	assert.Equal(t, "= Home\n", testutil.ReadFile(t, cfg.Options.OutputPath, "index.txt"))
}

func TestRun_InvalidChoiceStopsBeforeWork(t *testing.T) {
	cfg := newRunConfig(t)
	env := Env{
		In:  strings.NewReader("9\n"),
		Out: &bytes.Buffer{},
		Err: &bytes.Buffer{},
	}

	err := Run(context.Background(), cfg, slog.New(slog.DiscardHandler), env)

	require.Error(t, err)
	assert.True(t, errors.Is(err, prompt.ErrInvalidChoice))
	assert.NoDirExists(t, cfg.Options.OutputPath)
}

func TestRun_InvalidSourceIsConfigError(t *testing.T) {
	cfg := newRunConfig(t)
	cfg.Options.InputPath = filepath.Join(t.TempDir(), "missing")
	env := Env{
		In:       strings.NewReader(""),
		Out:      &bytes.Buffer{},
		Err:      &bytes.Buffer{},
		Supplier: prompt.StaticSupplier{DialectValue: converter.DialectDokuWiki},
		Probe:    libprobe.NoOpProbe{},
	}

	err := Run(context.Background(), cfg, slog.New(slog.DiscardHandler), env)

	assert.ErrorIs(t, err, converter.ErrConfigValidation)
}
