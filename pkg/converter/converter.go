package converter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/gitayam/markdown2dokuwiki/pkg/converter/template"
	"github.com/gitayam/markdown2dokuwiki/pkg/util"
)

// GenerateWiki is the main entry point for the conversion library. It copies or
// flattens opts.InputPath into opts.OutputPath, moves media into the media
// directory, then cleans every document in place and writes its converted
// ".txt" sibling. Configuration problems are returned as errors wrapping
// ErrConfigValidation before any file is touched.
func GenerateWiki(ctx context.Context, opts Options) (Report, error) {
	engine, err := NewEngine(opts)
	if err != nil {
		if opts.Logger != nil {
			slog.New(opts.Logger).Error("Invalid options", slog.String("error", err.Error()))
		}
		return Report{}, err
	}
	return engine.Run(ctx)
}

// DefaultOutputPath returns "<cwd>/<source-name>_converted".
func DefaultOutputPath(cwd, inputPath string) string {
	name := filepath.Base(filepath.Clean(inputPath))
	return filepath.Join(cwd, name+ConvertedDirSuffix)
}

// validateOptions checks opts and fills in defaults in place.
func validateOptions(opts *Options) error {
	if opts.Logger == nil {
		return fmt.Errorf("%w: Logger implementation (slog.Handler) cannot be nil", ErrConfigValidation)
	}
	if opts.EventHooks == nil {
		opts.EventHooks = &NoOpHooks{}
	}

	if opts.InputPath == "" {
		return fmt.Errorf("%w: input path cannot be empty", ErrConfigValidation)
	}
	if opts.OutputPath == "" {
		return fmt.Errorf("%w: output path cannot be empty", ErrConfigValidation)
	}
	var err error
	if opts.InputPath, err = filepath.Abs(opts.InputPath); err != nil {
		return fmt.Errorf("%w: cannot resolve input path: %w", ErrConfigValidation, err)
	}
	if opts.OutputPath, err = filepath.Abs(opts.OutputPath); err != nil {
		return fmt.Errorf("%w: cannot resolve output path: %w", ErrConfigValidation, err)
	}
	info, err := os.Stat(opts.InputPath)
	if err != nil {
		return fmt.Errorf("%w: cannot access input path '%s': %w", ErrConfigValidation, opts.InputPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: input path '%s' is not a directory", ErrConfigValidation, opts.InputPath)
	}
	if util.IsWithin(opts.OutputPath, opts.InputPath) {
		return fmt.Errorf("%w: output path '%s' must not contain the input path", ErrConfigValidation, opts.OutputPath)
	}

	switch opts.Dialect {
	case DialectDokuWiki, DialectMediaWiki:
	case "":
		return fmt.Errorf("%w: dialect is required (dokuwiki or mediawiki)", ErrConfigValidation)
	default:
		return fmt.Errorf("%w: unknown dialect '%s' (expected dokuwiki or mediawiki)", ErrConfigValidation, opts.Dialect)
	}
	if opts.CollisionPolicy == "" {
		opts.CollisionPolicy = DefaultCollisionPolicy
	}
	if !slices.Contains([]CollisionPolicy{CollisionOverwrite, CollisionRename, CollisionError}, opts.CollisionPolicy) {
		return fmt.Errorf("%w: invalid collision policy '%s'", ErrConfigValidation, opts.CollisionPolicy)
	}
	if opts.DashMode == "" {
		opts.DashMode = DefaultDashMode
	}
	if !slices.Contains([]DashMode{DashAll, DashFrontMatter}, opts.DashMode) {
		return fmt.Errorf("%w: invalid dash mode '%s'", ErrConfigValidation, opts.DashMode)
	}
	if opts.HeadingMode == "" {
		opts.HeadingMode = DefaultHeadingMode
	}
	if !slices.Contains([]HeadingMode{HeadingLiteral, HeadingLine}, opts.HeadingMode) {
		return fmt.Errorf("%w: invalid heading mode '%s'", ErrConfigValidation, opts.HeadingMode)
	}
	if opts.OnErrorMode == "" {
		opts.OnErrorMode = DefaultOnErrorMode
	}
	if !slices.Contains([]OnErrorMode{OnErrorContinue, OnErrorStop}, opts.OnErrorMode) {
		return fmt.Errorf("%w: invalid onError mode '%s'", ErrConfigValidation, opts.OnErrorMode)
	}

	media := opts.mediaDirName()
	if media == "." || media == ".." || strings.ContainsAny(media, `/\`) {
		return fmt.Errorf("%w: media directory must be a single directory name, got '%s'", ErrConfigValidation, media)
	}

	// Protected prefixes are compared in normalized slash form.
	var prefixes []string
	for _, p := range opts.ProtectedPrefixes {
		n := util.NormalizePrefix(p)
		if n == "" || strings.HasPrefix(n, "../") || n == ".." {
			continue
		}
		if !slices.Contains(prefixes, n) {
			prefixes = append(prefixes, n)
		}
	}
	opts.ProtectedPrefixes = prefixes

	if opts.AuditTemplate == nil && opts.AuditTemplatePath != "" {
		tmpl, err := template.ParseTemplateFile(opts.AuditTemplatePath)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrConfigValidation, err)
		}
		opts.AuditTemplate = tmpl
	}

	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	return nil
}
