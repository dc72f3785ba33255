package converter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
)

// Walker discovers the markup documents in the working tree.
type Walker struct {
	opts   *Options
	logger *slog.Logger
	hooks  Hooks
}

// NewWalker creates a new Walker.
func NewWalker(opts *Options, loggerHandler slog.Handler) *Walker {
	hooks := opts.EventHooks
	if hooks == nil {
		hooks = &NoOpHooks{}
	}
	return &Walker{
		opts:   opts,
		logger: slog.New(loggerHandler).With(slog.String("component", "walker")),
		hooks:  hooks,
	}
}

// Discover returns the absolute paths of all documents under the working tree
// whose extension is a configured markup extension, in lexical walk order.
// Documents already inside the media directory are converted like any other.
func (w *Walker) Discover(ctx context.Context) ([]string, error) {
	root := w.opts.OutputPath
	exts := w.opts.effectiveMarkupExtensions()
	w.logger.Info("Discovering documents", slog.String("path", root), slog.Any("extensions", exts),
		slog.Bool("caseInsensitive", w.opts.CaseInsensitiveExtensions))

	var docs []string
	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == root {
				return err
			}
			w.logger.Warn("Error accessing path during walk", slog.String("path", p), slog.String("error", err.Error()))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if isSymlink(d) || !hasExtension(d.Name(), exts, w.opts.CaseInsensitiveExtensions) {
			return nil
		}
		rel := relSlash(root, p)
		if hookErr := w.hooks.OnFileDiscovered(rel); hookErr != nil {
			w.logger.Warn("Event hook OnFileDiscovered failed", slog.String("path", rel), slog.String("error", hookErr.Error()))
		}
		docs = append(docs, p)
		return nil
	})
	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			w.logger.Info("Document discovery cancelled", slog.String("reason", walkErr.Error()))
			return nil, walkErr
		}
		w.logger.Error("Document discovery failed", slog.String("error", walkErr.Error()))
		return nil, fmt.Errorf("%w: %w", ErrWalkFailed, walkErr)
	}
	w.logger.Info("Document discovery completed", slog.Int("documents", len(docs)))
	return docs, nil
}
