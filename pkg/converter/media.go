package converter

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gitayam/markdown2dokuwiki/pkg/util"
)

// MediaResult holds the outcome of the media stage.
type MediaResult struct {
	Files   []MediaInfo
	Skipped []SkippedInfo
	Errors  []ErrorInfo
}

// MediaExtractor moves every media file in the working tree into a single flat
// media directory under its root. Directory structure is discarded.
type MediaExtractor struct {
	opts   *Options
	logger *slog.Logger
	hooks  Hooks
}

// NewMediaExtractor creates a new MediaExtractor.
func NewMediaExtractor(opts *Options, loggerHandler slog.Handler) *MediaExtractor {
	hooks := opts.EventHooks
	if hooks == nil {
		hooks = &NoOpHooks{}
	}
	return &MediaExtractor{
		opts:   opts,
		logger: slog.New(loggerHandler).With(slog.String("component", "media")),
		hooks:  hooks,
	}
}

// MediaDir returns the absolute path of the media directory.
func (m *MediaExtractor) MediaDir() string {
	return filepath.Join(m.opts.OutputPath, m.opts.mediaDirName())
}

// Extract finds media files (case-insensitive extension match) outside the media
// directory and moves them into it. Candidates are gathered before anything is
// moved so the walk never sees its own output.
func (m *MediaExtractor) Extract(ctx context.Context) (MediaResult, error) {
	var res MediaResult
	root := m.opts.OutputPath
	mediaDir := m.MediaDir()
	if err := os.MkdirAll(mediaDir, 0755); err != nil {
		return res, stageError(ErrMkdirFailed, mediaDir, err)
	}
	exts := m.opts.effectiveMediaExtensions()

	var candidates []string
	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == root {
				return stageError(ErrWalkFailed, p, err)
			}
			rel := relSlash(root, p)
			res.Errors = append(res.Errors, ErrorInfo{Path: rel, Stage: StageMedia, Error: stageError(ErrReadFailed, rel, err).Error()})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p == mediaDir {
				return filepath.SkipDir
			}
			return nil
		}
		if isSymlink(d) || !hasExtension(d.Name(), exts, true) {
			return nil
		}
		candidates = append(candidates, p)
		return nil
	})
	if walkErr != nil {
		return res, walkErr
	}

	if hookErr := m.hooks.OnStageStart(StageMedia, len(candidates)); hookErr != nil {
		m.logger.Warn("Event hook OnStageStart failed", slog.String("error", hookErr.Error()))
	}
	m.logger.Info("Extracting media", slog.Int("candidates", len(candidates)), slog.String("mediaDir", mediaDir))

	for _, src := range candidates {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rel := relSlash(root, src)
		info, err := m.moveOne(src, rel)
		if err != nil {
			m.logger.Warn("Failed to move media file", slog.String("path", rel), slog.String("error", err.Error()))
			res.Errors = append(res.Errors, ErrorInfo{Path: rel, Stage: StageMedia, Error: err.Error()})
			_ = m.hooks.OnFileStatusUpdate(rel, StatusFailed, err.Error(), 0)
			if m.opts.OnErrorMode == OnErrorStop {
				return res, fmt.Errorf("processing stopped due to error on %s: %w", rel, err)
			}
			continue
		}
		res.Files = append(res.Files, info)
	}
	m.logger.Info("Media extraction completed", slog.Int("moved", len(res.Files)), slog.Int("errors", len(res.Errors)))
	return res, nil
}

func (m *MediaExtractor) moveOne(src, rel string) (MediaInfo, error) {
	start := time.Now()
	info := MediaInfo{Path: rel}
	dest := filepath.Join(m.MediaDir(), filepath.Base(src))

	if _, err := os.Lstat(dest); err == nil {
		switch m.opts.CollisionPolicy {
		case CollisionError:
			return info, fmt.Errorf("%w: %s", ErrCollision, relSlash(m.opts.OutputPath, dest))
		case CollisionRename:
			renamed, err := util.NextFreeName(dest, nil)
			if err != nil {
				return info, stageError(ErrMoveFailed, rel, err)
			}
			dest = renamed
			info.Renamed = true
		default:
			m.logger.Warn("Media collision, last writer wins", slog.String("path", rel), slog.String("destination", relSlash(m.opts.OutputPath, dest)))
			_ = m.hooks.OnNotice(rel, "overwrites "+relSlash(m.opts.OutputPath, dest))
		}
	}

	if err := moveFile(src, dest); err != nil {
		return info, stageError(ErrMoveFailed, rel, err)
	}
	info.Destination = relSlash(m.opts.OutputPath, dest)
	m.logger.Debug("Moved media file", slog.String("path", rel), slog.String("destination", info.Destination))
	if hookErr := m.hooks.OnFileStatusUpdate(rel, StatusMoved, "-> "+info.Destination, time.Since(start)); hookErr != nil {
		m.logger.Warn("Event hook OnFileStatusUpdate failed", slog.String("path", rel), slog.String("error", hookErr.Error()))
	}
	return info, nil
}
