package converter

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/gitayam/markdown2dokuwiki/pkg/util"
)

// CollectResult holds the outcome of the collect stage.
type CollectResult struct {
	Files   []CollectedInfo
	Skipped []SkippedInfo
	Errors  []ErrorInfo
}

// Collector copies the source tree into the working tree, either verbatim or
// flattened. When flattening, files under a protected prefix land in
// <prefix>/<filename>; every other file lands in the working tree root.
type Collector struct {
	opts    *Options
	logger  *slog.Logger
	hooks   Hooks
	ignore  *ignoreMatcher
	claimed map[string]string // destination abs path -> source rel path
}

// NewCollector creates a new Collector.
func NewCollector(opts *Options, loggerHandler slog.Handler) (*Collector, error) {
	logger := slog.New(loggerHandler).With(slog.String("component", "collector"))
	ignore, err := newIgnoreMatcher(opts.InputPath, opts.IgnorePatterns, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ignore patterns: %w", err)
	}
	logger.Debug("Ignore patterns loaded", slog.Int("count", ignore.patternCount()))
	hooks := opts.EventHooks
	if hooks == nil {
		hooks = &NoOpHooks{}
	}
	return &Collector{
		opts:    opts,
		logger:  logger,
		hooks:   hooks,
		ignore:  ignore,
		claimed: make(map[string]string),
	}, nil
}

// Collect walks the source tree and copies every eligible file. Per-file failures
// are recorded in the result; the returned error is non-nil only when the walk
// itself fails, the context is cancelled, or a file error occurs with
// OnErrorMode "stop".
func (c *Collector) Collect(ctx context.Context) (CollectResult, error) {
	var res CollectResult
	root := c.opts.InputPath
	if err := os.MkdirAll(c.opts.OutputPath, 0755); err != nil {
		return res, stageError(ErrMkdirFailed, c.opts.OutputPath, err)
	}
	if hookErr := c.hooks.OnStageStart(StageCollect, -1); hookErr != nil {
		c.logger.Warn("Event hook OnStageStart failed", slog.String("error", hookErr.Error()))
	}
	c.logger.Info("Collecting source tree",
		slog.String("source", root),
		slog.String("destination", c.opts.OutputPath),
		slog.Bool("flatten", c.opts.Flatten),
		slog.Any("protected", c.opts.ProtectedPrefixes))

	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == root {
				return stageError(ErrWalkFailed, p, err)
			}
			rel := relSlash(root, p)
			c.logger.Warn("Error accessing path during walk", slog.String("path", rel), slog.String("error", err.Error()))
			res.Errors = append(res.Errors, ErrorInfo{Path: rel, Stage: StageCollect, Error: stageError(ErrReadFailed, rel, err).Error()})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return c.stopIfRequested(rel, err)
		}
		rel := relSlash(root, p)
		if rel == "." {
			return nil
		}

		if d.IsDir() && util.IsWithin(c.opts.OutputPath, p) {
			c.logger.Debug("Skipping output directory inside source", slog.String("path", rel))
			res.Skipped = append(res.Skipped, SkippedInfo{Path: rel, Stage: StageCollect, Reason: SkipReasonOutputDir})
			return filepath.SkipDir
		}
		if isSymlink(d) {
			c.logger.Debug("Skipping symbolic link", slog.String("path", rel))
			res.Skipped = append(res.Skipped, SkippedInfo{Path: rel, Stage: StageCollect, Reason: SkipReasonSymlink})
			return nil
		}
		if ignored, pattern := c.ignore.Match(rel, d.IsDir()); ignored {
			c.logger.Debug("Path ignored", slog.String("path", rel), slog.String("pattern", pattern))
			res.Skipped = append(res.Skipped, SkippedInfo{Path: rel, Stage: StageCollect, Reason: SkipReasonIgnored, Details: "Matched pattern: " + pattern})
			_ = c.hooks.OnFileStatusUpdate(rel, StatusSkipped, "Ignored by pattern: "+pattern, 0)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !c.opts.Flatten {
				if err := os.MkdirAll(filepath.Join(c.opts.OutputPath, filepath.FromSlash(rel)), 0755); err != nil {
					res.Errors = append(res.Errors, ErrorInfo{Path: rel, Stage: StageCollect, Error: stageError(ErrMkdirFailed, rel, err).Error()})
					return c.stopIfRequested(rel, err)
				}
			}
			return nil
		}

		if hookErr := c.hooks.OnFileDiscovered(rel); hookErr != nil {
			c.logger.Warn("Event hook OnFileDiscovered failed", slog.String("path", rel), slog.String("error", hookErr.Error()))
		}
		info, err := c.collectFile(p, rel)
		if err != nil {
			c.logger.Warn("Failed to collect file", slog.String("path", rel), slog.String("error", err.Error()))
			res.Errors = append(res.Errors, ErrorInfo{Path: rel, Stage: StageCollect, Error: err.Error()})
			_ = c.hooks.OnFileStatusUpdate(rel, StatusFailed, err.Error(), 0)
			return c.stopIfRequested(rel, err)
		}
		res.Files = append(res.Files, info)
		return nil
	})

	if walkErr != nil {
		c.logger.Error("Collection stopped", slog.String("error", walkErr.Error()))
		return res, walkErr
	}
	c.logger.Info("Collection completed", slog.Int("files", len(res.Files)), slog.Int("skipped", len(res.Skipped)), slog.Int("errors", len(res.Errors)))
	return res, nil
}

// destination computes the working-tree relative destination of a source file.
func (c *Collector) destination(rel string) (string, string) {
	if !c.opts.Flatten {
		return rel, ""
	}
	base := path.Base(rel)
	if prefix, ok := util.MatchProtected(path.Dir(rel), c.opts.ProtectedPrefixes); ok {
		return prefix + "/" + base, prefix
	}
	return base, ""
}

func (c *Collector) collectFile(absSrc, rel string) (CollectedInfo, error) {
	start := time.Now()
	destRel, protected := c.destination(rel)
	dest := filepath.Join(c.opts.OutputPath, filepath.FromSlash(destRel))
	info := CollectedInfo{Path: rel, Protected: protected}

	if prev, taken := c.claimed[dest]; taken {
		switch c.opts.CollisionPolicy {
		case CollisionError:
			return info, fmt.Errorf("%w: %s (already collected from %s)", ErrCollision, destRel, prev)
		case CollisionRename:
			renamed, err := util.NextFreeName(dest, func(candidate string) bool {
				_, used := c.claimed[candidate]
				return used
			})
			if err != nil {
				return info, stageError(ErrCopyFailed, rel, err)
			}
			dest = renamed
			destRel = relSlash(c.opts.OutputPath, dest)
			info.Renamed = true
		default:
			c.logger.Warn("Destination collision, last writer wins",
				slog.String("destination", destRel), slog.String("previous", prev), slog.String("current", rel))
			_ = c.hooks.OnNotice(rel, fmt.Sprintf("overwrites %s collected from %s", destRel, prev))
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return info, stageError(ErrMkdirFailed, filepath.Dir(destRel), err)
	}
	if err := copyFile(absSrc, dest); err != nil {
		return info, stageError(ErrCopyFailed, rel, err)
	}
	c.claimed[dest] = rel
	info.Destination = destRel

	c.logger.Debug("Collected file", slog.String("path", rel), slog.String("destination", destRel))
	if hookErr := c.hooks.OnFileStatusUpdate(rel, StatusCopied, "-> "+destRel, time.Since(start)); hookErr != nil {
		c.logger.Warn("Event hook OnFileStatusUpdate failed", slog.String("path", rel), slog.String("error", hookErr.Error()))
	}
	return info, nil
}

// stopIfRequested turns a per-file failure into a walk-terminating error when
// OnErrorMode is "stop".
func (c *Collector) stopIfRequested(rel string, err error) error {
	if c.opts.OnErrorMode == OnErrorStop {
		return fmt.Errorf("processing stopped due to error on %s: %w", rel, err)
	}
	return nil
}
