package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Engine sequences the stages of a run: collect, extract media, then clean and
// convert each discovered document. Stages run strictly in order on a single
// goroutine; a cancelled context stops the run between files and leaves the
// working tree as it is.
type Engine struct {
	opts       *Options
	logger     *slog.Logger
	hooks      Hooks
	aggregator *reportAggregator
}

// NewEngine validates opts, fills in defaults and returns an Engine.
func NewEngine(opts Options) (*Engine, error) {
	if err := validateOptions(&opts); err != nil {
		return nil, err
	}
	return &Engine{
		opts:       &opts,
		logger:     slog.New(opts.Logger).With(slog.String("component", "engine")),
		hooks:      opts.EventHooks,
		aggregator: newReportAggregator(),
	}, nil
}

// Run executes the pipeline and returns the report. A non-nil error means the run
// stopped early (walk failure, cancellation, or a file error under OnErrorMode
// "stop"); the report still describes everything done up to that point.
func (e *Engine) Run(ctx context.Context) (report Report, finalErr error) {
	startTime := time.Now()
	e.logger.Info("Starting wiki conversion run",
		slog.String("runID", e.opts.RunID),
		slog.String("source", e.opts.InputPath),
		slog.String("output", e.opts.OutputPath),
		slog.String("dialect", string(e.opts.Dialect)))

	e.readRevision()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Panic recovered during engine run", "panicValue", r)
			finalErr = fmt.Errorf("panic during execution: %v", r)
		}
		report = e.aggregator.getReport(e.opts, startTime, finalErr != nil)
		e.logger.Info("Wiki conversion run finished",
			slog.Duration("duration", time.Since(startTime)),
			slog.Int("collected", report.Summary.CollectedCount),
			slog.Int("media", report.Summary.MediaCount),
			slog.Int("processed", report.Summary.ProcessedCount),
			slog.Int("changed", report.Summary.ChangedCount),
			slog.Int("skipped", report.Summary.SkippedCount),
			slog.Int("errors", report.Summary.ErrorCount),
			slog.Bool("fatalErrorOccurred", report.Summary.FatalErrorOccurred),
		)
		if hookErr := e.hooks.OnRunComplete(report); hookErr != nil {
			e.logger.Warn("OnRunComplete hook returned an error", slog.String("error", hookErr.Error()))
		}
	}()

	// --- Collect ---
	collector, err := NewCollector(e.opts, e.opts.Logger)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}
	collected, err := collector.Collect(ctx)
	e.aggregator.addCollect(collected)
	if err != nil {
		return Report{}, e.stopError(StageCollect, err)
	}

	// --- Media ---
	media, err := NewMediaExtractor(e.opts, e.opts.Logger).Extract(ctx)
	e.aggregator.addMedia(media)
	if err != nil {
		return Report{}, e.stopError(StageMedia, err)
	}

	// --- Documents ---
	processor, err := NewDocumentProcessor(e.opts, e.opts.Logger)
	if err != nil {
		return Report{}, err
	}
	docs, err := NewWalker(e.opts, e.opts.Logger).Discover(ctx)
	if err != nil {
		return Report{}, e.stopError(StageDocument, err)
	}
	e.aggregator.discovered = len(docs)
	if hookErr := e.hooks.OnStageStart(StageDocument, len(docs)); hookErr != nil {
		e.logger.Warn("Event hook OnStageStart failed", slog.String("error", hookErr.Error()))
	}

	for _, doc := range docs {
		if ctxErr := ctx.Err(); ctxErr != nil {
			e.logger.Info("Processing run cancelled", slog.String("reason", ctxErr.Error()))
			return Report{}, ctxErr
		}
		result, status, procErr := processor.ProcessFile(ctx, doc)
		switch r := result.(type) {
		case FileInfo:
			e.aggregator.addProcessed(r)
		case ErrorInfo:
			e.aggregator.addError(r)
		default:
			e.logger.Warn("Processor returned unexpected result type", "type", fmt.Sprintf("%T", result), "status", status)
		}
		if procErr != nil && e.opts.OnErrorMode == OnErrorStop {
			return Report{}, fmt.Errorf("processing stopped due to fatal error: %w", procErr)
		}
	}
	return Report{}, nil
}

func (e *Engine) readRevision() {
	if e.opts.RevisionReader == nil {
		return
	}
	rev, err := e.opts.RevisionReader.ReadRevision(e.opts.InputPath)
	if err != nil {
		e.logger.Debug("Source revision unavailable", slog.String("error", err.Error()))
		return
	}
	e.aggregator.revision = rev
}

func (e *Engine) stopError(stage Stage, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		e.logger.Info("Processing run cancelled", slog.String("stage", string(stage)), slog.String("reason", err.Error()))
		return err
	}
	e.logger.Error("Stage failed", slog.String("stage", string(stage)), slog.String("error", err.Error()))
	return fmt.Errorf("%s stage failed: %w", stage, err)
}
