package hooks

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gitayam/markdown2dokuwiki/internal/cli/ui"
	"github.com/gitayam/markdown2dokuwiki/pkg/converter"
)

// ProgressBar defines the interface needed to interact with the progress bar.
type ProgressBar interface {
	Add(num int) error
	Close() error
}

// BarFactory creates a progress bar for a stage; total is -1 when unknown.
type BarFactory func(total int, description string) ProgressBar

// NoOpProgressBar provides a default null implementation.
type NoOpProgressBar struct{}

// Add implements ProgressBar.
func (n *NoOpProgressBar) Add(num int) error { return nil }

// Close implements ProgressBar.
func (n *NoOpProgressBar) Close() error { return nil }

var stageMessages = map[converter.Stage]string{
	converter.StageCollect:  "Copying files to the output directory",
	converter.StageMedia:    "Moving media files",
	converter.StageDocument: "Cleaning and converting documents",
}

// CLIHooks implements converter.Hooks for the command line: green stage and
// notice lines on out, one progress bar per stage, and per-file details in the
// log when verbose.
type CLIHooks struct {
	logger  *slog.Logger
	out     io.Writer
	verbose bool
	newBar  BarFactory
	bar     ProgressBar
}

// NewCLIHooks creates a new CLIHooks. A nil newBar disables progress bars; bars
// are also disabled in verbose mode, where every file is logged instead.
func NewCLIHooks(logger *slog.Logger, out io.Writer, verbose bool, newBar BarFactory) *CLIHooks {
	if verbose {
		newBar = nil
	}
	return &CLIHooks{
		logger:  logger,
		out:     out,
		verbose: verbose,
		newBar:  newBar,
		bar:     &NoOpProgressBar{},
	}
}

// OnStageStart implements converter.Hooks.
func (h *CLIHooks) OnStageStart(stage converter.Stage, total int) error {
	_ = h.bar.Close()
	h.bar = &NoOpProgressBar{}
	msg, ok := stageMessages[stage]
	if !ok {
		msg = string(stage)
	}
	fmt.Fprintln(h.out, ui.ProgressStyle.Render(msg))
	if h.newBar != nil && total != 0 {
		h.bar = h.newBar(total, string(stage))
	}
	return nil
}

// OnFileDiscovered implements converter.Hooks.
func (h *CLIHooks) OnFileDiscovered(path string) error {
	if h.verbose {
		h.logger.Debug("File discovered", "path", path)
	}
	return nil
}

// OnFileStatusUpdate implements converter.Hooks.
func (h *CLIHooks) OnFileStatusUpdate(path string, status converter.Status, message string, duration time.Duration) error {
	if isFinalStatus(status) {
		_ = h.bar.Add(1)
	}
	if status == converter.StatusFailed {
		h.logger.Error("File processing failed", "path", path, "error", message)
		return nil
	}
	if !h.verbose || status == converter.StatusProcessing {
		return nil
	}
	attrs := []any{slog.String("path", path), slog.String("status", string(status))}
	if duration > 0 {
		attrs = append(attrs, slog.Duration("duration", duration))
	}
	if message != "" {
		attrs = append(attrs, slog.String("message", message))
	}
	h.logger.Info("File status updated", attrs...)
	return nil
}

// OnNotice implements converter.Hooks.
func (h *CLIHooks) OnNotice(path string, message string) error {
	fmt.Fprintln(h.out, ui.ProgressStyle.Render(message))
	return nil
}

// OnRunComplete implements converter.Hooks. The summary itself is printed by
// the caller.
func (h *CLIHooks) OnRunComplete(report converter.Report) error {
	_ = h.bar.Close()
	h.bar = &NoOpProgressBar{}
	return nil
}

func isFinalStatus(status converter.Status) bool {
	switch status {
	case converter.StatusSuccess, converter.StatusCopied, converter.StatusMoved,
		converter.StatusFailed, converter.StatusSkipped:
		return true
	}
	return false
}
