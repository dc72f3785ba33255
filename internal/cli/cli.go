package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/gitayam/markdown2dokuwiki/internal/cli/config"
	"github.com/gitayam/markdown2dokuwiki/internal/cli/git"
	"github.com/gitayam/markdown2dokuwiki/internal/cli/hooks"
	"github.com/gitayam/markdown2dokuwiki/internal/cli/probe"
	"github.com/gitayam/markdown2dokuwiki/internal/cli/prompt"
	"github.com/gitayam/markdown2dokuwiki/internal/cli/ui"
	"github.com/gitayam/markdown2dokuwiki/pkg/converter"
	libprobe "github.com/gitayam/markdown2dokuwiki/pkg/converter/probe"
)

// Env is what Run needs from the outside world.
type Env struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	// TTY reports whether In and Err are attached to a terminal.
	TTY bool
	// Supplier answers the interactive questions; nil picks one from TTY and
	// the configuration.
	Supplier prompt.Supplier
	// Probe locates the wiki container; nil uses docker when probing is enabled.
	Probe libprobe.Probe
}

// StdEnv returns an Env bound to the process streams.
func StdEnv() Env {
	return Env{
		In:  os.Stdin,
		Out: os.Stdout,
		Err: os.Stderr,
		TTY: term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// Run resolves the remaining settings, converts the tree, prints the report
// and finally suggests how to import the result. A returned error means the
// run did not complete; per-file failures in continue mode only appear in the
// report.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, env Env) error {
	supplier := env.Supplier
	if supplier == nil {
		supplier = newSupplier(cfg, env)
	}
	if err := ResolveSettings(&cfg, supplier); err != nil {
		logger.Error("Configuration incomplete", slog.Any("error", err))
		return err
	}

	opts := cfg.Options
	var newBar hooks.BarFactory
	if env.TTY && opts.OutputFormat == converter.OutputFormatText {
		newBar = progressBarFactory(env.Err)
	}
	// stdout carries only the report when it is JSON.
	hookOut := env.Out
	if opts.OutputFormat == converter.OutputFormatJSON {
		hookOut = env.Err
	}
	opts.EventHooks = hooks.NewCLIHooks(logger, hookOut, opts.Verbose, newBar)
	if opts.RevisionReader == nil {
		opts.RevisionReader = git.NewGoGitClient(opts.Logger)
	}

	report, err := converter.GenerateWiki(ctx, opts)
	if errors.Is(err, converter.ErrConfigValidation) {
		return err
	}
	if werr := report.Write(env.Out, opts.OutputFormat); werr != nil {
		logger.Error("Failed to write report", slog.Any("error", werr))
		if err == nil {
			err = werr
		}
	}
	if err != nil {
		fmt.Fprintln(env.Err, ui.ErrorStyle.Render(fmt.Sprintf("Conversion stopped: %v", err)))
		return err
	}

	logger.Debug("Conversion finished",
		slog.Int("processed", report.Summary.ProcessedCount),
		slog.Int("errors", report.Summary.ErrorCount),
	)
	if report.Summary.ErrorCount > 0 {
		fmt.Fprintln(env.Err, ui.WarningStyle.Render(
			fmt.Sprintf("%d file(s) could not be converted; see the report above.", report.Summary.ErrorCount)))
	}

	if cfg.ProbeEnabled && opts.OutputFormat == converter.OutputFormatText {
		p := env.Probe
		if p == nil {
			p = probe.NewDockerProbe(opts.Logger, nil)
		}
		suggestImport(ctx, p, opts.Dialect, report.Summary.OutputPath, env.Out, logger)
	}
	return nil
}

// ResolveSettings fills the dialect, flatten and protected settings that were
// not configured by asking s. Without prompts a missing dialect is an error and
// flattening stays off.
func ResolveSettings(cfg *config.Config, s prompt.Supplier) error {
	opts := &cfg.Options
	if opts.Dialect == "" {
		if !cfg.Interactive {
			return fmt.Errorf("%w: dialect is required (set --dialect or allow prompts)", converter.ErrConfigValidation)
		}
		d, err := s.Dialect()
		if err != nil {
			return fmt.Errorf("%w: %w", converter.ErrConfigValidation, err)
		}
		opts.Dialect = d
	}
	if !cfg.Interactive {
		return nil
	}
	if !cfg.FlattenSet {
		f, err := s.Flatten()
		if err != nil {
			return fmt.Errorf("%w: %w", converter.ErrConfigValidation, err)
		}
		opts.Flatten = f
	}
	if opts.Flatten && !cfg.ProtectedSet {
		prot, err := s.ProtectedPrefixes()
		if err != nil {
			return fmt.Errorf("%w: %w", converter.ErrConfigValidation, err)
		}
		opts.ProtectedPrefixes = prot
	}
	return nil
}

func newSupplier(cfg config.Config, env Env) prompt.Supplier {
	if env.TTY && cfg.TUIEnabled {
		return prompt.NewTUIPrompter(env.In, env.Err)
	}
	return prompt.NewLinePrompter(env.In, env.Err)
}

func progressBarFactory(w io.Writer) hooks.BarFactory {
	return func(total int, description string) hooks.ProgressBar {
		return progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(description),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
}

// suggestImport prints the docker cp command for a running wiki container, or
// manual instructions when none is found. It never fails the run.
func suggestImport(ctx context.Context, p libprobe.Probe, dialect converter.Dialect, outputDir string, out io.Writer, logger *slog.Logger) {
	c, err := p.FindWikiContainer(ctx, string(dialect))
	if err != nil {
		if !errors.Is(err, libprobe.ErrNotFound) {
			logger.Debug("Container probe failed", slog.Any("error", err))
		}
		fmt.Fprintln(out, libprobe.ManualInstructions(outputDir))
		return
	}
	fmt.Fprintln(out, libprobe.Instructions(c, outputDir))
}
