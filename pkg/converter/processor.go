package converter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gitayam/markdown2dokuwiki/pkg/converter/cleaner"
	"github.com/gitayam/markdown2dokuwiki/pkg/converter/dialect"
	"github.com/gitayam/markdown2dokuwiki/pkg/converter/encoding"
	"github.com/gitayam/markdown2dokuwiki/pkg/converter/language"
	"github.com/gitayam/markdown2dokuwiki/pkg/converter/template"
)

// DocumentProcessor cleans one document in place, records an audit log when
// cleaning changed it, and writes the converted wiki sibling.
type DocumentProcessor struct {
	opts             *Options
	logger           *slog.Logger
	hooks            Hooks
	cleaner          *cleaner.Cleaner
	converter        *dialect.Converter
	encodingHandler  encoding.EncodingHandler
	langDetector     language.LanguageDetector
	templateExecutor template.TemplateExecutor
}

// NewDocumentProcessor creates a DocumentProcessor. Missing optional dependencies
// in opts are replaced by the defaults.
func NewDocumentProcessor(opts *Options, loggerHandler slog.Handler) (*DocumentProcessor, error) {
	conv, err := dialect.New(dialect.Name(opts.Dialect), dialect.Mode(opts.HeadingMode))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}
	hooks := opts.EventHooks
	if hooks == nil {
		hooks = &NoOpHooks{}
	}
	encHandler := opts.EncodingHandler
	if encHandler == nil {
		encHandler = encoding.NewCharsetHandler(opts.DefaultEncoding)
	}
	langDet := opts.LanguageDetector
	if langDet == nil {
		langDet = language.NewGoEnryDetector(opts.LanguageMappingsOverride)
	}
	tplExecutor := opts.TemplateExecutor
	if tplExecutor == nil {
		tplExecutor = template.NewGoTemplateExecutor()
	}
	return &DocumentProcessor{
		opts:   opts,
		logger: slog.New(loggerHandler).With(slog.String("component", "processor")),
		hooks:  hooks,
		cleaner: cleaner.New(cleaner.Config{
			WikiBaseURL:           opts.WikiBaseURL,
			FrontMatterDashesOnly: opts.DashMode == DashFrontMatter,
		}),
		converter:        conv,
		encodingHandler:  encHandler,
		langDetector:     langDet,
		templateExecutor: tplExecutor,
	}, nil
}

// ProcessFile runs read, decode, clean, audit, overwrite and convert for one
// document. It returns a FileInfo with StatusSuccess, or an ErrorInfo with
// StatusFailed and the error.
func (p *DocumentProcessor) ProcessFile(ctx context.Context, absFilePath string) (result interface{}, status Status, err error) {
	startTime := time.Now()
	relPath := relSlash(p.opts.OutputPath, absFilePath)
	logArgs := []any{slog.String("path", relPath)}

	defer func() {
		duration := time.Since(startTime)
		message := ""
		if err != nil {
			status = StatusFailed
			result = ErrorInfo{Path: relPath, Stage: StageDocument, Error: err.Error(), IsFatal: p.opts.OnErrorMode == OnErrorStop}
			message = err.Error()
			p.logger.Warn("Document processing failed", append(logArgs, slog.String("error", message))...)
		}
		if hookErr := p.hooks.OnFileStatusUpdate(relPath, status, message, duration); hookErr != nil {
			p.logger.Warn("Event hook OnFileStatusUpdate failed", append(logArgs, slog.String("error", hookErr.Error()))...)
		}
	}()

	if hookErr := p.hooks.OnFileStatusUpdate(relPath, StatusProcessing, "", 0); hookErr != nil {
		p.logger.Warn("Event hook OnFileStatusUpdate failed", append(logArgs, slog.String("error", hookErr.Error()))...)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, StatusFailed, ctxErr
	}

	raw, readErr := os.ReadFile(absFilePath)
	if readErr != nil {
		return nil, StatusFailed, stageError(ErrReadFailed, relPath, readErr)
	}
	if p.encodingHandler.IsBinary(raw) {
		return nil, StatusFailed, fmt.Errorf("%w: %s: content looks binary", ErrDecodeFailed, relPath)
	}
	decoded, decErr := p.encodingHandler.Decode(raw)
	if decErr != nil {
		return nil, StatusFailed, stageError(ErrDecodeFailed, relPath, decErr)
	}
	lang, confidence, langErr := p.langDetector.Detect([]byte(decoded.Text), absFilePath)
	if langErr != nil {
		p.logger.Debug("Language detection failed", append(logArgs, slog.String("error", langErr.Error()))...)
		lang = language.Unknown
	}

	cleaned := p.cleaner.Clean(decoded.Text)
	info := FileInfo{
		Path:               relPath,
		Language:           lang,
		LanguageConfidence: confidence,
		Encoding:           decoded.Encoding,
		SizeBytes:          int64(len(raw)),
		Changed:            cleaned.Changed,
		RulesApplied:       cleaned.Applied,
		FrontMatterKeys:    cleaned.FrontMatterKeys(),
	}

	if cleaned.Changed {
		logPath := absFilePath + AuditLogSuffix
		if auditErr := p.writeAuditLog(logPath, relPath, decoded.Text, cleaned); auditErr != nil {
			return nil, StatusFailed, auditErr
		}
		info.AuditLogPath = relSlash(p.opts.OutputPath, logPath)
		notice := fmt.Sprintf("Changes made to %s, logged in %s", relPath, info.AuditLogPath)
		if hookErr := p.hooks.OnNotice(relPath, notice); hookErr != nil {
			p.logger.Warn("Event hook OnNotice failed", append(logArgs, slog.String("error", hookErr.Error()))...)
		}
	}

	// The cleaned text always replaces the document, changed or not.
	if writeErr := os.WriteFile(absFilePath, []byte(cleaned.Text), 0644); writeErr != nil {
		return nil, StatusFailed, stageError(ErrWriteFailed, relPath, writeErr)
	}

	outPath := dialect.OutputPath(absFilePath)
	if writeErr := os.WriteFile(outPath, []byte(p.converter.Convert(cleaned.Text)), 0644); writeErr != nil {
		return nil, StatusFailed, stageError(ErrWriteFailed, relSlash(p.opts.OutputPath, outPath), writeErr)
	}
	info.OutputPath = relSlash(p.opts.OutputPath, outPath)
	info.DurationMs = time.Since(startTime).Milliseconds()

	p.logger.Debug("Document converted", append(logArgs,
		slog.String("output", info.OutputPath),
		slog.Bool("changed", info.Changed),
		slog.String("encoding", info.Encoding),
		slog.String("language", info.Language))...)
	return info, StatusSuccess, nil
}

func (p *DocumentProcessor) writeAuditLog(logPath, relPath, original string, cleaned cleaner.Result) error {
	diff, diffErr := cleaner.Diff(original, cleaned.Text)
	if diffErr != nil {
		p.logger.Warn("Failed to compute diff for audit log", slog.String("path", relPath), slog.String("error", diffErr.Error()))
	}
	meta := &template.AuditMetadata{
		RunID:       p.opts.RunID,
		FilePath:    relPath,
		Timestamp:   p.opts.now().UTC(),
		Rules:       cleaned.Applied,
		FrontMatter: cleaned.FrontMatter,
		Diff:        diff,
		Original:    original,
		Cleaned:     cleaned.Text,
	}
	var buf bytes.Buffer
	if err := p.templateExecutor.Execute(&buf, p.opts.AuditTemplate, meta); err != nil {
		return stageError(ErrWriteFailed, relPath+AuditLogSuffix, err)
	}
	if err := os.WriteFile(logPath, buf.Bytes(), 0644); err != nil {
		return stageError(ErrWriteFailed, relPath+AuditLogSuffix, err)
	}
	return nil
}
