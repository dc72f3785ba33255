package converter

import (
	"log/slog"
	"text/template"
	"time"

	"github.com/gitayam/markdown2dokuwiki/pkg/converter/encoding"
	"github.com/gitayam/markdown2dokuwiki/pkg/converter/git"
	"github.com/gitayam/markdown2dokuwiki/pkg/converter/language"
	tpl "github.com/gitayam/markdown2dokuwiki/pkg/converter/template"
)

// Hooks defines callbacks for status updates during a run. Stages run
// sequentially, so calls never overlap.
type Hooks interface {
	// OnStageStart is called when a stage begins; total is the number of items it
	// will handle, or -1 if unknown up front.
	OnStageStart(stage Stage, total int) error
	OnFileDiscovered(path string) error
	OnFileStatusUpdate(path string, status Status, message string, duration time.Duration) error
	// OnNotice carries operator-facing messages such as "changes logged".
	OnNotice(path string, message string) error
	OnRunComplete(report Report) error
}

// NoOpHooks provides a default, do-nothing implementation of the Hooks interface.
type NoOpHooks struct{}

// OnStageStart implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnStageStart(stage Stage, total int) error { return nil }

// OnFileDiscovered implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnFileDiscovered(path string) error { return nil }

// OnFileStatusUpdate implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnFileStatusUpdate(path string, status Status, message string, duration time.Duration) error {
	return nil
}

// OnNotice implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnNotice(path string, message string) error { return nil }

// OnRunComplete implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnRunComplete(report Report) error { return nil }

// Options holds all configuration for a GenerateWiki run.
type Options struct {
	// --- Core Paths ---
	InputPath  string `mapstructure:"-"`      // Required: absolute path of the source tree
	OutputPath string `mapstructure:"output"` // Required: absolute path of the working tree

	// --- Run Info ---
	AppVersion     string `mapstructure:"-"`
	ConfigFilePath string `mapstructure:"-"` // Path to the loaded config file (for reporting)
	ProfileName    string `mapstructure:"-"` // Name of the profile used (for reporting)
	RunID          string `mapstructure:"-"` // Stamped on the report and audit logs; generated when empty

	// --- Conversion ---
	Dialect           Dialect         `mapstructure:"dialect"`
	Flatten           bool            `mapstructure:"flatten"`
	ProtectedPrefixes []string        `mapstructure:"protected"`
	CollisionPolicy   CollisionPolicy `mapstructure:"collision"`
	WikiBaseURL       string          `mapstructure:"wikiBaseURL"`
	DashMode          DashMode        `mapstructure:"dashMode"`
	HeadingMode       HeadingMode     `mapstructure:"headingMode"`

	// --- File Handling & Filtering ---
	MarkupExtensions          []string          `mapstructure:"markupExtensions"`
	CaseInsensitiveExtensions bool              `mapstructure:"caseInsensitiveExtensions"`
	MediaExtensions           []string          `mapstructure:"mediaExtensions"`
	MediaDirName              string            `mapstructure:"mediaDir"`
	IgnorePatterns            []string          `mapstructure:"ignore"`
	DefaultEncoding           string            `mapstructure:"defaultEncoding"`
	LanguageMappingsOverride  map[string]string `mapstructure:"languageMappings"`

	// --- Behavior & Output ---
	Verbose           bool               `mapstructure:"verbose"`
	OnErrorMode       OnErrorMode        `mapstructure:"onError"`
	OutputFormat      OutputFormat       `mapstructure:"outputFormat"`
	AuditTemplatePath string             `mapstructure:"auditTemplate"`
	AuditTemplate     *template.Template `mapstructure:"-"` // Parsed from AuditTemplatePath; nil for the default

	// --- Injected Dependencies ---
	EventHooks       Hooks                     `mapstructure:"-"` // Optional: defaults to NoOpHooks
	Logger           slog.Handler              `mapstructure:"-"` // Required: logging backend
	LanguageDetector language.LanguageDetector `mapstructure:"-"` // Optional: defaults to go-enry
	EncodingHandler  encoding.EncodingHandler  `mapstructure:"-"` // Optional: defaults to x/net charset
	TemplateExecutor tpl.TemplateExecutor      `mapstructure:"-"` // Optional: defaults to text/template
	RevisionReader   git.RevisionReader        `mapstructure:"-"` // Optional: source revision for the report
	Now              func() time.Time          `mapstructure:"-"` // Optional: clock for audit logs (testing)
}

// effectiveMarkupExtensions returns the configured markup extensions or the default.
func (o *Options) effectiveMarkupExtensions() []string {
	if len(o.MarkupExtensions) == 0 {
		return DefaultMarkupExtensions()
	}
	return o.MarkupExtensions
}

// effectiveMediaExtensions returns the configured media extensions or the default.
func (o *Options) effectiveMediaExtensions() []string {
	if len(o.MediaExtensions) == 0 {
		return DefaultMediaExtensions()
	}
	return o.MediaExtensions
}

func (o *Options) mediaDirName() string {
	if o.MediaDirName == "" {
		return DefaultMediaDirName
	}
	return o.MediaDirName
}

func (o *Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}
