package converter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

// Report summarizes the result of a single GenerateWiki run.
type Report struct {
	Summary        ReportSummary   `json:"summary"`
	CollectedFiles []CollectedInfo `json:"collectedFiles"`
	MediaFiles     []MediaInfo     `json:"mediaFiles"`
	ProcessedFiles []FileInfo      `json:"processedFiles"`
	SkippedFiles   []SkippedInfo   `json:"skippedFiles"`
	Errors         []ErrorInfo     `json:"errors"`
}

// ReportSummary contains aggregated statistics for a GenerateWiki run.
type ReportSummary struct {
	SchemaVersion      string    `json:"schemaVersion"`
	RunID              string    `json:"runId"`
	InputPath          string    `json:"inputPath"`
	OutputPath         string    `json:"outputPath"`
	Dialect            Dialect   `json:"dialect"`
	Flatten            bool      `json:"flatten"`
	ProtectedPrefixes  []string  `json:"protectedPrefixes,omitempty"`
	CollisionPolicy    string    `json:"collisionPolicy"`
	ProfileUsed        string    `json:"profileUsed,omitempty"`
	ConfigFilePath     string    `json:"configFilePath,omitempty"`
	SourceCommit       string    `json:"sourceCommit,omitempty"`
	SourceBranch       string    `json:"sourceBranch,omitempty"`
	SourceDirty        bool      `json:"sourceDirty,omitempty"`
	CollectedCount     int       `json:"collectedCount"`
	MediaCount         int       `json:"mediaCount"`
	DiscoveredCount    int       `json:"discoveredCount"`
	ProcessedCount     int       `json:"processedCount"`
	ChangedCount       int       `json:"changedCount"`
	SkippedCount       int       `json:"skippedCount"`
	ErrorCount         int       `json:"errorCount"`
	FatalErrorOccurred bool      `json:"fatalError"`
	DurationSeconds    float64   `json:"durationSeconds"`
	Timestamp          time.Time `json:"timestamp"`
}

// CollectedInfo details a file copied from the source tree into the working tree.
type CollectedInfo struct {
	Path        string `json:"path"`        // relative to the source root
	Destination string `json:"destination"` // relative to the working tree
	Protected   string `json:"protected,omitempty"`
	Renamed     bool   `json:"renamed,omitempty"`
}

// MediaInfo details a media file relocated into the media directory.
type MediaInfo struct {
	Path        string `json:"path"`        // original location, relative to the working tree
	Destination string `json:"destination"` // relative to the working tree
	Renamed     bool   `json:"renamed,omitempty"`
}

// FileInfo details a single document that was cleaned and converted.
type FileInfo struct {
	Path               string   `json:"path"`
	OutputPath         string   `json:"outputPath"`
	Language           string   `json:"language"`
	LanguageConfidence float64  `json:"languageConfidence"`
	Encoding           string   `json:"encoding"`
	SizeBytes          int64    `json:"sizeBytes"`
	Changed            bool     `json:"changed"`
	RulesApplied       []string `json:"rulesApplied,omitempty"`
	FrontMatterKeys    []string `json:"frontMatterKeys,omitempty"`
	AuditLogPath       string   `json:"auditLogPath,omitempty"`
	DurationMs         int64    `json:"durationMs"`
}

// SkippedInfo details a file that was intentionally skipped.
type SkippedInfo struct {
	Path    string `json:"path"`
	Stage   Stage  `json:"stage"`
	Reason  string `json:"reason"`
	Details string `json:"details"`
}

// ErrorInfo details a non-fatal error encountered while handling a specific file.
type ErrorInfo struct {
	Path    string `json:"path"`
	Stage   Stage  `json:"stage"`
	Error   string `json:"error"`
	IsFatal bool   `json:"isFatal"`
}

// Write renders the report in the given format. Unknown formats fall back to text.
func (r Report) Write(w io.Writer, format OutputFormat) error {
	if format == OutputFormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	return r.writeText(w)
}

func (r Report) writeText(w io.Writer) error {
	s := r.Summary
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Run:\t%s\n", s.RunID)
	fmt.Fprintf(tw, "Source:\t%s\n", s.InputPath)
	if s.SourceCommit != "" {
		rev := shortHash(s.SourceCommit)
		if s.SourceBranch != "" {
			rev = s.SourceBranch + "@" + rev
		}
		if s.SourceDirty {
			rev += " (dirty)"
		}
		fmt.Fprintf(tw, "Revision:\t%s\n", rev)
	}
	fmt.Fprintf(tw, "Output:\t%s\n", s.OutputPath)
	fmt.Fprintf(tw, "Dialect:\t%s\n", s.Dialect)
	if s.Flatten {
		protected := "none"
		if len(s.ProtectedPrefixes) > 0 {
			protected = strings.Join(s.ProtectedPrefixes, ", ")
		}
		fmt.Fprintf(tw, "Flattened:\tyes (protected: %s)\n", protected)
	} else {
		fmt.Fprintf(tw, "Flattened:\tno\n")
	}
	fmt.Fprintf(tw, "Collected:\t%d\n", s.CollectedCount)
	fmt.Fprintf(tw, "Media moved:\t%d\n", s.MediaCount)
	fmt.Fprintf(tw, "Documents:\t%d converted, %d changed by cleaning\n", s.ProcessedCount, s.ChangedCount)
	fmt.Fprintf(tw, "Skipped:\t%d\n", s.SkippedCount)
	fmt.Fprintf(tw, "Errors:\t%d\n", s.ErrorCount)
	fmt.Fprintf(tw, "Duration:\t%.2fs\n", s.DurationSeconds)
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(r.Errors) > 0 {
		if _, err := fmt.Fprintln(w, "\nErrors:"); err != nil {
			return err
		}
		for _, e := range r.Errors {
			if _, err := fmt.Fprintf(w, "  [%s] %s: %s\n", e.Stage, e.Path, e.Error); err != nil {
				return err
			}
		}
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
