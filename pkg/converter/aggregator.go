package converter

import (
	"time"

	"github.com/gitayam/markdown2dokuwiki/pkg/converter/git"
)

// reportAggregator manages the collection of results during the run.
type reportAggregator struct {
	collected      []CollectedInfo
	media          []MediaInfo
	processedFiles []FileInfo
	skippedFiles   []SkippedInfo
	errors         []ErrorInfo
	discovered     int
	changedCount   int
	revision       git.Revision
}

func newReportAggregator() *reportAggregator {
	return &reportAggregator{
		collected:      make([]CollectedInfo, 0, 128),
		media:          make([]MediaInfo, 0, 32),
		processedFiles: make([]FileInfo, 0, 128),
		skippedFiles:   make([]SkippedInfo, 0, 16),
		errors:         make([]ErrorInfo, 0, 8),
	}
}

func (a *reportAggregator) addCollect(r CollectResult) {
	a.collected = append(a.collected, r.Files...)
	a.skippedFiles = append(a.skippedFiles, r.Skipped...)
	a.errors = append(a.errors, r.Errors...)
}

func (a *reportAggregator) addMedia(r MediaResult) {
	a.media = append(a.media, r.Files...)
	a.skippedFiles = append(a.skippedFiles, r.Skipped...)
	a.errors = append(a.errors, r.Errors...)
}

func (a *reportAggregator) addProcessed(info FileInfo) {
	a.processedFiles = append(a.processedFiles, info)
	if info.Changed {
		a.changedCount++
	}
}

func (a *reportAggregator) addError(info ErrorInfo) {
	a.errors = append(a.errors, info)
}

// getReport compiles the final Report.
func (a *reportAggregator) getReport(opts *Options, startTime time.Time, fatalOccurred bool) Report {
	return Report{
		Summary: ReportSummary{
			SchemaVersion:      ReportSchemaVersion,
			RunID:              opts.RunID,
			InputPath:          opts.InputPath,
			OutputPath:         opts.OutputPath,
			Dialect:            opts.Dialect,
			Flatten:            opts.Flatten,
			ProtectedPrefixes:  opts.ProtectedPrefixes,
			CollisionPolicy:    string(opts.CollisionPolicy),
			ProfileUsed:        opts.ProfileName,
			ConfigFilePath:     opts.ConfigFilePath,
			SourceCommit:       a.revision.Commit,
			SourceBranch:       a.revision.Branch,
			SourceDirty:        a.revision.Dirty,
			CollectedCount:     len(a.collected),
			MediaCount:         len(a.media),
			DiscoveredCount:    a.discovered,
			ProcessedCount:     len(a.processedFiles),
			ChangedCount:       a.changedCount,
			SkippedCount:       len(a.skippedFiles),
			ErrorCount:         len(a.errors),
			FatalErrorOccurred: fatalOccurred,
			DurationSeconds:    time.Since(startTime).Seconds(),
			Timestamp:          time.Now().UTC(),
		},
		CollectedFiles: cloneSlice(a.collected),
		MediaFiles:     cloneSlice(a.media),
		ProcessedFiles: cloneSlice(a.processedFiles),
		SkippedFiles:   cloneSlice(a.skippedFiles),
		Errors:         cloneSlice(a.errors),
	}
}

func cloneSlice[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
