package converter

// Constants defining default values for the configuration options.
// These are used when setting up Viper defaults in the configuration loading process.
const (
	// DefaultWikiBaseURL is the internal wiki whose absolute links are made root-relative.
	DefaultWikiBaseURL = "https://wiki.irregularchat.com/"
	// DefaultCollisionPolicy keeps the last writer.
	DefaultCollisionPolicy = CollisionOverwrite
	// DefaultDashMode removes every "---" after the front matter.
	DefaultDashMode = DashAll
	// DefaultHeadingMode replaces every '#' character.
	DefaultHeadingMode = HeadingLiteral
	// DefaultOnErrorMode is the default behavior on non-fatal file errors.
	DefaultOnErrorMode = OnErrorContinue
	// DefaultOutputFormat is the default format for the final summary report.
	DefaultOutputFormat = OutputFormatText
	// DefaultMediaDirName is the media subdirectory created under the working tree.
	DefaultMediaDirName = "media"
	// DefaultCaseInsensitiveExtensions keeps discovery case-sensitive.
	DefaultCaseInsensitiveExtensions = false
	// DefaultProbeEnabled enables the container lookup after the run.
	DefaultProbeEnabled = true
	// DefaultVerbose is the default state for verbose logging.
	DefaultVerbose = false
)

// Naming conventions of the produced tree.
const (
	// ConvertedDirSuffix is appended to the source directory name to build the output root.
	ConvertedDirSuffix = "_converted"
	// AuditLogSuffix is appended to a document path to name its cleaning audit log.
	AuditLogSuffix = ".log"
)

// ReportSchemaVersion indicates the version of the JSON report structure.
const ReportSchemaVersion = "1.0"

// DefaultMarkupExtensions returns the extensions treated as markup documents.
func DefaultMarkupExtensions() []string {
	return []string{".md"}
}

// DefaultMediaExtensions returns the extensions relocated into the media directory.
func DefaultMediaExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".pdf", ".mp4", ".docx"}
}

// Skip reasons used in the Report.
const (
	SkipReasonIgnored   = "ignored_pattern"
	SkipReasonOutputDir = "output_dir"
	SkipReasonSymlink   = "symlink"
)
