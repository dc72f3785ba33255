package converter

// Status defines the possible processing states of a file during a run.
type Status string

// Constants representing the defined file processing statuses.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusCopied     Status = "copied"
	StatusMoved      Status = "moved"
	StatusFailed     Status = "failed"
	StatusSkipped    Status = "skipped"
)

// Stage names one of the sequential pipeline stages.
type Stage string

const (
	StageCollect  Stage = "collect"
	StageMedia    Stage = "media"
	StageDocument Stage = "document"
)

// Dialect is the target wiki markup.
type Dialect string

const (
	DialectDokuWiki  Dialect = "dokuwiki"
	DialectMediaWiki Dialect = "mediawiki"
)

// CollisionPolicy decides what happens when flattening or media extraction
// produces a destination path that already exists.
type CollisionPolicy string

const (
	// CollisionOverwrite keeps the last writer.
	CollisionOverwrite CollisionPolicy = "overwrite"
	// CollisionRename appends "-<n>" before the extension until the name is free.
	CollisionRename CollisionPolicy = "rename"
	// CollisionError leaves the existing file alone and records a per-file error.
	CollisionError CollisionPolicy = "error"
)

// DashMode controls how "---" sequences are removed by the cleaner.
type DashMode string

const (
	// DashAll removes the front-matter block and then every remaining "---".
	DashAll DashMode = "all"
	// DashFrontMatter only removes the leading front-matter block.
	DashFrontMatter DashMode = "frontmatter"
)

// HeadingMode controls how the dialect converter rewrites '#'.
type HeadingMode string

const (
	// HeadingLiteral replaces every '#' in the document.
	HeadingLiteral HeadingMode = "literal"
	// HeadingLine only rewrites ATX headings at the start of a line.
	HeadingLine HeadingMode = "line"
)

// OnErrorMode defines the behavior when a non-fatal error occurs during file processing.
type OnErrorMode string

const (
	OnErrorContinue OnErrorMode = "continue"
	OnErrorStop     OnErrorMode = "stop"
)

// OutputFormat defines the format for the final summary report.
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)
