package converter

import "errors"

// These errors represent specific categories of issues that might be returned
// directly by GenerateWiki or recorded in Report.Errors. Library users can check
// against these using errors.Is.
var (
	// ErrConfigValidation indicates that the provided Options failed validation
	// (missing paths, unknown dialect, invalid policy). Always fatal.
	ErrConfigValidation = errors.New("invalid configuration options provided")

	// ErrReadFailed indicates a failure to read a document from the working tree.
	ErrReadFailed = errors.New("failed to read file")

	// ErrDecodeFailed indicates that a document could not be decoded to UTF-8 text,
	// or that it looks like binary content.
	ErrDecodeFailed = errors.New("failed to decode document")

	// ErrWriteFailed indicates a failure to write a cleaned document, its converted
	// sibling, or its audit log.
	ErrWriteFailed = errors.New("failed to write output file")

	// ErrMkdirFailed indicates a failure to create a directory in the working tree.
	ErrMkdirFailed = errors.New("failed to create output directory")

	// ErrCopyFailed indicates a failure to copy a source file during collection.
	ErrCopyFailed = errors.New("failed to copy file")

	// ErrMoveFailed indicates a failure to relocate a media file.
	ErrMoveFailed = errors.New("failed to move file")

	// ErrCollision indicates that a destination already existed and the configured
	// CollisionPolicy is "error".
	ErrCollision = errors.New("destination already exists")

	// ErrWalkFailed indicates the tree walk itself could not proceed (for example the
	// root became unreadable). Fatal for the stage that hit it.
	ErrWalkFailed = errors.New("directory walk failed")
)
