// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"

	// Split fields.
	FieldSplitType = "split_type"
	FieldSource    = "source"
	FieldNote      = "note"
	FieldSections  = "sections"
	FieldDiscarded = "discarded"
	FieldBackup    = "backup"
	FieldDryRun    = "dry_run"
	FieldJobs      = "jobs"

	// Asset fields.
	FieldAsset = "asset"
	FieldDest  = "dest"
	FieldEdits = "edits"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesProcessed  = "files_processed"
	FieldFilesErrored    = "files_errored"
	FieldIssues          = "issues"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
