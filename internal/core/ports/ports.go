package ports

import (
	"exportlint/internal/engine/parser"
)

// SourceProvider abstracts file-content access for the detector so scans can
// run against the real filesystem or an in-memory tree in tests.
type SourceProvider interface {
	Read(path string) ([]byte, error)
}

// ExportDetector abstracts the parse-context lifecycle and per-file export
// extraction. Initialize establishes the shared context, AnalyzeFile never
// fails the scan, Dispose releases parsed trees.
type ExportDetector interface {
	Initialize(filePaths []string, opts parser.ParseOptions) error
	AnalyzeFile(path string) []parser.ExportRecord
	Imports(path string) []parser.ImportStatement
	ParsedCount() int
	Dispose()
}

// ReportSink persists rendered report content. Content generation is pure;
// only this step may fail, and its failure never corrupts the report object.
type ReportSink func(content, path string) error
