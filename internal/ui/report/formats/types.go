package formats

import (
	"time"

	"exportlint/internal/engine/analyzer"
)

// Group is one bucket of issues under the active grouping key
// (file path, issue type, or severity).
type Group struct {
	Key    string
	Issues []analyzer.Issue
}

// TypeCount pairs an issue type with its occurrence count.
type TypeCount struct {
	Type  analyzer.IssueType `json:"type"`
	Count int                `json:"count"`
}

// Statistics is the aggregate view rendered at the top of every format.
type Statistics struct {
	TotalIssues   int                        `json:"totalIssues"`
	BySeverity    map[analyzer.Severity]int  `json:"bySeverity"`
	ByType        map[analyzer.IssueType]int `json:"byType"`
	TopIssueTypes []TypeCount                `json:"topIssueTypes"`
	FilesAffected int                        `json:"filesAffected"`
	AutoFixable   int                        `json:"autoFixable"`
}

// Data is the prepared, already filtered and sorted report input every
// format generator renders from.
type Data struct {
	ProjectName   string
	ProjectPath   string
	Version       string
	GeneratedAt   time.Time
	TotalFiles    int
	AnalyzedFiles int
	GroupBy       string

	Summary analyzer.Summary
	Stats   Statistics
	Groups  []Group
}
