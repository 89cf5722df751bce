package analyzer

import (
	"time"

	"exportlint/internal/engine/parser"
)

// IssueType is the closed set of detectable inconsistencies.
type IssueType string

const (
	IssueNaming         IssueType = "naming-inconsistency"
	IssueCircular       IssueType = "circular-dependency"
	IssueUnusedExport   IssueType = "unused-export"
	IssueImportMismatch IssueType = "import-mismatch"
	IssueDuplicate      IssueType = "duplicate-export"
	IssueMissingExport  IssueType = "missing-export"
	IssueTypeMismatch   IssueType = "type-export-mismatch"
	IssueAccessibility  IssueType = "accessibility-violation"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// SeverityRank orders severities for report sorting: error > warning > info.
func SeverityRank(s Severity) int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	}
	return 3
}

// Issue is one detected inconsistency. Read-only downstream of the analyzer.
type Issue struct {
	ID           string           `json:"id"`
	Type         IssueType        `json:"type"`
	Severity     Severity         `json:"severity"`
	FilePath     string           `json:"filePath"`
	Message      string           `json:"message"`
	Suggestion   string           `json:"suggestion,omitempty"`
	AutoFixable  bool             `json:"autoFixable"`
	RelatedFiles []string         `json:"relatedFiles,omitempty"`
	Location     *parser.Location `json:"sourceLocation,omitempty"`

	// ExportName and Kind carry the flagged symbol through to the fixer.
	ExportName string            `json:"exportName,omitempty"`
	Kind       parser.ExportKind `json:"exportedKind,omitempty"`
}

// Summary holds the computed counters of one run.
type Summary struct {
	TotalIssues  int     `json:"totalIssues"`
	ErrorCount   int     `json:"errorCount"`
	WarningCount int     `json:"warningCount"`
	InfoCount    int     `json:"infoCount"`
	AutoFixable  int     `json:"autoFixableCount"`
	FixedCount   int     `json:"fixedCount"`
	SuccessRate  float64 `json:"successRate"`
}

// ProjectResult is the terminal artifact of a run.
type ProjectResult struct {
	ProjectPath   string    `json:"projectPath"`
	ProjectName   string    `json:"projectName"`
	Timestamp     time.Time `json:"timestamp"`
	TotalFiles    int       `json:"totalFiles"`
	AnalyzedFiles int       `json:"filesAnalyzed"`
	Issues        []Issue   `json:"issues"`
	FixedIssues   []Issue   `json:"fixedIssues,omitempty"`
	Summary       Summary   `json:"summary"`
}

// ComputeSummary derives the summary counters from the issue lists.
func ComputeSummary(issues, fixed []Issue) Summary {
	s := Summary{TotalIssues: len(issues), FixedCount: len(fixed)}
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityError:
			s.ErrorCount++
		case SeverityWarning:
			s.WarningCount++
		case SeverityInfo:
			s.InfoCount++
		}
		if issue.AutoFixable {
			s.AutoFixable++
		}
	}
	if s.TotalIssues > 0 {
		s.SuccessRate = float64(s.FixedCount) / float64(s.TotalIssues)
	}
	return s
}
