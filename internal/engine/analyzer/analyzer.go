package analyzer

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"exportlint/internal/core/config"
	apperrors "exportlint/internal/core/errors"
	"exportlint/internal/engine/parser"
	"exportlint/internal/shared/observability"

	"github.com/google/uuid"
)

// Analyzer evaluates per-file and cross-file consistency rules over the
// project's export inventory. Configuration is injected at construction and
// immutable for the run.
type Analyzer struct {
	cfg            *config.Config
	patterns       map[parser.ExportKind]*regexp.Regexp
	defaultPattern *regexp.Regexp

	runID string
	seq   int
}

func New(cfg *config.Config) (*Analyzer, error) {
	a := &Analyzer{
		cfg:      cfg,
		patterns: make(map[parser.ExportKind]*regexp.Regexp),
		runID:    uuid.NewString()[:8],
	}

	kinds := []parser.ExportKind{
		parser.KindInterface, parser.KindType, parser.KindClass,
		parser.KindFunction, parser.KindConstant, parser.KindComponent,
	}
	for _, kind := range kinds {
		re, err := regexp.Compile(cfg.NamingPattern(string(kind)))
		if err != nil {
			wrapped := apperrors.Wrap(err, apperrors.CodeValidationError,
				fmt.Sprintf("naming pattern for %s", kind))
			return nil, apperrors.AddContext(wrapped, apperrors.CtxRule, config.RuleNamingConvention)
		}
		a.patterns[kind] = re
	}

	re, err := regexp.Compile(cfg.Naming.DefaultExport)
	if err != nil {
		wrapped := apperrors.Wrap(err, apperrors.CodeValidationError, "naming pattern for default exports")
		return nil, apperrors.AddContext(wrapped, apperrors.CtxRule, config.RuleNamingConvention)
	}
	a.defaultPattern = re

	return a, nil
}

// AnalyzeProject runs every enabled rule. Files are visited in the order
// given and exports in detection order, so output is deterministic for
// identical inputs.
func (a *Analyzer) AnalyzeProject(files []parser.FileExports) []Issue {
	issues := []Issue{}

	start := time.Now()
	for _, file := range files {
		issues = append(issues, a.analyzeFile(file)...)
	}
	observability.AnalysisDuration.WithLabelValues("per_file").Observe(time.Since(start).Seconds())

	start = time.Now()
	issues = append(issues, a.analyzeCrossFile(files)...)
	observability.AnalysisDuration.WithLabelValues("cross_file").Observe(time.Since(start).Seconds())

	for _, issue := range issues {
		observability.IssuesDetected.WithLabelValues(string(issue.Type)).Inc()
	}
	slog.Debug("analysis complete", "files", len(files), "issues", len(issues))
	return issues
}

func (a *Analyzer) newIssue(t IssueType, severity Severity, filePath, message string) Issue {
	a.seq++
	return Issue{
		ID:       fmt.Sprintf("%s-%04d", a.runID, a.seq),
		Type:     t,
		Severity: severity,
		FilePath: filePath,
		Message:  message,
	}
}

func (a *Analyzer) severityFor(rule string, fallback Severity) Severity {
	return Severity(a.cfg.RuleSeverity(rule, string(fallback)))
}

// analyzeFile evaluates the per-file rules for one file.
func (a *Analyzer) analyzeFile(file parser.FileExports) []Issue {
	var issues []Issue

	if a.cfg.RuleEnabled(config.RuleNamingConvention) {
		issues = append(issues, a.checkNaming(file)...)
	}
	if a.cfg.RuleEnabled(config.RuleDuplicateExports) {
		issues = append(issues, a.checkLocalDuplicates(file)...)
	}
	if a.cfg.RuleEnabled(config.RuleDefaultExport) {
		issues = append(issues, a.checkDefaultExports(file)...)
	}
	issues = append(issues, a.checkForbiddenPatterns(file)...)
	issues = append(issues, a.checkTypeExportMismatch(file)...)

	return issues
}

func isSentinelName(name string) bool {
	switch name {
	case parser.NameStar, parser.NameDefault, parser.NameAssign, parser.NameAnon:
		return true
	}
	return false
}

func (a *Analyzer) checkNaming(file parser.FileExports) []Issue {
	var issues []Issue
	for i := range file.Exports {
		rec := &file.Exports[i]
		if isSentinelName(rec.ExportName) {
			continue
		}

		// Default exports may follow a different convention than named ones.
		re := a.patterns[rec.Kind]
		if rec.Type == parser.ExportDefault {
			re = a.defaultPattern
		}
		if re == nil || re.MatchString(rec.ExportName) {
			continue
		}

		issue := a.newIssue(IssueNaming,
			a.severityFor(config.RuleNamingConvention, SeverityWarning),
			file.Path,
			fmt.Sprintf("export %q does not match the %s naming convention", rec.ExportName, rec.Kind))
		issue.Suggestion = fmt.Sprintf("rename %q to match pattern %s", rec.ExportName, re.String())
		issue.AutoFixable = true
		issue.ExportName = rec.ExportName
		issue.Kind = rec.Kind
		loc := rec.Location
		issue.Location = &loc
		issues = append(issues, issue)
	}
	return issues
}

func (a *Analyzer) checkLocalDuplicates(file parser.FileExports) []Issue {
	groups := make(map[string][]*parser.ExportRecord)
	var order []string
	for i := range file.Exports {
		rec := &file.Exports[i]
		if rec.ExportName == parser.NameStar {
			// several `export * from` statements are legitimate
			continue
		}
		if _, seen := groups[rec.ExportName]; !seen {
			order = append(order, rec.ExportName)
		}
		groups[rec.ExportName] = append(groups[rec.ExportName], rec)
	}

	var issues []Issue
	for _, name := range order {
		records := groups[name]
		if len(records) < 2 {
			continue
		}
		// one issue per occurrence, not just the extras
		for _, rec := range records {
			issue := a.newIssue(IssueDuplicate, SeverityError, file.Path,
				fmt.Sprintf("export %q is declared %d times in this file", name, len(records)))
			issue.Suggestion = "remove the duplicate declarations, keeping the first"
			issue.AutoFixable = true
			issue.ExportName = name
			issue.Kind = rec.Kind
			loc := rec.Location
			issue.Location = &loc
			issues = append(issues, issue)
		}
	}
	return issues
}

func (a *Analyzer) checkDefaultExports(file parser.FileExports) []Issue {
	var defaults []*parser.ExportRecord
	for i := range file.Exports {
		if file.Exports[i].Type == parser.ExportDefault {
			defaults = append(defaults, &file.Exports[i])
		}
	}

	var issues []Issue
	if len(defaults) > 1 {
		for _, rec := range defaults {
			issue := a.newIssue(IssueDuplicate, SeverityError, file.Path,
				fmt.Sprintf("file has %d default exports", len(defaults)))
			issue.Suggestion = "keep a single default export per file"
			issue.AutoFixable = true
			issue.ExportName = rec.ExportName
			issue.Kind = rec.Kind
			loc := rec.Location
			issue.Location = &loc
			issues = append(issues, issue)
		}
		return issues
	}

	if len(defaults) == 1 {
		rec := defaults[0]
		base := fileBasename(file.Path)
		if rec.ExportName != parser.NameDefault && rec.ExportName != parser.NameAssign && rec.ExportName != base {
			issue := a.newIssue(IssueNaming,
				a.severityFor(config.RuleDefaultExport, SeverityWarning),
				file.Path,
				fmt.Sprintf("default export %q does not match file name %q", rec.ExportName, base))
			issue.Suggestion = fmt.Sprintf("rename the default export to %q or rename the file", base)
			issue.ExportName = rec.ExportName
			issue.Kind = rec.Kind
			loc := rec.Location
			issue.Location = &loc
			issues = append(issues, issue)
		}
	}
	return issues
}

func (a *Analyzer) checkForbiddenPatterns(file parser.FileExports) []Issue {
	var issues []Issue
	for i := range file.Exports {
		rec := &file.Exports[i]

		var rule, what string
		switch {
		case a.cfg.RuleEnabled(config.RuleNoDefaultExport) && rec.Type == parser.ExportDefault:
			rule, what = config.RuleNoDefaultExport, "default exports"
		case a.cfg.RuleEnabled(config.RuleNoNamespaceExport) && rec.Type == parser.ExportNamespace:
			rule, what = config.RuleNoNamespaceExport, "namespace exports"
		case a.cfg.RuleEnabled(config.RuleNoReexport) && rec.Type == parser.ExportReexport:
			rule, what = config.RuleNoReexport, "re-exports"
		default:
			continue
		}

		issue := a.newIssue(IssueNaming, a.severityFor(rule, SeverityWarning), file.Path,
			fmt.Sprintf("%s are not allowed by project style (export %q)", what, rec.ExportName))
		issue.ExportName = rec.ExportName
		issue.Kind = rec.Kind
		loc := rec.Location
		issue.Location = &loc
		issues = append(issues, issue)
	}
	return issues
}

// checkTypeExportMismatch flags names exported both as a type-only and a
// value export in the same file; the two statements should be merged.
func (a *Analyzer) checkTypeExportMismatch(file parser.FileExports) []Issue {
	typeOnly := make(map[string]*parser.ExportRecord)
	value := make(map[string]bool)
	var order []string
	for i := range file.Exports {
		rec := &file.Exports[i]
		if isSentinelName(rec.ExportName) {
			continue
		}
		if rec.TypeOnly {
			if _, seen := typeOnly[rec.ExportName]; !seen {
				typeOnly[rec.ExportName] = rec
				order = append(order, rec.ExportName)
			}
		} else {
			value[rec.ExportName] = true
		}
	}

	var issues []Issue
	for _, name := range order {
		if !value[name] {
			continue
		}
		rec := typeOnly[name]
		issue := a.newIssue(IssueTypeMismatch, SeverityInfo, file.Path,
			fmt.Sprintf("export %q appears as both a type-only and a value export", name))
		issue.Suggestion = "merge the type-only export into the value export statement"
		issue.AutoFixable = true
		issue.ExportName = name
		issue.Kind = rec.Kind
		loc := rec.Location
		issue.Location = &loc
		issues = append(issues, issue)
	}
	return issues
}

func fileBasename(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
