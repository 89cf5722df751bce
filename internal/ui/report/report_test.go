package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"exportlint/internal/core/config"
	apperrors "exportlint/internal/core/errors"
	"exportlint/internal/engine/analyzer"
	"exportlint/internal/engine/parser"
)

func sampleResult() *analyzer.ProjectResult {
	issues := []analyzer.Issue{
		{
			ID:          "run1-0001",
			Type:        analyzer.IssueNaming,
			Severity:    analyzer.SeverityWarning,
			FilePath:    "src/button.ts",
			Message:     "export 'btn' does not match the component naming convention",
			Suggestion:  "rename to 'Btn'",
			AutoFixable: true,
			ExportName:  "btn",
			Kind:        parser.KindComponent,
			Location:    &parser.Location{File: "src/button.ts", StartLine: 3, StartColumn: 13},
		},
		{
			ID:           "run1-0002",
			Type:         analyzer.IssueDuplicate,
			Severity:     analyzer.SeverityError,
			FilePath:     "src/a.ts",
			Message:      "export 'config' is also exported by src/b.ts",
			RelatedFiles: []string{"src/a.ts", "src/b.ts"},
			ExportName:   "config",
			Location:     &parser.Location{File: "src/a.ts", StartLine: 1},
		},
		{
			ID:       "run1-0003",
			Type:     analyzer.IssueUnusedExport,
			Severity: analyzer.SeverityInfo,
			FilePath: "src/a.ts",
			Message:  "export 'legacy' is never imported",
			Location: &parser.Location{File: "src/a.ts", StartLine: 9},
		},
	}
	result := &analyzer.ProjectResult{
		ProjectPath:   "/work/app",
		ProjectName:   "app",
		Timestamp:     time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		TotalFiles:    12,
		AnalyzedFiles: 10,
		Issues:        issues,
	}
	result.Summary = analyzer.ComputeSummary(issues, nil)
	return result
}

func newTestGenerator() *Generator {
	return NewGenerator(config.Default("."))
}

func TestJSONReportRoundTrip(t *testing.T) {
	g := newTestGenerator()
	rep, err := g.Generate(sampleResult(), Options{Format: FormatJSON})
	if err != nil {
		t.Fatal(err)
	}

	var doc struct {
		ProjectName   string           `json:"projectName"`
		FilesAnalyzed int              `json:"filesAnalyzed"`
		Issues        []analyzer.Issue `json:"issues"`
	}
	if err := json.Unmarshal([]byte(rep.Content), &doc); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if doc.ProjectName != "app" {
		t.Errorf("projectName = %q", doc.ProjectName)
	}
	if doc.FilesAnalyzed != 10 {
		t.Errorf("filesAnalyzed = %d", doc.FilesAnalyzed)
	}
	if len(doc.Issues) != 3 {
		t.Errorf("expected 3 issues, got %d", len(doc.Issues))
	}
	if doc.Issues[0].Location == nil || doc.Issues[0].Location.StartLine == 0 {
		t.Error("source location lost in round trip")
	}
}

func TestSeverityFilter(t *testing.T) {
	g := newTestGenerator()
	rep, err := g.Generate(sampleResult(), Options{
		Format:     FormatJSON,
		Severities: []string{"error"},
	})
	if err != nil {
		t.Fatal(err)
	}

	var doc struct {
		Issues []analyzer.Issue `json:"issues"`
	}
	if err := json.Unmarshal([]byte(rep.Content), &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Issues) != 1 || doc.Issues[0].Severity != analyzer.SeverityError {
		t.Errorf("severity filter failed: %+v", doc.Issues)
	}
}

func TestGroupByType(t *testing.T) {
	issues := sampleResult().Issues
	groups := groupIssues(issues, GroupByType)
	if len(groups) != 3 {
		t.Fatalf("expected 3 type groups, got %d", len(groups))
	}
	for _, group := range groups {
		for _, issue := range group.Issues {
			if string(issue.Type) != group.Key {
				t.Errorf("issue %s filed under group %s", issue.Type, group.Key)
			}
		}
	}
}

func TestSortBySeverityThenFileAndLine(t *testing.T) {
	issues := append([]analyzer.Issue(nil), sampleResult().Issues...)
	sortIssues(issues, "severity")
	if issues[0].Severity != analyzer.SeverityError {
		t.Errorf("first issue should be the error, got %s", issues[0].Severity)
	}
	if issues[2].Severity != analyzer.SeverityInfo {
		t.Errorf("last issue should be info, got %s", issues[2].Severity)
	}
}

func TestConsoleReportMentionsCounts(t *testing.T) {
	g := newTestGenerator()
	rep, err := g.Generate(sampleResult(), Options{Format: FormatConsole})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"app", "1 errors", "1 warnings", "[fixable]"} {
		if !strings.Contains(rep.Content, want) {
			t.Errorf("console output missing %q", want)
		}
	}
}

func TestMarkdownReportFrontMatterAndTables(t *testing.T) {
	g := newTestGenerator()
	rep, err := g.Generate(sampleResult(), Options{Format: FormatMarkdown})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(rep.Content, "---\n") {
		t.Error("markdown report missing front matter")
	}
	for _, want := range []string{"project: app", "| Total Issues | 3 |", "### src/button.ts"} {
		if !strings.Contains(rep.Content, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

func TestCSVQuotesCommasAndQuotes(t *testing.T) {
	result := sampleResult()
	result.Issues = []analyzer.Issue{{
		Type:     analyzer.IssueNaming,
		Severity: analyzer.SeverityWarning,
		FilePath: "src/x.ts",
		Message:  `rename "btn", it breaks convention`,
	}}
	result.Summary = analyzer.ComputeSummary(result.Issues, nil)

	g := newTestGenerator()
	rep, err := g.Generate(result, Options{Format: FormatCSV})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(rep.Content, `"rename ""btn"", it breaks convention"`) {
		t.Errorf("csv quoting wrong:\n%s", rep.Content)
	}
	lines := strings.Split(strings.TrimSpace(rep.Content), "\n")
	if len(lines) != 2 {
		t.Errorf("expected header plus one row, got %d lines", len(lines))
	}
}

func TestHTMLReportEscapesContent(t *testing.T) {
	result := sampleResult()
	result.Issues = []analyzer.Issue{{
		Type:     analyzer.IssueNaming,
		Severity: analyzer.SeverityWarning,
		FilePath: "src/x.ts",
		Message:  "<script>alert(1)</script>",
	}}
	result.Summary = analyzer.ComputeSummary(result.Issues, nil)

	g := newTestGenerator()
	rep, err := g.Generate(result, Options{Format: FormatHTML})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(rep.Content, "<script>alert(1)</script>") {
		t.Error("message not escaped in HTML output")
	}
	if !strings.Contains(rep.Content, "&lt;script&gt;") {
		t.Error("expected escaped message in HTML output")
	}
}

func TestUnknownFormatRejected(t *testing.T) {
	g := newTestGenerator()
	_, err := g.Generate(sampleResult(), Options{Format: "xml"})
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if !apperrors.IsCode(err, apperrors.CodeNotSupported) {
		t.Errorf("unexpected error code: %v", err)
	}
}

func TestSaveThroughSink(t *testing.T) {
	g := newTestGenerator()
	rep := GeneratedReport{Format: FormatJSON, Content: "{}", OutputPath: "report.json"}

	var gotContent, gotPath string
	err := g.Save(rep, func(content, path string) error {
		gotContent, gotPath = content, path
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if gotContent != "{}" || gotPath != "report.json" {
		t.Errorf("sink received (%q, %q)", gotContent, gotPath)
	}

	// Console reports carry no output path and are never persisted.
	called := false
	if err := g.Save(GeneratedReport{Format: FormatConsole}, func(string, string) error {
		called = true
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if called {
		t.Error("sink called for report without output path")
	}
}

func TestStatisticsTopTypes(t *testing.T) {
	issues := []analyzer.Issue{
		{Type: analyzer.IssueNaming, FilePath: "a.ts"},
		{Type: analyzer.IssueNaming, FilePath: "b.ts"},
		{Type: analyzer.IssueDuplicate, FilePath: "a.ts"},
	}
	stats := computeStatistics(issues)
	if stats.TotalIssues != 3 || stats.FilesAffected != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if len(stats.TopIssueTypes) != 2 || stats.TopIssueTypes[0].Type != analyzer.IssueNaming {
		t.Errorf("top types = %+v", stats.TopIssueTypes)
	}
}
