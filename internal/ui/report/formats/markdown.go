package formats

import (
	"fmt"
	"strings"
	"time"
)

type MarkdownGenerator struct{}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

func (m *MarkdownGenerator) Generate(data Data) (string, error) {
	generatedAt := data.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: Export Consistency Report\n")
	b.WriteString("project: " + nonEmpty(data.ProjectName, "unknown") + "\n")
	b.WriteString("generated_at: " + generatedAt.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("version: " + nonEmpty(data.Version, "unknown") + "\n")
	b.WriteString("---\n\n")

	b.WriteString("# Export Consistency Report\n\n")

	b.WriteString("## Summary\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	b.WriteString(fmt.Sprintf("| Files Scanned | %d |\n", data.TotalFiles))
	b.WriteString(fmt.Sprintf("| Files Analyzed | %d |\n", data.AnalyzedFiles))
	b.WriteString(fmt.Sprintf("| Total Issues | %d |\n", data.Stats.TotalIssues))
	b.WriteString(fmt.Sprintf("| Errors | %d |\n", data.Summary.ErrorCount))
	b.WriteString(fmt.Sprintf("| Warnings | %d |\n", data.Summary.WarningCount))
	b.WriteString(fmt.Sprintf("| Info | %d |\n", data.Summary.InfoCount))
	b.WriteString(fmt.Sprintf("| Auto-fixable | %d |\n", data.Summary.AutoFixable))
	if data.Summary.FixedCount > 0 {
		b.WriteString(fmt.Sprintf("| Fixed | %d |\n", data.Summary.FixedCount))
	}
	b.WriteString("\n")

	if len(data.Stats.TopIssueTypes) > 0 {
		b.WriteString("## Most Frequent Issue Types\n")
		b.WriteString("| Type | Count |\n")
		b.WriteString("| --- | --- |\n")
		for _, tc := range data.Stats.TopIssueTypes {
			b.WriteString(fmt.Sprintf("| %s | %d |\n", tc.Type, tc.Count))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Issues\n")
	if data.Stats.TotalIssues == 0 {
		b.WriteString("No issues found. ✅\n")
		return b.String(), nil
	}

	for _, group := range data.Groups {
		b.WriteString(fmt.Sprintf("### %s\n", group.Key))
		b.WriteString("| Severity | Location | Issue | Suggestion |\n")
		b.WriteString("| --- | --- | --- | --- |\n")
		for _, issue := range group.Issues {
			message := issue.Message
			if issue.AutoFixable {
				message += " *(fixable)*"
			}
			b.WriteString(fmt.Sprintf("| %s | `%s` | %s | %s |\n",
				issue.Severity,
				issueLocation(issue),
				escapePipes(message),
				escapePipes(nonEmpty(issue.Suggestion, "-"))))
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}

func nonEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
