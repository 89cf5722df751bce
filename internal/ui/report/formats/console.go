package formats

import (
	"fmt"
	"strings"

	"exportlint/internal/engine/analyzer"

	"github.com/charmbracelet/lipgloss"
)

var (
	consoleTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#3B82F6")).
				Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	groupKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A78BFA")).
			Bold(true)

	fixableStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))
)

type ConsoleGenerator struct{}

func NewConsoleGenerator() *ConsoleGenerator {
	return &ConsoleGenerator{}
}

func (c *ConsoleGenerator) Generate(data Data) (string, error) {
	var b strings.Builder

	b.WriteString(consoleTitleStyle.Render(fmt.Sprintf("Export Analysis — %s", data.ProjectName)))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("%d files analyzed of %d scanned", data.AnalyzedFiles, data.TotalFiles)))
	b.WriteString("\n\n")

	if data.Stats.TotalIssues == 0 {
		b.WriteString(successStyle.Render("No issues found."))
		b.WriteString("\n")
		return b.String(), nil
	}

	for _, group := range data.Groups {
		b.WriteString(groupKeyStyle.Render(group.Key))
		b.WriteString("\n")
		for _, issue := range group.Issues {
			b.WriteString("  ")
			b.WriteString(severityBadge(issue.Severity))
			b.WriteString(" ")
			b.WriteString(issueLocation(issue))
			b.WriteString("  ")
			b.WriteString(issue.Message)
			if issue.AutoFixable {
				b.WriteString(" ")
				b.WriteString(fixableStyle.Render("[fixable]"))
			}
			b.WriteString("\n")
			if issue.Suggestion != "" {
				b.WriteString(infoStyle.Render("      ↳ " + issue.Suggestion))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("%s  %s  %s\n",
		errorStyle.Render(fmt.Sprintf("%d errors", data.Summary.ErrorCount)),
		warningStyle.Render(fmt.Sprintf("%d warnings", data.Summary.WarningCount)),
		infoStyle.Render(fmt.Sprintf("%d info", data.Summary.InfoCount))))
	if data.Summary.AutoFixable > 0 {
		b.WriteString(infoStyle.Render(fmt.Sprintf("%d issues are auto-fixable (run with -fix)", data.Summary.AutoFixable)))
		b.WriteString("\n")
	}
	if data.Summary.FixedCount > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("%d issues fixed (%.0f%% success rate)",
			data.Summary.FixedCount, data.Summary.SuccessRate*100)))
		b.WriteString("\n")
	}

	return b.String(), nil
}

func severityBadge(s analyzer.Severity) string {
	switch s {
	case analyzer.SeverityError:
		return errorStyle.Render("error  ")
	case analyzer.SeverityWarning:
		return warningStyle.Render("warning")
	default:
		return infoStyle.Render("info   ")
	}
}

func issueLocation(issue analyzer.Issue) string {
	if issue.Location == nil {
		return issue.FilePath
	}
	return fmt.Sprintf("%s:%d:%d", issue.FilePath, issue.Location.StartLine, issue.Location.StartColumn)
}
