package formats

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"
)

type HTMLGenerator struct{}

func NewHTMLGenerator() *HTMLGenerator {
	return &HTMLGenerator{}
}

// Generate produces a self-contained HTML page. Issue data is embedded as
// JSON so the page's filter controls work without a server.
func (h *HTMLGenerator) Generate(data Data) (string, error) {
	issues := flattenGroups(data.Groups)
	payload, err := json.Marshal(issues)
	if err != nil {
		return "", fmt.Errorf("embed issue data: %w", err)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString(fmt.Sprintf("<title>Export Consistency Report — %s</title>\n", html.EscapeString(data.ProjectName)))
	b.WriteString("<style>\n")
	b.WriteString(htmlStyles)
	b.WriteString("</style>\n</head>\n<body>\n")

	b.WriteString("<h1>Export Consistency Report</h1>\n")
	b.WriteString(fmt.Sprintf("<p class=\"meta\">%s · generated %s</p>\n",
		html.EscapeString(data.ProjectName),
		data.GeneratedAt.UTC().Format(time.RFC3339)))

	b.WriteString("<div class=\"cards\">\n")
	writeCard(&b, "Files analyzed", data.AnalyzedFiles)
	writeCard(&b, "Issues", data.Stats.TotalIssues)
	writeCard(&b, "Errors", data.Summary.ErrorCount)
	writeCard(&b, "Warnings", data.Summary.WarningCount)
	writeCard(&b, "Auto-fixable", data.Summary.AutoFixable)
	b.WriteString("</div>\n")

	b.WriteString("<div class=\"filters\">\n")
	b.WriteString("<label><input type=\"checkbox\" data-severity=\"error\" checked> errors</label>\n")
	b.WriteString("<label><input type=\"checkbox\" data-severity=\"warning\" checked> warnings</label>\n")
	b.WriteString("<label><input type=\"checkbox\" data-severity=\"info\" checked> info</label>\n")
	b.WriteString("</div>\n")

	for _, group := range data.Groups {
		b.WriteString(fmt.Sprintf("<h2>%s</h2>\n", html.EscapeString(group.Key)))
		b.WriteString("<table>\n<thead><tr><th>Severity</th><th>Location</th><th>Issue</th><th>Suggestion</th></tr></thead>\n<tbody>\n")
		for _, issue := range group.Issues {
			b.WriteString(fmt.Sprintf("<tr class=\"sev-%s\">", issue.Severity))
			b.WriteString(fmt.Sprintf("<td><span class=\"badge %s\">%s</span></td>", issue.Severity, issue.Severity))
			b.WriteString(fmt.Sprintf("<td><code>%s</code></td>", html.EscapeString(issueLocation(issue))))
			message := html.EscapeString(issue.Message)
			if issue.AutoFixable {
				message += " <span class=\"fixable\">fixable</span>"
			}
			b.WriteString(fmt.Sprintf("<td>%s</td>", message))
			b.WriteString(fmt.Sprintf("<td>%s</td>", html.EscapeString(issue.Suggestion)))
			b.WriteString("</tr>\n")
		}
		b.WriteString("</tbody>\n</table>\n")
	}

	b.WriteString("<script>\nconst issues = ")
	b.Write(payload)
	b.WriteString(";\n")
	b.WriteString(htmlScript)
	b.WriteString("</script>\n</body>\n</html>\n")

	return b.String(), nil
}

func writeCard(b *strings.Builder, label string, value int) {
	b.WriteString(fmt.Sprintf("<div class=\"card\"><span class=\"value\">%d</span><span class=\"label\">%s</span></div>\n",
		value, html.EscapeString(label)))
}

const htmlStyles = `
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem auto; max-width: 70rem; color: #1e293b; }
h1 { color: #3b82f6; }
.meta { color: #64748b; }
.cards { display: flex; gap: 1rem; margin: 1rem 0; }
.card { border: 1px solid #e2e8f0; border-radius: 8px; padding: 0.75rem 1.25rem; text-align: center; }
.card .value { display: block; font-size: 1.5rem; font-weight: 700; }
.card .label { color: #64748b; font-size: 0.8rem; }
.filters { margin: 1rem 0; color: #475569; }
.filters label { margin-right: 1rem; }
table { border-collapse: collapse; width: 100%; margin-bottom: 1.5rem; }
th, td { border-bottom: 1px solid #e2e8f0; padding: 0.4rem 0.6rem; text-align: left; font-size: 0.9rem; }
.badge { border-radius: 4px; padding: 0.1rem 0.4rem; font-size: 0.75rem; color: #fff; }
.badge.error { background: #ef4444; }
.badge.warning { background: #f59e0b; }
.badge.info { background: #64748b; }
.fixable { color: #10b981; font-size: 0.75rem; }
code { background: #f1f5f9; padding: 0.1rem 0.3rem; border-radius: 3px; }
tr.hidden { display: none; }
`

const htmlScript = `
document.querySelectorAll('.filters input').forEach(box => {
  box.addEventListener('change', () => {
    const sev = box.dataset.severity;
    document.querySelectorAll('tr.sev-' + sev).forEach(row => {
      row.classList.toggle('hidden', !box.checked);
    });
  });
});
`
