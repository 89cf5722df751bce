// Package report turns analysis results into rendered documents. Generation
// is pure; persistence goes through a ReportSink so callers decide where a
// document lands.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"exportlint/internal/core/config"
	apperrors "exportlint/internal/core/errors"
	"exportlint/internal/core/ports"
	"exportlint/internal/engine/analyzer"
	"exportlint/internal/shared/version"
	"exportlint/internal/ui/report/formats"
)

const (
	FormatConsole  = "console"
	FormatJSON     = "json"
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)

const (
	GroupByFile     = "file"
	GroupByType     = "type"
	GroupBySeverity = "severity"
)

// Options selects the format and shape of one generated report. Zero values
// fall back to the configured defaults.
type Options struct {
	Format     string
	GroupBy    string
	SortBy     string
	Severities []string
	OutputPath string
}

// GeneratedReport is one rendered document plus where it should be saved.
type GeneratedReport struct {
	Format     string
	Content    string
	OutputPath string
}

type renderer interface {
	Generate(formats.Data) (string, error)
}

type Generator struct {
	cfg       *config.Config
	renderers map[string]renderer
}

func NewGenerator(cfg *config.Config) *Generator {
	return &Generator{
		cfg: cfg,
		renderers: map[string]renderer{
			FormatConsole:  formats.NewConsoleGenerator(),
			FormatJSON:     formats.NewJSONGenerator(),
			FormatHTML:     formats.NewHTMLGenerator(),
			FormatMarkdown: formats.NewMarkdownGenerator(),
			FormatCSV:      formats.NewCSVGenerator(),
		},
	}
}

// Generate renders one document from the result. The result is not
// modified; filtering and ordering happen on a copy of the issue list.
func (g *Generator) Generate(result *analyzer.ProjectResult, opts Options) (GeneratedReport, error) {
	opts = g.withDefaults(opts)

	r, ok := g.renderers[opts.Format]
	if !ok {
		err := apperrors.New(apperrors.CodeNotSupported,
			fmt.Sprintf("report format %q is not supported", opts.Format))
		return GeneratedReport{}, apperrors.AddContext(err, apperrors.CtxOperation, "report.Generate")
	}

	issues := filterBySeverity(result.Issues, opts.Severities)
	sortIssues(issues, opts.SortBy)

	data := formats.Data{
		ProjectName:   result.ProjectName,
		ProjectPath:   result.ProjectPath,
		Version:       version.Version,
		GeneratedAt:   result.Timestamp,
		TotalFiles:    result.TotalFiles,
		AnalyzedFiles: result.AnalyzedFiles,
		GroupBy:       opts.GroupBy,
		Summary:       result.Summary,
		Stats:         computeStatistics(issues),
		Groups:        groupIssues(issues, opts.GroupBy),
	}
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now().UTC()
	}

	content, err := r.Generate(data)
	if err != nil {
		wrapped := apperrors.Wrap(err, apperrors.CodeInternal, "render report")
		return GeneratedReport{}, apperrors.AddContext(wrapped, apperrors.CtxOperation, "report.Generate")
	}

	return GeneratedReport{
		Format:     opts.Format,
		Content:    content,
		OutputPath: opts.OutputPath,
	}, nil
}

// Save writes a generated report through the sink. Console reports have no
// output path and saving them is a no-op.
func (g *Generator) Save(rep GeneratedReport, sink ports.ReportSink) error {
	if rep.OutputPath == "" {
		return nil
	}
	if err := sink(rep.Content, rep.OutputPath); err != nil {
		wrapped := apperrors.Wrap(err, apperrors.CodeInternal, "save report")
		return apperrors.AddContext(wrapped, apperrors.CtxPath, rep.OutputPath)
	}
	return nil
}

func (g *Generator) withDefaults(opts Options) Options {
	if opts.Format == "" {
		opts.Format = g.cfg.Report.Format
	}
	if opts.GroupBy == "" {
		opts.GroupBy = g.cfg.Report.GroupBy
	}
	if opts.SortBy == "" {
		opts.SortBy = g.cfg.Report.SortBy
	}
	if len(opts.Severities) == 0 {
		opts.Severities = g.cfg.Report.Severities
	}
	if opts.OutputPath == "" {
		opts.OutputPath = g.cfg.Report.OutputPath
	}
	return opts
}

func filterBySeverity(issues []analyzer.Issue, severities []string) []analyzer.Issue {
	if len(severities) == 0 {
		return append([]analyzer.Issue(nil), issues...)
	}
	allowed := make(map[analyzer.Severity]bool, len(severities))
	for _, s := range severities {
		allowed[analyzer.Severity(strings.ToLower(s))] = true
	}
	filtered := make([]analyzer.Issue, 0, len(issues))
	for _, issue := range issues {
		if allowed[issue.Severity] {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}

func sortIssues(issues []analyzer.Issue, sortBy string) {
	line := func(i analyzer.Issue) int {
		if i.Location == nil {
			return 0
		}
		return i.Location.StartLine
	}
	sort.SliceStable(issues, func(a, b int) bool {
		x, y := issues[a], issues[b]
		switch sortBy {
		case "type":
			if x.Type != y.Type {
				return x.Type < y.Type
			}
		case "severity":
			if ra, rb := analyzer.SeverityRank(x.Severity), analyzer.SeverityRank(y.Severity); ra != rb {
				return ra < rb
			}
		}
		if x.FilePath != y.FilePath {
			return x.FilePath < y.FilePath
		}
		return line(x) < line(y)
	})
}

func groupIssues(issues []analyzer.Issue, groupBy string) []formats.Group {
	key := func(i analyzer.Issue) string {
		switch groupBy {
		case GroupByType:
			return string(i.Type)
		case GroupBySeverity:
			return string(i.Severity)
		default:
			return i.FilePath
		}
	}

	buckets := make(map[string][]analyzer.Issue)
	var order []string
	for _, issue := range issues {
		k := key(issue)
		if _, seen := buckets[k]; !seen {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], issue)
	}

	groups := make([]formats.Group, 0, len(order))
	for _, k := range order {
		groups = append(groups, formats.Group{Key: k, Issues: buckets[k]})
	}
	return groups
}

func computeStatistics(issues []analyzer.Issue) formats.Statistics {
	stats := formats.Statistics{
		TotalIssues: len(issues),
		BySeverity:  make(map[analyzer.Severity]int),
		ByType:      make(map[analyzer.IssueType]int),
	}
	files := make(map[string]bool)
	for _, issue := range issues {
		stats.BySeverity[issue.Severity]++
		stats.ByType[issue.Type]++
		files[issue.FilePath] = true
		if issue.AutoFixable {
			stats.AutoFixable++
		}
	}
	stats.FilesAffected = len(files)

	for t, count := range stats.ByType {
		stats.TopIssueTypes = append(stats.TopIssueTypes, formats.TypeCount{Type: t, Count: count})
	}
	sort.Slice(stats.TopIssueTypes, func(i, j int) bool {
		if stats.TopIssueTypes[i].Count != stats.TopIssueTypes[j].Count {
			return stats.TopIssueTypes[i].Count > stats.TopIssueTypes[j].Count
		}
		return stats.TopIssueTypes[i].Type < stats.TopIssueTypes[j].Type
	})
	if len(stats.TopIssueTypes) > 5 {
		stats.TopIssueTypes = stats.TopIssueTypes[:5]
	}
	return stats
}
