package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"exportlint/internal/core/config"
	apperrors "exportlint/internal/core/errors"
	"exportlint/internal/core/ports"
	"exportlint/internal/engine/analyzer"
	"exportlint/internal/engine/fixer"
	"exportlint/internal/engine/parser"
	"exportlint/internal/shared/observability"
	"exportlint/internal/ui/report"
)

// Service wires one full run: scan, detect, analyze, optionally fix, then
// render. It holds no state between runs, so watch mode can call Run
// repeatedly on the same instance.
type Service struct {
	cfg      *config.Config
	scanner  *Scanner
	detector ports.ExportDetector
	analyzer *analyzer.Analyzer
	fixer    *fixer.Fixer
	reporter *report.Generator
}

// RunOptions narrows one run; zero values defer to the configuration.
type RunOptions struct {
	Fix        bool
	DryRun     bool
	Format     string
	OutputPath string
}

// RunOutcome carries everything a caller needs after a run: the raw result
// for exit-code decisions, the rendered report, and fix details if fixing
// was requested.
type RunOutcome struct {
	Result *analyzer.ProjectResult
	Report report.GeneratedReport
	Fixes  *fixer.BatchResult
}

func NewService(cfg *config.Config) (*Service, error) {
	return newService(cfg, parser.NewDetector(parser.FSSource{}))
}

func newService(cfg *config.Config, detector ports.ExportDetector) (*Service, error) {
	scanner, err := NewScanner(cfg)
	if err != nil {
		return nil, err
	}
	an, err := analyzer.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Service{
		cfg:      cfg,
		scanner:  scanner,
		detector: detector,
		analyzer: an,
		fixer:    fixer.New(cfg),
		reporter: report.NewGenerator(cfg),
	}, nil
}

func (s *Service) Run(ctx context.Context, opts RunOptions) (*RunOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files, err := s.scanner.Scan()
	if err != nil {
		return nil, apperrors.AddContext(err, apperrors.CtxOperation, "scan")
	}
	observability.FilesScanned.Add(float64(len(files)))

	if err := s.detector.Initialize(files, parser.ParseOptions{IncludeJS: includesJavaScript(s.cfg)}); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeParseError, "initialize parse context")
	}
	defer s.detector.Dispose()

	fileExports := make([]parser.FileExports, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fileExports = append(fileExports, parser.FileExports{
			Path:    path,
			Exports: s.detector.AnalyzeFile(path),
			Imports: s.detector.Imports(path),
		})
	}

	issues := s.analyzer.AnalyzeProject(fileExports)

	result := &analyzer.ProjectResult{
		ProjectPath:   s.cfg.Paths.ProjectRoot,
		ProjectName:   filepath.Base(s.cfg.Paths.ProjectRoot),
		Timestamp:     time.Now().UTC(),
		TotalFiles:    len(files),
		AnalyzedFiles: s.detector.ParsedCount(),
		Issues:        issues,
	}

	outcome := &RunOutcome{Result: result}

	if opts.Fix || s.cfg.AutoFix.Enabled {
		batch := s.applyFixes(issues, opts.DryRun)
		outcome.Fixes = &batch
		result.FixedIssues = fixedIssues(issues, batch)
	}
	result.Summary = analyzer.ComputeSummary(issues, result.FixedIssues)

	rep, err := s.reporter.Generate(result, report.Options{
		Format:     opts.Format,
		OutputPath: opts.OutputPath,
	})
	if err != nil {
		return nil, err
	}
	outcome.Report = rep

	// A failed save must not discard the analysis: the caller still gets the
	// in-memory result and report for exit-code and console decisions.
	if err := s.reporter.Save(rep, s.fileSink()); err != nil {
		slog.Error("failed to persist report", "path", rep.OutputPath, "error", err)
	}

	return outcome, nil
}

func (s *Service) applyFixes(issues []analyzer.Issue, dryRun bool) fixer.BatchResult {
	byFile := make(map[string][]analyzer.Issue)
	for _, issue := range issues {
		if issue.AutoFixable {
			byFile[issue.FilePath] = append(byFile[issue.FilePath], issue)
		}
	}
	if len(byFile) == 0 {
		return fixer.BatchResult{}
	}
	return s.fixer.FixMultipleFiles(byFile, s.fixer.OptionsFromConfig(dryRun))
}

// fixedIssues maps successful operations back onto the issues that produced
// them by file and line; missing-export additions carry no source line and
// match on file alone.
func fixedIssues(issues []analyzer.Issue, batch fixer.BatchResult) []analyzer.Issue {
	type lineKey struct {
		path string
		line int
	}
	fixedLines := make(map[lineKey]bool)
	addedTo := make(map[string]bool)
	for _, res := range batch.Results {
		if !res.Success {
			continue
		}
		if res.Operation.Type == fixer.OpAdd {
			addedTo[res.Operation.FilePath] = true
			continue
		}
		fixedLines[lineKey{res.Operation.FilePath, res.Operation.LineNumber}] = true
	}

	var fixed []analyzer.Issue
	for _, issue := range issues {
		if !issue.AutoFixable {
			continue
		}
		if issue.Type == analyzer.IssueMissingExport && addedTo[issue.FilePath] {
			fixed = append(fixed, issue)
			continue
		}
		if issue.Location != nil && fixedLines[lineKey{issue.FilePath, issue.Location.StartLine}] {
			fixed = append(fixed, issue)
		}
	}
	return fixed
}

// fileSink writes report files under the configured output directory.
// Absolute paths are honored as-is.
func (s *Service) fileSink() ports.ReportSink {
	return func(content, path string) error {
		if !filepath.IsAbs(path) && s.cfg.Paths.OutputDir != "" {
			path = filepath.Join(s.cfg.Paths.OutputDir, path)
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		return os.WriteFile(path, []byte(content), 0o644)
	}
}
