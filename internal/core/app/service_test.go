package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"exportlint/internal/core/config"
	"exportlint/internal/engine/analyzer"
	"exportlint/internal/ui/report"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestScannerSkipsExcludedDirsAndUnsupportedFiles(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/index.ts":           "export const A = 1;",
		"src/util.tsx":           "export const B = 2;",
		"node_modules/pkg/x.ts":  "export const C = 3;",
		"dist/out.ts":            "export const D = 4;",
		"src/readme.md":          "# notes",
		"src/__tests__/x.min.ts": "export const E = 5;",
	})
	cfg := config.Default(root)
	cfg.Exclude.Files = []string{"*.min.ts"}

	scanner, err := NewScanner(cfg)
	if err != nil {
		t.Fatal(err)
	}
	files, err := scanner.Scan()
	if err != nil {
		t.Fatal(err)
	}

	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d: %v", len(files), files)
	}
	for _, f := range files {
		if strings.Contains(f, "node_modules") || strings.Contains(f, "dist") {
			t.Errorf("excluded path scanned: %s", f)
		}
	}
}

func TestScannerIncludePatterns(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/a.ts": "export const A = 1;",
		"src/b.js": "export const B = 2;",
	})
	cfg := config.Default(root)
	cfg.Paths.Include = []string{"**/*.ts"}

	scanner, err := NewScanner(cfg)
	if err != nil {
		t.Fatal(err)
	}
	files, err := scanner.Scan()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || !strings.HasSuffix(files[0], "a.ts") {
		t.Errorf("include filter failed: %v", files)
	}
}

func TestServiceRunFindsIssues(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/button.ts": "export const my_button = () => {};\n",
		"src/config.ts": "export const config = { a: 1 };\n",
		"src/other.ts":  "export const config = { b: 2 };\n",
	})
	cfg := config.Default(root)

	svc, err := NewService(cfg)
	if err != nil {
		t.Fatal(err)
	}
	outcome, err := svc.Run(context.Background(), RunOptions{Format: report.FormatJSON})
	if err != nil {
		t.Fatal(err)
	}

	result := outcome.Result
	if result.TotalFiles != 3 || result.AnalyzedFiles != 3 {
		t.Errorf("files scanned=%d analyzed=%d", result.TotalFiles, result.AnalyzedFiles)
	}

	var haveNaming, haveDuplicate bool
	for _, issue := range result.Issues {
		switch issue.Type {
		case analyzer.IssueNaming:
			if issue.ExportName == "my_button" {
				haveNaming = true
			}
		case analyzer.IssueDuplicate:
			if issue.ExportName == "config" {
				haveDuplicate = true
			}
		}
	}
	if !haveNaming {
		t.Error("naming issue for 'my_button' not reported")
	}
	if !haveDuplicate {
		t.Error("cross-file duplicate 'config' not reported")
	}
	if outcome.Report.Content == "" {
		t.Error("no report rendered")
	}
}

func TestServiceRunWithFix(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/button.ts": "export const my_button = () => {};\n",
	})
	cfg := config.Default(root)
	cfg.AutoFix.BackupDir = filepath.Join(t.TempDir(), "backups")

	svc, err := NewService(cfg)
	if err != nil {
		t.Fatal(err)
	}
	outcome, err := svc.Run(context.Background(), RunOptions{Fix: true, Format: report.FormatJSON})
	if err != nil {
		t.Fatal(err)
	}

	if outcome.Fixes == nil || outcome.Fixes.SuccessfulFixes == 0 {
		t.Fatalf("expected at least one applied fix, got %+v", outcome.Fixes)
	}
	content, err := os.ReadFile(filepath.Join(root, "src", "button.ts"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "myButton") {
		t.Errorf("rename not applied:\n%s", content)
	}
	if outcome.Result.Summary.FixedCount == 0 {
		t.Error("fixed issues not reflected in summary")
	}
}

func TestServiceRunDryRunLeavesFilesUntouched(t *testing.T) {
	original := "export const my_button = () => {};\n"
	root := writeProject(t, map[string]string{"src/button.ts": original})
	cfg := config.Default(root)

	svc, err := NewService(cfg)
	if err != nil {
		t.Fatal(err)
	}
	outcome, err := svc.Run(context.Background(), RunOptions{Fix: true, DryRun: true, Format: report.FormatJSON})
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Fixes == nil || outcome.Fixes.SuccessfulFixes == 0 {
		t.Fatal("dry run should simulate fixes")
	}
	content, err := os.ReadFile(filepath.Join(root, "src", "button.ts"))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != original {
		t.Errorf("dry run modified file: %q", content)
	}
}

func TestServiceWritesReportFile(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/a.ts": "export const A = 1;\n",
	})
	out := t.TempDir()
	cfg := config.Default(root)
	cfg.Paths.OutputDir = out

	svc, err := NewService(cfg)
	if err != nil {
		t.Fatal(err)
	}
	_, err = svc.Run(context.Background(), RunOptions{
		Format:     report.FormatMarkdown,
		OutputPath: "report.md",
	})
	if err != nil {
		t.Fatal(err)
	}
	content, err := os.ReadFile(filepath.Join(out, "report.md"))
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	if !strings.Contains(string(content), "Export Consistency Report") {
		t.Error("unexpected report content")
	}
}

func TestServiceRunSurvivesReportSaveFailure(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/a.ts": "export const A = 1;\n",
	})
	// Point the output directory at a regular file so persisting fails.
	blocked := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default(root)
	cfg.Paths.OutputDir = blocked

	svc, err := NewService(cfg)
	if err != nil {
		t.Fatal(err)
	}
	outcome, err := svc.Run(context.Background(), RunOptions{
		Format:     report.FormatJSON,
		OutputPath: "sub/report.json",
	})
	if err != nil {
		t.Fatalf("run must not fail when only persistence fails: %v", err)
	}
	if outcome == nil || outcome.Result == nil {
		t.Fatal("analysis result discarded on save failure")
	}
	if outcome.Report.Content == "" {
		t.Error("rendered report discarded on save failure")
	}
}

func TestServiceRunHonorsContextCancellation(t *testing.T) {
	root := writeProject(t, map[string]string{"src/a.ts": "export const A = 1;\n"})
	svc, err := NewService(config.Default(root))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Run(ctx, RunOptions{}); err == nil {
		t.Error("expected error from canceled context")
	}
}
