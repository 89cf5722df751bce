package fixer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"exportlint/internal/core/config"
	apperrors "exportlint/internal/core/errors"
	"exportlint/internal/engine/analyzer"
	"exportlint/internal/engine/parser"
)

func newTestFixer(t *testing.T) *Fixer {
	t.Helper()
	cfg := config.Default(".")
	cfg.AutoFix.BackupDir = filepath.Join(t.TempDir(), "backups")
	return New(cfg)
}

func writeTestFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.ts")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(content)
}

func namingIssue(path, name string, kind parser.ExportKind, line int) analyzer.Issue {
	return analyzer.Issue{
		Type:        analyzer.IssueNaming,
		Severity:    analyzer.SeverityWarning,
		FilePath:    path,
		ExportName:  name,
		Kind:        kind,
		AutoFixable: true,
		Location:    &parser.Location{File: path, StartLine: line, StartColumn: 0},
	}
}

func TestConvertCase(t *testing.T) {
	cases := []struct {
		in   string
		conv CaseConvention
		want string
	}{
		{"btn", CasePascal, "Btn"},
		{"my_button", CasePascal, "MyButton"},
		{"MyButton", CaseCamel, "myButton"},
		{"maxRetries", CaseSnake, "MAX_RETRIES"},
		{"max_retries", CaseSnake, "MAX_RETRIES"},
		{"UserProfile", CaseKebab, "user-profile"},
	}
	for _, tc := range cases {
		if got := ConvertCase(tc.in, tc.conv); got != tc.want {
			t.Errorf("ConvertCase(%q, %s) = %q, want %q", tc.in, tc.conv, got, tc.want)
		}
	}
}

func TestRenameComponentToPascalCase(t *testing.T) {
	f := newTestFixer(t)
	path := writeTestFile(t, "export const btn = () => {};\nexport const other = 1;")

	issue := namingIssue(path, "btn", parser.KindComponent, 1)
	result := f.FixFile(path, []analyzer.Issue{issue}, Options{MaxRiskLevel: RiskMedium})

	if result.SuccessfulFixes != 1 {
		t.Fatalf("expected 1 successful fix, got %d (failed %d)", result.SuccessfulFixes, result.FailedFixes)
	}
	content := readTestFile(t, path)
	if !strings.Contains(content, "export const Btn = () => {};") {
		t.Errorf("rename not applied:\n%s", content)
	}
	if !strings.Contains(content, "export const other = 1;") {
		t.Errorf("unrelated line modified:\n%s", content)
	}
}

func TestDryRunDoesNotModifyFile(t *testing.T) {
	f := newTestFixer(t)
	original := "export const btn = () => {};"
	path := writeTestFile(t, original)

	issue := namingIssue(path, "btn", parser.KindComponent, 1)
	opts := Options{DryRun: true, MaxRiskLevel: RiskMedium}

	first := f.FixFile(path, []analyzer.Issue{issue}, opts)
	second := f.FixFile(path, []analyzer.Issue{issue}, opts)

	if first.SuccessfulFixes != 1 || second.SuccessfulFixes != 1 {
		t.Fatalf("dry run not idempotent: first=%d second=%d", first.SuccessfulFixes, second.SuccessfulFixes)
	}
	if got := readTestFile(t, path); got != original {
		t.Errorf("dry run modified file: %q", got)
	}
}

func TestConflictingOperationsNotApplied(t *testing.T) {
	f := newTestFixer(t)
	original := "export const btn = () => {};"
	path := writeTestFile(t, original)

	// Same line, different target conventions: one rename sees a component,
	// the other a constant. Neither edit may win.
	issues := []analyzer.Issue{
		namingIssue(path, "btn", parser.KindComponent, 1),
		namingIssue(path, "btn", parser.KindConstant, 1),
	}
	result := f.FixFile(path, issues, Options{MaxRiskLevel: RiskMedium})

	if len(result.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(result.Conflicts))
	}
	if len(result.Conflicts[0].Operations) != 2 {
		t.Errorf("expected both operations recorded in the conflict, got %d", len(result.Conflicts[0].Operations))
	}
	if result.SuccessfulFixes != 0 {
		t.Errorf("conflicting operations applied: %d", result.SuccessfulFixes)
	}
	if got := readTestFile(t, path); got != original {
		t.Errorf("file modified despite conflict: %q", got)
	}
}

func TestIdenticalOperationsCollapse(t *testing.T) {
	f := newTestFixer(t)
	path := writeTestFile(t, "export const btn = () => {};")

	issues := []analyzer.Issue{
		namingIssue(path, "btn", parser.KindComponent, 1),
		namingIssue(path, "btn", parser.KindComponent, 1),
	}
	result := f.FixFile(path, issues, Options{MaxRiskLevel: RiskMedium})

	if len(result.Conflicts) != 0 {
		t.Fatalf("identical edits reported as conflict")
	}
	if result.SuccessfulFixes != 1 {
		t.Errorf("expected the duplicate edits to collapse into 1 fix, got %d", result.SuccessfulFixes)
	}
}

func TestRiskLevelFiltersOperations(t *testing.T) {
	f := newTestFixer(t)
	original := "export const btn = () => {};"
	path := writeTestFile(t, original)

	issue := namingIssue(path, "btn", parser.KindComponent, 1)
	result := f.FixFile(path, []analyzer.Issue{issue}, Options{MaxRiskLevel: RiskLow})

	if result.TotalOperations != 0 {
		t.Errorf("rename is medium risk and must be skipped at ceiling low, got %d operations", result.TotalOperations)
	}
	if got := readTestFile(t, path); got != original {
		t.Errorf("file modified despite risk filter: %q", got)
	}
}

func TestBackupCreatedBeforeEdit(t *testing.T) {
	f := newTestFixer(t)
	original := "export const btn = () => {};"
	path := writeTestFile(t, original)

	issue := namingIssue(path, "btn", parser.KindComponent, 1)
	result := f.FixFile(path, []analyzer.Issue{issue}, Options{CreateBackup: true, MaxRiskLevel: RiskMedium})

	if result.BackupDirectory == "" {
		t.Fatal("no backup directory recorded")
	}
	if len(result.Results) == 0 || result.Results[0].BackupPath == "" {
		t.Fatal("no backup path on result")
	}
	backup := readTestFile(t, result.Results[0].BackupPath)
	if backup != original {
		t.Errorf("backup holds %q, want pre-edit content", backup)
	}
	if got := readTestFile(t, path); got == original {
		t.Errorf("edit not applied after backup")
	}
}

func TestRemoveDuplicateKeepsFirstOccurrence(t *testing.T) {
	f := newTestFixer(t)
	path := writeTestFile(t, strings.Join([]string{
		"export const config = { a: 1 };",
		"const other = 2;",
		"export const config = { a: 2 };",
	}, "\n"))

	dup := func(line int) analyzer.Issue {
		return analyzer.Issue{
			Type:        analyzer.IssueDuplicate,
			Severity:    analyzer.SeverityError,
			FilePath:    path,
			ExportName:  "config",
			AutoFixable: true,
			Location:    &parser.Location{File: path, StartLine: line},
		}
	}
	result := f.FixFile(path, []analyzer.Issue{dup(1), dup(3)}, Options{MaxRiskLevel: RiskMedium})

	if result.SuccessfulFixes != 1 {
		t.Fatalf("expected 1 removal, got %d successes (%d failures)", result.SuccessfulFixes, result.FailedFixes)
	}
	content := readTestFile(t, path)
	if strings.Count(content, "export const config") != 1 {
		t.Errorf("duplicate not removed:\n%s", content)
	}
	if !strings.Contains(content, "{ a: 1 }") {
		t.Errorf("first occurrence was removed instead of kept:\n%s", content)
	}
}

func TestAddMissingExportAppendsAtEnd(t *testing.T) {
	f := newTestFixer(t)
	path := writeTestFile(t, "const helper = () => {};")

	issue := analyzer.Issue{
		Type:        analyzer.IssueMissingExport,
		Severity:    analyzer.SeverityWarning,
		FilePath:    path,
		ExportName:  "helper",
		AutoFixable: true,
	}
	result := f.FixFile(path, []analyzer.Issue{issue}, Options{MaxRiskLevel: RiskMedium})

	if result.SuccessfulFixes != 1 {
		t.Fatalf("expected 1 fix, got %d", result.SuccessfulFixes)
	}
	content := readTestFile(t, path)
	if !strings.HasSuffix(strings.TrimRight(content, "\n"), "export { helper };") {
		t.Errorf("missing export not appended:\n%s", content)
	}
}

func TestMultipleMissingExportsAllAppended(t *testing.T) {
	f := newTestFixer(t)
	path := writeTestFile(t, "const first = 1;\nconst second = 2;")

	missing := func(name string) analyzer.Issue {
		return analyzer.Issue{
			Type:        analyzer.IssueMissingExport,
			Severity:    analyzer.SeverityWarning,
			FilePath:    path,
			ExportName:  name,
			AutoFixable: true,
		}
	}
	result := f.FixFile(path, []analyzer.Issue{missing("first"), missing("second")}, Options{MaxRiskLevel: RiskMedium})

	// Appends never compete for a line; both statements must land.
	if len(result.Conflicts) != 0 {
		t.Fatalf("independent appends reported as conflict: %+v", result.Conflicts)
	}
	if result.SuccessfulFixes != 2 {
		t.Fatalf("expected 2 fixes, got %d successes (%d failures)", result.SuccessfulFixes, result.FailedFixes)
	}
	content := readTestFile(t, path)
	if !strings.Contains(content, "export { first };") || !strings.Contains(content, "export { second };") {
		t.Errorf("missing exports not all appended:\n%s", content)
	}
}

func TestStaleLineRejected(t *testing.T) {
	f := newTestFixer(t)
	path := writeTestFile(t, "export const btn = () => {};")

	issue := namingIssue(path, "btn", parser.KindComponent, 1)
	ops := f.generateOperations(path, []string{"export const btn = () => {};"}, []analyzer.Issue{issue})
	if len(ops) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(ops))
	}

	// The file changes between analysis and application.
	if err := os.WriteFile(path, []byte("export const changed = 1;"), 0o644); err != nil {
		t.Fatal(err)
	}
	lines, err := readLines(path)
	if err != nil {
		t.Fatal(err)
	}
	_, err = applyOperation(lines, ops[0])
	if err == nil {
		t.Fatal("expected stale line to be rejected")
	}
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("stale line should surface as a conflict, got %v", err)
	}
}

func TestNormalizeStatement(t *testing.T) {
	if got := normalizeStatement("  export   const  x =  1;"); got != "  export const x = 1;" {
		t.Errorf("normalizeStatement = %q", got)
	}
	if got := normalizeStatement("export const x = 1;"); got != "export const x = 1;" {
		t.Errorf("already-normal line changed: %q", got)
	}
}
