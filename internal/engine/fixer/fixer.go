package fixer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"exportlint/internal/core/config"
	apperrors "exportlint/internal/core/errors"
	"exportlint/internal/engine/analyzer"
	"exportlint/internal/shared/observability"
	"exportlint/internal/shared/util"

	"github.com/google/uuid"
)

// Fixer converts issues into textual edit operations and applies them
// transactionally per file. Policy (backup, risk ceiling) comes from the
// injected config; Options can narrow it per call.
type Fixer struct {
	cfg     *config.Config
	limiter *util.Limiter
}

func New(cfg *config.Config) *Fixer {
	return &Fixer{
		cfg: cfg,
		// pace writes so a watch-mode fix burst doesn't saturate the disk
		limiter: util.NewLimiter(50, 10),
	}
}

// OptionsFromConfig derives batch options from the run configuration.
func (f *Fixer) OptionsFromConfig(dryRun bool) Options {
	return Options{
		DryRun:       dryRun,
		CreateBackup: f.cfg.AutoFix.CreateBackup,
		MaxRiskLevel: RiskLevel(f.cfg.AutoFix.MaxRiskLevel),
	}
}

// FixFile applies (or simulates) every mapped operation for one file.
func (f *Fixer) FixFile(path string, issues []analyzer.Issue, opts Options) BatchResult {
	return f.FixMultipleFiles(map[string][]analyzer.Issue{path: issues}, opts)
}

// FixMultipleFiles processes each file independently: a failure while
// applying one file's operations fails only that file's results.
func (f *Fixer) FixMultipleFiles(issuesByFile map[string][]analyzer.Issue, opts Options) BatchResult {
	batch := BatchResult{}

	var backupDir string
	ensureBackupDir := func() (string, error) {
		if backupDir != "" {
			return backupDir, nil
		}
		dir := filepath.Join(f.cfg.AutoFix.BackupDir,
			fmt.Sprintf("%s-%s", time.Now().Format("20060102-150405"), uuid.NewString()[:8]))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
		backupDir = dir
		batch.BackupDirectory = dir
		return dir, nil
	}

	for _, path := range util.SortedStringKeys(issuesByFile) {
		f.fixOneFile(path, issuesByFile[path], opts, &batch, ensureBackupDir)
	}

	for _, res := range batch.Results {
		outcome := "failed"
		if res.Success {
			outcome = "applied"
			if opts.DryRun {
				outcome = "simulated"
			}
		}
		observability.FixOperations.WithLabelValues(outcome).Inc()
	}
	for range batch.Conflicts {
		observability.FixOperations.WithLabelValues("conflict").Inc()
	}

	return batch
}

func (f *Fixer) fixOneFile(path string, issues []analyzer.Issue, opts Options, batch *BatchResult, ensureBackupDir func() (string, error)) {
	lines, readErr := readLines(path)
	if readErr != nil && !opts.DryRun {
		// Without content nothing can be applied; dry-run still simulates
		// against whatever the issues describe.
		slog.Warn("cannot read file for fixing", "path", path, "error", readErr)
	}

	ops := f.generateOperations(path, lines, issues)

	// Risk ceiling filters before conflict detection so a skipped operation
	// can never participate in a conflict.
	maxRisk := opts.MaxRiskLevel
	if maxRisk == "" {
		maxRisk = RiskLevel(f.cfg.AutoFix.MaxRiskLevel)
	}
	var eligible []Operation
	for _, op := range ops {
		if riskRank(operationRisk[op.Type]) <= riskRank(maxRisk) {
			eligible = append(eligible, op)
		}
	}

	applicable, conflicts := partitionConflicts(eligible)
	batch.Conflicts = append(batch.Conflicts, conflicts...)
	batch.TotalOperations += len(eligible)

	if opts.DryRun {
		for _, op := range applicable {
			batch.Results = append(batch.Results, Result{Operation: op, Success: true})
			batch.SuccessfulFixes++
		}
		return
	}

	if len(applicable) == 0 {
		return
	}

	if readErr != nil {
		for _, op := range applicable {
			batch.Results = append(batch.Results, Result{
				Operation: op,
				Error:     fmt.Sprintf("read failed: %v", readErr),
			})
			batch.FailedFixes++
		}
		return
	}

	backupPath := ""
	if opts.CreateBackup {
		dir, err := ensureBackupDir()
		if err == nil {
			backupPath, err = backupFile(dir, path)
		}
		if err != nil {
			for _, op := range applicable {
				batch.Results = append(batch.Results, Result{
					Operation: op,
					Error:     fmt.Sprintf("backup failed: %v", err),
				})
				batch.FailedFixes++
			}
			return
		}
	}

	// Descending line order: earlier edits never shift the line numbers of
	// operations still to be applied.
	sort.SliceStable(applicable, func(i, j int) bool {
		return applicable[i].LineNumber > applicable[j].LineNumber
	})

	results := make([]Result, 0, len(applicable))
	edited := append([]string(nil), lines...)
	anyApplied := false

	for _, op := range applicable {
		res := Result{Operation: op, BackupPath: backupPath}
		var err error
		edited, err = applyOperation(edited, op)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Success = true
			anyApplied = true
		}
		results = append(results, res)
	}

	if anyApplied {
		if err := f.writeLines(path, edited); err != nil {
			// the write failing fails every operation of this file
			for i := range results {
				results[i].Success = false
				results[i].Error = fmt.Sprintf("write failed: %v", err)
			}
		}
	}

	for _, res := range results {
		if res.Success {
			batch.SuccessfulFixes++
		} else {
			batch.FailedFixes++
		}
	}
	batch.Results = append(batch.Results, results...)
}

// partitionConflicts separates operations that target the same file+line
// with different replacement text. Neither side of a conflict is applied;
// guessing a winner would trade correctness for convenience. Appends never
// compete for a line, so they bypass the grouping entirely; identical
// appends still collapse into one.
func partitionConflicts(ops []Operation) ([]Operation, []Conflict) {
	type key struct {
		path string
		line int
	}
	groups := make(map[key][]Operation)
	var order []key
	var adds []Operation
	seenAdds := make(map[string]bool)
	for _, op := range ops {
		if op.Type == OpAdd {
			id := op.FilePath + "\x00" + op.NewText
			if !seenAdds[id] {
				seenAdds[id] = true
				adds = append(adds, op)
			}
			continue
		}
		k := key{op.FilePath, op.LineNumber}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], op)
	}

	var applicable []Operation
	var conflicts []Conflict
	for _, k := range order {
		group := groups[k]
		distinct := map[string]bool{}
		for _, op := range group {
			distinct[op.NewText] = true
		}
		if len(distinct) > 1 {
			conflicts = append(conflicts, Conflict{
				FilePath:   k.path,
				LineNumber: k.line,
				Operations: group,
			})
			continue
		}
		// identical edits collapse into one application
		applicable = append(applicable, group[0])
	}
	applicable = append(applicable, adds...)
	return applicable, conflicts
}

// staleLineError marks an edit whose target no longer matches the analyzed
// snapshot. The conflict is between the operation and the file on disk.
func staleLineError(op Operation, msg string) error {
	err := apperrors.New(apperrors.CodeConflict, msg)
	return apperrors.AddContext(err, apperrors.CtxLine, op.LineNumber)
}

func applyOperation(lines []string, op Operation) ([]string, error) {
	switch op.Type {
	case OpAdd:
		return append(lines, op.NewText), nil

	case OpRemove:
		idx := op.LineNumber - 1
		if idx < 0 || idx >= len(lines) {
			return lines, staleLineError(op, "line out of range")
		}
		if op.OriginalText != "" && lines[idx] != op.OriginalText {
			return lines, staleLineError(op, "line changed since analysis")
		}
		return append(lines[:idx], lines[idx+1:]...), nil

	case OpRename, OpReorder, OpFormat:
		idx := op.LineNumber - 1
		if idx < 0 || idx >= len(lines) {
			return lines, staleLineError(op, "line out of range")
		}
		if op.OriginalText != "" && lines[idx] != op.OriginalText {
			return lines, staleLineError(op, "line changed since analysis")
		}
		lines[idx] = op.NewText
		return lines, nil
	}
	return lines, fmt.Errorf("unknown operation type %q", op.Type)
}

func readLines(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return strings.Split(string(content), "\n"), nil
}

func (f *Fixer) writeLines(path string, lines []string) error {
	if err := f.limiter.Wait(context.Background(), 1); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644)
}

// backupFile copies the file into the batch backup directory before any
// edit touches it. Name collisions across directories get a suffix.
func backupFile(dir, path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	target := filepath.Join(dir, filepath.Base(path))
	for i := 1; ; i++ {
		if _, err := os.Stat(target); os.IsNotExist(err) {
			break
		}
		target = filepath.Join(dir, fmt.Sprintf("%d-%s", i, filepath.Base(path)))
	}
	if err := os.WriteFile(target, content, 0o644); err != nil {
		return "", err
	}
	return target, nil
}
