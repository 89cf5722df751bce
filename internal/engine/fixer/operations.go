package fixer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"exportlint/internal/engine/analyzer"
)

// generateOperations maps a file's issues to textual edit operations against
// the file's current content. Issues the fixer has no mapping for (circular
// dependencies, accessibility violations) produce no operations.
func (f *Fixer) generateOperations(path string, lines []string, issues []analyzer.Issue) []Operation {
	var ops []Operation

	// Duplicate removal keeps the first occurrence: group the flagged
	// occurrences by name and drop everything after the lowest line.
	duplicates := make(map[string][]analyzer.Issue)
	var duplicateOrder []string

	for _, issue := range issues {
		switch issue.Type {
		case analyzer.IssueNaming:
			if op, ok := f.renameOperation(path, lines, issue); ok {
				ops = append(ops, op)
			}
		case analyzer.IssueDuplicate:
			if !issue.AutoFixable || issue.Location == nil {
				continue
			}
			if _, seen := duplicates[issue.ExportName]; !seen {
				duplicateOrder = append(duplicateOrder, issue.ExportName)
			}
			duplicates[issue.ExportName] = append(duplicates[issue.ExportName], issue)
		case analyzer.IssueMissingExport:
			ops = append(ops, Operation{
				Type:        OpAdd,
				FilePath:    path,
				LineNumber:  len(lines) + 1,
				NewText:     fmt.Sprintf("export { %s };", issue.ExportName),
				Description: fmt.Sprintf("add missing export %q", issue.ExportName),
			})
		case analyzer.IssueUnusedExport:
			if op, ok := normalizeOperation(path, lines, issue, OpReorder); ok {
				ops = append(ops, op)
			}
		case analyzer.IssueTypeMismatch:
			if op, ok := normalizeOperation(path, lines, issue, OpFormat); ok {
				ops = append(ops, op)
			}
		}
	}

	for _, name := range duplicateOrder {
		group := duplicates[name]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Location.StartLine < group[j].Location.StartLine
		})
		for _, issue := range group[1:] {
			line := issue.Location.StartLine
			op := Operation{
				Type:        OpRemove,
				FilePath:    path,
				LineNumber:  line,
				NewText:     "",
				Description: fmt.Sprintf("remove duplicate export %q", name),
			}
			if line >= 1 && line <= len(lines) {
				op.OriginalText = lines[line-1]
			}
			ops = append(ops, op)
		}
	}

	return ops
}

// renameOperation rewrites the flagged identifier on its declaration line
// into the case convention for its export category.
func (f *Fixer) renameOperation(path string, lines []string, issue analyzer.Issue) (Operation, bool) {
	if !issue.AutoFixable || issue.Location == nil || issue.ExportName == "" {
		return Operation{}, false
	}
	line := issue.Location.StartLine
	if line < 1 || line > len(lines) {
		return Operation{}, false
	}

	newName := ConvertCase(issue.ExportName, conventionFor(issue.Kind))
	if newName == issue.ExportName || newName == "" {
		return Operation{}, false
	}

	original := lines[line-1]
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(issue.ExportName) + `\b`)
	if err != nil {
		return Operation{}, false
	}
	replaced := false
	rewritten := re.ReplaceAllStringFunc(original, func(match string) string {
		if replaced {
			return match
		}
		replaced = true
		return newName
	})
	if !replaced {
		return Operation{}, false
	}

	return Operation{
		Type:         OpRename,
		FilePath:     path,
		LineNumber:   line,
		OriginalText: original,
		NewText:      rewritten,
		Description:  fmt.Sprintf("rename %q to %q", issue.ExportName, newName),
	}, true
}

// normalizeOperation re-emits the statement line with normalized whitespace;
// semantics are unchanged. A line that is already normal yields no operation.
func normalizeOperation(path string, lines []string, issue analyzer.Issue, opType OperationType) (Operation, bool) {
	if issue.Location == nil {
		return Operation{}, false
	}
	line := issue.Location.StartLine
	if line < 1 || line > len(lines) {
		return Operation{}, false
	}

	original := lines[line-1]
	normalized := normalizeStatement(original)
	if normalized == original {
		return Operation{}, false
	}

	return Operation{
		Type:         opType,
		FilePath:     path,
		LineNumber:   line,
		OriginalText: original,
		NewText:      normalized,
		Description:  fmt.Sprintf("normalize export statement for %q", issue.ExportName),
	}, true
}

var spaceRuns = regexp.MustCompile(`  +`)

func normalizeStatement(line string) string {
	indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	body := strings.TrimSpace(line)
	body = spaceRuns.ReplaceAllString(body, " ")
	return indent + body
}
