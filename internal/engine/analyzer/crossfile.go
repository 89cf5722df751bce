package analyzer

import (
	"fmt"
	"strings"

	"exportlint/internal/core/config"
	"exportlint/internal/engine/parser"

	"github.com/gobwas/glob"
)

// analyzeCrossFile runs the rules that need the whole-project inventory.
// The global export index and the import graph are built once as read-only
// snapshots; no state is updated incrementally.
func (a *Analyzer) analyzeCrossFile(files []parser.FileExports) []Issue {
	var issues []Issue

	graph := buildImportGraph(files)

	if a.cfg.RuleEnabled(config.RuleDuplicateExports) {
		issues = append(issues, a.checkGlobalDuplicates(files)...)
	}
	if a.cfg.RuleEnabled(config.RuleImportMismatch) {
		issues = append(issues, a.checkImportMismatches(files, graph)...)
		issues = append(issues, a.checkUnusedExports(files, graph)...)
	}
	if a.cfg.RuleEnabled(config.RuleCircularDependency) {
		issues = append(issues, a.checkCircularDependencies(graph)...)
	}
	if a.cfg.RuleEnabled(config.RuleAccessibility) {
		issues = append(issues, a.checkAccessibility(graph)...)
	}

	return issues
}

// checkGlobalDuplicates flags export names appearing in two or more files.
// The configured ignore list (always containing "default", since every file
// may legitimately have one) is excluded from the index.
func (a *Analyzer) checkGlobalDuplicates(files []parser.FileExports) []Issue {
	ignored := map[string]bool{parser.NameDefault: true, parser.NameStar: true, parser.NameAssign: true, parser.NameAnon: true}
	for _, name := range a.cfg.RuleStrings(config.RuleDuplicateExports, "ignore") {
		ignored[name] = true
	}

	type occurrence struct {
		filePath string
		record   *parser.ExportRecord
	}
	index := make(map[string][]occurrence)
	var order []string

	for fi := range files {
		file := &files[fi]
		seenInFile := make(map[string]bool)
		for ri := range file.Exports {
			rec := &file.Exports[ri]
			if ignored[rec.ExportName] {
				continue
			}
			// within-file duplicates are the local rule's concern
			if seenInFile[rec.ExportName] {
				continue
			}
			seenInFile[rec.ExportName] = true
			if _, ok := index[rec.ExportName]; !ok {
				order = append(order, rec.ExportName)
			}
			index[rec.ExportName] = append(index[rec.ExportName], occurrence{file.Path, rec})
		}
	}

	var issues []Issue
	for _, name := range order {
		occurrences := index[name]
		if len(occurrences) < 2 {
			continue
		}
		related := make([]string, 0, len(occurrences))
		for _, occ := range occurrences {
			related = append(related, occ.filePath)
		}
		// one issue per occurrence, each listing every participating file
		for _, occ := range occurrences {
			issue := a.newIssue(IssueDuplicate, SeverityError, occ.filePath,
				fmt.Sprintf("export %q is declared in %d files", name, len(occurrences)))
			issue.Suggestion = "rename or consolidate the conflicting exports"
			issue.RelatedFiles = append([]string(nil), related...)
			issue.ExportName = name
			issue.Kind = occ.record.Kind
			loc := occ.record.Location
			issue.Location = &loc
			issues = append(issues, issue)
		}
	}
	return issues
}

// checkImportMismatches flags imported names absent from the target file's
// export inventory, and emits a fixable missing-export issue on the target.
func (a *Analyzer) checkImportMismatches(files []parser.FileExports, g *importGraph) []Issue {
	var issues []Issue
	missingByTarget := make(map[string]map[string]bool)
	var targetOrder []string

	for fi := range files {
		file := &files[fi]
		for ii := range file.Imports {
			imp := &file.Imports[ii]
			target, ok := g.resolve(file.Path, imp.Module)
			if !ok {
				continue
			}
			inventory := g.exportNames[target]
			if inventory == nil || inventory[parser.NameStar] {
				// star re-export makes the inventory open-ended
				continue
			}
			for _, name := range imp.Names {
				if inventory[name] {
					continue
				}
				issue := a.newIssue(IssueImportMismatch, SeverityError, file.Path,
					fmt.Sprintf("imported name %q is not exported by %s", name, target))
				issue.Suggestion = fmt.Sprintf("export %q from %s or fix the import", name, target)
				issue.RelatedFiles = []string{target}
				issue.ExportName = name
				loc := imp.Location
				issue.Location = &loc
				issues = append(issues, issue)

				if missingByTarget[target] == nil {
					missingByTarget[target] = make(map[string]bool)
					targetOrder = append(targetOrder, target)
				}
				missingByTarget[target][name] = true
			}
		}
	}

	for _, target := range targetOrder {
		for _, name := range sortedNames(missingByTarget[target]) {
			if name == parser.NameDefault {
				continue
			}
			issue := a.newIssue(IssueMissingExport, SeverityWarning, target,
				fmt.Sprintf("symbol %q is imported elsewhere but not exported here", name))
			issue.Suggestion = fmt.Sprintf("add `export { %s };`", name)
			issue.AutoFixable = true
			issue.ExportName = name
			issues = append(issues, issue)
		}
	}
	return issues
}

// checkUnusedExports flags names never imported by any other project file.
// Only files that some other file imports from are considered, so entry
// points and library surfaces aren't drowned in noise.
func (a *Analyzer) checkUnusedExports(files []parser.FileExports, g *importGraph) []Issue {
	imported := make(map[string]map[string]bool) // target -> names imported somewhere
	openEnded := make(map[string]bool)           // namespace/star imports bind everything

	for fi := range files {
		file := &files[fi]
		for ii := range file.Imports {
			imp := &file.Imports[ii]
			target, ok := g.resolve(file.Path, imp.Module)
			if !ok {
				continue
			}
			if len(imp.Names) == 0 {
				openEnded[target] = true
				continue
			}
			if imported[target] == nil {
				imported[target] = make(map[string]bool)
			}
			for _, name := range imp.Names {
				imported[target][name] = true
			}
		}
	}

	var issues []Issue
	for fi := range files {
		file := &files[fi]
		names, consumed := imported[file.Path]
		if !consumed || openEnded[file.Path] {
			continue
		}
		for ri := range file.Exports {
			rec := &file.Exports[ri]
			if isSentinelName(rec.ExportName) || names[rec.ExportName] {
				continue
			}
			// `import X from './file'` consumes a named default export even
			// though the importer never mentions its local name
			if rec.Type == parser.ExportDefault && names[parser.NameDefault] {
				continue
			}
			issue := a.newIssue(IssueUnusedExport, SeverityInfo, file.Path,
				fmt.Sprintf("export %q is never imported by the rest of the project", rec.ExportName))
			issue.Suggestion = "remove the export or keep it for the public surface"
			issue.AutoFixable = true
			issue.ExportName = rec.ExportName
			issue.Kind = rec.Kind
			loc := rec.Location
			issue.Location = &loc
			issues = append(issues, issue)
		}
	}
	return issues
}

// checkCircularDependencies reports every import cycle of length >= 2.
func (a *Analyzer) checkCircularDependencies(g *importGraph) []Issue {
	var issues []Issue
	for _, cycle := range g.detectCycles() {
		if len(cycle) < 2 {
			continue
		}
		issue := a.newIssue(IssueCircular, SeverityError, cycle[0],
			fmt.Sprintf("circular import chain: %s", strings.Join(cycle, " -> ")))
		issue.Suggestion = "break the cycle by extracting the shared symbols into a separate module"
		issue.RelatedFiles = append([]string(nil), cycle...)
		issues = append(issues, issue)
	}
	return issues
}

// checkAccessibility flags imports that reach into an internal path
// convention from outside its boundary.
func (a *Analyzer) checkAccessibility(g *importGraph) []Issue {
	globs := make([]glob.Glob, 0, len(a.cfg.Accessibility.InternalPaths))
	for _, pattern := range a.cfg.Accessibility.InternalPaths {
		cg, err := glob.Compile(pattern, '/')
		if err != nil {
			continue // validated at config load; defensive here is pointless
		}
		globs = append(globs, cg)
	}
	if len(globs) == 0 {
		return nil
	}

	matches := func(path string) bool {
		slashed := strings.ReplaceAll(path, "\\", "/")
		for _, cg := range globs {
			if cg.Match(slashed) {
				return true
			}
		}
		return false
	}

	var issues []Issue
	for _, from := range g.order {
		for _, edge := range g.edges[from] {
			if !matches(edge.target) {
				continue
			}
			if strings.HasPrefix(strings.ReplaceAll(from, "\\", "/"), internalBoundary(edge.target)) {
				continue
			}
			issue := a.newIssue(IssueAccessibility,
				a.severityFor(config.RuleAccessibility, SeverityError),
				from,
				fmt.Sprintf("import of internal module %s from outside its boundary", edge.target))
			issue.Suggestion = "import through the package's public entry point instead"
			issue.RelatedFiles = []string{edge.target}
			loc := edge.location
			issue.Location = &loc
			issues = append(issues, issue)
		}
	}
	return issues
}

// internalBoundary returns the path prefix that may legitimately import an
// internal file: everything up to the "internal" segment. An internal tree at
// the project root is importable by the whole project, mirroring Go's own
// internal-package rule. When the matched convention has no "internal"
// segment, only the file's own directory is inside the boundary.
func internalBoundary(path string) string {
	slashed := strings.ReplaceAll(path, "\\", "/")
	segments := strings.Split(slashed, "/")
	for i, seg := range segments {
		if seg == "internal" || seg == "_internal" {
			if i == 0 {
				return ""
			}
			return strings.Join(segments[:i], "/") + "/"
		}
	}
	if len(segments) > 1 {
		return strings.Join(segments[:len(segments)-1], "/") + "/"
	}
	return ""
}
