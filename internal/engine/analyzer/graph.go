package analyzer

import (
	"path"
	"sort"
	"strings"

	"exportlint/internal/engine/parser"
)

type importEdge struct {
	target   string
	location parser.Location
}

// importGraph is the read-only project snapshot cross-file rules run over:
// file-level import edges plus the global export-name index. Built once per
// run, never updated incrementally.
type importGraph struct {
	order       []string
	edges       map[string][]importEdge
	exportNames map[string]map[string]bool
	known       map[string]bool
}

func buildImportGraph(files []parser.FileExports) *importGraph {
	g := &importGraph{
		edges:       make(map[string][]importEdge, len(files)),
		exportNames: make(map[string]map[string]bool, len(files)),
		known:       make(map[string]bool, len(files)),
	}

	for fi := range files {
		file := &files[fi]
		g.order = append(g.order, file.Path)
		g.known[normalizePath(file.Path)] = true

		names := make(map[string]bool, len(file.Exports))
		for ri := range file.Exports {
			rec := &file.Exports[ri]
			names[rec.ExportName] = true
			// a named default export (`export default function App`) is
			// importable as the default binding, not under its local name
			if rec.Type == parser.ExportDefault {
				names[parser.NameDefault] = true
			}
		}
		g.exportNames[file.Path] = names
	}

	for fi := range files {
		file := &files[fi]
		seen := make(map[string]bool)
		for ii := range file.Imports {
			imp := &file.Imports[ii]
			target, ok := g.resolve(file.Path, imp.Module)
			if !ok || target == file.Path || seen[target] {
				continue
			}
			seen[target] = true
			g.edges[file.Path] = append(g.edges[file.Path], importEdge{
				target:   target,
				location: imp.Location,
			})
		}
	}

	return g
}

// candidateExtensions mirrors the resolution order of the TypeScript module
// resolver for extension-less relative specifiers.
var candidateExtensions = []string{"", ".ts", ".tsx", ".js", ".jsx", ".mts", ".cts", ".mjs", ".cjs"}

// resolve maps a relative module specifier to a project file. Bare package
// specifiers are external and resolve to nothing.
func (g *importGraph) resolve(fromFile, specifier string) (string, bool) {
	if !strings.HasPrefix(specifier, ".") {
		return "", false
	}

	base := path.Join(path.Dir(normalizePath(fromFile)), specifier)
	for _, ext := range candidateExtensions {
		if g.known[base+ext] {
			return g.canonical(base + ext), true
		}
	}
	for _, ext := range candidateExtensions[1:] {
		if g.known[base+"/index"+ext] {
			return g.canonical(base + "/index" + ext), true
		}
	}
	return "", false
}

// canonical maps a normalized path back to the path as scanned.
func (g *importGraph) canonical(normalized string) string {
	for _, p := range g.order {
		if normalizePath(p) == normalized {
			return p
		}
	}
	return normalized
}

// detectCycles runs an iterative-state DFS with the visited/onStack pair,
// collecting each cycle once from its entry point.
func (g *importGraph) detectCycles() [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	for _, file := range g.order {
		if !visited[file] {
			g.findCycles(file, visited, onStack, []string{}, &cycles)
		}
	}
	return cycles
}

func (g *importGraph) findCycles(curr string, visited, onStack map[string]bool, pathStack []string, cycles *[][]string) {
	visited[curr] = true
	onStack[curr] = true
	pathStack = append(pathStack, curr)

	for _, edge := range g.edges[curr] {
		next := edge.target
		if onStack[next] {
			cycleStart := -1
			for i, file := range pathStack {
				if file == next {
					cycleStart = i
					break
				}
			}
			if cycleStart != -1 {
				cycle := make([]string, len(pathStack)-cycleStart)
				copy(cycle, pathStack[cycleStart:])
				*cycles = append(*cycles, cycle)
			}
		} else if !visited[next] {
			g.findCycles(next, visited, onStack, pathStack, cycles)
		}
	}

	onStack[curr] = false
}

func normalizePath(p string) string {
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}

func sortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
