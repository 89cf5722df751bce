package parser

import (
	"log/slog"
	"os"
	"strings"

	"exportlint/internal/shared/observability"
	"exportlint/internal/shared/util"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// SourceReader is the detector's view of file content access.
type SourceReader interface {
	Read(path string) ([]byte, error)
}

// FSSource reads from the real filesystem.
type FSSource struct{}

func (FSSource) Read(path string) ([]byte, error) { return os.ReadFile(path) }

type parsedFile struct {
	tree   *sitter.Tree
	source []byte
}

// Detector extracts the export inventory of ECMAScript/TypeScript files.
// Initialize parses every file once into a shared context so repeated
// AnalyzeFile calls reuse the trees; Dispose releases them.
//
// AnalyzeFile never fails a scan: a malformed or unreadable file yields an
// empty record list and the rest of the project proceeds.
type Detector struct {
	loader *GrammarLoader
	reader SourceReader
	files  map[string]*parsedFile
}

func NewDetector(reader SourceReader) *Detector {
	if reader == nil {
		reader = FSSource{}
	}
	return &Detector{
		reader: reader,
		files:  make(map[string]*parsedFile),
	}
}

func (d *Detector) Initialize(filePaths []string, opts ParseOptions) error {
	d.loader = NewGrammarLoader(opts.IncludeJS)
	d.files = make(map[string]*parsedFile, len(filePaths))

	for _, path := range util.UniquePaths(filePaths) {
		if pf := d.parse(path); pf != nil {
			d.files[path] = pf
		}
	}
	return nil
}

// parse reads and parses one file, absorbing failures.
func (d *Detector) parse(path string) *parsedFile {
	grammar := d.loader.LanguageFor(path)
	if grammar == nil {
		slog.Debug("skipping unsupported file", "path", path)
		return nil
	}

	content, err := d.reader.Read(path)
	if err != nil {
		slog.Warn("failed to read file, skipping", "path", path, "error", err)
		observability.ParseFailures.Inc()
		return nil
	}

	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(grammar)

	tree := p.Parse(content, nil)
	if tree == nil {
		slog.Warn("parse failed, skipping", "path", path)
		observability.ParseFailures.Inc()
		return nil
	}

	observability.FilesScanned.Inc()
	return &parsedFile{tree: tree, source: content}
}

func (d *Detector) lookup(path string) *parsedFile {
	if pf, ok := d.files[path]; ok {
		return pf
	}
	if d.loader == nil {
		d.loader = NewGrammarLoader(true)
	}
	pf := d.parse(path)
	if pf != nil {
		d.files[path] = pf
	}
	return pf
}

// AnalyzeFile returns the export records for one file, in source order.
func (d *Detector) AnalyzeFile(path string) []ExportRecord {
	pf := d.lookup(path)
	if pf == nil {
		return []ExportRecord{}
	}

	records := []ExportRecord{}
	root := pf.tree.RootNode()
	for i := uint(0); i < root.ChildCount(); i++ {
		node := root.Child(i)
		if node == nil {
			continue
		}
		switch node.Kind() {
		case "export_statement":
			records = append(records, d.extractExportStatement(node, pf.source, path)...)
		case "ambient_declaration":
			// declare module bodies can carry export statements one level down
			for j := uint(0); j < node.ChildCount(); j++ {
				if ch := node.Child(j); ch != nil && ch.Kind() == "export_statement" {
					records = append(records, d.extractExportStatement(ch, pf.source, path)...)
				}
			}
		}
	}
	observability.ExportsDetected.Add(float64(len(records)))
	return records
}

// Imports returns the file's import statements for cross-file rules.
func (d *Detector) Imports(path string) []ImportStatement {
	pf := d.lookup(path)
	if pf == nil {
		return nil
	}

	var imports []ImportStatement
	root := pf.tree.RootNode()
	for i := uint(0); i < root.ChildCount(); i++ {
		node := root.Child(i)
		if node == nil || node.Kind() != "import_statement" {
			continue
		}
		if imp, ok := d.extractImportStatement(node, pf.source, path); ok {
			imports = append(imports, imp)
		}
	}
	return imports
}

// ParsedCount reports how many files currently hold a parsed tree.
func (d *Detector) ParsedCount() int {
	return len(d.files)
}

// Dispose releases every parsed tree held by the shared context.
func (d *Detector) Dispose() {
	for _, pf := range d.files {
		if pf.tree != nil {
			pf.tree.Close()
		}
	}
	d.files = make(map[string]*parsedFile)
}

// extractExportStatement classifies one export statement into the closed set
// of shapes: named clause, namespace re-export, star re-export, export
// assignment, or modifier-bearing declaration.
func (d *Detector) extractExportStatement(node *sitter.Node, source []byte, path string) []ExportRecord {
	typeOnly := hasChildToken(node, source, "type")
	sourceModule := moduleSpecifier(node, source)

	var deps []string
	if sourceModule != "" {
		deps = []string{sourceModule}
	}

	// export * as ns from './m'
	if ns := childOfKind(node, "namespace_export"); ns != nil {
		name := identifierText(ns, source)
		if name == "" {
			name = NameStar
		}
		return []ExportRecord{{
			FilePath:     path,
			ExportName:   name,
			Type:         ExportNamespace,
			Kind:         inferKindFromName(name),
			TypeOnly:     typeOnly,
			Location:     locationOf(ns, path),
			Dependencies: deps,
		}}
	}

	// export { a, b as c } [from './m']
	if clause := childOfKind(node, "export_clause"); clause != nil {
		return d.extractExportClause(clause, source, path, typeOnly, sourceModule, deps)
	}

	// export * from './m'
	if hasChildToken(node, source, "*") && sourceModule != "" {
		return []ExportRecord{{
			FilePath:     path,
			ExportName:   NameStar,
			Type:         ExportReexport,
			Kind:         KindFunction,
			TypeOnly:     typeOnly,
			Location:     locationOf(node, path),
			Dependencies: deps,
		}}
	}

	// export = expr
	if hasChildToken(node, source, "=") && node.ChildByFieldName("declaration") == nil {
		return []ExportRecord{{
			FilePath:   path,
			ExportName: NameAssign,
			Type:       ExportDefault,
			Kind:       KindConstant,
			Location:   locationOf(node, path),
		}}
	}

	isDefault := hasChildToken(node, source, "default")

	if decl := node.ChildByFieldName("declaration"); decl != nil {
		return d.extractDeclaration(decl, source, path, isDefault, typeOnly)
	}

	// export default <expression>
	if isDefault {
		if value := node.ChildByFieldName("value"); value != nil {
			return []ExportRecord{{
				FilePath:   path,
				ExportName: NameDefault,
				Type:       ExportDefault,
				Kind:       inferValueKind(value),
				Location:   locationOf(node, path),
			}}
		}
	}

	return nil
}

func (d *Detector) extractExportClause(clause *sitter.Node, source []byte, path string, typeOnly bool, sourceModule string, deps []string) []ExportRecord {
	exportType := ExportNamed
	if sourceModule != "" {
		exportType = ExportReexport
	}

	var records []ExportRecord
	for i := uint(0); i < clause.ChildCount(); i++ {
		spec := clause.Child(i)
		if spec == nil || spec.Kind() != "export_specifier" {
			continue
		}

		// The exported (outer) name is the alias when present, the source
		// name otherwise.
		name := nodeText(spec.ChildByFieldName("name"), source)
		if alias := nodeText(spec.ChildByFieldName("alias"), source); alias != "" {
			name = alias
		}
		if name == "" {
			continue
		}

		records = append(records, ExportRecord{
			FilePath:     path,
			ExportName:   name,
			Type:         exportType,
			Kind:         inferKindFromName(name),
			TypeOnly:     typeOnly || hasChildToken(spec, source, "type"),
			Location:     locationOf(spec, path),
			Dependencies: deps,
		})
	}
	return records
}

// extractDeclaration handles modifier-bearing declarations. Variable
// statements may declare several identifiers; one record is emitted per
// declarator.
func (d *Detector) extractDeclaration(decl *sitter.Node, source []byte, path string, isDefault, typeOnly bool) []ExportRecord {
	exportType := ExportNamed
	if isDefault {
		exportType = ExportDefault
	}

	named := func(name string, kind ExportKind, loc *sitter.Node, isType bool) ExportRecord {
		if name == "" {
			if isDefault {
				name = NameAnon
			} else {
				name = NameDefault
			}
		}
		return ExportRecord{
			FilePath:   path,
			ExportName: name,
			Type:       exportType,
			Kind:       kind,
			TypeOnly:   typeOnly || isType,
			Location:   locationOf(loc, path),
		}
	}

	switch decl.Kind() {
	case "function_declaration", "generator_function_declaration", "function_signature":
		name := nodeText(decl.ChildByFieldName("name"), source)
		kind := KindFunction
		if isComponentName(name) {
			kind = KindComponent
		}
		return []ExportRecord{named(name, kind, decl, false)}

	case "class_declaration", "abstract_class_declaration":
		name := nodeText(decl.ChildByFieldName("name"), source)
		return []ExportRecord{named(name, KindClass, decl, false)}

	case "interface_declaration":
		name := nodeText(decl.ChildByFieldName("name"), source)
		return []ExportRecord{named(name, KindInterface, decl, true)}

	case "type_alias_declaration":
		name := nodeText(decl.ChildByFieldName("name"), source)
		return []ExportRecord{named(name, KindType, decl, true)}

	case "enum_declaration":
		name := nodeText(decl.ChildByFieldName("name"), source)
		return []ExportRecord{named(name, KindType, decl, false)}

	case "internal_module", "module_declaration":
		name := nodeText(decl.ChildByFieldName("name"), source)
		return []ExportRecord{named(name, KindType, decl, false)}

	case "lexical_declaration", "variable_declaration":
		var records []ExportRecord
		for i := uint(0); i < decl.ChildCount(); i++ {
			dtor := decl.Child(i)
			if dtor == nil || dtor.Kind() != "variable_declarator" {
				continue
			}
			name := nodeText(dtor.ChildByFieldName("name"), source)
			if name == "" {
				continue
			}
			records = append(records, named(name, inferKindFromName(name), dtor, false))
		}
		return records

	case "ambient_declaration":
		for i := uint(0); i < decl.ChildCount(); i++ {
			if inner := decl.Child(i); inner != nil && strings.HasSuffix(inner.Kind(), "declaration") {
				return d.extractDeclaration(inner, source, path, isDefault, typeOnly)
			}
		}
	}

	// Unknown declaration shape: fall back to its name field so new grammar
	// node kinds degrade to a generic record instead of being dropped.
	if name := nodeText(decl.ChildByFieldName("name"), source); name != "" {
		return []ExportRecord{named(name, inferKindFromName(name), decl, false)}
	}
	return nil
}

func (d *Detector) extractImportStatement(node *sitter.Node, source []byte, path string) (ImportStatement, bool) {
	module := moduleSpecifier(node, source)
	if module == "" {
		return ImportStatement{}, false
	}

	imp := ImportStatement{
		Module:   module,
		TypeOnly: hasChildToken(node, source, "type"),
		Location: locationOf(node, path),
	}

	clause := childOfKind(node, "import_clause")
	if clause == nil {
		// Side-effect import: import './m'
		return imp, true
	}

	for i := uint(0); i < clause.ChildCount(); i++ {
		ch := clause.Child(i)
		if ch == nil {
			continue
		}
		switch ch.Kind() {
		case "identifier":
			// Default import binds the target's default export.
			imp.Names = append(imp.Names, NameDefault)
			imp.Alias = nodeText(ch, source)
		case "namespace_import":
			// import * as ns — binds the whole inventory, nothing to check.
			imp.Alias = identifierText(ch, source)
		case "named_imports":
			for j := uint(0); j < ch.ChildCount(); j++ {
				spec := ch.Child(j)
				if spec == nil || spec.Kind() != "import_specifier" {
					continue
				}
				if name := nodeText(spec.ChildByFieldName("name"), source); name != "" {
					imp.Names = append(imp.Names, name)
				}
			}
		}
	}
	return imp, true
}

// ---- node helpers ----

func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start >= end || end > uint(len(source)) {
		return ""
	}
	return strings.TrimSpace(string(source[start:end]))
}

func childOfKind(node *sitter.Node, kind string) *sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		if ch := node.Child(i); ch != nil && ch.Kind() == kind {
			return ch
		}
	}
	return nil
}

// hasChildToken reports whether a direct child is the given keyword/token.
func hasChildToken(node *sitter.Node, source []byte, token string) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		ch := node.Child(i)
		if ch == nil {
			continue
		}
		if ch.Kind() == token {
			return true
		}
	}
	return false
}

// identifierText finds the first identifier-ish descendant one level down.
func identifierText(node *sitter.Node, source []byte) string {
	for i := uint(0); i < node.ChildCount(); i++ {
		ch := node.Child(i)
		if ch == nil {
			continue
		}
		switch ch.Kind() {
		case "identifier", "module_export_name", "string":
			return strings.Trim(nodeText(ch, source), `"'`)
		}
	}
	return ""
}

// moduleSpecifier returns the unquoted module of a `from './m'` clause.
func moduleSpecifier(node *sitter.Node, source []byte) string {
	src := node.ChildByFieldName("source")
	if src == nil {
		return ""
	}
	return strings.Trim(nodeText(src, source), `"'`+"`")
}

func locationOf(node *sitter.Node, path string) Location {
	if node == nil {
		return Location{File: path, StartLine: 1, StartColumn: 1, EndLine: 1, EndColumn: 1}
	}
	start := node.StartPosition()
	end := node.EndPosition()
	return Location{
		File:        path,
		StartLine:   int(start.Row) + 1,
		StartColumn: int(start.Column) + 1,
		EndLine:     int(end.Row) + 1,
		EndColumn:   int(end.Column) + 1,
	}
}

// inferKindFromName categorizes exports whose declaration is not visible
// (clause members, re-exports, variables) by naming convention.
func inferKindFromName(name string) ExportKind {
	if isConstantName(name) {
		return KindConstant
	}
	if isComponentName(name) {
		return KindComponent
	}
	return KindFunction
}

func isConstantName(name string) bool {
	if name == "" {
		return false
	}
	hasLetter := false
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return hasLetter
}

func isComponentName(name string) bool {
	if name == "" {
		return false
	}
	first := rune(name[0])
	return first >= 'A' && first <= 'Z' && !isConstantName(name)
}

// inferValueKind guesses the kind of an anonymous default-exported value.
func inferValueKind(node *sitter.Node) ExportKind {
	switch node.Kind() {
	case "arrow_function", "function_expression", "generator_function":
		return KindFunction
	case "class":
		return KindClass
	}
	return KindConstant
}
