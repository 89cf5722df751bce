package parser

// ExportType distinguishes the four export statement families.
type ExportType string

const (
	ExportNamed     ExportType = "named"
	ExportDefault   ExportType = "default"
	ExportNamespace ExportType = "namespace"
	ExportReexport  ExportType = "reexport"
)

// ExportKind is the declared category of an exported symbol.
type ExportKind string

const (
	KindInterface ExportKind = "interface"
	KindType      ExportKind = "type"
	KindClass     ExportKind = "class"
	KindFunction  ExportKind = "function"
	KindConstant  ExportKind = "constant"
	KindComponent ExportKind = "component"
)

// Reserved export names. ExportName is never empty otherwise.
const (
	NameStar    = "*"
	NameDefault = "default"
	NameAssign  = "="
	NameAnon    = "anonymous"
)

type Location struct {
	File        string
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// ExportRecord is the normalized description of one exported symbol from one
// file. Records are created during a scan, immutable afterward, and discarded
// at the end of the run.
type ExportRecord struct {
	FilePath     string
	ExportName   string
	Type         ExportType
	Kind         ExportKind
	TypeOnly     bool
	Location     Location
	Dependencies []string
}

// ImportStatement is the lightweight import view cross-file rules consume.
type ImportStatement struct {
	Module   string
	Names    []string
	Alias    string
	TypeOnly bool
	Location Location
}

// FileExports aggregates one file's inventory for the analyzer.
type FileExports struct {
	Path    string
	Exports []ExportRecord
	Imports []ImportStatement
}

// ParseOptions tunes the shared parse context.
type ParseOptions struct {
	// IncludeJS enables the javascript grammar for .js/.jsx/.mjs/.cjs files.
	IncludeJS bool
}
