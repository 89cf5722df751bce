package fixer

// OperationType is the closed set of textual edits the fixer can propose.
type OperationType string

const (
	OpRename  OperationType = "rename"
	OpAdd     OperationType = "add"
	OpRemove  OperationType = "remove"
	OpReorder OperationType = "reorder"
	OpFormat  OperationType = "format"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

func riskRank(r RiskLevel) int {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	}
	return 3
}

// operationRisk bounds how aggressive each edit type is considered.
var operationRisk = map[OperationType]RiskLevel{
	OpRename:  RiskMedium,
	OpRemove:  RiskMedium,
	OpAdd:     RiskLow,
	OpReorder: RiskLow,
	OpFormat:  RiskLow,
}

// Operation is one proposed textual edit. NewText replaces the whole line;
// for remove operations it is empty, for add operations LineNumber points
// one past the last line.
type Operation struct {
	Type         OperationType `json:"type"`
	FilePath     string        `json:"filePath"`
	LineNumber   int           `json:"lineNumber,omitempty"`
	OriginalText string        `json:"originalText,omitempty"`
	NewText      string        `json:"newText"`
	Description  string        `json:"description"`
}

// Result is the outcome of one operation.
type Result struct {
	Operation  Operation `json:"operation"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	BackupPath string    `json:"backupPath,omitempty"`
}

// Conflict groups operations that target the same location with different
// replacement text. None of them is applied.
type Conflict struct {
	FilePath   string      `json:"filePath"`
	LineNumber int         `json:"lineNumber"`
	Operations []Operation `json:"operations"`
}

// BatchResult is the outcome of applying (or simulating) a batch.
type BatchResult struct {
	TotalOperations int        `json:"totalOperations"`
	SuccessfulFixes int        `json:"successfulFixes"`
	FailedFixes     int        `json:"failedFixes"`
	Results         []Result   `json:"results"`
	Conflicts       []Conflict `json:"conflicts,omitempty"`
	BackupDirectory string     `json:"backupDirectory,omitempty"`
}

// Options controls one fix batch.
type Options struct {
	DryRun       bool
	CreateBackup bool
	MaxRiskLevel RiskLevel
}
