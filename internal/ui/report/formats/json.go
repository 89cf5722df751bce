package formats

import (
	"encoding/json"
	"fmt"
	"time"

	"exportlint/internal/engine/analyzer"
)

// jsonReport is the stable machine-readable document shape. Consumers key
// on these field names, so changes here are breaking.
type jsonReport struct {
	ProjectName   string           `json:"projectName"`
	ProjectPath   string           `json:"projectPath"`
	Version       string           `json:"version"`
	GeneratedAt   time.Time        `json:"generatedAt"`
	TotalFiles    int              `json:"totalFiles"`
	AnalyzedFiles int              `json:"filesAnalyzed"`
	Summary       analyzer.Summary `json:"summary"`
	Statistics    Statistics       `json:"statistics"`
	Issues        []analyzer.Issue `json:"issues"`
}

type JSONGenerator struct{}

func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{}
}

func (j *JSONGenerator) Generate(data Data) (string, error) {
	doc := jsonReport{
		ProjectName:   data.ProjectName,
		ProjectPath:   data.ProjectPath,
		Version:       data.Version,
		GeneratedAt:   data.GeneratedAt.UTC(),
		TotalFiles:    data.TotalFiles,
		AnalyzedFiles: data.AnalyzedFiles,
		Summary:       data.Summary,
		Statistics:    data.Stats,
		Issues:        flattenGroups(data.Groups),
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json report: %w", err)
	}
	return string(out) + "\n", nil
}

func flattenGroups(groups []Group) []analyzer.Issue {
	issues := make([]analyzer.Issue, 0)
	for _, g := range groups {
		issues = append(issues, g.Issues...)
	}
	return issues
}
