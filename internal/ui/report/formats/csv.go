package formats

import (
	"fmt"
	"strings"
)

type CSVGenerator struct{}

func NewCSVGenerator() *CSVGenerator {
	return &CSVGenerator{}
}

func (c *CSVGenerator) Generate(data Data) (string, error) {
	var b strings.Builder

	b.WriteString("Severity,Type,File,Line,Column,Export,Message,Suggestion,AutoFixable\n")
	for _, group := range data.Groups {
		for _, issue := range group.Issues {
			line, column := 0, 0
			if issue.Location != nil {
				line = issue.Location.StartLine
				column = issue.Location.StartColumn
			}
			b.WriteString(fmt.Sprintf("%s,%s,%s,%d,%d,%s,%s,%s,%t\n",
				csvField(string(issue.Severity)),
				csvField(string(issue.Type)),
				csvField(issue.FilePath),
				line,
				column,
				csvField(issue.ExportName),
				csvField(issue.Message),
				csvField(issue.Suggestion),
				issue.AutoFixable,
			))
		}
	}

	return b.String(), nil
}

// csvField quotes a value when it contains a comma, quote or newline,
// doubling embedded quotes per RFC 4180.
func csvField(value string) string {
	if !strings.ContainsAny(value, ",\"\n\r") {
		return value
	}
	return "\"" + strings.ReplaceAll(value, "\"", "\"\"") + "\""
}
