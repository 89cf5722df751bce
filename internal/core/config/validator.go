package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	apperrors "exportlint/internal/core/errors"

	"github.com/gobwas/glob"
)

var validSeverities = map[string]bool{"error": true, "warning": true, "info": true}
var validRiskLevels = map[string]bool{"low": true, "medium": true, "high": true}
var validFormats = map[string]bool{"console": true, "json": true, "html": true, "markdown": true, "csv": true}
var validGroupKeys = map[string]bool{"file": true, "type": true, "severity": true}
var validSortKeys = map[string]bool{"file": true, "type": true, "severity": true, "line": true}

// Validate checks every section and returns the aggregated list of problems.
// A config that fails validation must not start a scan.
func (c *Config) Validate() error {
	var ve apperrors.ValidationErrors

	if c.Version < 1 {
		ve.Add("version must be >= 1, got %d", c.Version)
	}

	c.validatePaths(&ve)
	c.validateNaming(&ve)
	c.validateRules(&ve)
	c.validateAutoFix(&ve)
	c.validateReport(&ve)
	c.validateAccessibility(&ve)

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

func (c *Config) validatePaths(ve *apperrors.ValidationErrors) {
	root := strings.TrimSpace(c.Paths.ProjectRoot)
	if root == "" {
		ve.Add("paths.project_root must not be empty")
	} else if info, err := os.Stat(root); err != nil {
		ve.Add("paths.project_root does not exist: %s", root)
	} else if !info.IsDir() {
		ve.Add("paths.project_root is not a directory: %s", root)
	}

	if len(c.Paths.Include) == 0 {
		ve.Add("paths.include must list at least one glob")
	}
	for i, pattern := range c.Paths.Include {
		if strings.TrimSpace(pattern) == "" {
			ve.Add("paths.include[%d] must not be empty", i)
			continue
		}
		if _, err := glob.Compile(pattern); err != nil {
			ve.Add("paths.include[%d] is not a valid glob: %q", i, pattern)
		}
	}
	for i, pattern := range c.Exclude.Dirs {
		if _, err := glob.Compile(pattern); err != nil {
			ve.Add("exclude.dirs[%d] is not a valid glob: %q", i, pattern)
		}
	}
	for i, pattern := range c.Exclude.Files {
		if _, err := glob.Compile(pattern); err != nil {
			ve.Add("exclude.files[%d] is not a valid glob: %q", i, pattern)
		}
	}
}

func (c *Config) validateNaming(ve *apperrors.ValidationErrors) {
	patterns := map[string]string{
		"naming.interface":      c.Naming.Interface,
		"naming.type":           c.Naming.Type,
		"naming.class":          c.Naming.Class,
		"naming.function":       c.Naming.Function,
		"naming.constant":       c.Naming.Constant,
		"naming.component":      c.Naming.Component,
		"naming.default_export": c.Naming.DefaultExport,
	}
	for field, pattern := range patterns {
		if _, err := regexp.Compile(pattern); err != nil {
			ve.Add("%s is not a valid regex: %q (%v)", field, pattern, err)
		}
	}
}

func (c *Config) validateRules(ve *apperrors.ValidationErrors) {
	for name, rule := range c.Rules {
		ref := fmt.Sprintf("rules.%s", name)
		if !knownRules[name] {
			ve.Add("%s is not a known rule", ref)
		}
		sev := strings.ToLower(strings.TrimSpace(rule.Severity))
		if sev != "" && !validSeverities[sev] {
			ve.Add("%s.severity must be one of: error, warning, info (got %q)", ref, rule.Severity)
		}
	}
}

func (c *Config) validateAutoFix(ve *apperrors.ValidationErrors) {
	level := strings.ToLower(strings.TrimSpace(c.AutoFix.MaxRiskLevel))
	if !validRiskLevels[level] {
		ve.Add("autofix.max_risk_level must be one of: low, medium, high (got %q)", c.AutoFix.MaxRiskLevel)
	}
	if strings.TrimSpace(c.AutoFix.BackupDir) == "" {
		ve.Add("autofix.backup_dir must not be empty")
	}
}

func (c *Config) validateReport(ve *apperrors.ValidationErrors) {
	format := strings.ToLower(strings.TrimSpace(c.Report.Format))
	if !validFormats[format] {
		ve.Add("report.format must be one of: console, json, html, markdown, csv (got %q)", c.Report.Format)
	}
	if !validGroupKeys[strings.ToLower(c.Report.GroupBy)] {
		ve.Add("report.group_by must be one of: file, type, severity (got %q)", c.Report.GroupBy)
	}
	if !validSortKeys[strings.ToLower(c.Report.SortBy)] {
		ve.Add("report.sort_by must be one of: file, type, severity, line (got %q)", c.Report.SortBy)
	}
	for i, sev := range c.Report.Severities {
		if !validSeverities[strings.ToLower(strings.TrimSpace(sev))] {
			ve.Add("report.severities[%d] must be one of: error, warning, info (got %q)", i, sev)
		}
	}
}

func (c *Config) validateAccessibility(ve *apperrors.ValidationErrors) {
	for i, pattern := range c.Accessibility.InternalPaths {
		if strings.TrimSpace(pattern) == "" {
			ve.Add("accessibility.internal_paths[%d] must not be empty", i)
			continue
		}
		if _, err := glob.Compile(pattern, '/'); err != nil {
			ve.Add("accessibility.internal_paths[%d] is not a valid glob: %q", i, pattern)
		}
	}
}
